package cli

import (
	"context"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/campaign-vault/pkg/backlinks"
	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

// BacklinksCmd returns the backlinks command.
func BacklinksCmd(a *app) *Command {
	flags := flag.NewFlagSet("backlinks", flag.ContinueOnError)
	refresh := flags.Bool("refresh", false, "Rescan the vault instead of using the cached index")
	asJSON := flags.Bool("json", false, "Print JSON")

	return &Command{
		Flags: flags,
		Usage: "backlinks [flags] <id>",
		Short: "List entities that reference an id",
		Arg:   "id",
		Examples: []string{
			"backlinks npc/mira-01",
			"backlinks --refresh --json quest/rescue",
		},
		Long: `List every entity whose candidate fields mention <id>, one per line
as: id, type, name and path, separated by tabs.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execBacklinks(ctx, o, a, args, *refresh, *asJSON)
		},
	}
}

func execBacklinks(ctx context.Context, o *IO, a *app, args []string, refresh, asJSON bool) error {
	links, err := a.engine.Backlinks(ctx, strings.TrimSpace(args[0]), refresh)
	if err != nil {
		return err
	}

	if asJSON {
		o.Write(docval.EncodeCanonicalJSON(backlinkValues(links)))

		return nil
	}

	for _, l := range links {
		o.Printf("%s\t%s\t%s\t%s\n", l.ID, l.Type, l.Name, l.RelPath)
	}

	return nil
}

func backlinkValues(links []backlinks.Backlink) docval.Value {
	items := make([]docval.Value, len(links))
	for i, l := range links {
		items[i] = docval.MapValue(docval.MapOf("id", l.ID, "type", l.Type, "name", l.Name, "relPath", l.RelPath))
	}

	return docval.Seq(items...)
}

package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

// FmtCmd returns the fmt command.
func FmtCmd(a *app) *Command {
	flags := flag.NewFlagSet("fmt", flag.ContinueOnError)
	format := flags.String("format", "", "Convert to `format` (markdown or json) next to the original")
	check := flags.Bool("check", false, "Report files that are not canonical without writing")

	return &Command{
		Flags: flags,
		Usage: "fmt [flags] <path>...",
		Short: "Rewrite entities in canonical form",
		Arg:   "path",
		Examples: []string{
			"fmt --check npc/*.md",
			"fmt --format=json quest/rescue.md",
		},
		Long: `Load every <path> and save it back in canonical form: sorted
frontmatter keys for Markdown, sorted and indented JSON otherwise. Ledger
names are rewritten to ids.

With --format the entity is written to a sibling file with the new
extension; the original is left in place.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			target, err := vault.ParseFormat(*format)
			if err != nil {
				return err
			}

			return execFmt(ctx, o, a, args, target, *check)
		},
	}
}

func execFmt(ctx context.Context, o *IO, a *app, args []string, target vault.Format, check bool) error {
	for _, path := range args {
		res, err := a.engine.LoadEntity(ctx, path)
		if err != nil {
			return err
		}

		format := vault.FormatForPath(res.Path)
		dest := res.Path

		if target != "" && target != format {
			format = target
			dest = strings.TrimSuffix(res.Path, filepath.Ext(res.Path)) + target.Ext()
		}

		want := vault.EncodeDocument(res.Entity.Doc, res.Body, format)

		current, _ := a.fs.ReadFile(a.abs(dest))
		if bytes.Equal(current, want) {
			continue
		}

		if check {
			o.Warn(dest, "not in canonical form (run vault fmt)")

			continue
		}

		_, err = a.engine.SaveEntity(ctx, vault.SaveRequest{
			Entity: res.Entity.Doc,
			Body:   res.Body,
			Path:   dest,
			Format: format,
		})
		if err != nil {
			return err
		}

		// A repl session keeps the index across commands.
		a.index.Invalidate()

		o.Println("formatted", dest)
	}

	return nil
}

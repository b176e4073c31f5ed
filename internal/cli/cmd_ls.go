package cli

import (
	"context"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/campaign-vault/internal/vaultindex"
	"github.com/calvinalkan/campaign-vault/pkg/entity"
)

// LsCmd returns the ls command.
func LsCmd(a *app) *Command {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	typ := flags.StringP("type", "t", "", "Only list entities of `type` (aliases allowed)")

	return &Command{
		Flags: flags,
		Usage: "ls [flags]",
		Short: "List indexed entities",
		Long: `Scan the vault and list every document with a valid id, one per
line as: id, type, name and path, separated by tabs. Documents without an id
are skipped.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return execLs(ctx, o, a, *typ)
		},
	}
}

func execLs(ctx context.Context, o *IO, a *app, typeFilter string) error {
	var want entity.Type

	if typeFilter != "" {
		t, ok := a.engine.Registry().Lookup(typeFilter)
		if !ok {
			return fmt.Errorf("%w: %q", entity.ErrUnknownType, typeFilter)
		}

		want = t
	}

	snap, err := a.index.LoadVaultIndex(ctx, true)
	if err != nil {
		return err
	}

	for _, rec := range vaultindex.Sorted(snap) {
		if want != "" && rec.Type != string(want) {
			continue
		}

		rel, err := filepath.Rel(snap.Root, rec.Path)
		if err != nil {
			rel = rec.Path
		}

		name := rec.Name
		if name == "" {
			name = rec.Title
		}

		o.Printf("%s\t%s\t%s\t%s\n", rec.ID, rec.Type, name, filepath.ToSlash(rel))
	}

	return nil
}

package cli

import (
	"context"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
)

// ShowCmd returns the show command.
func ShowCmd(a *app) *Command {
	return &Command{
		Usage: "show <path>",
		Short: "Load an entity with its backlinks",
		Arg:   "path",
		Long: `Load, normalize and validate the entity at <path> and print
{entity, body, path, backlinks} as key-sorted JSON.

Relative paths are resolved against the vault directory.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execShow(ctx, o, a, args)
		},
	}
}

func execShow(ctx context.Context, o *IO, a *app, args []string) error {
	res, err := a.engine.LoadEntity(ctx, args[0])
	if err != nil {
		return err
	}

	o.Write(docval.EncodeCanonicalJSON(res.Bundle()))

	return nil
}

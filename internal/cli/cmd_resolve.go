package cli

import (
	"context"
	"strings"
)

// ResolveCmd returns the resolve command.
func ResolveCmd(a *app) *Command {
	return &Command{
		Usage: "resolve <name>",
		Short: "Print the id a name or alias resolves to",
		Arg:   "name",
		Examples: []string{
			"resolve the smith",
		},
		Long: `Resolve <name> the way relationship ledgers are resolved: by id,
name, title or alias, ignoring case. Multiple words are joined with spaces.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			id, err := a.resolver.Resolve(ctx, strings.Join(args, " "))
			if err != nil {
				return err
			}

			o.Println(id)

			return nil
		},
	}
}

package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

var errInvalidDocuments = errors.New("invalid documents")

// ValidateCmd returns the validate command.
func ValidateCmd(a *app) *Command {
	return &Command{
		Usage: "validate <path>...",
		Short: "Check entities against their schemas",
		Arg:   "path",
		Long: `Load every <path> and report whether it resolves, normalizes and
validates. Exits 1 when any document fails.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			return execValidate(ctx, o, a, args)
		},
	}
}

func execValidate(ctx context.Context, o *IO, a *app, args []string) error {
	var failed []error

	for _, path := range args {
		res, err := a.engine.LoadEntity(ctx, path)
		if err != nil {
			failed = append(failed, fmt.Errorf("%s: %w", path, err))

			printFailure(o, path, err)

			continue
		}

		o.Printf("ok    %s (%s %s)\n", res.Path, res.Entity.Type, res.Entity.ID())
	}

	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d\n%w", errInvalidDocuments, len(failed), len(args), errors.Join(failed...))
	}

	return nil
}

func printFailure(o *IO, path string, err error) {
	var vErr *vault.Error
	if !errors.As(err, &vErr) {
		o.Printf("FAIL  %s: %v\n", path, err)

		return
	}

	o.Printf("FAIL  %s: %s\n", path, vErr.Code)

	if len(vErr.Issues) == 0 {
		o.Printf("      %v\n", vErr.Err)

		return
	}

	for _, issue := range vErr.Issues {
		o.Printf("      - %s\n", issue)
	}
}

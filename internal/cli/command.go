package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	flag "github.com/spf13/pflag"
)

var errArgsRequired = errors.New("missing required argument")

// Command is one vault subcommand. Help text for both the global listing
// and "vault <cmd> --help" is derived from Usage, Short, Long and Flags.
type Command struct {
	// Flags holds command flags. A nil set is replaced by an empty one.
	Flags *flag.FlagSet

	// Usage is shown after "vault"; its first word is the command name.
	Usage string

	Short string
	Long  string

	// Arg names the positional argument Exec needs at least one of, for
	// example "path". Empty when the command takes no arguments.
	Arg string

	// Examples are printed verbatim under the help text.
	Examples []string

	Exec func(ctx context.Context, o *IO, args []string) error
}

// Name is the first word of Usage.
func (c *Command) Name() string {
	name, _, _ := strings.Cut(c.Usage, " ")

	return name
}

// HelpLine is the command's row in the global usage listing.
func (c *Command) HelpLine() string {
	return fmt.Sprintf("  %-28s %s", c.Usage, c.Short)
}

func (c *Command) flags() *flag.FlagSet {
	if c.Flags == nil {
		c.Flags = flag.NewFlagSet(c.Name(), flag.ContinueOnError)
	}

	return c.Flags
}

// PrintHelp writes the full help for "vault <cmd> --help".
func (c *Command) PrintHelp(o *IO) {
	o.Println("Usage: vault", c.Usage)
	o.Println()

	if c.Long != "" {
		o.Println(c.Long)
	} else {
		o.Println(c.Short)
	}

	if fs := c.flags(); fs.HasFlags() {
		var buf strings.Builder

		fs.SetOutput(&buf)
		fs.PrintDefaults()

		o.Println()
		o.Println("Flags:")
		o.Printf("%s", buf.String())
	}

	if len(c.Examples) > 0 {
		o.Println()
		o.Println("Examples:")

		for _, ex := range c.Examples {
			o.Println("  vault", ex)
		}
	}
}

// Run parses args, checks arity and runs Exec. It returns the exit code
// and prints any error itself.
func (c *Command) Run(ctx context.Context, o *IO, args []string) int {
	fs := c.flags()
	fs.SetOutput(&strings.Builder{})

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			c.PrintHelp(o)

			return 0
		}

		return c.usageError(o, err)
	}

	rest := fs.Args()
	if c.Arg != "" && len(rest) == 0 {
		return c.usageError(o, fmt.Errorf("%w: %s", errArgsRequired, c.Arg))
	}

	if err := c.Exec(ctx, o, rest); err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	return o.Finish()
}

func (c *Command) usageError(o *IO, err error) int {
	o.ErrPrintln("error:", err)
	o.ErrPrintln()
	c.PrintHelp(o.Stderr())

	return 1
}

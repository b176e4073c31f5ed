// Package cli implements the vault command line.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/campaign-vault/internal/config"
	"github.com/calvinalkan/campaign-vault/pkg/fs"
)

// globalFlags holds the flags accepted before the command name.
type globalFlags struct {
	set *flag.FlagSet

	workDir    string
	configPath string
	vaultDir   string
	logLevel   string
	help       bool
}

func newGlobalFlags() *globalFlags {
	g := &globalFlags{set: flag.NewFlagSet("vault", flag.ContinueOnError)}

	g.set.SetInterspersed(false)
	g.set.SetOutput(io.Discard)
	g.set.StringVarP(&g.workDir, "cwd", "C", "", "Run as if started in `dir`")
	g.set.StringVarP(&g.configPath, "config", "c", "", "Use the specified config `file`")
	g.set.StringVar(&g.vaultDir, "vault-dir", "", "Vault root `dir` (overrides config)")
	g.set.StringVar(&g.logLevel, "log-level", "", "Log `level`: debug, info, warn or error")
	g.set.BoolVarP(&g.help, "help", "h", false, "Show help")

	return g
}

// Run is the main entry point. Returns the exit code. A signal on sigCh
// cancels the running command; sigCh may be nil.
func Run(stdin io.Reader, out io.Writer, errOut io.Writer, args []string, env map[string]string, sigCh <-chan os.Signal) int {
	o := NewIO(stdin, out, errOut)
	g := newGlobalFlags()

	if len(args) > 0 {
		args = args[1:]
	}

	err := g.set.Parse(args)
	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		printUsage(o.Stderr(), g)

		return 1
	}

	rest := g.set.Args()
	if g.help || len(rest) == 0 {
		printUsage(o, g)

		return 0
	}

	input := config.LoadInput{
		WorkDirOverride:  g.workDir,
		ConfigPath:       g.configPath,
		LogLevelOverride: g.logLevel,
		Env:              env,
	}

	if g.set.Changed("vault-dir") {
		input.VaultDirOverride = &g.vaultDir
	}

	cfg, err := config.Load(input)
	if err != nil {
		o.ErrPrintln("error:", err)
		o.ErrPrintln()
		printUsage(o.Stderr(), g)

		return 1
	}

	a, err := newApp(cfg, errOut, fs.NewReal())
	if err != nil {
		o.ErrPrintln("error:", err)

		return 1
	}

	name, cmdArgs := rest[0], rest[1:]

	cmd := lookup(commands(a), name)
	if cmd == nil {
		o.ErrPrintln("error: unknown command:", name)
		o.ErrPrintln()
		printUsage(o.Stderr(), g)

		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-sigCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	return cmd.Run(ctx, o, cmdArgs)
}

func commands(a *app) []*Command {
	return []*Command{
		ShowCmd(a),
		ValidateCmd(a),
		BacklinksCmd(a),
		ResolveCmd(a),
		FmtCmd(a),
		SaveCmd(a),
		LsCmd(a),
		ReplCmd(a),
		PrintConfigCmd(a),
	}
}

func lookup(cmds []*Command, name string) *Command {
	for _, c := range cmds {
		if c.Name() == name {
			return c
		}
	}

	return nil
}

func printUsage(o *IO, g *globalFlags) {
	o.Println(`vault - campaign vault entity documents

Usage: vault [global flags] <command> [args]`)
	o.Println()
	o.Println("Global flags:")

	var buf strings.Builder
	g.set.SetOutput(&buf)
	g.set.PrintDefaults()
	g.set.SetOutput(io.Discard)
	o.Printf("%s", buf.String())

	o.Println()
	o.Println("Commands:")

	for _, c := range commands(nil) {
		o.Println(c.HelpLine())
	}
}

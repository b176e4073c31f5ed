package cli_test

import (
	"path/filepath"
	"testing"

	"github.com/calvinalkan/campaign-vault/internal/cli"
)

func Test_Run_Prints_Usage_When_No_Command_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	stdout := c.MustRun()

	cli.AssertContains(t, stdout, "Usage: vault [global flags] <command> [args]")
	cli.AssertContains(t, stdout, "Commands:")

	for _, name := range []string{"show <path>", "validate <path>...", "backlinks", "resolve <name>", "fmt", "save", "ls", "repl", "print-config"} {
		cli.AssertContains(t, stdout, name)
	}
}

func Test_Run_Fails_With_Global_Help_When_Flag_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	res := c.Run("--invalid-flag", "ls")

	if got, want := res.Code, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	if got, want := res.Stdout, ""; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	stderr := res.Stderr

	cli.AssertContains(t, stderr, "unknown flag")
	cli.AssertContains(t, stderr, "--invalid-flag")
	cli.AssertContains(t, stderr, "Global flags:")
	cli.AssertContains(t, stderr, "--cwd")
	cli.AssertContains(t, stderr, "--config")
	cli.AssertContains(t, stderr, "--vault-dir")
	cli.AssertContains(t, stderr, "--log-level")
}

func Test_Run_Fails_When_Vault_Dir_Flag_Empty(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	stderr := c.MustFail("--vault-dir=", "ls")

	cli.AssertContains(t, stderr, "vault-dir cannot be empty")
	cli.AssertContains(t, stderr, "Global flags:")
}

func Test_Run_Fails_When_Command_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	stderr := c.MustFail("frobnicate")

	cli.AssertContains(t, stderr, "unknown command: frobnicate")
}

func Test_Run_Prints_Command_Help_When_Help_Flag_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	stdout := c.MustRun("fmt", "--help")

	cli.AssertContains(t, stdout, "Usage: vault fmt [flags] <path>...")
	cli.AssertContains(t, stdout, "--format")
	cli.AssertContains(t, stdout, "--check")
}

func Test_Print_Config_Defaults_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, `"vault_dir": "."`)
	cli.AssertContains(t, stdout, "#   vault_dir: "+c.Dir)
	cli.AssertContains(t, stdout, "(defaults only)")
}

func Test_Print_Config_From_Config_File_With_Comments_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	c.WriteFile(".vault.json", `{
		// campaign lives in a subfolder
		"vault_dir": "campaign",
		"default_format": "json",
	}`)

	stdout := c.MustRun("print-config")

	cli.AssertContains(t, stdout, `"default_format": "json"`)
	cli.AssertContains(t, stdout, "#   vault_dir: "+filepath.Join(c.Dir, "campaign"))
	cli.AssertContains(t, stdout, "#   project: "+filepath.Join(c.Dir, ".vault.json"))
}

func Test_Print_Config_Vault_Dir_Override_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	c.WriteFile(".vault.json", `{"vault_dir": "from-file"}`)

	stdout := c.MustRun("--vault-dir=from-cli", "print-config")
	cli.AssertContains(t, stdout, "#   vault_dir: "+filepath.Join(c.Dir, "from-cli"))
}

func Test_Run_Fails_When_Config_Invalid(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	c.WriteFile(".vault.json", `{"default_format": "yaml"}`)

	stderr := c.MustFail("ls")
	cli.AssertContains(t, stderr, "invalid default_format")
}

func Test_Run_Fails_With_Command_Help_When_Argument_Missing(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)

	for _, tc := range []struct{ cmd, arg string }{
		{"show", "path"},
		{"validate", "path"},
		{"backlinks", "id"},
		{"resolve", "name"},
		{"fmt", "path"},
		{"save", "path"},
	} {
		stderr := c.MustFail(tc.cmd)

		cli.AssertContains(t, stderr, "missing required argument: "+tc.arg)
		cli.AssertContains(t, stderr, "Usage: vault "+tc.cmd)
	}
}

func Test_Run_Prints_Examples_When_Command_Has_Them(t *testing.T) {
	t.Parallel()

	c := cli.NewTestVault(t)
	stdout := c.MustRun("backlinks", "--help")

	cli.AssertContains(t, stdout, "Examples:")
	cli.AssertContains(t, stdout, "  vault backlinks --refresh --json quest/rescue")
}

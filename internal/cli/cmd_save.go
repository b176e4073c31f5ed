package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

var (
	errNoInput     = errors.New("no input on stdin")
	errBadBundle   = errors.New("stdin must be a JSON object with an \"entity\" object")
	errBodyNotText = errors.New("\"body\" must be a string")
)

// SaveCmd returns the save command.
func SaveCmd(a *app) *Command {
	flags := flag.NewFlagSet("save", flag.ContinueOnError)
	format := flags.String("format", "", "Write as `format` (markdown or json) regardless of the extension")

	return &Command{
		Flags: flags,
		Usage: "save [flags] <path>",
		Short: "Validate and write an entity read from stdin",
		Arg:   "path",
		Examples: []string{
			`save npc/ansel-03 <<< '{"entity": {"id": "npc/ansel-03", "name": "Ansel"}}'`,
		},
		Long: `Read {"entity": {...}, "body": "..."} from stdin, normalize and
validate it, and write it to <path> atomically. A path without an extension
gets the one of the configured default_format.`,
		Exec: func(ctx context.Context, o *IO, args []string) error {
			f, err := vault.ParseFormat(*format)
			if err != nil {
				return err
			}

			return execSave(ctx, o, a, args, f)
		},
	}
}

func execSave(ctx context.Context, o *IO, a *app, args []string, format vault.Format) error {
	if o.Stdin() == nil {
		return errNoInput
	}

	raw, err := io.ReadAll(o.Stdin())
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	if len(raw) == 0 {
		return errNoInput
	}

	doc, body, err := parseBundle(raw)
	if err != nil {
		return err
	}

	path := args[0]
	if filepath.Ext(path) == "" {
		ext := a.cfg.Format.Ext()
		if format != "" {
			ext = format.Ext()
		}

		path += ext
	}

	res, err := a.engine.SaveEntity(ctx, vault.SaveRequest{Entity: doc, Body: body, Path: path, Format: format})
	if err != nil {
		return err
	}

	o.Write(docval.EncodeCanonicalJSON(docval.MapValue(docval.MapOf(
		"entity", res.Entity.Doc,
		"body", res.Body,
		"path", res.Path,
	))))

	return nil
}

func parseBundle(raw []byte) (*docval.Map, string, error) {
	v, err := docval.ParseJSON(raw)
	if err != nil {
		return nil, "", fmt.Errorf("parse stdin: %w", err)
	}

	bundle, ok := v.AsMap()
	if !ok {
		return nil, "", errBadBundle
	}

	doc, ok := bundle.GetMap("entity")
	if !ok {
		return nil, "", errBadBundle
	}

	bodyVal, ok := bundle.Get("body")
	if !ok || bodyVal.IsNull() {
		return doc, "", nil
	}

	body, ok := bodyVal.AsString()
	if !ok {
		return nil, "", errBodyNotText
	}

	return doc, body, nil
}

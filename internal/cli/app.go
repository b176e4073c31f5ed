package cli

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/calvinalkan/campaign-vault/internal/config"
	"github.com/calvinalkan/campaign-vault/internal/vaultindex"
	"github.com/calvinalkan/campaign-vault/pkg/fs"
	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

// app is the wiring shared by all commands of one invocation.
type app struct {
	cfg      config.Config
	log      *slog.Logger
	fs       fs.FS
	index    *vaultindex.Index
	resolver *vaultindex.Resolver
	engine   *vault.Engine
}

func newApp(cfg config.Config, logOut io.Writer, fsys fs.FS) (*app, error) {
	log := slog.New(slog.NewTextHandler(logOut, &slog.HandlerOptions{Level: cfg.Level}))

	reg := cfg.Registry()

	index, err := vaultindex.New(vaultindex.Options{
		FS:       fsys,
		Root:     cfg.VaultDirAbs,
		Registry: reg,
		MaxAge:   cfg.MaxAge,
		Logger:   log,
	})
	if err != nil {
		return nil, fmt.Errorf("vault index: %w", err)
	}

	resolver := &vaultindex.Resolver{Index: index}

	engine, err := vault.New(vault.Options{
		FS:        fsys,
		Root:      cfg.VaultDirAbs,
		Registry:  reg,
		Index:     index,
		Resolver:  resolver,
		Backlinks: cfg.BacklinkOptions(reg),
		Logger:    log,
	})
	if err != nil {
		return nil, fmt.Errorf("vault engine: %w", err)
	}

	return &app{
		cfg:      cfg,
		log:      log,
		fs:       fsys,
		index:    index,
		resolver: resolver,
		engine:   engine,
	}, nil
}

// abs maps a path reported by the engine back to the filesystem.
func (a *app) abs(path string) string {
	path = filepath.FromSlash(path)
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(a.cfg.VaultDirAbs, path)
}

// Package vaultindex builds point-in-time snapshots of a vault directory and
// resolves names to entity ids against them.
//
// A snapshot is produced by walking the vault through [fs.FS], decoding every
// Markdown and JSON document and keeping those with a valid id. Snapshots are
// cached for a configurable age and concurrent loads share one scan.
package vaultindex

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/calvinalkan/campaign-vault/pkg/entity"
	"github.com/calvinalkan/campaign-vault/pkg/fs"
	"github.com/calvinalkan/campaign-vault/pkg/vault"
)

// Options configures an [Index]. FS and Root are required.
type Options struct {
	FS   fs.FS
	Root string

	// Registry infers record types. Defaults to [entity.DefaultRegistry].
	Registry *entity.Registry

	// MaxAge is how long a snapshot is served from cache. Zero disables
	// caching.
	MaxAge time.Duration

	// Workers bounds parallel file decoding. Defaults to GOMAXPROCS.
	Workers int

	Logger *slog.Logger

	// Now defaults to [time.Now].
	Now func() time.Time
}

// Index implements [vault.IndexLoader].
type Index struct {
	opts  Options
	group singleflight.Group

	mu       sync.Mutex
	snap     *vault.Snapshot
	loadedAt time.Time
}

var _ vault.IndexLoader = (*Index)(nil)

// New returns an index over opts.Root.
func New(opts Options) (*Index, error) {
	if opts.FS == nil {
		return nil, errors.New("vaultindex: FS is required")
	}

	if opts.Root == "" {
		return nil, errors.New("vaultindex: root is required")
	}

	if opts.Registry == nil {
		opts.Registry = entity.DefaultRegistry()
	}

	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}

	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Index{opts: opts}, nil
}

// LoadVaultIndex returns the cached snapshot while it is younger than
// MaxAge, and scans the vault otherwise or when force is set. Concurrent
// scans are collapsed into one. The returned snapshot must not be modified.
func (ix *Index) LoadVaultIndex(ctx context.Context, force bool) (*vault.Snapshot, error) {
	if !force {
		if snap := ix.cached(); snap != nil {
			return snap, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// The shared scan outlives any one caller; each caller stops waiting
	// when its own context ends.
	scanCtx := context.WithoutCancel(ctx)

	ch := ix.group.DoChan("scan", func() (any, error) {
		snap, err := ix.scan(scanCtx)
		if err != nil {
			return nil, err
		}

		ix.mu.Lock()
		ix.snap = snap
		ix.loadedAt = ix.opts.Now()
		ix.mu.Unlock()

		return snap, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}

		return res.Val.(*vault.Snapshot), nil
	}
}

// Invalidate drops the cached snapshot.
func (ix *Index) Invalidate() {
	ix.mu.Lock()
	ix.snap = nil
	ix.mu.Unlock()
}

func (ix *Index) cached() *vault.Snapshot {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	if ix.snap == nil || ix.opts.MaxAge <= 0 {
		return nil
	}

	if ix.opts.Now().Sub(ix.loadedAt) >= ix.opts.MaxAge {
		return nil
	}

	return ix.snap
}

func (ix *Index) scan(ctx context.Context) (*vault.Snapshot, error) {
	paths, err := ix.walk(ctx, ix.opts.Root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", ix.opts.Root, err)
	}

	sort.Strings(paths)

	records := make([]*vault.Record, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(ix.opts.Workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			records[i] = ix.record(path)

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	snap := &vault.Snapshot{Root: ix.opts.Root, Entities: make(map[string]vault.Record, len(records))}

	for _, rec := range records {
		if rec == nil {
			continue
		}

		if prev, dup := snap.Entities[rec.ID]; dup {
			ix.opts.Logger.Warn("vaultindex: duplicate id", "id", rec.ID, "kept", prev.Path, "skipped", rec.Path)

			continue
		}

		snap.Entities[rec.ID] = *rec
	}

	return snap, nil
}

// walk lists document files below dir, skipping hidden entries.
func (ix *Index) walk(ctx context.Context, dir string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := ix.opts.FS.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var out []string

	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}

		path := filepath.Join(dir, e.Name())

		if e.IsDir() {
			sub, err := ix.walk(ctx, path)
			if err != nil {
				return nil, err
			}

			out = append(out, sub...)

			continue
		}

		if isDocument(path) {
			out = append(out, path)
		}
	}

	return out, nil
}

func isDocument(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdx", ".json":
		return true
	}

	return false
}

// record decodes one file. Files that cannot be read, parsed or identified
// are skipped.
func (ix *Index) record(path string) *vault.Record {
	log := ix.opts.Logger

	raw, err := ix.opts.FS.ReadFile(path)
	if err != nil {
		log.Debug("vaultindex: skip unreadable file", "path", path, "err", err)

		return nil
	}

	doc, _, err := vault.DecodeDocument(raw, vault.FormatForPath(path))
	if err != nil {
		log.Debug("vaultindex: skip undecodable file", "path", path, "err", err)

		return nil
	}

	id, _ := doc.GetString(entity.KeyID)
	if !entity.ValidID(id) {
		log.Debug("vaultindex: skip file without valid id", "path", path)

		return nil
	}

	rel, err := filepath.Rel(ix.opts.Root, path)
	if err != nil {
		rel = path
	}

	declared, _ := doc.GetString(entity.KeyType)

	typ := declared
	if res, err := ix.opts.Registry.Resolve(declared, filepath.ToSlash(rel)); err == nil {
		typ = string(res.Type)
	}

	name, _ := doc.GetString(entity.KeyName)
	title, _ := doc.GetString(entity.KeyTitle)

	fields := doc.Clone()
	for _, k := range []string{entity.KeyID, entity.KeyType, entity.KeyName, entity.KeyTitle} {
		fields.Delete(k)
	}

	rec := &vault.Record{
		ID:       id,
		Type:     typ,
		Name:     name,
		Title:    title,
		Metadata: doc,
		Fields:   fields,
		Path:     path,
	}

	if info, err := ix.opts.FS.Stat(path); err == nil {
		rec.MTime = info.ModTime()
	}

	return rec
}

// Sorted returns the records of snap ordered by id.
func Sorted(snap *vault.Snapshot) []vault.Record {
	if snap == nil {
		return nil
	}

	out := make([]vault.Record, 0, len(snap.Entities))
	for _, rec := range snap.Entities {
		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out
}

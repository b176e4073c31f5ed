// Package vault loads and saves campaign entity documents.
//
// An [Engine] reads a document through an injected [fs.FS], decodes it as
// Markdown frontmatter or JSON, resolves its type, normalizes an NPC's
// relationship ledger, validates it against the type's schema and attaches
// the entities of the vault index that link back to it. Saving runs the same
// checks in reverse and writes the file atomically in a deterministic form.
//
// Engine calls run sequentially within the call and hold no locks. Two
// concurrent saves to the same path are last-writer-wins.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"

	"github.com/calvinalkan/campaign-vault/internal/observe"
	"github.com/calvinalkan/campaign-vault/pkg/backlinks"
	"github.com/calvinalkan/campaign-vault/pkg/docval"
	"github.com/calvinalkan/campaign-vault/pkg/entity"
	"github.com/calvinalkan/campaign-vault/pkg/fs"
	"github.com/calvinalkan/campaign-vault/pkg/ledger"
)

// Snapshot and Record are the vault index view consumed for backlinks.
type (
	Snapshot = backlinks.Snapshot
	Record   = backlinks.Record
)

// IndexLoader provides vault snapshots. force asks for a fresh scan instead
// of a cached one.
type IndexLoader interface {
	LoadVaultIndex(ctx context.Context, force bool) (*Snapshot, error)
}

// Options configures an [Engine]. FS is required.
type Options struct {
	FS fs.FS

	// Root is the vault directory relative paths are resolved against.
	Root string

	// Registry defaults to [entity.DefaultRegistry].
	Registry *entity.Registry

	// Index supplies backlink snapshots. Without one, loads return no
	// backlinks.
	Index IndexLoader

	// Resolver turns ledger names into ids. Without one, an NPC whose ledger
	// contains a bare name fails to load or save.
	Resolver ledger.Resolver

	// Backlinks selects the fields searched for references. When both of
	// its fields are empty, each registered schema's BacklinkFields are used.
	Backlinks backlinks.Options

	// Logger defaults to [slog.Default].
	Logger *slog.Logger

	// MeterProvider defaults to a noop provider.
	MeterProvider metric.MeterProvider
}

// Engine implements entity load and save.
type Engine struct {
	fs        fs.FS
	root      string
	registry  *entity.Registry
	index     IndexLoader
	ledger    *ledger.Normalizer
	backlinks backlinks.Options
	log       *slog.Logger
	metrics   *observe.Metrics
}

// New returns an engine for opts.
func New(opts Options) (*Engine, error) {
	if opts.FS == nil {
		return nil, errors.New("vault: FS is required")
	}

	e := &Engine{
		fs:        opts.FS,
		root:      opts.Root,
		registry:  opts.Registry,
		index:     opts.Index,
		ledger:    &ledger.Normalizer{Resolver: opts.Resolver},
		backlinks: opts.Backlinks,
		log:       opts.Logger,
	}

	if e.registry == nil {
		e.registry = entity.DefaultRegistry()
	}

	if e.log == nil {
		e.log = slog.Default()
	}

	if e.backlinks.FieldsByType == nil && e.backlinks.Default == nil {
		e.backlinks.FieldsByType = e.registry.BacklinkFields()
	}

	if opts.MeterProvider == nil {
		e.metrics = observe.Noop()
	} else {
		met, err := observe.NewMetrics(opts.MeterProvider)
		if err != nil {
			return nil, fmt.Errorf("vault: metrics: %w", err)
		}

		e.metrics = met
	}

	return e, nil
}

// Registry returns the engine's type registry.
func (e *Engine) Registry() *entity.Registry { return e.registry }

// LoadResult is the outcome of [Engine.LoadEntity].
type LoadResult struct {
	Entity    entity.Entity
	Body      string
	Path      string
	Backlinks []backlinks.Backlink
}

// Bundle renders r as {entity, body, path, backlinks}.
func (r *LoadResult) Bundle() docval.Value {
	links := make([]docval.Value, len(r.Backlinks))
	for i, b := range r.Backlinks {
		links[i] = docval.MapValue(docval.MapOf(
			"id", b.ID,
			"type", b.Type,
			"name", b.Name,
			"relPath", b.RelPath,
		))
	}

	return docval.MapValue(docval.MapOf(
		"entity", r.Entity.Doc,
		"body", r.Body,
		"path", r.Path,
		"backlinks", docval.Seq(links...),
	))
}

// SaveRequest describes an entity to write. A zero Format is inferred from
// Path. JSON documents have no body.
type SaveRequest struct {
	Entity *docval.Map
	Body   string
	Path   string
	Format Format
}

// SaveResult is the outcome of [Engine.SaveEntity].
type SaveResult struct {
	Entity entity.Entity
	Body   string
	Path   string
}

// LoadEntity reads, resolves, normalizes and validates the document at path
// and computes its backlinks. Backlinks degrade to an empty list when the
// index fails; every other failure is an [*Error].
func (e *Engine) LoadEntity(ctx context.Context, path string) (*LoadResult, error) {
	start := time.Now()
	defer e.metrics.ObserveDuration(ctx, "load", start)

	full, rel, err := e.locate(path)
	if err != nil {
		return nil, e.fail(ctx, "load", CodeInvalidRequest, path, "", err)
	}

	raw, err := e.fs.ReadFile(full)
	if err != nil {
		return nil, e.fail(ctx, "load", CodeReadFailed, rel, "", err)
	}

	doc, body, err := DecodeDocument(raw, FormatForPath(rel))
	if err != nil {
		return nil, e.fail(ctx, "load", CodeJSONParseFailed, rel, "", err)
	}

	ent, err := e.prepare(ctx, "load", doc, rel)
	if err != nil {
		return nil, err
	}

	e.metrics.RecordLoad(ctx, string(ent.Type))

	return &LoadResult{
		Entity:    ent,
		Body:      body,
		Path:      rel,
		Backlinks: e.backlinksFor(ctx, ent.ID()),
	}, nil
}

// SaveEntity resolves, normalizes and validates req.Entity and writes it to
// req.Path atomically, creating parent directories. Markdown keys are sorted
// by the frontmatter encoder; JSON is key-sorted, two-space indented and
// newline-terminated.
func (e *Engine) SaveEntity(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	start := time.Now()
	defer e.metrics.ObserveDuration(ctx, "save", start)

	full, rel, err := e.locate(req.Path)
	if err != nil {
		return nil, e.fail(ctx, "save", CodeInvalidRequest, req.Path, "", err)
	}

	if req.Entity == nil {
		return nil, e.fail(ctx, "save", CodeInvalidRequest, rel, "", errors.New("entity is required"))
	}

	format := req.Format
	if format == "" {
		format = FormatForPath(rel)
	}

	if format == FormatJSON && req.Body != "" {
		return nil, e.fail(ctx, "save", CodeInvalidRequest, rel, "", errors.New("json documents have no body"))
	}

	ent, err := e.prepare(ctx, "save", req.Entity, rel)
	if err != nil {
		return nil, err
	}

	data := EncodeDocument(ent.Doc, req.Body, format)

	err = e.fs.MkdirAll(filepath.Dir(full), 0o755)
	if err != nil {
		return nil, e.fail(ctx, "save", CodeWriteFailed, rel, ent.Type, err)
	}

	err = e.fs.WriteFileAtomic(full, data, 0o644)
	if err != nil {
		return nil, e.fail(ctx, "save", CodeWriteFailed, rel, ent.Type, err)
	}

	e.metrics.RecordSave(ctx, string(ent.Type))
	e.log.Debug("vault: entity saved", "id", ent.ID(), "type", ent.Type, "path", rel, "bytes", len(data))

	return &SaveResult{Entity: ent, Body: req.Body, Path: rel}, nil
}

// Backlinks returns the backlinks of id from a snapshot. Unlike
// [Engine.LoadEntity] it reports index failures.
func (e *Engine) Backlinks(ctx context.Context, id string, force bool) ([]backlinks.Backlink, error) {
	if e.index == nil {
		return []backlinks.Backlink{}, nil
	}

	snap, err := e.index.LoadVaultIndex(ctx, force)
	if err != nil {
		return nil, fmt.Errorf("load vault index: %w", err)
	}

	return backlinks.Compute(id, snap, e.backlinks), nil
}

// prepare resolves the type, normalizes an NPC ledger and validates.
func (e *Engine) prepare(ctx context.Context, op string, doc *docval.Map, rel string) (entity.Entity, error) {
	declared, _ := doc.GetString(entity.KeyType)

	res, err := e.registry.Resolve(declared, rel)
	if err != nil {
		code := CodeUnknownType
		if errors.Is(err, entity.ErrSchemaMissing) {
			code = CodeSchemaMissing
		}

		return entity.Entity{}, e.fail(ctx, op, code, rel, res.Type, err)
	}

	if res.Type == entity.NPC {
		doc, err = e.ledger.Normalize(ctx, doc)
		if err != nil {
			return entity.Entity{}, e.fail(ctx, op, CodeNormalizationFailed, rel, res.Type, err)
		}
	}

	ent, err := res.Schema.Validate(doc, rel)
	if err != nil {
		return entity.Entity{}, e.fail(ctx, op, CodeValidationFailed, rel, res.Type, err)
	}

	return ent, nil
}

func (e *Engine) backlinksFor(ctx context.Context, id string) []backlinks.Backlink {
	links, err := e.Backlinks(ctx, id, false)
	if err != nil {
		e.metrics.RecordDegraded(ctx)
		e.log.Warn("vault: backlinks unavailable", "id", id, "err", err)

		return []backlinks.Backlink{}
	}

	return links
}

func (e *Engine) fail(ctx context.Context, op string, code Code, path string, t entity.Type, err error) error {
	vErr := &Error{Code: code, Path: path, EntityType: t, Err: err}

	var valErr *entity.ValidationError
	if errors.As(err, &valErr) {
		vErr.Issues = valErr.Issues
	}

	e.metrics.RecordError(ctx, op, string(code))
	e.log.Debug("vault: "+op+" failed", "code", code, "path", path, "err", err)

	return vErr
}

var errEscapesRoot = errors.New("path escapes the vault root")

// locate returns the filesystem path to use and the slash-separated path
// reported to callers, relative to the root when the path lies inside it.
func (e *Engine) locate(path string) (string, string, error) {
	if strings.TrimSpace(path) == "" {
		return "", "", errors.New("path is empty")
	}

	clean := filepath.Clean(path)

	if filepath.IsAbs(clean) {
		if e.root != "" {
			if rel, err := filepath.Rel(e.root, clean); err == nil && !escapes(rel) {
				return clean, filepath.ToSlash(rel), nil
			}
		}

		return clean, filepath.ToSlash(clean), nil
	}

	if escapes(clean) {
		return "", "", fmt.Errorf("%w: %s", errEscapesRoot, path)
	}

	return filepath.Join(e.root, clean), filepath.ToSlash(clean), nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

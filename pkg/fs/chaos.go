package fs

import (
	"errors"
	"io/fs"
	"math/rand/v2"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
)

// ChaosConfig controls fault injection probabilities.
// Each rate is a float64 from 0.0 (never) to 1.0 (always).
//
// The zero value disables all fault injection.
type ChaosConfig struct {
	// ReadFailRate controls how often ReadFile fails with EACCES or EIO.
	ReadFailRate float64

	// WriteFailRate controls how often WriteFileAtomic fails before touching
	// the target. Returns EIO, ENOSPC, EDQUOT or EROFS. The old content is
	// always kept, matching an atomic rename that never happened.
	WriteFailRate float64

	// ReadDirFailRate controls how often ReadDir fails with EACCES or EIO.
	ReadDirFailRate float64

	// MkdirAllFailRate controls how often MkdirAll fails with EACCES, ENOSPC
	// or EROFS.
	MkdirAllFailRate float64

	// StatFailRate controls how often Stat and Exists fail with EACCES or EIO.
	StatFailRate float64
}

// ChaosMode controls how [Chaos] behaves.
type ChaosMode uint8

const (
	// ChaosModeActive enables fault-rate injection.
	// This is the default mode for a new [Chaos].
	ChaosModeActive ChaosMode = iota

	// ChaosModeNoOp passes every operation directly to the underlying FS.
	ChaosModeNoOp
)

// ChaosStats contains counts of injected faults.
type ChaosStats struct {
	ReadFails     int64
	WriteFails    int64
	ReadDirFails  int64
	MkdirAllFails int64
	StatFails     int64
}

// Total returns the sum of all counts.
func (s ChaosStats) Total() int64 {
	return s.ReadFails + s.WriteFails + s.ReadDirFails + s.MkdirAllFails + s.StatFails
}

// chaosError marks an error as intentionally injected by [Chaos].
//
// It wraps an [*fs.PathError] carrying a real [syscall.Errno], so
// os.IsPermission and errors.Is keep working through Unwrap.
type chaosError struct {
	Err error
}

func (e *chaosError) Error() string {
	return "chaos: " + e.Err.Error()
}

func (e *chaosError) Unwrap() error {
	return e.Err
}

// IsChaosErr reports whether err (or any wrapped error) was injected by [Chaos].
func IsChaosErr(err error) bool {
	var injected *chaosError

	return errors.As(err, &injected)
}

// Chaos wraps an [FS] and injects random failures for testing.
//
// Each call independently decides whether to inject; there is no sticky
// per-path fault state. Chaos never injects ENOENT, so any os.IsNotExist
// result comes from the wrapped FS.
type Chaos struct {
	fs     FS
	rng    *rand.Rand
	config ChaosConfig
	mode   atomic.Uint32

	rngMu sync.Mutex

	readFails     atomic.Int64
	writeFails    atomic.Int64
	readDirFails  atomic.Int64
	mkdirAllFails atomic.Int64
	statFails     atomic.Int64
}

// NewChaos creates a new [Chaos] filesystem wrapping the given [FS].
// The seed controls random fault injection for reproducibility.
// Panics if underlying is nil.
func NewChaos(underlying FS, seed int64, config *ChaosConfig) *Chaos {
	if underlying == nil {
		panic("underlying fs is nil")
	}

	return &Chaos{
		fs:     underlying,
		rng:    rand.New(rand.NewPCG(uint64(seed), uint64(seed))),
		config: *config,
	}
}

// SetMode updates [Chaos] behavior. Safe to call concurrently with
// filesystem operations.
func (c *Chaos) SetMode(m ChaosMode) { c.mode.Store(uint32(m)) }

// Stats returns the current fault injection counts.
func (c *Chaos) Stats() ChaosStats {
	return ChaosStats{
		ReadFails:     c.readFails.Load(),
		WriteFails:    c.writeFails.Load(),
		ReadDirFails:  c.readDirFails.Load(),
		MkdirAllFails: c.mkdirAllFails.Load(),
		StatFails:     c.statFails.Load(),
	}
}

// ReadFile reads the file with fault injection.
func (c *Chaos) ReadFile(path string) ([]byte, error) {
	if c.should(c.config.ReadFailRate) {
		c.readFails.Add(1)

		return nil, pathError("open", path, c.pickRandom(syscall.EACCES, syscall.EIO))
	}

	return c.fs.ReadFile(path)
}

// WriteFileAtomic writes the file with fault injection.
func (c *Chaos) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	if c.should(c.config.WriteFailRate) {
		c.writeFails.Add(1)

		return pathError("write", path, c.pickRandom(syscall.EIO, syscall.ENOSPC, syscall.EDQUOT, syscall.EROFS))
	}

	return c.fs.WriteFileAtomic(path, data, perm)
}

// ReadDir lists the directory with fault injection.
func (c *Chaos) ReadDir(path string) ([]os.DirEntry, error) {
	if c.should(c.config.ReadDirFailRate) {
		c.readDirFails.Add(1)

		return nil, pathError("readdir", path, c.pickRandom(syscall.EACCES, syscall.EIO))
	}

	return c.fs.ReadDir(path)
}

// MkdirAll creates directories with fault injection.
func (c *Chaos) MkdirAll(path string, perm os.FileMode) error {
	if c.should(c.config.MkdirAllFailRate) {
		c.mkdirAllFails.Add(1)

		return pathError("mkdir", path, c.pickRandom(syscall.EACCES, syscall.ENOSPC, syscall.EROFS))
	}

	return c.fs.MkdirAll(path, perm)
}

// Stat returns file info with fault injection.
func (c *Chaos) Stat(path string) (os.FileInfo, error) {
	if c.should(c.config.StatFailRate) {
		c.statFails.Add(1)

		return nil, pathError("stat", path, c.pickRandom(syscall.EACCES, syscall.EIO))
	}

	return c.fs.Stat(path)
}

// Exists reports whether path exists, with the same faults as Stat.
func (c *Chaos) Exists(path string) (bool, error) {
	if c.should(c.config.StatFailRate) {
		c.statFails.Add(1)

		return false, pathError("stat", path, c.pickRandom(syscall.EACCES, syscall.EIO))
	}

	return c.fs.Exists(path)
}

// should returns true with the given probability when chaos is injecting.
func (c *Chaos) should(rate float64) bool {
	if ChaosMode(c.mode.Load()) != ChaosModeActive || rate <= 0 {
		return false
	}

	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return c.rng.Float64() < rate
}

func (c *Chaos) pickRandom(errs ...syscall.Errno) syscall.Errno {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()

	return errs[c.rng.IntN(len(errs))]
}

// pathError creates an injected [*fs.PathError] with the given operation,
// path and errno.
func pathError(op, path string, errno syscall.Errno) error {
	return &chaosError{Err: &fs.PathError{Op: op, Path: path, Err: errno}}
}

var _ FS = (*Chaos)(nil)

package config

import (
	"log/slog"
	"sync"

	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/internal/paths"
	"github.com/thoreinstein/appcfg/pkg/fileutil"
)

// Options controls where a Store reads from. Empty fields fall back to
// paths.ConfigFile and paths.ExampleFile.
type Options struct {
	Path        string
	ExamplePath string
}

func (o Options) withDefaults() Options {
	if o.Path == "" {
		o.Path = paths.ConfigFile()
	}
	if o.ExamplePath == "" {
		o.ExamplePath = paths.ExampleFile()
	}
	return o
}

// Store holds the merged configuration document and persists it on demand.
// Mutations of the document are never saved automatically.
type Store struct {
	mu       sync.Mutex
	path     string
	doc      *Document
	result   *Result
	warnings []Warning
}

// Open loads (or creates from the example template) the configuration file
// and applies defaults. It never fails; see Warnings for problems found.
func Open(opts Options) *Store {
	opts = opts.withDefaults()

	res := LoadOrCreate(opts.Path, opts.ExamplePath)
	doc, warnings := ApplyDefaults(res.Raw)
	for _, w := range warnings {
		slog.Warn("config value repaired", "field", w.Key, "reason", w.Message)
	}

	return &Store{
		path:     opts.Path,
		doc:      doc,
		result:   res,
		warnings: append(append([]Warning{}, res.Warnings...), warnings...),
	}
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Init opens the process-wide store. Only the first call's options are used;
// later calls return the same store.
func Init(opts Options) *Store {
	defaultOnce.Do(func() {
		defaultStore = Open(opts)
	})
	return defaultStore
}

// Current returns the process-wide store, opening it with default options
// if Init has not run.
func Current() *Store {
	return Init(Options{})
}

// Path returns the configuration file location.
func (s *Store) Path() string {
	return s.path
}

// Document returns the live document. Callers may modify it and then call
// Save; concurrent modification must be coordinated by the caller or done
// through Update.
func (s *Store) Document() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc
}

// Snapshot returns a deep copy of the document.
func (s *Store) Snapshot() *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Update runs fn with the document while holding the store lock.
func (s *Store) Update(fn func(*Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.doc)
}

// Warnings returns the non-fatal problems found while opening the store.
func (s *Store) Warnings() []Warning {
	return append([]Warning(nil), s.warnings...)
}

// Loaded returns details of the initial file read.
func (s *Store) Loaded() Result {
	return *s.result
}

// Save writes the full document to the configuration file through a temp
// file in the same directory followed by an atomic rename.
func (s *Store) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fileutil.AtomicWriteTOML(s.path, s.doc.Map(), paths.FilePerm); err != nil {
		return errors.Wrapf(err, "saving config to %s", s.path)
	}
	return nil
}

// SaveConfig is Save for callers that only need a success flag. Failures
// are logged.
func (s *Store) SaveConfig() bool {
	if err := s.Save(); err != nil {
		slog.Error("failed to save config", "path", s.path, "error", err)
		return false
	}
	return true
}

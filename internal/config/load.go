package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/internal/logging"
	"github.com/thoreinstein/appcfg/internal/paths"
	"github.com/thoreinstein/appcfg/pkg/fileutil"
)

// Result is the outcome of reading a configuration file. Loading never
// fails; problems are logged and collected in Warnings.
type Result struct {
	// Path is the file that was read.
	Path string
	// Raw is the decoded top-level table, empty when nothing could be read.
	Raw map[string]any
	// Exists reports whether the file was present.
	Exists bool
	// Created reports whether the file was copied from the example template.
	Created bool
	// Invalid reports whether the file exists but could not be read or
	// decoded, so Raw is empty in its place.
	Invalid bool
	// Recovered reports whether decoding only succeeded after stripping a
	// byte order mark or repairing invalid UTF-8.
	Recovered bool
	Warnings  []Warning
}

// Load reads and decodes the TOML file at path.
//
// A missing file yields an empty table. A file that fails to decode is
// retried once after BOM-tolerant UTF-8 decoding; if that also fails the
// error is logged and an empty table is returned.
func Load(path string) *Result {
	res := &Result{Path: path, Raw: map[string]any{}}

	data, ok, err := fileutil.ReadOptional(path)
	if err != nil {
		slog.Error("failed to read config", "path", path, "error", err.Error())
		res.Exists = true
		res.Invalid = true
		res.Warnings = append(res.Warnings, Warning{Message: "reading config: " + err.Error()})
		return res
	}
	if !ok {
		return res
	}
	res.Exists = true

	raw, err := decode(data)
	if err == nil {
		res.Raw = raw
		return res
	}
	slog.Warn("load config failed (first attempt)", "path", path, "error", err.Error())

	raw, err = decode(NormalizeEncoding(data))
	if err != nil {
		slog.Error("failed to load config", "path", path, "error", err.Error())
		res.Invalid = true
		res.Warnings = append(res.Warnings, Warning{Message: "decoding config: " + err.Error()})
		return res
	}

	res.Raw = raw
	res.Recovered = true
	res.Warnings = append(res.Warnings, Warning{Message: "config decoded after stripping BOM or invalid UTF-8"})
	return res
}

// LoadOrCreate ensures the parent directory of path exists, copies the
// example template to path when path is absent, then delegates to Load.
//
// Failing to create the directory is logged at critical level and yields an
// empty table. Failing to copy the template is logged and loading proceeds
// with whatever is on disk.
func LoadOrCreate(path, examplePath string) *Result {
	if err := paths.EnsureDir(filepath.Dir(path), paths.DirPerm); err != nil {
		slog.Default().Log(context.Background(), logging.LevelCritical,
			"config initialization failed", "path", path, "error", err.Error())
		return &Result{
			Path:     path,
			Raw:      map[string]any{},
			Warnings: []Warning{{Message: "creating config directory: " + err.Error()}},
		}
	}

	var created bool
	var warnings []Warning
	if !paths.Exists(path) && examplePath != "" && paths.Exists(examplePath) {
		slog.Info("creating config from example file", "example", examplePath, "path", path)
		if err := fileutil.AtomicCopyFile(examplePath, path, paths.FilePerm); err != nil {
			slog.Error("failed to create config file", "path", path, "error", err.Error())
			warnings = append(warnings, Warning{Message: "creating config from example: " + err.Error()})
		} else {
			created = true
		}
	}

	res := Load(path)
	res.Created = created
	res.Warnings = append(warnings, res.Warnings...)
	return res
}

// decode parses TOML into a top-level table.
func decode(data []byte) (map[string]any, error) {
	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "parsing TOML")
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// NormalizeEncoding strips a UTF-8 or UTF-16 byte order mark, transcoding
// UTF-16 to UTF-8, and replaces invalid UTF-8 sequences with U+FFFD.
func NormalizeEncoding(data []byte) []byte {
	// BOMOverride passes UTF-8 through untouched once it has seen a UTF-8
	// BOM, so the UTF-8 decoder runs again on its output.
	dec := transform.Chain(unicode.BOMOverride(transform.Nop), unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(dec, data)
	if err != nil {
		return data
	}
	return out
}

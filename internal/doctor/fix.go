package doctor

import (
	"fmt"
	"os"

	"github.com/thoreinstein/appcfg/internal/config"
	"github.com/thoreinstein/appcfg/internal/errors"
	"github.com/thoreinstein/appcfg/pkg/fileutil"
)

// Fixer is an optional interface that checks can implement to support auto-remediation.
// CanFix and Fix are only meaningful after Run.
type Fixer interface {
	CanFix() bool
	Fix() []FixResult
}

// FixResult describes the outcome of an attempted fix operation.
type FixResult struct {
	// Path is the file that was targeted for fixing.
	Path string `json:"path"`

	Fixed       bool   `json:"fixed"`
	Description string `json:"description"`

	Error error `json:"-"`
}

// CanFix reports whether the last Run found an encoding problem.
func (c *EncodingCheck) CanFix() bool {
	return c.fixable
}

// Fix rewrites the file as UTF-8 without a byte order mark, keeping its
// permissions.
func (c *EncodingCheck) Fix() []FixResult {
	result := FixResult{Path: c.path}

	info, err := os.Stat(c.path)
	if err != nil {
		result.Description = "cannot stat file"
		result.Error = errors.Wrapf(err, "stat %s", c.path)
		return []FixResult{result}
	}
	data, err := fileutil.ReadFileWithLimit(c.path)
	if err != nil {
		result.Description = "cannot read file"
		result.Error = errors.Wrapf(err, "reading %s", c.path)
		return []FixResult{result}
	}

	if err := fileutil.AtomicWriteFile(c.path, config.NormalizeEncoding(data), info.Mode().Perm()); err != nil {
		result.Description = fmt.Sprintf("failed to rewrite: %v", err)
		result.Error = errors.Wrapf(err, "rewriting %s", c.path)
		return []FixResult{result}
	}

	c.fixable = false
	result.Fixed = true
	result.Description = fmt.Sprintf("re-encoded as UTF-8 (was: %v)", c.problems)
	return []FixResult{result}
}

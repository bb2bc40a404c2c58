package doctor

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"slices"
	"strings"
	"unicode/utf8"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/thoreinstein/appcfg/internal/config"
	"github.com/thoreinstein/appcfg/internal/logging"
	"github.com/thoreinstein/appcfg/internal/paths"
	"github.com/thoreinstein/appcfg/pkg/fileutil"
)

// Check categories.
const (
	CategoryConfig     = "config"
	CategoryFilesystem = "filesystem"
)

// DefaultChecks returns every configuration check in reporting order.
func DefaultChecks(path, examplePath string) []Check {
	return []Check{
		NewFileCheck(path, examplePath),
		NewEncodingCheck(path),
		NewSyntaxCheck(path),
		NewSectionsCheck(path),
		NewValuesCheck(path),
		NewPermissionCheck(path),
	}
}

// snapshot is a single read of the configuration file.
type snapshot struct {
	path    string
	data    []byte
	exists  bool
	readErr error
}

func readSnapshot(path string) snapshot {
	data, ok, err := fileutil.ReadOptional(path)
	return snapshot{path: path, data: data, exists: ok || err != nil, readErr: err}
}

// parse decodes the file the way config.Load does, including the retry
// after encoding repair.
func (s snapshot) parse() (raw map[string]any, recovered bool, err error) {
	if err = toml.Unmarshal(s.data, &raw); err == nil {
		return orEmpty(raw), false, nil
	}
	var retry map[string]any
	if toml.Unmarshal(config.NormalizeEncoding(s.data), &retry) == nil {
		return orEmpty(retry), true, nil
	}
	return nil, false, err
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

// skipped reports a precondition that keeps a check from running. The
// second return is false when the check can proceed.
func skipped(name, category string, s snapshot) (*CheckResult, bool) {
	switch {
	case s.readErr != nil:
		return &CheckResult{
			Name:     name,
			Category: category,
			Status:   SeverityError,
			Message:  fmt.Sprintf("cannot read %s: %v", s.path, s.readErr),
		}, true
	case !s.exists:
		return &CheckResult{
			Name:     name,
			Category: category,
			Status:   SeverityInfo,
			Message:  "skipped: config file not found",
		}, true
	}
	return nil, false
}

// FileCheck verifies the configuration file (or its example template) exists.
type FileCheck struct {
	path        string
	examplePath string
}

var _ Check = (*FileCheck)(nil)

func NewFileCheck(path, examplePath string) *FileCheck {
	return &FileCheck{path: path, examplePath: examplePath}
}

func (c *FileCheck) Name() string     { return "config-file" }
func (c *FileCheck) Category() string { return CategoryFilesystem }

func (c *FileCheck) Run() *CheckResult {
	result := &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Details:  map[string]any{"path": c.path},
	}

	info, err := os.Stat(c.path)
	switch {
	case err == nil && info.IsDir():
		result.Status = SeverityError
		result.Message = "config path is a directory"
	case err == nil:
		result.Status = SeverityPass
		result.Message = "found " + c.path
		result.Details["size"] = info.Size()
	case !errors.Is(err, fs.ErrNotExist):
		result.Status = SeverityError
		result.Message = fmt.Sprintf("cannot stat config file: %v", err)
	case c.examplePath != "" && paths.Exists(c.examplePath):
		result.Status = SeverityInfo
		result.Message = "config file not found; it will be created from " + c.examplePath
		result.Details["example"] = c.examplePath
		result.FixHint = "Run: appcfg init"
	default:
		result.Status = SeverityWarning
		result.Message = "no config file or example template; built-in defaults will be used"
		result.FixHint = "Run: appcfg init"
	}
	return result
}

// EncodingCheck reports byte order marks, UTF-16 content and invalid UTF-8.
// It can rewrite the file as plain UTF-8.
type EncodingCheck struct {
	path     string
	fixable  bool
	problems []string
}

var (
	_ Check = (*EncodingCheck)(nil)
	_ Fixer = (*EncodingCheck)(nil)
)

func NewEncodingCheck(path string) *EncodingCheck {
	return &EncodingCheck{path: path}
}

func (c *EncodingCheck) Name() string     { return "config-encoding" }
func (c *EncodingCheck) Category() string { return CategoryConfig }

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// encodingProblems lists what NormalizeEncoding would change in data.
func encodingProblems(data []byte) []string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		problems := []string{"UTF-8 byte order mark"}
		if !utf8.Valid(data[len(bomUTF8):]) {
			problems = append(problems, "invalid UTF-8")
		}
		return problems
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		return []string{"UTF-16 encoding"}
	case !utf8.Valid(data):
		return []string{"invalid UTF-8"}
	}
	return nil
}

func (c *EncodingCheck) Run() *CheckResult {
	c.fixable, c.problems = false, nil

	s := readSnapshot(c.path)
	if r, skip := skipped(c.Name(), c.Category(), s); skip {
		return r
	}

	c.problems = encodingProblems(s.data)
	if len(c.problems) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  "UTF-8 without byte order mark",
		}
	}

	c.fixable = true
	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityWarning,
		Message:  "file has " + strings.Join(c.problems, " and "),
		Details:  map[string]any{"problems": c.problems},
		Fixable:  true,
		FixHint:  "Run: appcfg doctor --fix",
	}
}

// SyntaxCheck parses the file as TOML and reports the first error position.
type SyntaxCheck struct {
	path string
}

var _ Check = (*SyntaxCheck)(nil)

func NewSyntaxCheck(path string) *SyntaxCheck {
	return &SyntaxCheck{path: path}
}

func (c *SyntaxCheck) Name() string     { return "config-syntax" }
func (c *SyntaxCheck) Category() string { return CategoryConfig }

func (c *SyntaxCheck) Run() *CheckResult {
	s := readSnapshot(c.path)
	if r, skip := skipped(c.Name(), c.Category(), s); skip {
		return r
	}

	result := &CheckResult{Name: c.Name(), Category: c.Category()}
	if len(bytes.TrimSpace(s.data)) == 0 {
		result.Status = SeverityPass
		result.Message = "empty file"
		return result
	}

	_, recovered, err := s.parse()
	switch {
	case err != nil:
		result.Status = SeverityError
		result.Message = formatTOMLError(err) + "; the file will be ignored"
		result.Details = tomlErrorDetails(err)
		result.FixHint = "Run: appcfg config edit"
	case recovered:
		result.Status = SeverityWarning
		result.Message = "valid TOML only after encoding repair"
		result.FixHint = "Run: appcfg doctor --fix"
	default:
		result.Status = SeverityPass
		result.Message = "valid TOML"
	}
	return result
}

// formatTOMLError extracts position information from TOML decode errors.
func formatTOMLError(err error) string {
	var decodeErr *toml.DecodeError
	if errors.As(err, &decodeErr) {
		row, col := decodeErr.Position()
		return fmt.Sprintf("TOML syntax error at line %d, column %d: %s", row, col, decodeErr.Error())
	}
	return fmt.Sprintf("TOML error: %v", err)
}

func tomlErrorDetails(err error) map[string]any {
	var decodeErr *toml.DecodeError
	if !errors.As(err, &decodeErr) {
		return nil
	}
	row, col := decodeErr.Position()
	details := map[string]any{"line": row, "column": col}
	if key := decodeErr.Key(); len(key) > 0 {
		details["key"] = strings.Join(key, ".")
	}
	return details
}

// SectionsCheck verifies the required top-level keys are present with the
// right shape.
type SectionsCheck struct {
	path string
}

var _ Check = (*SectionsCheck)(nil)

func NewSectionsCheck(path string) *SectionsCheck {
	return &SectionsCheck{path: path}
}

func (c *SectionsCheck) Name() string     { return "config-sections" }
func (c *SectionsCheck) Category() string { return CategoryConfig }

func (c *SectionsCheck) Run() *CheckResult {
	raw, r := parsedOrSkipped(c.Name(), c.Category(), c.path)
	if r != nil {
		return r
	}

	var missing []string
	for _, k := range config.RequiredKeys() {
		if _, ok := raw[k]; !ok {
			missing = append(missing, k)
		}
	}
	_, warnings := config.ApplyDefaults(raw)

	result := &CheckResult{Name: c.Name(), Category: c.Category()}
	switch {
	case len(warnings) > 0:
		repaired := make([]string, 0, len(warnings))
		for _, w := range warnings {
			repaired = append(repaired, w.String())
		}
		result.Status = SeverityWarning
		result.Message = fmt.Sprintf("%d required key(s) have the wrong type and will be replaced by defaults", len(warnings))
		result.Details = map[string]any{"repaired": repaired}
		result.FixHint = "Run: appcfg config edit"
	case len(missing) > 0:
		result.Status = SeverityInfo
		result.Message = fmt.Sprintf("%d required key(s) missing; defaults will be applied", len(missing))
		result.Details = map[string]any{"missing": missing}
		result.FixHint = "Run: appcfg init"
	default:
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("all %d required keys present", len(config.RequiredKeys()))
	}
	return result
}

// ValuesCheck validates the values appcfg itself interprets, such as
// log_level.
type ValuesCheck struct {
	path string
}

var _ Check = (*ValuesCheck)(nil)

func NewValuesCheck(path string) *ValuesCheck {
	return &ValuesCheck{path: path}
}

func (c *ValuesCheck) Name() string     { return "config-values" }
func (c *ValuesCheck) Category() string { return CategoryConfig }

func (c *ValuesCheck) Run() *CheckResult {
	raw, r := parsedOrSkipped(c.Name(), c.Category(), c.path)
	if r != nil {
		return r
	}

	doc, _ := config.ApplyDefaults(raw)
	errs := config.Validate(doc)
	result := &CheckResult{Name: c.Name(), Category: c.Category()}
	if len(errs) == 0 {
		result.Status = SeverityPass
		result.Message = fmt.Sprintf("log_level %q is valid", doc.LogLevel)
		return result
	}

	result.Status = SeverityWarning
	problems := make([]string, 0, len(errs))
	for _, err := range errs {
		problems = append(problems, err.Error())
		// An unknown level stops the logger from starting.
		if errors.Is(err, config.ErrInvalidLogLevel) {
			result.Status = SeverityError
			result.FixHint = "Run: appcfg config set log_level INFO"
		}
	}
	result.Message = strings.Join(problems, "; ")
	result.Details = map[string]any{"problems": problems}
	if result.FixHint == "" {
		result.FixHint = "Run: appcfg config edit"
	}
	return result
}

// parsedOrSkipped returns the decoded file, or a result explaining why the
// check cannot inspect it. Parse errors are left to SyntaxCheck.
func parsedOrSkipped(name, category, path string) (map[string]any, *CheckResult) {
	s := readSnapshot(path)
	if r, skip := skipped(name, category, s); skip {
		return nil, r
	}
	raw, _, err := s.parse()
	if err != nil {
		return nil, &CheckResult{
			Name:     name,
			Category: category,
			Status:   SeverityInfo,
			Message:  "skipped: config file is not valid TOML",
		}
	}
	return raw, nil
}

// PermissionCheck warns when a world-readable file holds secrets.
type PermissionCheck struct {
	path string
}

var _ Check = (*PermissionCheck)(nil)

func NewPermissionCheck(path string) *PermissionCheck {
	return &PermissionCheck{path: path}
}

func (c *PermissionCheck) Name() string     { return "config-permissions" }
func (c *PermissionCheck) Category() string { return CategoryFilesystem }

func (c *PermissionCheck) Run() *CheckResult {
	if runtime.GOOS == "windows" {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityInfo,
			Message:  "skipped: POSIX permissions do not apply",
		}
	}

	raw, r := parsedOrSkipped(c.Name(), c.Category(), c.path)
	if r != nil {
		return r
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityError,
			Message:  fmt.Sprintf("cannot stat config file: %v", err),
		}
	}

	mode := formatPermissions(info.Mode())
	secrets := secretKeys("", raw)
	if info.Mode().Perm()&0o004 == 0 || len(secrets) == 0 {
		return &CheckResult{
			Name:     c.Name(),
			Category: c.Category(),
			Status:   SeverityPass,
			Message:  "mode " + mode,
			Details:  map[string]any{"mode": mode},
		}
	}

	return &CheckResult{
		Name:     c.Name(),
		Category: c.Category(),
		Status:   SeverityWarning,
		Message:  fmt.Sprintf("world-readable file (mode %s) contains %d secret value(s)", mode, len(secrets)),
		Details:  map[string]any{"mode": mode, "keys": secrets},
		FixHint:  "chmod 600 " + c.path,
	}
}

// secretKeys returns the dotted keys of non-empty string values that look
// like credentials.
func secretKeys(prefix string, m map[string]any) []string {
	var keys []string
	for k, v := range m {
		dotted := k
		if prefix != "" {
			dotted = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			keys = append(keys, secretKeys(dotted, t)...)
		case string:
			if t != "" && (logging.ShouldMask(k) || logging.ContainsTokenPrefix(t)) {
				keys = append(keys, dotted)
			}
		}
	}
	slices.Sort(keys)
	return keys
}

// formatPermissions returns a human-readable permission string (e.g., "0644").
func formatPermissions(mode os.FileMode) string {
	return fmt.Sprintf("%04o", mode.Perm())
}

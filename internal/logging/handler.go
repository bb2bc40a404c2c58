package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
)

// TimeFormat is the timestamp layout of console records.
const TimeFormat = "2006-01-02 15:04:05"

// HandlerOptions configures a Handler.
type HandlerOptions struct {
	// Level is the minimum level handled. Defaults to Info.
	Level slog.Leveler
	// Root is the directory source file paths are made relative to.
	// Defaults to the module source root.
	Root string
}

// Handler implements slog.Handler for the console format
//
//	2006-01-02 15:04:05 | INFO | "./internal/config/load.go:42": config.Load - message key=value
//
// Output is colorized when the writer supports it.
type Handler struct {
	level  slog.Leveler
	root   string
	out    io.Writer
	mu     *sync.Mutex
	attrs  []slog.Attr
	groups []string

	// Colors; nil when the writer does not support them.
	timeColor *color.Color
	funcColor *color.Color
	keyColor  *color.Color
	levels    map[string]*color.Color
}

// NewHandler creates a console handler writing to out.
func NewHandler(out io.Writer, opts *HandlerOptions) *Handler {
	return newConsoleHandler(out, opts, SupportsColor(out))
}

func newConsoleHandler(out io.Writer, opts *HandlerOptions, useColor bool) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}

	h := &Handler{
		level: opts.Level,
		root:  opts.Root,
		out:   out,
		mu:    &sync.Mutex{},
	}
	if h.level == nil {
		h.level = slog.LevelInfo
	}
	if h.root == "" {
		h.root = sourceRoot()
	}

	if useColor {
		h.timeColor = enabled(color.New(color.FgGreen))
		h.funcColor = enabled(color.New(color.FgBlue))
		h.keyColor = enabled(color.New(color.FgCyan))
		h.levels = map[string]*color.Color{
			"TRACE":    enabled(color.New(color.FgCyan, color.Bold)),
			"DEBUG":    enabled(color.New(color.FgBlue, color.Bold)),
			"INFO":     enabled(color.New(color.Bold)),
			"SUCCESS":  enabled(color.New(color.FgGreen, color.Bold)),
			"WARNING":  enabled(color.New(color.FgYellow, color.Bold)),
			"ERROR":    enabled(color.New(color.FgRed, color.Bold)),
			"CRITICAL": enabled(color.New(color.BgRed, color.Bold)),
		}
	}

	return h
}

// enabled forces color on; fatih/color otherwise disables itself whenever
// stdout is not a terminal, even if our writer is.
func enabled(c *color.Color) *color.Color {
	c.EnableColor()
	return c
}

// Enabled reports whether the handler handles records at the given level.
func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle writes one formatted record.
func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder

	if !r.Time.IsZero() {
		b.WriteString(h.paint(h.timeColor, r.Time.Format(TimeFormat)))
		b.WriteString(" | ")
	}

	name := LevelName(r.Level)
	levelColor := h.levels[name]
	b.WriteString(h.paint(levelColor, name))
	b.WriteString(" | ")

	if r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		fmt.Fprintf(&b, "\"%s:%d\": %s - ",
			h.relativePath(f.File), f.Line, h.paint(h.funcColor, shortFunc(f.Function)))
	}

	b.WriteString(h.paint(levelColor, r.Message))

	// Attrs from WithAttrs already carry their group prefix.
	for _, a := range h.attrs {
		h.writeAttr(&b, a, "")
	}
	prefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		h.writeAttr(&b, a, prefix)
		return true
	})

	b.WriteByte('\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.out, b.String())
	return err
}

func (h *Handler) paint(c *color.Color, s string) string {
	if c == nil {
		return s
	}
	return c.Sprint(s)
}

func (h *Handler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

// relativePath renders file relative to the handler root with a "./"
// prefix. Files outside the root are returned unchanged.
func (h *Handler) relativePath(file string) string {
	if file == "" {
		return "?"
	}
	rel, err := filepath.Rel(h.root, file)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return file
	}
	return "./" + filepath.ToSlash(rel)
}

// shortFunc trims the import path from a fully qualified function name:
// "example.com/m/internal/config.(*Store).Save" becomes "config.(*Store).Save".
func shortFunc(fn string) string {
	if fn == "" {
		return "?"
	}
	if i := strings.LastIndex(fn, "/"); i >= 0 {
		return fn[i+1:]
	}
	return fn
}

// writeAttr renders a as " key=value", flattening groups into dotted keys
// and masking values that look like secrets.
func (h *Handler) writeAttr(b *strings.Builder, a slog.Attr, prefix string) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}

	if a.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.writeAttr(b, ga, groupPrefix)
		}
		return
	}

	key := prefix + a.Key
	value := a.Value.Any()
	if err, ok := value.(error); ok {
		value = err.Error()
	}

	if ShouldMask(a.Key) {
		value = MaskValue(fmt.Sprint(value))
	} else if s, ok := value.(string); ok && ContainsTokenPrefix(s) {
		value = MaskValue(s)
	}

	fmt.Fprintf(b, " %s=%v", h.paint(h.keyColor, key), value)
}

// WithAttrs returns a new Handler with the given attributes.
func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	newH := *h
	prefix := h.groupPrefix()
	newH.attrs = make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newH.attrs, h.attrs)
	for _, a := range attrs {
		a.Key = prefix + a.Key
		newH.attrs = append(newH.attrs, a)
	}
	return &newH
}

// WithGroup returns a new Handler with the given group name. Groups are
// rendered as dotted key prefixes.
func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	newH := *h
	newH.groups = make([]string, len(h.groups)+1)
	copy(newH.groups, h.groups)
	newH.groups[len(h.groups)] = name
	return &newH
}

// sourceRoot is the module source root: two directories above this file.
func sourceRoot() string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Dir(filepath.Dir(filepath.Dir(file)))
}

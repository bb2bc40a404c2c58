package config

import "fmt"

// Top-level keys every configuration document carries.
const (
	KeyApp            = "app"
	KeyWhisper        = "whisper"
	KeyProxy          = "proxy"
	KeyAzure          = "azure"
	KeySiliconFlow    = "siliconflow"
	KeyUI             = "ui"
	KeyLogLevel       = "log_level"
	KeyProjectVersion = "project_version"
)

// Default values for the scalar keys.
const (
	DefaultLogLevel       = "INFO"
	DefaultProjectVersion = "1.2.6"
	DefaultLanguage       = "en-US"
)

// sectionKeys lists the table-valued required keys in file order.
var sectionKeys = []string{KeyApp, KeyWhisper, KeyProxy, KeyAzure, KeySiliconFlow, KeyUI}

// RequiredKeys returns every top-level key ApplyDefaults guarantees.
func RequiredKeys() []string {
	return append(append([]string{}, sectionKeys...), KeyLogLevel, KeyProjectVersion)
}

// IsRequiredKey reports whether key is one of RequiredKeys.
func IsRequiredKey(key string) bool {
	switch key {
	case KeyApp, KeyWhisper, KeyProxy, KeyAzure, KeySiliconFlow, KeyUI, KeyLogLevel, KeyProjectVersion:
		return true
	}
	return false
}

// Section is an opaque configuration table owned by another subsystem.
type Section map[string]any

// Document is the merged in-memory configuration.
type Document struct {
	LogLevel       string
	ProjectVersion string

	App         Section
	Whisper     Section
	Proxy       Section
	Azure       Section
	SiliconFlow Section
	UI          Section

	// Extra holds top-level keys this package does not know about so that
	// saving does not drop them.
	Extra map[string]any
}

// Warning is a non-fatal problem found while loading configuration.
type Warning struct {
	Key     string `json:"key,omitempty"`
	Message string `json:"message"`
}

func (w Warning) String() string {
	if w.Key == "" {
		return w.Message
	}
	return w.Key + ": " + w.Message
}

// Defaults returns a document holding only default values.
func Defaults() *Document {
	return &Document{
		LogLevel:       DefaultLogLevel,
		ProjectVersion: DefaultProjectVersion,
		App:            Section{},
		Whisper:        Section{},
		Proxy:          Section{},
		Azure:          Section{},
		SiliconFlow:    Section{},
		UI:             defaultUI(),
		Extra:          map[string]any{},
	}
}

func defaultUI() Section {
	return Section{"hide_log": false, "language": DefaultLanguage}
}

func defaultSection(key string) Section {
	if key == KeyUI {
		return defaultUI()
	}
	return Section{}
}

// ApplyDefaults builds a Document from a raw decoded TOML table. Missing
// required keys receive their default; present keys are never overwritten.
// A required key holding a value of the wrong shape is replaced by its
// default and reported as a warning.
func ApplyDefaults(raw map[string]any) (*Document, []Warning) {
	doc := &Document{Extra: map[string]any{}}
	var warnings []Warning

	for k, v := range raw {
		if !IsRequiredKey(k) {
			doc.Extra[k] = v
		}
	}

	sections := map[string]*Section{
		KeyApp:         &doc.App,
		KeyWhisper:     &doc.Whisper,
		KeyProxy:       &doc.Proxy,
		KeyAzure:       &doc.Azure,
		KeySiliconFlow: &doc.SiliconFlow,
		KeyUI:          &doc.UI,
	}
	for _, key := range sectionKeys {
		dst := sections[key]
		v, ok := raw[key]
		if !ok {
			*dst = defaultSection(key)
			continue
		}
		table, isTable := v.(map[string]any)
		if !isTable {
			warnings = append(warnings, Warning{
				Key:     key,
				Message: fmt.Sprintf("expected a table, got %T; using default", v),
			})
			*dst = defaultSection(key)
			continue
		}
		*dst = Section(table)
	}

	doc.LogLevel, warnings = stringOrDefault(raw, KeyLogLevel, DefaultLogLevel, warnings)
	doc.ProjectVersion, warnings = stringOrDefault(raw, KeyProjectVersion, DefaultProjectVersion, warnings)

	return doc, warnings
}

func stringOrDefault(raw map[string]any, key, def string, warnings []Warning) (string, []Warning) {
	v, ok := raw[key]
	if !ok {
		return def, warnings
	}
	s, isString := v.(string)
	if !isString {
		return def, append(warnings, Warning{
			Key:     key,
			Message: fmt.Sprintf("expected a string, got %T; using %q", v, def),
		})
	}
	return s, warnings
}

// Map returns the document as a fresh TOML-ready table. Nested tables are
// copied so the result can be modified without touching the document.
func (d *Document) Map() map[string]any {
	m := make(map[string]any, len(d.Extra)+len(sectionKeys)+2)
	for k, v := range d.Extra {
		m[k] = cloneValue(v)
	}
	m[KeyApp] = cloneMap(d.App)
	m[KeyWhisper] = cloneMap(d.Whisper)
	m[KeyProxy] = cloneMap(d.Proxy)
	m[KeyAzure] = cloneMap(d.Azure)
	m[KeySiliconFlow] = cloneMap(d.SiliconFlow)
	m[KeyUI] = cloneMap(d.UI)
	m[KeyLogLevel] = d.LogLevel
	m[KeyProjectVersion] = d.ProjectVersion
	return m
}

// HideLog reports ui.hide_log, false when unset or not a bool.
func (d *Document) HideLog() bool {
	v, _ := d.UI["hide_log"].(bool)
	return v
}

// Language returns ui.language, DefaultLanguage when unset or empty.
func (d *Document) Language() string {
	if v, ok := d.UI["language"].(string); ok && v != "" {
		return v
	}
	return DefaultLanguage
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case Section:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	c := &Document{
		LogLevel:       d.LogLevel,
		ProjectVersion: d.ProjectVersion,
		App:            cloneMap(d.App),
		Whisper:        cloneMap(d.Whisper),
		Proxy:          cloneMap(d.Proxy),
		Azure:          cloneMap(d.Azure),
		SiliconFlow:    cloneMap(d.SiliconFlow),
		UI:             cloneMap(d.UI),
		Extra:          cloneMap(d.Extra),
	}
	return c
}

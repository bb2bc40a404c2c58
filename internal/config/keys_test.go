package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thoreinstein/appcfg/internal/errors"
)

func TestLookup(t *testing.T) {
	doc := Defaults()
	doc.Whisper["model"] = "base"

	tests := []struct {
		key  string
		want any
	}{
		{"log_level", "INFO"},
		{"project_version", "1.2.6"},
		{"ui.language", "en-US"},
		{"ui.hide_log", false},
		{"whisper.model", "base"},
		{"UI.Language", "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, err := Lookup(doc, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_Table(t *testing.T) {
	got, err := Lookup(Defaults(), "ui")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"hide_log": false, "language": "en-US"}, got)
}

func TestLookup_KeepsNestedKeyCase(t *testing.T) {
	doc := Defaults()
	doc.App["apiKey"] = "x"
	doc.App["Nested"] = map[string]any{"innerKey": 1}

	got, err := Lookup(doc, "app")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"apiKey": "x", "Nested": map[string]any{"innerKey": 1}}, got)

	got, err = Lookup(doc, "app.apikey")
	require.NoError(t, err)
	assert.Equal(t, "x", got)

	got, err = Lookup(doc, "app.nested")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"innerKey": 1}, got)
}

func TestValueAt(t *testing.T) {
	m := map[string]any{
		"ui":  map[string]any{"language": "en-US"},
		"app": map[string]any{"apiKey": "x", "apikey": "lower"},
		"top": "scalar",
	}

	tests := []struct {
		key    string
		want   any
		wantOK bool
	}{
		{"ui.language", "en-US", true},
		{"UI.LANGUAGE", "en-US", true},
		{"app.apiKey", "x", true},
		{"app.apikey", "lower", true},
		{"top.inner", nil, false},
		{"missing", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := ValueAt(m, tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLookup_Missing(t *testing.T) {
	_, err := Lookup(Defaults(), "whisper.model")
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrKeyNotFound))
}

func TestKeys(t *testing.T) {
	doc := Defaults()
	doc.Proxy["http"] = "http://localhost"

	keys, err := Keys(doc)
	require.NoError(t, err)

	for _, want := range []string{"app", "log_level", "proxy", "proxy.http", "ui", "ui.hide_log", "ui.language"} {
		assert.Contains(t, keys, want)
	}
	assert.IsNonDecreasing(t, keys)
}

func TestSet(t *testing.T) {
	tests := []struct {
		key   string
		value string
		want  any
	}{
		{"ui.hide_log", "true", true},
		{"ui.language", "fr-FR", "fr-FR"},
		{"whisper.threads", "4", int64(4)},
		{"whisper.temperature", "0.5", 0.5},
		{"azure.speech.region", "eastus", "eastus"},
		{"log_level", "DEBUG", "DEBUG"},
		{"project_version", "2", "2"},
		{"custom", "x", "x"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			doc := Defaults()
			require.NoError(t, Set(doc, tt.key, tt.value))

			got, err := Lookup(doc, tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSet_PreservesOtherKeys(t *testing.T) {
	doc := Defaults()
	doc.Whisper["model"] = "base"

	require.NoError(t, Set(doc, "whisper.threads", "2"))

	assert.Equal(t, "base", doc.Whisper["model"])
	assert.Equal(t, int64(2), doc.Whisper["threads"])
	assert.Equal(t, "en-US", doc.Language())
}

func TestSet_Errors(t *testing.T) {
	tests := []struct {
		name string
		key  string
	}{
		{"empty segment", "ui..language"},
		{"trailing dot", "ui."},
		{"through scalar", "log_level.sub"},
		{"replace section with scalar", "app"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Defaults()
			before := doc.Map()

			require.Error(t, Set(doc, tt.key, "x"))
			assert.Equal(t, before, doc.Map(), "document must be unchanged on error")
		})
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want any
	}{
		{"true", true},
		{"false", false},
		{"42", int64(42)},
		{"-7", int64(-7)},
		{"3.14", 3.14},
		{"True", "True"},
		{"en-US", "en-US"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseValue(tt.in), "ParseValue(%q)", tt.in)
	}
}

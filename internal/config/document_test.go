package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults_Empty(t *testing.T) {
	doc, warnings := ApplyDefaults(map[string]any{})

	assert.Empty(t, warnings)
	assert.Equal(t, Defaults().Map(), doc.Map())
	assert.Equal(t, "INFO", doc.LogLevel)
	assert.Equal(t, "1.2.6", doc.ProjectVersion)
	assert.Equal(t, Section{"hide_log": false, "language": "en-US"}, doc.UI)
	assert.Equal(t, Section{}, doc.App)
}

func TestApplyDefaults_NilRaw(t *testing.T) {
	doc, warnings := ApplyDefaults(nil)
	assert.Empty(t, warnings)
	assert.Equal(t, Defaults().Map(), doc.Map())
}

func TestApplyDefaults_PresentKeysUnchanged(t *testing.T) {
	tests := []struct {
		key   string
		value any
	}{
		{KeyApp, map[string]any{"name": "demo"}},
		{KeyWhisper, map[string]any{"model": "large-v3", "threads": int64(4)}},
		{KeyProxy, map[string]any{"http": "http://127.0.0.1:7890"}},
		{KeyAzure, map[string]any{"region": "eastus"}},
		{KeySiliconFlow, map[string]any{}},
		{KeyUI, map[string]any{"language": "zh-CN"}},
		{KeyLogLevel, "TRACE"},
		{KeyLogLevel, ""},
		{KeyProjectVersion, "2.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			doc, warnings := ApplyDefaults(map[string]any{tt.key: tt.value})
			require.Empty(t, warnings)

			assert.Equal(t, tt.value, doc.Map()[tt.key])

			// Every other required key got its default.
			defaults := Defaults().Map()
			for _, k := range RequiredKeys() {
				if k == tt.key {
					continue
				}
				assert.Equal(t, defaults[k], doc.Map()[k], "key %s", k)
			}
		})
	}
}

func TestApplyDefaults_OnlyLogLevel(t *testing.T) {
	raw, err := decode([]byte(`log_level = "DEBUG"`))
	require.NoError(t, err)

	doc, warnings := ApplyDefaults(raw)
	require.Empty(t, warnings)

	assert.Equal(t, "DEBUG", doc.LogLevel)
	assert.Equal(t, DefaultProjectVersion, doc.ProjectVersion)
	for _, s := range []Section{doc.App, doc.Whisper, doc.Proxy, doc.Azure, doc.SiliconFlow} {
		assert.NotNil(t, s)
		assert.Empty(t, s)
	}
	assert.False(t, doc.HideLog())
	assert.Equal(t, "en-US", doc.Language())

	m := doc.Map()
	for _, k := range RequiredKeys() {
		assert.Contains(t, m, k)
	}
}

func TestApplyDefaults_WrongShape(t *testing.T) {
	doc, warnings := ApplyDefaults(map[string]any{
		KeyApp:      "not a table",
		KeyLogLevel: int64(10),
		KeyUI:       []any{"x"},
	})

	require.Len(t, warnings, 3)
	keys := []string{warnings[0].Key, warnings[1].Key, warnings[2].Key}
	assert.ElementsMatch(t, []string{KeyApp, KeyLogLevel, KeyUI}, keys)

	assert.Equal(t, Section{}, doc.App)
	assert.Equal(t, DefaultLogLevel, doc.LogLevel)
	assert.Equal(t, defaultUI(), doc.UI)
}

func TestApplyDefaults_ExtraKeysKept(t *testing.T) {
	doc, _ := ApplyDefaults(map[string]any{
		"plugins": map[string]any{"enabled": true},
		"theme":   "dark",
	})

	assert.Equal(t, "dark", doc.Extra["theme"])
	assert.Equal(t, map[string]any{"enabled": true}, doc.Map()["plugins"])
	assert.NotContains(t, doc.Extra, KeyApp)
}

func TestDocument_MapIsACopy(t *testing.T) {
	doc := Defaults()
	doc.Whisper["model"] = "base"

	m := doc.Map()
	m[KeyWhisper].(map[string]any)["model"] = "changed"

	assert.Equal(t, "base", doc.Whisper["model"])
}

func TestDocument_Clone(t *testing.T) {
	doc := Defaults()
	doc.Azure["keys"] = []any{"a", "b"}
	doc.Extra["nested"] = map[string]any{"x": int64(1)}

	c := doc.Clone()
	c.Azure["keys"].([]any)[0] = "z"
	c.Extra["nested"].(map[string]any)["x"] = int64(2)
	c.LogLevel = "ERROR"

	assert.Equal(t, "a", doc.Azure["keys"].([]any)[0])
	assert.Equal(t, int64(1), doc.Extra["nested"].(map[string]any)["x"])
	assert.Equal(t, "INFO", doc.LogLevel)
}

func TestDocument_UIAccessors(t *testing.T) {
	tests := []struct {
		name     string
		ui       Section
		hideLog  bool
		language string
	}{
		{"defaults", defaultUI(), false, "en-US"},
		{"set", Section{"hide_log": true, "language": "ja-JP"}, true, "ja-JP"},
		{"wrong types", Section{"hide_log": "yes", "language": int64(1)}, false, "en-US"},
		{"empty language", Section{"language": ""}, false, "en-US"},
		{"nil", nil, false, "en-US"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &Document{UI: tt.ui}
			assert.Equal(t, tt.hideLog, doc.HideLog())
			assert.Equal(t, tt.language, doc.Language())
		})
	}
}

func TestWarning_String(t *testing.T) {
	assert.Equal(t, "app: bad", Warning{Key: "app", Message: "bad"}.String())
	assert.Equal(t, "bad", Warning{Message: "bad"}.String())
}

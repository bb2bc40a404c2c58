package config

import (
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/thoreinstein/appcfg/internal/errors"
)

// newViper loads the document into a fresh viper instance for dotted lookups.
// Viper matches keys case-insensitively.
func newViper(doc *Document) (*viper.Viper, error) {
	v := viper.New()
	if err := v.MergeConfigMap(doc.Map()); err != nil {
		return nil, errors.Wrap(err, "indexing config")
	}
	return v, nil
}

// Lookup returns the value at a dotted key such as "ui.language".
// It returns ErrKeyNotFound when the key is not set.
func Lookup(doc *Document, key string) (any, error) {
	v, err := newViper(doc)
	if err != nil {
		return nil, err
	}
	if !v.IsSet(key) {
		return nil, errors.Wrap(errors.ErrKeyNotFound, key)
	}
	// Viper lowercases nested map keys, so values come from the document.
	if val, ok := ValueAt(doc.Map(), key); ok {
		return val, nil
	}
	return v.Get(key), nil
}

// ValueAt walks a dotted key through nested tables. Each part matches
// exactly first, then case-insensitively. Stored key case is kept.
func ValueAt(m map[string]any, key string) (any, bool) {
	var cur any = m
	for part := range strings.SplitSeq(key, ".") {
		table, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		if cur, ok = table[part]; ok {
			continue
		}
		found := false
		for k, v := range table {
			if strings.EqualFold(k, part) {
				cur, found = v, true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return cur, true
}

// Keys returns every top-level key and every dotted leaf key, sorted.
func Keys(doc *Document) ([]string, error) {
	v, err := newViper(doc)
	if err != nil {
		return nil, err
	}

	keys := v.AllKeys()
	for k := range doc.Map() {
		keys = append(keys, strings.ToLower(k))
	}
	slices.Sort(keys)
	return slices.Compact(keys), nil
}

// Set assigns value to a dotted key, creating intermediate tables as
// needed. The value is parsed as a bool, integer or float when it looks like
// one and stored as a string otherwise; log_level and project_version are
// always strings.
func Set(doc *Document, key, value string) error {
	parts := strings.Split(key, ".")
	for _, p := range parts {
		if p == "" {
			return errors.Newf("invalid key %q", key)
		}
	}

	var parsed any = ParseValue(value)
	if len(parts) == 1 && (key == KeyLogLevel || key == KeyProjectVersion) {
		parsed = value
	}

	m := doc.Map()
	if err := setPath(m, parts, parsed); err != nil {
		return errors.Wrapf(err, "setting %s", key)
	}

	updated, warnings := ApplyDefaults(m)
	if len(warnings) > 0 {
		return errors.Newf("setting %s: %s", key, warnings[0])
	}
	*doc = *updated
	return nil
}

func setPath(m map[string]any, parts []string, value any) error {
	cur := m
	for i, p := range parts[:len(parts)-1] {
		next, ok := cur[p]
		if !ok {
			child := map[string]any{}
			cur[p] = child
			cur = child
			continue
		}
		child, isTable := next.(map[string]any)
		if !isTable {
			return errors.Newf("%s is not a table", strings.Join(parts[:i+1], "."))
		}
		cur = child
	}
	cur[parts[len(parts)-1]] = value
	return nil
}

// ParseValue interprets a command-line string as a TOML scalar.
func ParseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// DefaultIcon decorates attribute lines whose key matches no known tag.
const DefaultIcon = "●"

// IconMap resolves attribute keys to a decorating icon. Lookup is exact
// first, then the first tag (in file order) that is a substring of the key,
// so "可能的雷点" still picks up the 雷点 icon.
type IconMap struct {
	icons map[string]string
	order []string
}

func NewIconMap() *IconMap {
	return &IconMap{icons: make(map[string]string)}
}

// LoadIconMap reads a flat tag→icon JSON object, keeping the file's key
// order for the substring fallback.
func LoadIconMap(path string) (*IconMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read icon map: %w", err)
	}
	return ParseIconMap(data)
}

func ParseIconMap(data []byte) (*IconMap, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("icon map: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("icon map: expected object, got %v", tok)
	}

	m := NewIconMap()
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("icon map: %w", err)
		}
		tag, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("icon map: non-string key %v", keyTok)
		}
		var icon string
		if err := dec.Decode(&icon); err != nil {
			return nil, fmt.Errorf("icon map: value for %q: %w", tag, err)
		}
		if _, seen := m.icons[tag]; !seen {
			m.order = append(m.order, tag)
		}
		m.icons[tag] = icon
	}
	return m, nil
}

func (m *IconMap) Len() int { return len(m.order) }

func (m *IconMap) Resolve(key string) string {
	if icon, ok := m.icons[key]; ok {
		return icon
	}
	for _, tag := range m.order {
		if tag != "" && strings.Contains(key, tag) {
			return m.icons[tag]
		}
	}
	return DefaultIcon
}

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Review is one community scan record. A review can be linked to several
// novels through novel_review_map, so it carries no novel reference itself.
type Review struct {
	ID         int64   `json:"id"`
	Reviewer   string  `json:"reviewer,omitempty"`
	SourceURL  string  `json:"source_url,omitempty"`
	ReviewDate string  `json:"review_date,omitempty"`
	Category   string  `json:"category,omitempty"`
	Attributes AttrBag `json:"attributes"`
}

// RawReview is a review row as read from the catalog, attributes still in
// their stored JSON text. Parsing is deferred to render time so that one
// malformed record can be skipped without failing the whole fetch.
type RawReview struct {
	ID         int64
	Reviewer   string
	SourceURL  string
	ReviewDate string
	Category   string
	Attributes string
}

// Parse decodes the attribute text into the display form.
func (r RawReview) Parse() (Review, error) {
	rev := Review{
		ID:         r.ID,
		Reviewer:   r.Reviewer,
		SourceURL:  r.SourceURL,
		ReviewDate: r.ReviewDate,
		Category:   r.Category,
	}
	if r.Attributes == "" {
		return rev, nil
	}
	if err := json.Unmarshal([]byte(r.Attributes), &rev.Attributes); err != nil {
		return Review{}, fmt.Errorf("review %d: %w", r.ID, err)
	}
	return rev, nil
}

// AttrKind tags the shape of one attribute value.
type AttrKind int

const (
	AttrNull AttrKind = iota
	AttrString
	AttrList
	AttrOther // nested object, number, bool — kept as raw JSON
)

// AttrValue is one value out of a review's attribute bag. The source data is
// community-contributed JSON with no fixed schema, so a value may be a plain
// string, a list, or anything else; each shape is handled explicitly.
type AttrValue struct {
	Kind AttrKind
	Str  string
	List []string
	Raw  json.RawMessage
}

func (v *AttrValue) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = AttrValue{Kind: AttrNull}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*v = AttrValue{Kind: AttrString, Str: s}
		return nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return err
		}
		list := make([]string, 0, len(elems))
		for _, e := range elems {
			var s string
			if err := json.Unmarshal(e, &s); err == nil {
				list = append(list, s)
			} else {
				list = append(list, string(bytes.TrimSpace(e)))
			}
		}
		*v = AttrValue{Kind: AttrList, List: list}
		return nil
	default:
		raw := make(json.RawMessage, len(trimmed))
		copy(raw, trimmed)
		*v = AttrValue{Kind: AttrOther, Raw: raw}
		return nil
	}
}

func (v AttrValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AttrNull:
		return []byte("null"), nil
	case AttrString:
		return json.Marshal(v.Str)
	case AttrList:
		return json.Marshal(v.List)
	default:
		return v.Raw, nil
	}
}

// IsEmpty reports whether the value should be skipped when rendering
// (missing, empty string/list, zero, false).
func (v AttrValue) IsEmpty() bool {
	switch v.Kind {
	case AttrNull:
		return true
	case AttrString:
		return v.Str == ""
	case AttrList:
		return len(v.List) == 0
	default:
		switch strings.TrimSpace(string(v.Raw)) {
		case "", "0", "false", "{}", "[]":
			return true
		}
		return false
	}
}

// Text flattens the value for display: lists join with a full-width
// semicolon, anything structured falls back to its JSON text.
func (v AttrValue) Text() string {
	switch v.Kind {
	case AttrString:
		return v.Str
	case AttrList:
		return strings.Join(v.List, "；")
	case AttrOther:
		return string(v.Raw)
	}
	return ""
}

// Attr is one key/value pair of a review's attribute bag.
type Attr struct {
	Key   string
	Value AttrValue
}

// AttrBag is a review's attribute mapping with its stored key order kept
// intact. encoding/json maps lose order, so decoding walks the tokens.
type AttrBag []Attr

func (b *AttrBag) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("attributes: expected object, got %v", tok)
	}

	var out AttrBag
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("attributes: non-string key %v", keyTok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("attributes: value for %q: %w", key, err)
		}
		var val AttrValue
		if err := val.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("attributes: value for %q: %w", key, err)
		}
		out = append(out, Attr{Key: key, Value: val})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*b = out
	return nil
}

func (b AttrBag) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, a := range b {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(a.Key)
		if err != nil {
			return nil, err
		}
		v, err := a.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Get returns the value stored under key.
func (b AttrBag) Get(key string) (AttrValue, bool) {
	for _, a := range b {
		if a.Key == key {
			return a.Value, true
		}
	}
	return AttrValue{}, false
}

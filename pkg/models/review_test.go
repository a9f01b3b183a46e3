package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrBagKeepsStoredOrder(t *testing.T) {
	var bag AttrBag
	require.NoError(t, json.Unmarshal([]byte(`{"雷点": "无", "评分": "9", "亮点": "节奏"}`), &bag))

	keys := make([]string, 0, len(bag))
	for _, a := range bag {
		keys = append(keys, a.Key)
	}
	assert.Equal(t, []string{"雷点", "评分", "亮点"}, keys)
}

func TestAttrValueShapes(t *testing.T) {
	var bag AttrBag
	require.NoError(t, json.Unmarshal([]byte(
		`{"s": "文字", "l": ["a", "b"], "mixed": ["a", 3], "n": 7, "nested": {"k": "v"}, "missing": null}`,
	), &bag))

	s, _ := bag.Get("s")
	assert.Equal(t, AttrString, s.Kind)
	assert.Equal(t, "文字", s.Text())

	l, _ := bag.Get("l")
	assert.Equal(t, AttrList, l.Kind)
	assert.Equal(t, "a；b", l.Text())

	mixed, _ := bag.Get("mixed")
	assert.Equal(t, "a；3", mixed.Text(), "non-string list elements keep their JSON text")

	n, _ := bag.Get("n")
	assert.Equal(t, AttrOther, n.Kind)
	assert.Equal(t, "7", n.Text())

	nested, _ := bag.Get("nested")
	assert.Equal(t, AttrOther, nested.Kind)

	missing, _ := bag.Get("missing")
	assert.True(t, missing.IsEmpty())
}

func TestAttrValueEmptiness(t *testing.T) {
	var bag AttrBag
	require.NoError(t, json.Unmarshal([]byte(
		`{"es": "", "el": [], "zero": 0, "f": false, "ok": "x"}`,
	), &bag))

	for _, key := range []string{"es", "el", "zero", "f"} {
		v, ok := bag.Get(key)
		require.True(t, ok, key)
		assert.True(t, v.IsEmpty(), key)
	}
	ok, _ := bag.Get("ok")
	assert.False(t, ok.IsEmpty())
}

func TestRawReviewParseIsolatesBadRecords(t *testing.T) {
	good := RawReview{ID: 1, Attributes: `{"评分": "9"}`}
	rev, err := good.Parse()
	require.NoError(t, err)
	assert.Len(t, rev.Attributes, 1)

	bad := RawReview{ID: 2, Attributes: `{broken`}
	_, err = bad.Parse()
	assert.Error(t, err)

	empty := RawReview{ID: 3}
	rev, err = empty.Parse()
	require.NoError(t, err)
	assert.Empty(t, rev.Attributes)
}

func TestAttrBagRoundTripOrder(t *testing.T) {
	var bag AttrBag
	require.NoError(t, json.Unmarshal([]byte(`{"b": "2", "a": "1"}`), &bag))

	out, err := json.Marshal(bag)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"2","a":"1"}`, string(out))
}

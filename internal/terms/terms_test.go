package terms

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeGlossary(t *testing.T, files map[string]string) *Index {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return Load(dir, log.New(io.Discard, "", 0))
}

func testIndex(t *testing.T) *Index {
	return writeGlossary(t, map[string]string{
		"terms.json": `[
			{"名称": "种田", "新版解释": "慢节奏经营发展。", "老版解释": "乡土耕作生活文。"},
			{"名称": "无限流", "解释": "多世界轮回闯关。"},
			{"名称": "无敌流", "解释": "主角开局无敌。"}
		]`,
		"mines.json": `[{"名称": "圣母", "解释": "滥施同情。"}]`,
	})
}

func TestIsCategory(t *testing.T) {
	for _, cat := range Categories {
		assert.True(t, IsCategory(cat))
	}
	assert.False(t, IsCategory("扫书"))
}

func TestListSortedAndIdempotent(t *testing.T) {
	idx := testIndex(t)

	first := idx.Lookup("术语", ListQuery)
	assert.Equal(t, "📜 术语列表：\n无敌流、无限流、种田", first)
	assert.Equal(t, first, idx.Lookup("术语", ListQuery), "repeat listing must be identical")
}

func TestListEmptyCategory(t *testing.T) {
	idx := testIndex(t)
	assert.Equal(t, "暂无防御术语数据。", idx.Lookup("防御", ListQuery))
}

func TestExactMatchVersionedExplanations(t *testing.T) {
	idx := testIndex(t)

	out := idx.Lookup("术语", "种田")
	assert.Contains(t, out, "【术语】种田")
	assert.Contains(t, out, "[新版解释]\n慢节奏经营发展。")
	assert.Contains(t, out, "[老版解释]\n乡土耕作生活文。")
}

func TestExactMatchGenericExplanation(t *testing.T) {
	idx := testIndex(t)

	out := idx.Lookup("雷点", "圣母")
	assert.Equal(t, "【雷点】圣母\n\n滥施同情。", out)
}

func TestFuzzySingleHitRendersDirectly(t *testing.T) {
	idx := testIndex(t)

	out := idx.Lookup("术语", "种")
	assert.Contains(t, out, "【术语】种田")
}

func TestFuzzyMultipleHitsSuggest(t *testing.T) {
	idx := testIndex(t)

	out := idx.Lookup("术语", "无")
	assert.Equal(t, "未在术语中找到 '无'，你是否在找：\n无敌流、无限流", out)
}

func TestFuzzySuggestionsCapped(t *testing.T) {
	entries := `[`
	for i := 0; i < 15; i++ {
		if i > 0 {
			entries += ","
		}
		entries += `{"名称": "测试` + string(rune('a'+i)) + `", "解释": "x"}`
	}
	entries += `]`
	idx := writeGlossary(t, map[string]string{"terms.json": entries})

	out := idx.Lookup("术语", "测试")
	// 10 suggestions, 9 separators
	assert.Equal(t, 9, countRune(out, '、'))
}

func TestNotFound(t *testing.T) {
	idx := testIndex(t)
	assert.Equal(t, "未在术语中找到术语 '不存在'。", idx.Lookup("术语", "不存在"))
}

func TestDuplicateNameLastWins(t *testing.T) {
	idx := writeGlossary(t, map[string]string{
		"terms.json": `[
			{"名称": "种田", "解释": "旧条目。"},
			{"名称": "种田", "解释": "新条目。"}
		]`,
	})
	out := idx.Lookup("术语", "种田")
	assert.Contains(t, out, "新条目。")
	assert.NotContains(t, out, "旧条目。")
	assert.Len(t, idx.Names("术语"), 1)
}

func TestBrokenFileOnlyLosesItsCategory(t *testing.T) {
	idx := writeGlossary(t, map[string]string{
		"terms.json": `not json`,
		"mines.json": `[{"名称": "圣母", "解释": "滥施同情。"}]`,
	})
	assert.Empty(t, idx.Names("术语"))
	assert.Len(t, idx.Names("雷点"), 1)
}

func countRune(s string, r rune) int {
	n := 0
	for _, c := range s {
		if c == r {
			n++
		}
	}
	return n
}

package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "张三", "张三"},
		{"empty", "", ""},
		{"cjk brackets", "【完结】极品家丁", "极品家丁"},
		{"ascii brackets", "[转载]某书", "某书"},
		{"full-width paren", "李四（本人）", "李四"},
		{"ascii paren", "李四(转)", "李四"},
		{"word count w", "极品家丁 110w字", "极品家丁"},
		{"word count wan", "极品家丁 110万字", "极品家丁"},
		{"word count decimal", "某书 3.5w字", "某书"},
		{"trailing token", "张三 贴吧", "张三"},
		{"combined", "【扫书】李四（转载） 200w字", "李四"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CleanName(tt.in))
		})
	}
}

func TestCleanSource(t *testing.T) {
	assert.Equal(t, "某论坛", CleanSource("某论坛（已失效）"))
	assert.Equal(t, "https://example.com/t/1", CleanSource("https://example.com/t/1"))
	// only the parenthesis cut applies to sources
	assert.Equal(t, "【存档】某帖", CleanSource("【存档】某帖(转)"))
}

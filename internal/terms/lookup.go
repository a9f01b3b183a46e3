package terms

import (
	"fmt"
	"strings"

	"novelbible/pkg/models"
)

// ListQuery is the magic query that lists a whole category.
const ListQuery = "列表"

const maxSuggestions = 10

// Lookup resolves a glossary query to a single reply text. Match order is
// explicit: listing, exact name, substring (a lone hit renders directly,
// several hits become suggestions), then not-found.
func (i *Index) Lookup(category, query string) string {
	if query == ListQuery {
		names := i.Names(category)
		if len(names) == 0 {
			return fmt.Sprintf("暂无%s术语数据。", category)
		}
		return fmt.Sprintf("📜 %s列表：\n%s", category, strings.Join(names, "、"))
	}

	if entry, ok := i.Get(category, query); ok {
		return formatEntry(category, entry)
	}

	var matches []string
	for _, name := range i.Names(category) {
		if strings.Contains(name, query) {
			matches = append(matches, name)
		}
	}
	switch {
	case len(matches) == 1:
		entry, _ := i.Get(category, matches[0])
		return formatEntry(category, entry)
	case len(matches) > 1:
		if len(matches) > maxSuggestions {
			matches = matches[:maxSuggestions]
		}
		return fmt.Sprintf("未在%s中找到 '%s'，你是否在找：\n%s",
			category, query, strings.Join(matches, "、"))
	}
	return fmt.Sprintf("未在%s中找到术语 '%s'。", category, query)
}

func formatEntry(category string, e models.TermEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "【%s】%s\n", category, e.Name)

	if e.NewExplanation != "" {
		fmt.Fprintf(&b, "\n[新版解释]\n%s\n", e.NewExplanation)
	}
	if e.OldExplanation != "" {
		fmt.Fprintf(&b, "\n[老版解释]\n%s\n", e.OldExplanation)
	}
	// the generic explanation only shows when no versioned one exists
	if e.Explanation != "" && e.NewExplanation == "" && e.OldExplanation == "" {
		fmt.Fprintf(&b, "\n%s\n", e.Explanation)
	}
	return strings.TrimSpace(b.String())
}

// Package render turns a novel's scan records into size-bounded message
// batches: per-record cleanup and icon annotation, per-entry truncation,
// then packing into batches a chat channel will accept in one send.
package render

import (
	"fmt"
	"log"
	"strings"

	"novelbible/pkg/models"
)

const (
	DefaultMaxEntryLen   = 4000
	DefaultMaxBatchChars = 5000

	// NoRecordsEntry is the single placeholder batch for a novel without
	// any linked scan records.
	NoRecordsEntry = "暂无详细扫书记录。"

	truncationMarker = "\n\n...(内容过长，已截断)"
	defaultCategory  = "扫书"
	anonymousName    = "匿名"
)

// Batch is an ordered group of rendered entries delivered together. The sum
// of entry lengths stays within the batch budget, except when a single entry
// alone exceeds it and forms its own batch.
type Batch []string

type Renderer struct {
	Icons *IconMap

	// MaxEntryLen and MaxBatchChars are rune budgets; the channel counts
	// characters, not bytes.
	MaxEntryLen   int
	MaxBatchChars int

	Logger *log.Logger
}

func NewRenderer(icons *IconMap) *Renderer {
	if icons == nil {
		icons = NewIconMap()
	}
	return &Renderer{
		Icons:         icons,
		MaxEntryLen:   DefaultMaxEntryLen,
		MaxBatchChars: DefaultMaxBatchChars,
		Logger:        log.Default(),
	}
}

// Render formats a novel's scan records, newest first as fetched, into
// delivery batches. Records are display-only derivations; the inputs are
// never modified. A record with unparseable attributes is skipped.
func (r *Renderer) Render(n models.Novel, reviews []models.RawReview) []Batch {
	if len(reviews) == 0 {
		return []Batch{{NoRecordsEntry}}
	}

	cleanTitle := CleanName(n.Title)
	cleanAuthor := CleanName(n.Author)

	var (
		batches    []Batch
		current    Batch
		batchChars int
	)
	ordinal := 0
	for _, raw := range reviews {
		rev, err := raw.Parse()
		if err != nil {
			r.Logger.Printf("novel %d: skipping malformed record: %v", n.ID, err)
			continue
		}
		ordinal++

		entry := r.renderEntry(ordinal, rev, cleanTitle, cleanAuthor)
		entryChars := len([]rune(entry))

		if len(current) > 0 && batchChars+entryChars > r.MaxBatchChars {
			batches = append(batches, current)
			current = nil
			batchChars = 0
		}
		current = append(current, entry)
		batchChars += entryChars
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	if len(batches) == 0 {
		// every record was malformed
		return []Batch{{NoRecordsEntry}}
	}
	return batches
}

func (r *Renderer) renderEntry(ordinal int, rev models.Review, cleanTitle, cleanAuthor string) string {
	var b strings.Builder

	category := rev.Category
	if category == "" {
		category = defaultCategory
	}
	fmt.Fprintf(&b, "【记录 #%d】 %s\n", ordinal, category)

	reviewer := CleanName(rev.Reviewer)
	if reviewer == "" {
		reviewer = anonymousName
	}
	if rev.ReviewDate != "" {
		fmt.Fprintf(&b, "扫书人：%s | 日期：%s\n", reviewer, rev.ReviewDate)
	} else {
		fmt.Fprintf(&b, "扫书人：%s\n", reviewer)
	}

	if source := sourceOf(rev); source != "" {
		fmt.Fprintf(&b, "来源：%s\n", source)
	}

	b.WriteString(strings.Repeat("-", 20))
	b.WriteByte('\n')

	for _, attr := range rev.Attributes {
		if attr.Value.IsEmpty() {
			continue
		}
		switch attr.Key {
		case "其他说明", "来源":
			// handled separately
			continue
		}
		text := attr.Value.Text()
		if isIdentityKey(attr.Key) && restates(text, cleanTitle, cleanAuthor) {
			continue
		}
		fmt.Fprintf(&b, "%s %s：%s\n", r.Icons.Resolve(attr.Key), attr.Key, text)
	}

	if notes, ok := rev.Attributes.Get("其他说明"); ok && !notes.IsEmpty() {
		fmt.Fprintf(&b, "\n[正文描述]\n%s", strings.TrimSpace(notes.Text()))
	}

	entry := strings.TrimSpace(b.String())
	if runes := []rune(entry); len(runes) > r.MaxEntryLen {
		entry = string(runes[:r.MaxEntryLen]) + truncationMarker
		r.Logger.Printf("record #%d exceeds %d chars, truncated", ordinal, r.MaxEntryLen)
	}
	return entry
}

// sourceOf prefers the dedicated source_url column, then a 来源 attribute
// (first element when it is a list).
func sourceOf(rev models.Review) string {
	source := rev.SourceURL
	if source == "" {
		if v, ok := rev.Attributes.Get("来源"); ok && !v.IsEmpty() {
			if v.Kind == models.AttrList {
				source = v.List[0]
			} else {
				source = v.Text()
			}
		}
	}
	return CleanSource(source)
}

// isIdentityKey marks attribute keys that tend to restate the novel's own
// title or author.
func isIdentityKey(key string) bool {
	switch key {
	case "书名", "作者", "小说作者":
		return true
	}
	return false
}

func restates(text, cleanTitle, cleanAuthor string) bool {
	if cleanTitle != "" && strings.Contains(text, cleanTitle) {
		return true
	}
	return cleanAuthor != "" && strings.Contains(text, cleanAuthor)
}

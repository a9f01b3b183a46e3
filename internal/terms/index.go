// Package terms resolves reader slang: four fixed glossary categories loaded
// once at startup into sorted, immutable name indexes.
package terms

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"novelbible/pkg/models"
)

// Categories lists the four glossary partitions, in command order.
var Categories = []string{"防御", "郁闷", "雷点", "术语"}

var categoryFiles = map[string]string{
	"防御": "defenses.json",
	"郁闷": "depressions.json",
	"雷点": "mines.json",
	"术语": "terms.json",
}

func IsCategory(s string) bool {
	_, ok := categoryFiles[s]
	return ok
}

// Index is the loaded glossary. Nothing mutates it after Load.
type Index struct {
	entries map[string]map[string]models.TermEntry
	names   map[string][]string // sorted per category
}

// Load reads every category file under dir. A missing or broken file only
// loses that category; within a category, a duplicated name keeps the
// last-loaded entry.
func Load(dir string, logger *log.Logger) *Index {
	if logger == nil {
		logger = log.Default()
	}

	idx := &Index{
		entries: make(map[string]map[string]models.TermEntry),
		names:   make(map[string][]string),
	}

	total := 0
	for _, cat := range Categories {
		idx.entries[cat] = make(map[string]models.TermEntry)

		path := filepath.Join(dir, categoryFiles[cat])
		items, err := loadFile(path)
		if err != nil {
			logger.Printf("glossary %s: %v", cat, err)
			continue
		}

		for _, item := range items {
			if item.Name == "" {
				continue
			}
			idx.entries[cat][item.Name] = item
		}

		names := make([]string, 0, len(idx.entries[cat]))
		for name := range idx.entries[cat] {
			names = append(names, name)
		}
		sort.Strings(names)
		idx.names[cat] = names

		total += len(names)
	}
	logger.Printf("glossary loaded: %d terms across %d categories", total, len(Categories))
	return idx
}

func loadFile(path string) ([]models.TermEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []models.TermEntry
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// Names returns the category's term names in sorted order.
func (i *Index) Names(category string) []string {
	return i.names[category]
}

func (i *Index) Get(category, name string) (models.TermEntry, bool) {
	e, ok := i.entries[category][name]
	return e, ok
}

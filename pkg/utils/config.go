package utils

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type BotConfig struct {
	// GroupWhitelist limits which chat rooms the bot answers in.
	// Empty means every room is allowed.
	GroupWhitelist []string

	MaxRecordsPerBook int
	MaxReviewLength   int
	MaxBatchChars     int
	BatchDelay        time.Duration

	ResourceDir string
}

func LoadBotConfig() BotConfig {
	cfg := BotConfig{
		MaxRecordsPerBook: 20,
		MaxReviewLength:   4000,
		MaxBatchChars:     5000,
		BatchDelay:        500 * time.Millisecond,
		ResourceDir:       "resources",
	}

	if raw := os.Getenv("NOVELBIBLE_GROUP_WHITELIST"); raw != "" {
		for _, g := range strings.Split(raw, ",") {
			if g = strings.TrimSpace(g); g != "" {
				cfg.GroupWhitelist = append(cfg.GroupWhitelist, g)
			}
		}
	}

	cfg.MaxRecordsPerBook = envInt("NOVELBIBLE_MAX_RECORDS", cfg.MaxRecordsPerBook)
	cfg.MaxReviewLength = envInt("NOVELBIBLE_MAX_REVIEW_LEN", cfg.MaxReviewLength)
	cfg.MaxBatchChars = envInt("NOVELBIBLE_MAX_BATCH_CHARS", cfg.MaxBatchChars)

	if ms := envInt("NOVELBIBLE_BATCH_DELAY_MS", -1); ms >= 0 {
		cfg.BatchDelay = time.Duration(ms) * time.Millisecond
	}

	if dir := os.Getenv("NOVELBIBLE_RESOURCE_DIR"); dir != "" {
		cfg.ResourceDir = dir
	}

	return cfg
}

// RoomAllowed applies the whitelist. An empty room id (direct chat) is
// always allowed.
func (c BotConfig) RoomAllowed(room string) bool {
	if len(c.GroupWhitelist) == 0 || room == "" {
		return true
	}
	for _, g := range c.GroupWhitelist {
		if g == room {
			return true
		}
	}
	return false
}

func envInt(key string, def int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

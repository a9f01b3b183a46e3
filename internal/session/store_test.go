package session

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"novelbible/pkg/models"
)

func newTestStore(ttl time.Duration, capacity int) (*Store, *time.Time) {
	s := NewStore(ttl, capacity)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestGetOrCreateStartsEmpty(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10)

	state := s.GetOrCreate("u1")
	assert.Empty(t, state.Results)
	assert.Equal(t, "", state.Keyword)
	assert.Equal(t, 1, s.Len())
}

func TestSetOverwritesWholesale(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10)

	s.Set("u1", []models.SearchHit{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}, "ab")
	s.Set("u1", []models.SearchHit{{ID: 9, Title: "z"}}, "z")

	state := s.GetOrCreate("u1")
	require.Len(t, state.Results, 1)
	assert.Equal(t, int64(9), state.Results[0].ID)
	assert.Equal(t, "z", state.Keyword)
}

func TestExpiryIgnoresReads(t *testing.T) {
	s, now := newTestStore(time.Minute, 10)

	s.Set("u1", []models.SearchHit{{ID: 1, Title: "a"}}, "a")

	// reads do not extend the TTL
	*now = now.Add(40 * time.Second)
	assert.NotEmpty(t, s.GetOrCreate("u1").Results)

	*now = now.Add(30 * time.Second)
	state := s.GetOrCreate("u1")
	assert.Empty(t, state.Results, "session should have expired 70s after the write")
}

func TestSetResetsTTLClock(t *testing.T) {
	s, now := newTestStore(time.Minute, 10)

	s.Set("u1", []models.SearchHit{{ID: 1, Title: "a"}}, "a")
	*now = now.Add(50 * time.Second)
	s.Set("u1", []models.SearchHit{{ID: 2, Title: "b"}}, "b")
	*now = now.Add(50 * time.Second)

	state := s.GetOrCreate("u1")
	require.Len(t, state.Results, 1)
	assert.Equal(t, int64(2), state.Results[0].ID)
}

func TestCapacityEvictsLRU(t *testing.T) {
	s, _ := newTestStore(time.Minute, 3)

	for i := 1; i <= 3; i++ {
		s.Set(fmt.Sprintf("u%d", i), []models.SearchHit{{ID: int64(i)}}, "q")
	}
	// touch u1 so u2 becomes least recently used
	s.GetOrCreate("u1")

	s.Set("u4", []models.SearchHit{{ID: 4}}, "q")

	assert.NotEmpty(t, s.GetOrCreate("u1").Results)
	assert.Empty(t, s.GetOrCreate("u2").Results, "u2 should have been evicted")
	assert.NotEmpty(t, s.GetOrCreate("u3").Results)
	assert.NotEmpty(t, s.GetOrCreate("u4").Results)
}

func TestEvictionPrefersExpired(t *testing.T) {
	s, now := newTestStore(time.Minute, 2)

	s.Set("old", []models.SearchHit{{ID: 1}}, "q")
	*now = now.Add(2 * time.Minute) // "old" expires
	s.Set("live", []models.SearchHit{{ID: 2}}, "q")

	s.Set("new", []models.SearchHit{{ID: 3}}, "q")

	assert.NotEmpty(t, s.GetOrCreate("live").Results, "live entry must survive over an expired one")
	assert.NotEmpty(t, s.GetOrCreate("new").Results)
}

func TestSweepDropsExpired(t *testing.T) {
	s, now := newTestStore(time.Minute, 10)

	s.Set("u1", []models.SearchHit{{ID: 1}}, "q")
	s.Set("u2", []models.SearchHit{{ID: 2}}, "q")
	*now = now.Add(2 * time.Minute)
	s.Set("u3", []models.SearchHit{{ID: 3}}, "q")

	s.Sweep()
	assert.Equal(t, 1, s.Len())
}

func TestUsersDoNotShareState(t *testing.T) {
	s, _ := newTestStore(time.Minute, 10)

	s.Set("u1", []models.SearchHit{{ID: 1, Title: "a"}}, "a")
	assert.Empty(t, s.GetOrCreate("u2").Results)
}

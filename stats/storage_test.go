package stats

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newTestStorage(t *testing.T, dir string, c *clock) *Storage {
	t.Helper()
	s, err := newStorage(dir, zap.NewNop(), c.Now)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Shutdown() })
	return s
}

func TestStorage_RecordAnalysis(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	s := newTestStorage(t, t.TempDir(), c)

	s.RecordAnalysis("url", false)
	s.RecordAnalysis("url", true)
	s.RecordAnalysis("text", false)

	sum := s.GetCurrentStats()
	assert.Equal(t, "2026-10", sum.Month)
	assert.Equal(t, 3, sum.Analyses)
	assert.Equal(t, 1, sum.Failures)
	assert.Equal(t, map[string]int{"url": 2, "text": 1}, sum.ByInputType)
	assert.Equal(t, c.Now(), sum.LastUpdated)
}

func TestStorage_Consume(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2026, 10, 31, 23, 0, 0, 0, time.UTC)}
	s := newTestStorage(t, t.TempDir(), c)

	for i := 1; i <= 2; i++ {
		used, ok := s.Consume("10.0.0.1", 2)
		assert.True(t, ok)
		assert.Equal(t, i, used)
	}
	used, ok := s.Consume("10.0.0.1", 2)
	assert.False(t, ok)
	assert.Equal(t, 2, used)

	_, ok = s.Consume("10.0.0.2", 2)
	assert.True(t, ok)

	sum := s.GetCurrentStats()
	assert.Equal(t, 2, sum.UniqueClients)
	assert.Equal(t, 1, sum.QuotaRejected)

	// a new month starts from zero
	c.Set(time.Date(2026, 11, 1, 0, 0, 1, 0, time.UTC))
	assert.Equal(t, 0, s.ClientUsage("10.0.0.1"))
	_, ok = s.Consume("10.0.0.1", 2)
	assert.True(t, ok)

	// no limit never refuses
	for i := 0; i < 5; i++ {
		_, ok = s.Consume("10.0.0.3", 0)
		assert.True(t, ok)
	}
}

func TestStorage_PersistsAcrossRestart(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	c := &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}

	s, err := newStorage(dir, zap.NewNop(), c.Now)
	require.NoError(t, err)
	s.RecordAnalysis("html", false)
	_, _ = s.Consume("client", 10)
	require.NoError(t, s.Shutdown())
	require.NoError(t, s.Shutdown())

	data, err := os.ReadFile(filepath.Join(dir, "usage.json"))
	require.NoError(t, err)
	var raw map[string]MonthlyStats
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 1, raw["2026-10"].Analyses)

	reloaded := newTestStorage(t, dir, c)
	assert.Equal(t, 1, reloaded.GetCurrentStats().Analyses)
	assert.Equal(t, 1, reloaded.ClientUsage("client"))
}

func TestStorage_CorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "usage.json"), []byte("{not json"), 0644))

	_, err := NewStorage(dir, nil)
	assert.ErrorContains(t, err, "failed to load stats")
}

func TestStorage_CleanupAndMonths(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)}
	s := newTestStorage(t, t.TempDir(), c)

	for _, month := range []string{"2025-12", "2026-01", "2026-02"} {
		s.stats[month] = &MonthlyStats{Analyses: 1}
	}
	s.RecordAnalysis("url", false)

	assert.Equal(t, []string{"2026-03", "2026-02", "2026-01", "2025-12"}, s.GetAllMonths())

	s.Cleanup(2)
	assert.Equal(t, []string{"2026-03", "2026-02"}, s.GetAllMonths())

	sum, ok := s.GetMonthlyStats("2026-02")
	assert.True(t, ok)
	assert.Equal(t, 1, sum.Analyses)
	_, ok = s.GetMonthlyStats("2025-12")
	assert.False(t, ok)
}

func TestStorage_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	c := &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
	s := newTestStorage(t, t.TempDir(), c)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.RecordAnalysis("url", false)
				_, _ = s.Consume("shared", 0)
				s.GetCurrentStats()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1000, s.GetCurrentStats().Analyses)
	assert.Equal(t, 1000, s.ClientUsage("shared"))
}

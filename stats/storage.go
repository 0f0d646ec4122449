// Package stats keeps monthly usage counters on disk. The counters back the
// statistics endpoint and the per-client monthly quota.
package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MonthlyStats represents usage for a specific month
type MonthlyStats struct {
	Analyses      int            `json:"analyses"`
	Failures      int            `json:"failures"`
	ByInputType   map[string]int `json:"byInputType"`
	QuotaRejected int            `json:"quotaRejected"`
	Clients       map[string]int `json:"clients"`
	LastUpdated   time.Time      `json:"lastUpdated"`
}

// Summary is the public view of a month: client identities are reduced to
// a count.
type Summary struct {
	Month         string         `json:"month"`
	Analyses      int            `json:"analyses"`
	Failures      int            `json:"failures"`
	ByInputType   map[string]int `json:"byInputType"`
	QuotaRejected int            `json:"quotaRejected"`
	UniqueClients int            `json:"uniqueClients"`
	LastUpdated   time.Time      `json:"lastUpdated"`
}

// Storage handles persistent storage of usage statistics
type Storage struct {
	mutex       sync.RWMutex
	stats       map[string]*MonthlyStats // key: "YYYY-MM"
	filePath    string
	lastWrite   time.Time
	writeBuffer chan struct{}
	done        chan struct{}
	stopped     chan struct{}
	closeOnce   sync.Once
	logger      *zap.Logger
	now         func() time.Time
}

// NewStorage creates a storage backed by usage.json in dataDir and starts
// its background writer.
func NewStorage(dataDir string, logger *zap.Logger) (*Storage, error) {
	return newStorage(dataDir, logger, time.Now)
}

func newStorage(dataDir string, logger *zap.Logger, now func() time.Time) (*Storage, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	s := &Storage{
		stats:       make(map[string]*MonthlyStats),
		filePath:    filepath.Join(dataDir, "usage.json"),
		writeBuffer: make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
		logger:      logger,
		now:         now,
	}

	if err := s.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	go s.backgroundWriter()

	return s, nil
}

func (s *Storage) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		return err
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	return json.Unmarshal(data, &s.stats)
}

// save writes statistics to file
func (s *Storage) save() error {
	s.mutex.RLock()
	data, err := json.Marshal(s.stats)
	s.mutex.RUnlock()

	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}

	// Write to temporary file first
	tempFile := s.filePath + ".tmp"
	if err := os.WriteFile(tempFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}

	if err := os.Rename(tempFile, s.filePath); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}

func (s *Storage) backgroundWriter() {
	defer close(s.stopped)

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.writeBuffer:
		case <-ticker.C:
		case <-s.done:
			return
		}
		if err := s.save(); err != nil {
			s.logger.Error("Failed to persist usage statistics", zap.Error(err))
		}
	}
}

func (s *Storage) month() string {
	return s.now().Format("2006-01")
}

// requestWrite signals that a write to disk is needed
func (s *Storage) requestWrite() {
	select {
	case s.writeBuffer <- struct{}{}:
	default:
		// write already pending
	}
}

// current returns the month's counters, creating them. Callers hold the
// write lock.
func (s *Storage) current() *MonthlyStats {
	month := s.month()
	m, ok := s.stats[month]
	if !ok {
		m = &MonthlyStats{}
		s.stats[month] = m
	}
	if m.ByInputType == nil {
		m.ByInputType = make(map[string]int)
	}
	if m.Clients == nil {
		m.Clients = make(map[string]int)
	}
	return m
}

// touch stamps the month and requests a write at most once a minute.
// Callers hold the write lock.
func (s *Storage) touch(m *MonthlyStats) {
	now := s.now()
	m.LastUpdated = now
	if now.Sub(s.lastWrite) > time.Minute {
		s.requestWrite()
		s.lastWrite = now
	}
}

// RecordAnalysis counts one finished analysis of the given input type.
func (s *Storage) RecordAnalysis(inputType string, failed bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m := s.current()
	m.Analyses++
	m.ByInputType[inputType]++
	if failed {
		m.Failures++
	}
	s.touch(m)
}

// Consume charges one request to client for the current month. With a
// positive limit, a client that already used limit requests is refused and
// nothing is charged. It returns the client's usage after the call.
func (s *Storage) Consume(client string, limit int) (int, bool) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	m := s.current()
	used := m.Clients[client]
	if limit > 0 && used >= limit {
		m.QuotaRejected++
		s.touch(m)
		return used, false
	}
	m.Clients[client] = used + 1
	s.touch(m)
	return used + 1, true
}

// ClientUsage returns how many requests client made this month.
func (s *Storage) ClientUsage(client string) int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	if m, ok := s.stats[s.month()]; ok {
		return m.Clients[client]
	}
	return 0
}

// GetCurrentStats returns statistics for the current month
func (s *Storage) GetCurrentStats() Summary {
	month := s.month()
	sum, _ := s.GetMonthlyStats(month)
	sum.Month = month
	return sum
}

// GetMonthlyStats returns statistics for a specific month
func (s *Storage) GetMonthlyStats(yearMonth string) (Summary, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	m, ok := s.stats[yearMonth]
	if !ok {
		return Summary{Month: yearMonth, ByInputType: map[string]int{}}, false
	}
	byInput := make(map[string]int, len(m.ByInputType))
	for k, v := range m.ByInputType {
		byInput[k] = v
	}
	return Summary{
		Month:         yearMonth,
		Analyses:      m.Analyses,
		Failures:      m.Failures,
		ByInputType:   byInput,
		QuotaRejected: m.QuotaRejected,
		UniqueClients: len(m.Clients),
		LastUpdated:   m.LastUpdated,
	}, true
}

// Cleanup removes months older than retainMonths, counting the current
// month as the first.
func (s *Storage) Cleanup(retainMonths int) {
	if retainMonths < 1 {
		retainMonths = 1
	}
	keep := make(map[string]bool, retainMonths)
	now := s.now()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for i := 0; i < retainMonths; i++ {
		keep[first.AddDate(0, -i, 0).Format("2006-01")] = true
	}

	s.mutex.Lock()
	defer s.mutex.Unlock()

	for key := range s.stats {
		if !keep[key] {
			delete(s.stats, key)
		}
	}

	s.requestWrite()
	s.logger.Info("Usage statistics cleaned up", zap.Int("retained_months", retainMonths))
}

// GetAllMonths returns every month with statistics, newest first.
func (s *Storage) GetAllMonths() []string {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	months := make([]string, 0, len(s.stats))
	for month := range s.stats {
		months = append(months, month)
	}

	sort.Sort(sort.Reverse(sort.StringSlice(months)))

	return months
}

// Shutdown stops the background writer and persists the final state.
func (s *Storage) Shutdown() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		<-s.stopped
		err = s.save()
	})
	return err
}

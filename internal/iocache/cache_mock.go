package iocache

import (
	"time"

	"github.com/huangsam/healthtab/internal/contract"
	"github.com/huangsam/healthtab/schema"
	"github.com/stretchr/testify/mock"
)

// MockCacheManager is a mock implementation of CacheManager for testing.
type MockCacheManager struct {
	mock.Mock
}

var _ contract.CacheManager = &MockCacheManager{} // Compile-time check

// GetExtractStore implements the CacheManager interface.
func (m *MockCacheManager) GetExtractStore() contract.CacheStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.CacheStore)
	return store
}

// GetHistoryStore implements the CacheManager interface.
func (m *MockCacheManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockCacheStore is a mock implementation of CacheStore for testing.
type MockCacheStore struct {
	mock.Mock
}

var _ contract.CacheStore = &MockCacheStore{} // Compile-time check

// Get implements the CacheStore interface.
func (m *MockCacheStore) Get(key string) ([]byte, int, int64, error) {
	args := m.Called(key)
	data, _ := args.Get(0).([]byte)
	return data, args.Int(1), args.Get(2).(int64), args.Error(3)
}

// Set implements the CacheStore interface.
func (m *MockCacheStore) Set(key string, data []byte, version int, ts int64) error {
	args := m.Called(key, data, version, ts)
	return args.Error(0)
}

// Close implements the CacheStore interface.
func (m *MockCacheStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// GetStatus implements the CacheStore interface.
func (m *MockCacheStore) GetStatus() (schema.CacheStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.CacheStatus), args.Error(1)
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginImport implements the HistoryStore interface.
func (m *MockHistoryStore) BeginImport(sourcePath string, startTime time.Time, configParams map[string]any) (int64, error) {
	args := m.Called(sourcePath, startTime, configParams)
	return args.Get(0).(int64), args.Error(1)
}

// EndImport implements the HistoryStore interface.
func (m *MockHistoryStore) EndImport(runID int64, endTime time.Time, counts schema.ImportCounts) error {
	args := m.Called(runID, endTime, counts)
	return args.Error(0)
}

// RecordTypeSummary implements the HistoryStore interface.
func (m *MockHistoryStore) RecordTypeSummary(runID int64, recordedAt time.Time, summary schema.TypeSummary) error {
	args := m.Called(runID, recordedAt, summary)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllImportRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllImportRuns() ([]schema.ImportRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.ImportRunRecord)
	return runs, args.Error(1)
}

// GetAllTypeSummaries implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllTypeSummaries() ([]schema.TypeSummaryRecord, error) {
	args := m.Called()
	summaries, _ := args.Get(0).([]schema.TypeSummaryRecord)
	return summaries, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

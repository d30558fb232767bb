package history

import (
	"time"

	"github.com/huangsam/devian-archive/internal/contract"
	"github.com/huangsam/devian-archive/schema"
	"github.com/stretchr/testify/mock"
)

// MockHistoryManager is a mock implementation of HistoryManager for testing.
type MockHistoryManager struct {
	mock.Mock
}

var _ contract.HistoryManager = &MockHistoryManager{} // Compile-time check

// GetHistoryStore implements the HistoryManager interface.
func (m *MockHistoryManager) GetHistoryStore() contract.HistoryStore {
	ret := m.Called()
	store, _ := ret.Get(0).(contract.HistoryStore)
	return store
}

// MockHistoryStore is a mock implementation of HistoryStore for testing.
type MockHistoryStore struct {
	mock.Mock
}

var _ contract.HistoryStore = &MockHistoryStore{} // Compile-time check

// BeginRun implements the HistoryStore interface.
func (m *MockHistoryStore) BeginRun(runID string, root string, startTime time.Time, configParams map[string]any) error {
	args := m.Called(runID, root, startTime, configParams)
	return args.Error(0)
}

// EndRun implements the HistoryStore interface.
func (m *MockHistoryStore) EndRun(runID string, endTime time.Time, archivePath string, fileCount int, sizeBytes int64) error {
	args := m.Called(runID, endTime, archivePath, fileCount, sizeBytes)
	return args.Error(0)
}

// RecordFiles implements the HistoryStore interface.
func (m *MockHistoryStore) RecordFiles(runID string, files []schema.FileRecord) error {
	args := m.Called(runID, files)
	return args.Error(0)
}

// GetStatus implements the HistoryStore interface.
func (m *MockHistoryStore) GetStatus() (schema.HistoryStatus, error) {
	args := m.Called()
	return args.Get(0).(schema.HistoryStatus), args.Error(1)
}

// GetAllRuns implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllRuns() ([]schema.ArchiveRunRecord, error) {
	args := m.Called()
	runs, _ := args.Get(0).([]schema.ArchiveRunRecord)
	return runs, args.Error(1)
}

// GetAllFiles implements the HistoryStore interface.
func (m *MockHistoryStore) GetAllFiles() ([]schema.ArchivedFileRecord, error) {
	args := m.Called()
	files, _ := args.Get(0).([]schema.ArchivedFileRecord)
	return files, args.Error(1)
}

// Close implements the HistoryStore interface.
func (m *MockHistoryStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

package storage

import "github.com/practicepulse/backend/internal/types"

// Store defines the storage interface for computed analysis results.
// Raw uploads are never persisted; only derived outputs are.
type Store interface {
	SaveSnapshot(snap types.AnalysisSnapshot) error
	GetSnapshot(id string) (*types.AnalysisSnapshot, error)
	ListSnapshots(dateKey string) ([]types.AnalysisSnapshot, error)
	SaveCohort(result types.CohortResult) error
	GetCohort(id string) (*types.CohortResult, error)
	TruncateAll() error
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) SaveSnapshot(_ types.AnalysisSnapshot) error { return nil }
func (s *NoopStore) GetSnapshot(_ string) (*types.AnalysisSnapshot, error) {
	return nil, nil
}
func (s *NoopStore) ListSnapshots(_ string) ([]types.AnalysisSnapshot, error) { return nil, nil }
func (s *NoopStore) SaveCohort(_ types.CohortResult) error                    { return nil }
func (s *NoopStore) GetCohort(_ string) (*types.CohortResult, error)          { return nil, nil }
func (s *NoopStore) TruncateAll() error                                       { return nil }

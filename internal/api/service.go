package api

import (
	"context"

	"github.com/starford/adrkit/internal/catalog"
	"github.com/starford/adrkit/internal/models"
	"github.com/starford/adrkit/internal/record"
)

// Service coordinates record operations and catalog queries for the API
// layer. Writes go through record.Service; reads that list or search come
// from the catalog.
type Service struct {
	records  *record.Service
	catalog  catalog.Catalog
	defaults record.Defaults
}

// NewService creates a new API service.
func NewService(records *record.Service, cat catalog.Catalog, defaults record.Defaults) *Service {
	return &Service{records: records, catalog: cat, defaults: defaults}
}

// ListRecords returns a page of catalogued records.
func (s *Service) ListRecords(_ context.Context, status string, limit, offset int) ([]models.Record, int, error) {
	return s.catalog.List(catalog.ListOptions{Status: status, Limit: limit, Offset: offset})
}

// GetRecord reads a record from disk.
func (s *Service) GetRecord(ctx context.Context, path string) (*record.Detail, error) {
	return s.records.Get(ctx, path)
}

// CreateRecord creates a record, filling defaults from configuration.
func (s *Service) CreateRecord(ctx context.Context, req record.CreateRequest) (*record.CreateResult, error) {
	return s.records.Create(ctx, s.defaults.Create(req))
}

// SetStatus changes the status of an existing record.
func (s *Service) SetStatus(ctx context.Context, req record.SetStatusRequest) (*record.StatusResult, error) {
	return s.records.SetStatus(ctx, s.defaults.SetStatus(req))
}

// Bootstrap seeds the decision log.
func (s *Service) Bootstrap(ctx context.Context, req record.BootstrapRequest) (*record.BootstrapResult, error) {
	return s.records.Bootstrap(ctx, s.defaults.Bootstrap(req))
}

// Search delegates to the catalog.
func (s *Service) Search(_ context.Context, query string, limit int) ([]catalog.SearchResult, error) {
	return s.catalog.Search(query, limit)
}

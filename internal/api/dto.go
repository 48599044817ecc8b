package api

import (
	"github.com/starford/adrkit/internal/catalog"
	"github.com/starford/adrkit/internal/models"
	"github.com/starford/adrkit/internal/record"
)

// CreateRecordRequest is the request body for creating a record.
type CreateRecordRequest = record.CreateRequest

// BootstrapRequest is the request body for bootstrapping a decision log.
type BootstrapRequest = record.BootstrapRequest

// SetStatusRequest is the request body for changing a record status.
type SetStatusRequest struct {
	Status      string `json:"status" example:"accepted" validate:"required"`
	UpdateIndex bool   `json:"updateIndex,omitempty"`
}

// RecordDetail is the full record response type.
type RecordDetail = record.Detail

// RecordListResponse wraps paginated record listings.
type RecordListResponse struct {
	Records []models.Record `json:"records" validate:"required"`
	Total   int             `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []catalog.SearchResult `json:"results" validate:"required"`
}

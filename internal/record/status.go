package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/checksum"
	"github.com/starford/adrkit/internal/indexdoc"
	"github.com/starford/adrkit/internal/status"
)

// SetStatusRequest describes a status change.
type SetStatusRequest struct {
	Path   string `json:"path"`
	Status string `json:"status"`
	// IfMatch, when set, must equal the checksum of the current content.
	IfMatch string `json:"ifMatch,omitempty"`
	// UpdateIndex also rewrites the status shown by the index entry linking
	// to the record, when there is one.
	UpdateIndex bool   `json:"updateIndex,omitempty"`
	IndexFile   string `json:"indexFile,omitempty"`
}

// StatusResult describes a status change.
type StatusResult struct {
	RepoRoot     string            `json:"repoRoot"`
	RelPath      string            `json:"fileRelPath"`
	Status       string            `json:"status"`
	Previous     string            `json:"previousStatus"`
	Convention   status.Convention `json:"convention"`
	Changed      bool              `json:"changed"`
	Checksum     string            `json:"checksum"`
	IndexChanged bool              `json:"indexChanged"`
	IndexRelPath string            `json:"indexRelPath,omitempty"`
}

// SetStatus rewrites the status field of an existing record in place. The
// file is always rewritten; Changed reports whether its content differs.
func (s *Service) SetStatus(_ context.Context, req SetStatusRequest) (*StatusResult, error) {
	if strings.TrimSpace(req.Path) == "" {
		return nil, fmt.Errorf("record: path is required: %w", apperr.ErrMissingArgument)
	}
	rel, err := s.store.Rel(req.Path)
	if err != nil {
		return nil, fmt.Errorf("record: path: %w", err)
	}
	data, err := s.store.Read(rel)
	if err != nil {
		return nil, err
	}
	if !checksum.Matches(data, req.IfMatch) {
		return nil, fmt.Errorf("record: %s changed since it was read: %w", rel, apperr.ErrConflict)
	}

	previous, _, _ := status.Read(string(data))
	next, conv, err := status.Set(string(data), req.Status)
	if err != nil {
		return nil, fmt.Errorf("record: %s: %w", rel, err)
	}
	if err := s.write(EventUpdated, rel, []byte(next)); err != nil {
		return nil, fmt.Errorf("record: write %s: %w", rel, err)
	}

	value := strings.TrimSpace(req.Status)
	res := &StatusResult{
		RepoRoot:   s.store.Root(),
		RelPath:    rel,
		Status:     value,
		Previous:   previous,
		Convention: conv,
		Changed:    next != string(data),
		Checksum:   checksum.Sum([]byte(next)),
	}
	s.logger.Info("status updated",
		slog.String("path", rel),
		slog.String("status", value),
		slog.String("convention", conv.String()))

	if req.UpdateIndex {
		indexPath, err := ResolveIndex(s.store, path.Dir(rel), req.IndexFile)
		if err != nil {
			return nil, err
		}
		changed, err := s.syncIndexStatus(indexPath, rel, value)
		if err != nil {
			return nil, err
		}
		res.IndexChanged = changed
		res.IndexRelPath = indexPath
	}
	return res, nil
}

// syncIndexStatus rewrites the status of the index entry linking to
// recordPath. A missing index or entry is left alone.
func (s *Service) syncIndexStatus(indexPath, recordPath, value string) (bool, error) {
	data, err := s.store.Read(indexPath)
	if errors.Is(err, apperr.ErrPathNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("record: read index: %w", err)
	}
	link, err := linkFrom(indexPath, recordPath)
	if err != nil {
		return false, err
	}
	next, changed := indexdoc.SetEntryStatus(string(data), link, value)
	if !changed {
		return false, nil
	}
	if err := s.write(EventUpdated, indexPath, []byte(next)); err != nil {
		return false, fmt.Errorf("record: write index: %w", err)
	}
	return true, nil
}

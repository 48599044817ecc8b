package record

import (
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/indexdoc"
	"github.com/starford/adrkit/internal/models"
	"github.com/starford/adrkit/internal/parser"
)

// ListRequest selects records from a decision log.
type ListRequest struct {
	Dir string `json:"dir,omitempty"`
	// Status keeps only records whose status matches, ignoring case.
	Status string `json:"status,omitempty"`
}

// List parses every record in the decision log. Index files are skipped and
// records are returned in path order.
func (s *Service) List(_ context.Context, req ListRequest) ([]models.Record, error) {
	dir, err := ResolveDir(s.store, req.Dir)
	if err != nil {
		return nil, err
	}
	files, err := s.store.List(dir)
	if err != nil {
		return nil, err
	}
	want := strings.TrimSpace(req.Status)

	out := make([]models.Record, 0, len(files))
	for _, f := range files {
		if IsIndexName(path.Base(f.Path)) {
			continue
		}
		data, err := s.store.Read(f.Path)
		if err != nil {
			return nil, err
		}
		rec, err := parser.Record(f.Path, data)
		if err != nil {
			return nil, fmt.Errorf("record: parse %s: %w", f.Path, err)
		}
		rec.UpdatedAt = f.UpdatedAt
		if want != "" && !strings.EqualFold(rec.Status, want) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// Detail is a record with its raw content.
type Detail struct {
	models.Record
	Content string `json:"content"`
}

// Get reads and parses one record.
func (s *Service) Get(_ context.Context, p string) (*Detail, error) {
	rel, err := s.store.Rel(p)
	if err != nil {
		return nil, fmt.Errorf("record: path: %w", err)
	}
	data, err := s.store.Read(rel)
	if err != nil {
		return nil, err
	}
	rec, err := parser.Record(rel, data)
	if err != nil {
		return nil, fmt.Errorf("record: parse %s: %w", rel, err)
	}
	return &Detail{Record: rec, Content: string(data)}, nil
}

// IndexRequest selects the index of a decision log.
type IndexRequest struct {
	Dir       string `json:"dir,omitempty"`
	IndexFile string `json:"indexFile,omitempty"`
}

// IndexListing holds the entries an index lists, in document order.
type IndexListing struct {
	RelPath string           `json:"indexRelPath"`
	Exists  bool             `json:"exists"`
	Entries []indexdoc.Entry `json:"entries"`
}

// Index reads the entries of the decision log index. A missing index lists
// nothing.
func (s *Service) Index(_ context.Context, req IndexRequest) (*IndexListing, error) {
	dir, err := ResolveDir(s.store, req.Dir)
	if err != nil {
		return nil, err
	}
	indexPath, err := ResolveIndex(s.store, dir, req.IndexFile)
	if err != nil {
		return nil, err
	}
	out := &IndexListing{RelPath: indexPath, Entries: []indexdoc.Entry{}}
	data, err := s.store.Read(indexPath)
	switch {
	case errors.Is(err, apperr.ErrPathNotFound):
		return out, nil
	case err != nil:
		return nil, fmt.Errorf("record: read index: %w", err)
	}
	out.Exists = true
	if entries := indexdoc.Entries(string(data)); entries != nil {
		out.Entries = entries
	}
	return out, nil
}

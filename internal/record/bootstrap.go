package record

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/sequence"
	"github.com/starford/adrkit/internal/slug"
	"github.com/starford/adrkit/internal/storage"
	"github.com/starford/adrkit/internal/template"
)

// Bootstrap defaults.
const (
	DefaultFirstTitle  = "Adopt architecture decision records"
	DefaultFirstStatus = "accepted"
)

// BootstrapRequest describes how to seed a decision log.
type BootstrapRequest struct {
	Dir         string `json:"dir,omitempty"`
	IndexFile   string `json:"indexFile,omitempty"`
	ForceIndex  bool   `json:"forceIndex,omitempty"`
	FirstTitle  string `json:"firstTitle,omitempty"`
	FirstStatus string `json:"firstStatus,omitempty"`
	Deciders    string `json:"deciders,omitempty"`
	Strategy    string `json:"strategy,omitempty"`
	Date        string `json:"date,omitempty"`
}

// Validate checks choices and the date override.
func (r *BootstrapRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Strategy, validation.In(string(sequence.Auto), string(sequence.Number), string(sequence.Slug))),
	); err != nil {
		return fmt.Errorf("record: %w: %v", apperr.ErrInvalidChoice, err)
	}
	return validateDate(&r.Date)
}

// FirstRecord describes the record seeded by Bootstrap.
type FirstRecord struct {
	RelPath  string `json:"createdAdrRelPath"`
	Created  bool   `json:"created"`
	Title    string `json:"title"`
	Status   string `json:"status"`
	Strategy string `json:"strategy"`
	Date     string `json:"date"`
}

// BootstrapResult describes a seeded decision log.
type BootstrapResult struct {
	RepoRoot           string      `json:"repoRoot"`
	ADRDir             string      `json:"adrDirRelPath"`
	IndexRelPath       string      `json:"indexRelPath"`
	IndexExistedBefore bool        `json:"indexExistedBefore"`
	IndexWritten       bool        `json:"indexWritten"`
	IndexChanged       bool        `json:"indexChanged"`
	FirstADR           FirstRecord `json:"firstAdr"`
	Date               string      `json:"date"`
}

// Bootstrap creates the decision log directory, its index and a first record
// adopting ADRs. An existing index is kept unless ForceIndex is set. When a
// record with the first title's slug already exists it is reused instead of
// creating a second one.
func (s *Service) Bootstrap(_ context.Context, req BootstrapRequest) (*BootstrapResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Dir == "" {
		req.Dir = DefaultDir
	}
	if req.FirstTitle = strings.TrimSpace(req.FirstTitle); req.FirstTitle == "" {
		req.FirstTitle = DefaultFirstTitle
	}
	if req.FirstStatus = strings.TrimSpace(req.FirstStatus); req.FirstStatus == "" {
		req.FirstStatus = DefaultFirstStatus
	}
	strategy := sequence.Strategy(req.Strategy)
	if strategy == "" || strategy == sequence.Auto {
		strategy = sequence.Number
	}
	date := req.Date
	if date == "" {
		date = template.Date(s.now())
	}

	dir, err := s.store.Rel(req.Dir)
	if err != nil {
		return nil, fmt.Errorf("record: dir: %w", err)
	}
	if err := s.store.MkdirAll(dir); err != nil {
		return nil, err
	}

	indexPath, err := ResolveIndex(s.store, dir, req.IndexFile)
	if err != nil {
		return nil, err
	}
	existed, err := s.store.Exists(indexPath)
	if err != nil {
		return nil, err
	}

	res := &BootstrapResult{
		RepoRoot:           s.store.Root(),
		ADRDir:             dir,
		IndexRelPath:       indexPath,
		IndexExistedBefore: existed,
		Date:               date,
	}

	first, content, err := s.planFirst(dir, req, strategy, date)
	if err != nil {
		return nil, err
	}

	writeIndex := !existed || req.ForceIndex
	var base string
	if writeIndex {
		body, err := template.Lookup(template.Readme)
		if err != nil {
			return nil, err
		}
		base = template.Finalize(template.Render(body, template.Vars{ADRDir: dir}))
	} else if base, err = s.readIndex(indexPath); err != nil {
		return nil, err
	}
	edit, err := planIndexEntry(indexPath, base, req.FirstTitle, first.RelPath, req.FirstStatus, date)
	if err != nil {
		return nil, err
	}

	if first.Created {
		if err := s.write(EventCreated, first.RelPath, []byte(content)); err != nil {
			return nil, fmt.Errorf("record: write %s: %w", first.RelPath, err)
		}
	}
	res.FirstADR = *first

	changed, err := s.applyIndex(edit, writeIndex)
	if err != nil {
		return nil, err
	}
	res.IndexWritten = writeIndex
	res.IndexChanged = changed

	s.logger.Info("decision log bootstrapped",
		slog.String("dir", dir),
		slog.String("index", indexPath),
		slog.String("first", first.RelPath))
	return res, nil
}

// planFirst returns the first record and, when it has to be created, its
// content. An existing record with the same slug is reused.
func (s *Service) planFirst(dir string, req BootstrapRequest, strategy sequence.Strategy, date string) (*FirstRecord, string, error) {
	first := &FirstRecord{
		Title:    req.FirstTitle,
		Status:   req.FirstStatus,
		Strategy: string(strategy),
		Date:     date,
	}
	sl := slug.Make(req.FirstTitle)

	existing, err := findBySlug(s.store, dir, sl)
	if err != nil {
		return nil, "", err
	}
	if existing != "" {
		first.RelPath = existing
		s.logger.Debug("first record already present", slog.String("path", existing))
		return first, "", nil
	}

	alloc, err := sequence.Allocate(s.store, dir, sl, strategy)
	if err != nil {
		return nil, "", fmt.Errorf("record: allocate: %w", err)
	}
	body, err := template.Lookup(template.First)
	if err != nil {
		return nil, "", err
	}
	content := template.Finalize(template.Render(body, template.Vars{
		Title:    req.FirstTitle,
		Status:   req.FirstStatus,
		Date:     date,
		Deciders: template.NormalizeDeciders(req.Deciders),
		ADRDir:   dir,
	}))
	first.RelPath = alloc.Path
	first.Created = true
	return first, content, nil
}

// findBySlug returns the record in dir named "<slug>.md" or "<n>-<slug>.md".
func findBySlug(store storage.Provider, dir, sl string) (string, error) {
	names, err := store.Names(dir)
	if err != nil {
		return "", err
	}
	for _, name := range names {
		if !storage.IsMarkdown(name) {
			continue
		}
		stem := strings.TrimSuffix(name, path.Ext(name))
		if stem == sl || (strings.HasSuffix(stem, "-"+sl) && isDigits(strings.TrimSuffix(stem, "-"+sl))) {
			return path.Join(dir, name), nil
		}
	}
	return "", nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

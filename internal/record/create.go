package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/indexdoc"
	"github.com/starford/adrkit/internal/sequence"
	"github.com/starford/adrkit/internal/slug"
	"github.com/starford/adrkit/internal/template"
)

// DefaultStatus is the status of a new record when none is given.
const DefaultStatus = "proposed"

// CreateRequest describes a new record.
type CreateRequest struct {
	Dir            string `json:"dir,omitempty"`
	NoCreateDir    bool   `json:"noCreateDir,omitempty"`
	Title          string `json:"title"`
	Status         string `json:"status,omitempty"`
	Template       string `json:"template,omitempty"`
	Strategy       string `json:"strategy,omitempty"`
	Deciders       string `json:"deciders,omitempty"`
	TechnicalStory string `json:"technicalStory,omitempty"`
	ChosenOption   string `json:"chosenOption,omitempty"`
	Date           string `json:"date,omitempty"`
	UpdateIndex    bool   `json:"updateIndex,omitempty"`
	IndexFile      string `json:"indexFile,omitempty"`
}

// Validate checks required fields and choices. Errors wrap
// apperr.ErrMissingArgument, apperr.ErrInvalidChoice or
// apperr.ErrInvalidArgument.
func (r *CreateRequest) Validate() error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required),
	); err != nil {
		return fmt.Errorf("record: %w: %v", apperr.ErrMissingArgument, err)
	}
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Template, validation.By(recordTemplate)),
		validation.Field(&r.Strategy, validation.In(string(sequence.Auto), string(sequence.Number), string(sequence.Slug))),
	); err != nil {
		return fmt.Errorf("record: %w: %v", apperr.ErrInvalidChoice, err)
	}
	return validateDate(&r.Date)
}

func recordTemplate(value interface{}) error {
	name, _ := value.(string)
	if name != "" && !template.IsRecordTemplate(name) {
		return fmt.Errorf("must be one of %s", strings.Join(template.RecordTemplates, ", "))
	}
	return nil
}

func validateDate(date *string) error {
	if err := validation.Validate(date, validation.Date(time.DateOnly)); err != nil {
		return fmt.Errorf("record: date %q: %w: %v", *date, apperr.ErrInvalidArgument, err)
	}
	return nil
}

// CreateResult describes a created record. Paths are slash-separated and
// relative to RepoRoot.
type CreateResult struct {
	RepoRoot     string `json:"repoRoot"`
	ADRDir       string `json:"adrDir"`
	RelPath      string `json:"createdAdrRelPath"`
	Title        string `json:"title"`
	Status       string `json:"status"`
	Template     string `json:"template"`
	Strategy     string `json:"strategy"`
	Date         string `json:"date"`
	IndexUpdated bool   `json:"indexUpdated"`
	IndexChanged bool   `json:"indexChanged"`
	IndexRelPath string `json:"indexRelPath,omitempty"`
}

// Create renders a new record into the decision log and optionally lists it
// in the index.
func (s *Service) Create(_ context.Context, req CreateRequest) (*CreateResult, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Status = strings.TrimSpace(req.Status)
	if req.Status == "" {
		req.Status = DefaultStatus
	}
	if req.Template == "" {
		req.Template = template.Simple
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	strategy, err := sequence.ParseStrategy(req.Strategy)
	if err != nil {
		return nil, err
	}

	dir, err := ResolveDir(s.store, req.Dir)
	if err != nil {
		return nil, err
	}
	if err := ensureDir(s.store, dir, !req.NoCreateDir); err != nil {
		return nil, err
	}

	alloc, err := sequence.Allocate(s.store, dir, slug.Make(req.Title), strategy)
	if err != nil {
		return nil, fmt.Errorf("record: allocate: %w", err)
	}

	body, err := template.Lookup(req.Template)
	if err != nil {
		return nil, err
	}
	date := req.Date
	if date == "" {
		date = template.Date(s.now())
	}
	rendered := template.Render(body, template.Vars{
		Title:          req.Title,
		Status:         req.Status,
		Date:           date,
		Deciders:       template.NormalizeDeciders(req.Deciders),
		TechnicalStory: strings.TrimSpace(req.TechnicalStory),
		ChosenOption:   strings.TrimSpace(req.ChosenOption),
		ADRDir:         dir,
	})
	// Resolve and prepare the index before touching the disk so a bad
	// index path leaves no record behind.
	var edit *indexEdit
	if req.UpdateIndex {
		indexPath, err := ResolveIndex(s.store, dir, req.IndexFile)
		if err != nil {
			return nil, err
		}
		base, err := s.readIndex(indexPath)
		if err != nil {
			return nil, err
		}
		if edit, err = planIndexEntry(indexPath, base, req.Title, alloc.Path, req.Status, date); err != nil {
			return nil, err
		}
	}

	if err := s.write(EventCreated, alloc.Path, []byte(template.Finalize(rendered))); err != nil {
		return nil, fmt.Errorf("record: write %s: %w", alloc.Path, err)
	}
	s.logger.Info("record created",
		slog.String("path", alloc.Path),
		slog.String("strategy", string(alloc.Strategy)),
		slog.String("template", req.Template))

	res := &CreateResult{
		RepoRoot: s.store.Root(),
		ADRDir:   dir,
		RelPath:  alloc.Path,
		Title:    req.Title,
		Status:   req.Status,
		Template: req.Template,
		Strategy: string(alloc.Strategy),
		Date:     date,
	}
	if edit == nil {
		return res, nil
	}
	changed, err := s.applyIndex(edit, false)
	if err != nil {
		return nil, err
	}
	res.IndexUpdated = true
	res.IndexChanged = changed
	res.IndexRelPath = edit.path
	return res, nil
}

// indexEdit is an index rewrite computed before any file is written.
type indexEdit struct {
	path      string
	link      string
	content   string
	placement indexdoc.Placement
}

// readIndex returns the current index text, or the seed when the index does
// not exist yet.
func (s *Service) readIndex(indexPath string) (string, error) {
	data, err := s.store.Read(indexPath)
	switch {
	case err == nil:
		return string(data), nil
	case errors.Is(err, apperr.ErrPathNotFound):
		return indexdoc.Seed, nil
	default:
		return "", fmt.Errorf("record: read index: %w", err)
	}
}

// planIndexEntry lists the record at recordPath in base.
func planIndexEntry(indexPath, base, title, recordPath, status, date string) (*indexEdit, error) {
	link, err := linkFrom(indexPath, recordPath)
	if err != nil {
		return nil, err
	}
	next, placement := indexdoc.Insert(base, indexdoc.Entry{
		Title:  title,
		Link:   link,
		Status: status,
		Date:   date,
	})
	return &indexEdit{path: indexPath, link: link, content: next, placement: placement}, nil
}

// applyIndex writes e when it adds an entry, or always when force is set.
// It reports whether an entry was added.
func (s *Service) applyIndex(e *indexEdit, force bool) (bool, error) {
	added := e.placement != indexdoc.Unchanged
	if !added && !force {
		s.logger.Debug("index already lists record", slog.String("index", e.path), slog.String("link", e.link))
		return false, nil
	}
	if err := s.write(EventUpdated, e.path, []byte(e.content)); err != nil {
		return false, fmt.Errorf("record: write index: %w", err)
	}
	s.logger.Debug("index updated",
		slog.String("index", e.path),
		slog.String("link", e.link),
		slog.String("placement", e.placement.String()))
	return added, nil
}

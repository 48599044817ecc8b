// Package sequence allocates file names for new records following the
// naming convention already present in a directory.
package sequence

import (
	"fmt"
	"path"
	"regexp"
	"strconv"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/storage"
)

// Strategy is a file naming convention.
type Strategy string

const (
	Auto   Strategy = "auto"
	Number Strategy = "number"
	Slug   Strategy = "slug"
)

// DefaultWidth is the zero-padding used when no numbered file exists yet.
const DefaultWidth = 4

var numberedRe = regexp.MustCompile(`^(\d+)-`)

// ParseStrategy validates a strategy name. An empty name means Auto.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "", Auto:
		return Auto, nil
	case Number, Slug:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("sequence: strategy %q (want auto, number or slug): %w", s, apperr.ErrInvalidChoice)
}

// Listing summarizes the naming state of a directory.
type Listing struct {
	Strategy Strategy
	Width    int
	Next     int
}

// Scan derives the naming state from file names in listing order. Names
// without a .md extension are ignored.
func Scan(names []string) Listing {
	l := Listing{Strategy: Number, Next: 1}
	sawMarkdown, sawNumbered := false, false
	highest := 0
	for _, name := range names {
		if !storage.IsMarkdown(name) {
			continue
		}
		sawMarkdown = true
		m := numberedRe.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		if !sawNumbered {
			l.Width = len(m[1])
			sawNumbered = true
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	if !sawNumbered && sawMarkdown {
		l.Strategy = Slug
	}
	if l.Width == 0 {
		l.Width = DefaultWidth
	}
	l.Next = highest + 1
	return l
}

// Allocation is a reserved file name for a new record.
type Allocation struct {
	Path     string   `json:"path"`
	Filename string   `json:"filename"`
	Strategy Strategy `json:"strategy"`
	Number   int      `json:"number,omitempty"`
}

// Allocate picks the file name for a record with the given slug in dir.
// Auto resolves to the strategy the directory already follows. A numbered
// name that already exists is an error; slug names get a -2, -3, ...
// suffix until free.
func Allocate(fsys storage.Provider, dir, slug string, strategy Strategy) (Allocation, error) {
	names, err := fsys.Names(dir)
	if err != nil {
		return Allocation{}, fmt.Errorf("sequence: list %s: %w", dir, err)
	}
	l := Scan(names)
	if strategy == Auto || strategy == "" {
		strategy = l.Strategy
	}

	switch strategy {
	case Number:
		filename := fmt.Sprintf("%0*d-%s.md", l.Width, l.Next, slug)
		p := path.Join(dir, filename)
		exists, err := fsys.Exists(p)
		if err != nil {
			return Allocation{}, err
		}
		if exists {
			return Allocation{}, fmt.Errorf("sequence: %s: %w", p, apperr.ErrDuplicateRecord)
		}
		return Allocation{Path: p, Filename: filename, Strategy: Number, Number: l.Next}, nil

	case Slug:
		filename := slug + ".md"
		for i := 2; ; i++ {
			p := path.Join(dir, filename)
			exists, err := fsys.Exists(p)
			if err != nil {
				return Allocation{}, err
			}
			if !exists {
				return Allocation{Path: p, Filename: filename, Strategy: Slug}, nil
			}
			filename = fmt.Sprintf("%s-%d.md", slug, i)
		}
	}
	return Allocation{}, fmt.Errorf("sequence: strategy %q: %w", strategy, apperr.ErrInvalidChoice)
}

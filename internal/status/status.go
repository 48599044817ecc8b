// Package status locates and rewrites the status field of a decision record.
//
// A record carries its status in exactly one of three conventions, tried in
// priority order:
//
//	---               - Status: proposed        ## Status
//	status: proposed  * Status: proposed
//	---                                         proposed
//
// The first convention that matches wins and the others are never consulted,
// so a rewrite can not introduce a second status field.
package status

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/adrkit/internal/apperr"
	"github.com/starford/adrkit/internal/textdoc"
)

// Convention identifies the surface form a record uses for its status.
type Convention int

const (
	None Convention = iota
	FrontMatter
	Bullet
	Section
)

func (c Convention) String() string {
	switch c {
	case FrontMatter:
		return "front-matter"
	case Bullet:
		return "bullet"
	case Section:
		return "section"
	default:
		return "none"
	}
}

// MarshalText lets conventions appear by name in JSON payloads.
func (c Convention) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

var (
	fmKeyRe      = regexp.MustCompile(`^status\s*:(.*)$`)
	bulletRe     = regexp.MustCompile(`^([*-])\s*Status:\s*(.*)$`)
	sectionRe    = regexp.MustCompile(`^##\s+Status\s*$`)
	anyHeadingRe = regexp.MustCompile(`^##\s+`)
)

// strategy is one convention's pure read and rewrite functions.
type strategy struct {
	convention Convention
	rewrite    func(lines []string, value string) ([]string, bool)
	read       func(lines []string) (string, bool)
}

var strategies = []strategy{
	{FrontMatter, rewriteFrontMatter, readFrontMatter},
	{Bullet, rewriteBullet, readBullet},
	{Section, rewriteSection, readSection},
}

// Result is the outcome of Rewrite.
type Result struct {
	Lines      []string
	Changed    bool
	Convention Convention
}

// Rewrite applies the first convention that matches lines. When nothing
// matches, the returned Result holds the input lines with Changed unset.
func Rewrite(lines []string, value string) Result {
	for _, s := range strategies {
		if out, ok := s.rewrite(lines, value); ok {
			return Result{Lines: out, Changed: true, Convention: s.convention}
		}
	}
	return Result{Lines: lines}
}

// Set replaces the status of the record held in text with value.
func Set(text, value string) (string, Convention, error) {
	value, err := normalizeValue(value)
	if err != nil {
		return "", None, err
	}
	doc := textdoc.Split(text)
	r := Rewrite(doc.Lines, value)
	if !r.Changed {
		return "", None, fmt.Errorf("status: expected front matter 'status:', '- Status:'/'* Status:' or a '## Status' section: %w", apperr.ErrNoStatusField)
	}
	return doc.WithLines(r.Lines).String(), r.Convention, nil
}

// Read returns the current status value and the convention holding it.
// A "## Status" heading with no value yields an empty string.
func Read(text string) (string, Convention, error) {
	lines := textdoc.Split(text).Lines
	for _, s := range strategies {
		if v, ok := s.read(lines); ok {
			return v, s.convention, nil
		}
	}
	return "", None, fmt.Errorf("status: read: %w", apperr.ErrNoStatusField)
}

func normalizeValue(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("status: new value is empty: %w", apperr.ErrMissingArgument)
	}
	if strings.ContainsAny(value, "\r\n") {
		return "", fmt.Errorf("status: value must be a single line: %w", apperr.ErrInvalidChoice)
	}
	return value, nil
}

// frontMatterBounds returns the index of the closing fence, or -1 when lines
// do not open with a front matter block.
func frontMatterBounds(lines []string) int {
	if len(lines) < 2 || strings.TrimSpace(lines[0]) != "---" {
		return -1
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			return i
		}
	}
	return len(lines)
}

func rewriteFrontMatter(lines []string, value string) ([]string, bool) {
	end := frontMatterBounds(lines)
	if end < 0 {
		return lines, false
	}
	var out []string
	changed := false
	for i := 1; i < end; i++ {
		if !fmKeyRe.MatchString(lines[i]) {
			continue
		}
		if out == nil {
			out = append([]string(nil), lines...)
		}
		out[i] = "status: " + value
		changed = true
	}
	if !changed {
		return lines, false
	}
	return out, true
}

func readFrontMatter(lines []string) (string, bool) {
	end := frontMatterBounds(lines)
	for i := 1; i < end; i++ {
		if m := fmKeyRe.FindStringSubmatch(lines[i]); m != nil {
			return strings.Trim(strings.TrimSpace(m[1]), `"'`), true
		}
	}
	return "", false
}

func rewriteBullet(lines []string, value string) ([]string, bool) {
	var out []string
	for i, line := range lines {
		m := bulletRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if out == nil {
			out = append([]string(nil), lines...)
		}
		out[i] = m[1] + " Status: " + value
	}
	if out == nil {
		return lines, false
	}
	return out, true
}

func readBullet(lines []string) (string, bool) {
	for _, line := range lines {
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			return strings.TrimSpace(m[2]), true
		}
	}
	return "", false
}

// sectionValue finds the first "## Status" heading and the index where its
// value lives or should be inserted. found reports whether a value line
// already exists at that index.
func sectionValue(lines []string) (heading, at int, found bool) {
	heading = -1
	for i, line := range lines {
		if sectionRe.MatchString(line) {
			heading = i
			break
		}
	}
	if heading < 0 {
		return -1, -1, false
	}
	at = heading + 1
	for at < len(lines) && textdoc.IsBlank(lines[at]) {
		at++
	}
	found = at < len(lines) && !anyHeadingRe.MatchString(lines[at])
	return heading, at, found
}

func rewriteSection(lines []string, value string) ([]string, bool) {
	heading, at, found := sectionValue(lines)
	if heading < 0 {
		return lines, false
	}
	if found {
		out := append([]string(nil), lines...)
		out[at] = value
		return out, true
	}
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:at]...)
	out = append(out, value)
	out = append(out, lines[at:]...)
	return out, true
}

func readSection(lines []string) (string, bool) {
	heading, at, found := sectionValue(lines)
	if heading < 0 {
		return "", false
	}
	if !found {
		return "", true
	}
	return strings.TrimSpace(lines[at]), true
}

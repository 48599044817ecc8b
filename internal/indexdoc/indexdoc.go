// Package indexdoc edits the Markdown index that lists decision records.
package indexdoc

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/adrkit/internal/textdoc"
)

// Seed is the content of a freshly created index.
const Seed = "# ADR Log\n\n"

var (
	adrsHeadingRe = regexp.MustCompile(`(?i)^##\s+ADRs\s*$`)
	anyHeadingRe  = regexp.MustCompile(`^##\s+`)
	listItemRe    = regexp.MustCompile(`^[-*]\s+`)
)

// Entry is one record listed in the index.
type Entry struct {
	Title  string `json:"title"`
	Link   string `json:"link"`
	Status string `json:"status"`
	Date   string `json:"date"`
}

// Line renders the entry as a single list item.
func (e Entry) Line() string {
	return fmt.Sprintf("- [%s](%s) (%s, %s)", e.Title, e.Link, e.Status, e.Date)
}

// Placement describes where Insert put an entry.
type Placement int

const (
	Unchanged Placement = iota
	AfterLastItem
	InSection
	AtEnd
)

func (p Placement) String() string {
	switch p {
	case AfterLastItem:
		return "after-last-item"
	case InSection:
		return "in-section"
	case AtEnd:
		return "at-end"
	default:
		return "unchanged"
	}
}

// Insert adds e to the index text. When the text already mentions e.Link
// anywhere the text is returned as is with Unchanged.
//
// The entry goes after the last list item of the "## ADRs" section. A
// section without items gets the entry at its end, separated from the
// heading by a blank line. Without the heading the entry is appended to the
// document.
func Insert(text string, e Entry) (string, Placement) {
	if strings.Contains(text, e.Link) {
		return text, Unchanged
	}
	doc := textdoc.Split(text)
	lines, placement := insertLines(doc.Lines, e.Line())
	return doc.WithLines(lines).String(), placement
}

func insertLines(lines []string, entry string) ([]string, Placement) {
	heading := -1
	for i, l := range lines {
		if adrsHeadingRe.MatchString(l) {
			heading = i
			break
		}
	}
	if heading < 0 {
		out := append(append([]string(nil), lines...), entry)
		return out, AtEnd
	}

	end := len(lines)
	for i := heading + 1; i < len(lines); i++ {
		if anyHeadingRe.MatchString(lines[i]) {
			end = i
			break
		}
	}

	lastItem := -1
	for i := end - 1; i > heading; i-- {
		if listItemRe.MatchString(lines[i]) {
			lastItem = i
			break
		}
	}

	at, placement := end, InSection
	if lastItem >= 0 {
		at, placement = lastItem+1, AfterLastItem
	}

	insert := []string{entry}
	if at == heading+1 && (at == len(lines) || lines[at] != "") {
		insert = []string{"", entry}
	}

	out := make([]string, 0, len(lines)+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	out = append(out, lines[at:]...)
	return out, placement
}

// SetEntryStatus rewrites the status of the list item linking to link,
// keeping its title and date. It reports whether an entry was changed.
func SetEntryStatus(text, link, status string) (string, bool) {
	entryRe := regexp.MustCompile(`^([-*]\s+\[.*\]\(` + regexp.QuoteMeta(link) + `\)\s*\()([^,)]*)(,.*\))\s*$`)
	doc := textdoc.Split(text)
	var out []string
	for i, l := range doc.Lines {
		m := entryRe.FindStringSubmatch(l)
		if m == nil || m[2] == status {
			continue
		}
		if out == nil {
			out = append([]string(nil), doc.Lines...)
		}
		out[i] = m[1] + status + m[3]
	}
	if out == nil {
		return text, false
	}
	return doc.WithLines(out).String(), true
}

// Entries returns the list items of the index that follow the entry shape.
func Entries(text string) []Entry {
	var out []Entry
	for _, l := range textdoc.Split(text).Lines {
		m := entryLineRe.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		out = append(out, Entry{Title: m[1], Link: m[2], Status: strings.TrimSpace(m[3]), Date: strings.TrimSpace(m[4])})
	}
	return out
}

var entryLineRe = regexp.MustCompile(`^[-*]\s+\[(.*)\]\(([^)]*)\)\s*\(([^,)]*),([^)]*)\)\s*$`)

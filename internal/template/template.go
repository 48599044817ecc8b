// Package template renders record and index templates by literal placeholder
// substitution.
package template

import (
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/starford/adrkit/internal/apperr"
)

// Placeholder tokens understood by Render.
const (
	TokenTitle          = "{TITLE}"
	TokenStatus         = "{STATUS}"
	TokenDate           = "{DATE}"
	TokenDeciders       = "{DECIDERS}"
	TokenTechnicalStory = "{TECHNICAL_STORY}"
	TokenChosenOption   = "{CHOSEN_OPTION}"
	TokenADRDir         = "{ADR_DIR}"
)

// Template names.
const (
	Simple = "simple"
	MADR   = "madr"
	Readme = "readme"
	First  = "first"
)

// RecordTemplates lists the templates usable for new records.
var RecordTemplates = []string{Simple, MADR}

//go:embed templates/*.md
var files embed.FS

// Vars are the values substituted into a template. Unset fields render as
// empty strings.
type Vars struct {
	Title          string
	Status         string
	Date           string
	Deciders       string
	TechnicalStory string
	ChosenOption   string
	ADRDir         string
}

// Render replaces every placeholder token in body. Nothing else in body is
// interpreted.
func Render(body string, v Vars) string {
	return strings.NewReplacer(
		TokenTitle, v.Title,
		TokenStatus, v.Status,
		TokenDate, v.Date,
		TokenDeciders, v.Deciders,
		TokenTechnicalStory, v.TechnicalStory,
		TokenChosenOption, v.ChosenOption,
		TokenADRDir, v.ADRDir,
	).Replace(body)
}

// Lookup returns the body of a named embedded template.
func Lookup(name string) (string, error) {
	switch name {
	case Simple, MADR, Readme, First:
	default:
		return "", fmt.Errorf("template: unknown template %q (want %s): %w",
			name, strings.Join(RecordTemplates, " or "), apperr.ErrInvalidChoice)
	}
	data, err := files.ReadFile("templates/adr-" + name + ".md")
	if err != nil {
		return "", fmt.Errorf("template: read %s: %w", name, err)
	}
	return string(data), nil
}

// IsRecordTemplate reports whether name can be used for a new record.
func IsRecordTemplate(name string) bool {
	for _, t := range RecordTemplates {
		if t == name {
			return true
		}
	}
	return false
}

// Date formats t as an ISO calendar date in UTC.
func Date(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// NormalizeDeciders turns a comma separated list into "a, b", dropping
// empty entries.
func NormalizeDeciders(raw string) string {
	return strings.Join(SplitDeciders(raw), ", ")
}

// SplitDeciders splits a comma separated list, trimming and dropping empty
// entries.
func SplitDeciders(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Finalize trims trailing whitespace and terminates the text with exactly one
// newline.
func Finalize(rendered string) string {
	return strings.TrimRight(rendered, " \t\r\n") + "\n"
}

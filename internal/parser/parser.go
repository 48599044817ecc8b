// Package parser extracts record metadata (title, status, date, deciders)
// from decision record Markdown.
package parser

import (
	"bytes"
	"path"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/adrkit/internal/checksum"
	"github.com/starford/adrkit/internal/models"
	"github.com/starford/adrkit/internal/status"
	"github.com/starford/adrkit/internal/template"
)

var (
	bulletFieldRe = regexp.MustCompile(`^[*-]\s*(Date|Deciders|Decision-makers):\s*(.*)$`)
	numberedRe    = regexp.MustCompile(`^(\d+)-`)
)

// Result holds the output of parsing a record.
type Result struct {
	Frontmatter map[string]interface{}
	Body        string
	Title       string
	Status      string
	Convention  status.Convention
	Date        string
	Deciders    []string
}

// Parse extracts front matter, title, status, date and deciders from raw
// Markdown bytes. A record without a recognizable status is not an error;
// Convention is then status.None.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	r := &Result{
		Frontmatter: fm,
		Body:        body,
		Title:       deriveTitle(fm, body),
	}
	if v, conv, err := status.Read(string(data)); err == nil {
		r.Status, r.Convention = v, conv
	}
	r.Date, r.Deciders = deriveDateAndDeciders(fm, body)
	return r, nil
}

// Record parses data and returns the catalog view of the record at p.
func Record(p string, data []byte) (models.Record, error) {
	res, err := Parse(data)
	if err != nil {
		return models.Record{}, err
	}
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	return models.Record{
		Path:       p,
		ID:         ID(p),
		Title:      title,
		Status:     res.Status,
		Date:       res.Date,
		Deciders:   res.Deciders,
		Convention: res.Convention.String(),
		Checksum:   checksum.Sum(data),
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

// ID returns the numeric prefix of a record file name, or its stem when the
// name is not numbered.
func ID(p string) string {
	name := path.Base(p)
	if m := numberedRe.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return strings.TrimSuffix(name, path.Ext(name))
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]interface{}, string, error) {
	const delim = "---"
	normalized := bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))

	if !bytes.HasPrefix(normalized, []byte(delim+"\n")) {
		return nil, string(normalized), nil
	}

	rest := normalized[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(normalized), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n")

	var fm map[string]interface{}
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		// Invalid YAML: treat everything as body.
		return nil, string(normalized), nil
	}

	return fm, body, nil
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]interface{}, body string) string {
	if s := stringField(fm, "title"); s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

// deriveDateAndDeciders reads date and deciders from front matter, falling
// back to "* Date:" / "* Deciders:" bullets in the body.
func deriveDateAndDeciders(fm map[string]interface{}, body string) (string, []string) {
	date := stringField(fm, "date")
	deciders := listField(fm, "decision-makers")
	if deciders == nil {
		deciders = listField(fm, "deciders")
	}
	if date != "" && deciders != nil {
		return date, deciders
	}
	for _, line := range strings.Split(body, "\n") {
		m := bulletFieldRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		switch m[1] {
		case "Date":
			if date == "" {
				date = value
			}
		default:
			if deciders == nil {
				deciders = template.SplitDeciders(value)
			}
		}
	}
	return date, deciders
}

func stringField(fm map[string]interface{}, key string) string {
	switch v := fm[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case time.Time:
		return template.Date(v)
	}
	return ""
}

func listField(fm map[string]interface{}, key string) []string {
	switch v := fm[key].(type) {
	case string:
		return template.SplitDeciders(v)
	case []interface{}:
		var out []string
		for _, item := range v {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return nil
}

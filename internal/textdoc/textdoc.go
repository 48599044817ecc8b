// Package textdoc splits Markdown text into lines and joins them back while
// preserving each line's ending and the trailing newline of the source.
package textdoc

import "strings"

// Doc is a line view of a text file.
type Doc struct {
	Lines []string
	// CRLF reports whether the first line ends with "\r\n". It is the style
	// used for new lines that have no neighbour to copy from.
	CRLF            bool
	TrailingNewline bool

	// ends holds the terminator of each line: "\n", "\r\n", or "" for a
	// final line without a newline.
	ends []string
}

// Split breaks text into lines. A trailing newline does not produce an empty
// final line; it is recorded in TrailingNewline instead.
func Split(text string) Doc {
	var doc Doc
	for text != "" {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			doc.Lines = append(doc.Lines, text)
			doc.ends = append(doc.ends, "")
			break
		}
		line, end := text[:i], "\n"
		if strings.HasSuffix(line, "\r") {
			line, end = line[:len(line)-1], "\r\n"
		}
		doc.Lines = append(doc.Lines, line)
		doc.ends = append(doc.ends, end)
		text = text[i+1:]
	}
	if n := len(doc.ends); n > 0 {
		doc.TrailingNewline = doc.ends[n-1] != ""
		doc.CRLF = doc.ends[0] == "\r\n"
	}
	return doc
}

// WithLines returns a copy of d holding lines. Lines shared with d at the
// start and end keep their endings; a rewritten line keeps the ending of the
// line it replaces, and an inserted line copies the line before it.
func (d Doc) WithLines(lines []string) Doc {
	old := d.Lines
	ends := make([]string, len(lines))

	p := 0
	for p < len(old) && p < len(lines) && old[p] == lines[p] {
		ends[p] = d.ends[p]
		p++
	}
	q := 0
	for q < len(old)-p && q < len(lines)-p && old[len(old)-1-q] == lines[len(lines)-1-q] {
		ends[len(lines)-1-q] = d.ends[len(old)-1-q]
		q++
	}

	replaced := len(lines)-q-p == len(old)-q-p
	for i := p; i < len(lines)-q; i++ {
		switch {
		case replaced:
			ends[i] = d.ends[i]
		case i > 0:
			ends[i] = ends[i-1]
		}
	}

	d.Lines = lines
	d.ends = ends
	return d
}

// String joins the lines with their endings and reapplies the trailing
// newline.
func (d Doc) String() string {
	var b strings.Builder
	for i, line := range d.Lines {
		b.WriteString(line)
		if i < len(d.Lines)-1 || d.TrailingNewline {
			b.WriteString(d.ending(i))
		}
	}
	return b.String()
}

func (d Doc) ending(i int) string {
	if i < len(d.ends) && d.ends[i] != "" {
		return d.ends[i]
	}
	if d.CRLF {
		return "\r\n"
	}
	return "\n"
}

// IsBlank reports whether line holds only whitespace.
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

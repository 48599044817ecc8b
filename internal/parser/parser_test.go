package parser

import (
	"testing"

	"github.com/starford/adrkit/internal/status"
)

func TestParse_FrontMatterRecord(t *testing.T) {
	input := []byte("---\nstatus: accepted\ndate: 2024-01-01\ndecision-makers: alice, bob\n---\n\n# Use Postgres\n\nBody.\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Title != "Use Postgres" {
		t.Errorf("title = %q", r.Title)
	}
	if r.Status != "accepted" || r.Convention != status.FrontMatter {
		t.Errorf("status = %q (%v)", r.Status, r.Convention)
	}
	if r.Date != "2024-01-01" {
		t.Errorf("date = %q", r.Date)
	}
	if len(r.Deciders) != 2 || r.Deciders[0] != "alice" || r.Deciders[1] != "bob" {
		t.Errorf("deciders = %v", r.Deciders)
	}
	if r.Body != "# Use Postgres\n\nBody.\n" {
		t.Errorf("body = %q", r.Body)
	}
}

func TestParse_BulletRecord(t *testing.T) {
	input := []byte("# Use Kafka\n\n* Status: proposed\n* Deciders: carol, dave\n* Date: 2023-05-06\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Status != "proposed" || r.Convention != status.Bullet {
		t.Errorf("status = %q (%v)", r.Status, r.Convention)
	}
	if r.Date != "2023-05-06" || len(r.Deciders) != 2 {
		t.Errorf("date = %q deciders = %v", r.Date, r.Deciders)
	}
}

func TestParse_SectionRecord(t *testing.T) {
	r, err := Parse([]byte("# 1. Record decisions\r\n\r\n## Status\r\n\r\nAccepted\r\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Title != "1. Record decisions" || r.Status != "Accepted" || r.Convention != status.Section {
		t.Errorf("result = %+v", r)
	}
}

func TestParse_NoStatusIsNotAnError(t *testing.T) {
	r, err := Parse([]byte("# Notes\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Convention != status.None || r.Status != "" {
		t.Errorf("result = %+v", r)
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	input := []byte("---\n: invalid: yaml: {{{\nstatus: proposed\n---\nBody\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
	// The line-based status locator does not need valid YAML.
	if r.Status != "proposed" {
		t.Errorf("status = %q", r.Status)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	fm := map[string]any{"title": "FM Title"}
	if title := deriveTitle(fm, "# H1 Title\ntext"); title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	if title := deriveTitle(nil, "some text\n# My Heading\nmore"); title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}

func TestListField_YAMLList(t *testing.T) {
	fm := map[string]any{"decision-makers": []any{"a", " ", "b"}}
	got := listField(fm, "decision-makers")
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("listField = %v", got)
	}
}

func TestRecord(t *testing.T) {
	rec, err := Record("adr/0007-use-grpc.md", []byte("* Status: accepted\n"))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if rec.ID != "0007" || rec.Title != "0007-use-grpc" || rec.Status != "accepted" || rec.Convention != "bullet" {
		t.Errorf("record = %+v", rec)
	}
	if rec.Checksum == "" {
		t.Error("missing checksum")
	}
}

func TestID(t *testing.T) {
	cases := map[string]string{
		"adr/0001-x.md":          "0001",
		"decisions/use-kafka.md": "use-kafka",
		"12-y.MD":                "12",
	}
	for in, want := range cases {
		if got := ID(in); got != want {
			t.Errorf("ID(%q) = %q, want %q", in, got, want)
		}
	}
}

package status

import (
	"errors"
	"strings"
	"testing"

	"github.com/starford/adrkit/internal/apperr"
)

func TestSet_Scenarios(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		value string
		want  string
		conv  Convention
	}{
		{
			name:  "front matter",
			in:    "---\nstatus: proposed\ndate: 2024-01-01\n---\n# Title\n",
			value: "accepted",
			want:  "---\nstatus: accepted\ndate: 2024-01-01\n---\n# Title\n",
			conv:  FrontMatter,
		},
		{
			name:  "front matter key with space before colon",
			in:    "---\ntitle: X\nstatus : draft\n---\n",
			value: "accepted",
			want:  "---\ntitle: X\nstatus: accepted\n---\n",
			conv:  FrontMatter,
		},
		{
			name:  "star bullet",
			in:    "# Title\n\n* Status: proposed\n* Date: 2024-01-01\n",
			value: "rejected",
			want:  "# Title\n\n* Status: rejected\n* Date: 2024-01-01\n",
			conv:  Bullet,
		},
		{
			name:  "dash bullet keeps bullet char",
			in:    "- Status:proposed\nbody",
			value: "superseded",
			want:  "- Status: superseded\nbody",
			conv:  Bullet,
		},
		{
			name:  "section",
			in:    "## Status\n\nproposed\n",
			value: "accepted",
			want:  "## Status\n\naccepted\n",
			conv:  Section,
		},
		{
			name:  "section without value inserts after blanks",
			in:    "# T\n\n## Status\n\n## Context\n\ntext\n",
			value: "proposed",
			want:  "# T\n\n## Status\n\nproposed\n## Context\n\ntext\n",
			conv:  Section,
		},
		{
			name:  "section at end of file",
			in:    "## Status",
			value: "accepted",
			want:  "## Status\naccepted",
			conv:  Section,
		},
		{
			name:  "crlf preserved",
			in:    "## Status\r\n\r\nproposed\r\n\r\n## Context\r\n",
			value: "accepted",
			want:  "## Status\r\n\r\naccepted\r\n\r\n## Context\r\n",
			conv:  Section,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, conv, err := Set(tc.in, tc.value)
			if err != nil {
				t.Fatalf("Set: %v", err)
			}
			if got != tc.want {
				t.Errorf("Set = %q, want %q", got, tc.want)
			}
			if conv != tc.conv {
				t.Errorf("convention = %v, want %v", conv, tc.conv)
			}
		})
	}
}

func TestSet_FrontMatterWinsOverOtherForms(t *testing.T) {
	in := "---\nstatus: proposed\n---\n\n- Status: proposed\n\n## Status\n\nproposed\n"
	got, conv, err := Set(in, "accepted")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if conv != FrontMatter {
		t.Fatalf("convention = %v", conv)
	}
	want := "---\nstatus: accepted\n---\n\n- Status: proposed\n\n## Status\n\nproposed\n"
	if got != want {
		t.Errorf("Set = %q, want %q", got, want)
	}
}

func TestSet_FrontMatterWithoutStatusFallsThrough(t *testing.T) {
	in := "---\ntitle: X\n---\n* Status: proposed\n"
	got, conv, err := Set(in, "accepted")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if conv != Bullet {
		t.Errorf("convention = %v, want bullet", conv)
	}
	if got != "---\ntitle: X\n---\n* Status: accepted\n" {
		t.Errorf("Set = %q", got)
	}
}

func TestSet_StatusKeyAfterFrontMatterIgnored(t *testing.T) {
	in := "---\ntitle: X\n---\nstatus: not yaml\n"
	if _, _, err := Set(in, "accepted"); !errors.Is(err, apperr.ErrNoStatusField) {
		t.Errorf("err = %v, want ErrNoStatusField", err)
	}
}

func TestSet_AllBulletsRewritten(t *testing.T) {
	in := "* Status: proposed\ntext\n- Status: draft\n"
	got, _, err := Set(in, "accepted")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got != "* Status: accepted\ntext\n- Status: accepted\n" {
		t.Errorf("Set = %q", got)
	}
}

func TestSet_OnlyFirstSectionRewritten(t *testing.T) {
	in := "## Status\nproposed\n## Status\nproposed\n"
	got, _, err := Set(in, "accepted")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got != "## Status\naccepted\n## Status\nproposed\n" {
		t.Errorf("Set = %q", got)
	}
}

func TestSet_NoStatusField(t *testing.T) {
	in := "# Title\n\nNo status here.\n"
	_, conv, err := Set(in, "accepted")
	if !errors.Is(err, apperr.ErrNoStatusField) {
		t.Fatalf("err = %v, want ErrNoStatusField", err)
	}
	if conv != None {
		t.Errorf("convention = %v", conv)
	}
}

func TestSet_RejectsBadValues(t *testing.T) {
	doc := "## Status\nproposed\n"
	if _, _, err := Set(doc, "   "); !errors.Is(err, apperr.ErrMissingArgument) {
		t.Errorf("empty value err = %v", err)
	}
	if _, _, err := Set(doc, "a\nb"); !errors.Is(err, apperr.ErrInvalidChoice) {
		t.Errorf("multi-line value err = %v", err)
	}
}

func TestSet_Idempotent(t *testing.T) {
	docs := []string{
		"---\nstatus: proposed\n---\nbody",
		"* Status: proposed\n",
		"## Status\n\n## Next\n",
		"## Status",
	}
	for _, in := range docs {
		once, _, err := Set(in, "accepted")
		if err != nil {
			t.Fatalf("Set(%q): %v", in, err)
		}
		twice, _, err := Set(once, "accepted")
		if err != nil {
			t.Fatalf("second Set(%q): %v", once, err)
		}
		if once != twice {
			t.Errorf("not idempotent: %q then %q", once, twice)
		}
	}
}

func TestSet_PreservesTrailingNewlineState(t *testing.T) {
	got, _, err := Set("* Status: proposed", "accepted")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if strings.HasSuffix(got, "\n") {
		t.Errorf("trailing newline introduced: %q", got)
	}
}

func TestSet_SameValueIsByteIdentical(t *testing.T) {
	in := "---\nstatus: accepted\ndate: 2024-01-01\n---\n\n# T\n\n  indented   \n"
	got, _, err := Set(in, "accepted")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got != in {
		t.Errorf("Set = %q, want unchanged", got)
	}
}

func TestRewrite_DoesNotMutateInput(t *testing.T) {
	lines := []string{"* Status: proposed"}
	r := Rewrite(lines, "accepted")
	if !r.Changed || r.Lines[0] != "* Status: accepted" {
		t.Fatalf("Rewrite = %+v", r)
	}
	if lines[0] != "* Status: proposed" {
		t.Errorf("input mutated: %q", lines[0])
	}
}

func TestRead(t *testing.T) {
	cases := []struct {
		in   string
		want string
		conv Convention
	}{
		{"---\nstatus: \"accepted\"\n---\n", "accepted", FrontMatter},
		{"* Status:  proposed  \n", "proposed", Bullet},
		{"## Status\n\n  rejected\n", "rejected", Section},
		{"## Status\n\n## Context\n", "", Section},
	}
	for _, tc := range cases {
		got, conv, err := Read(tc.in)
		if err != nil {
			t.Fatalf("Read(%q): %v", tc.in, err)
		}
		if got != tc.want || conv != tc.conv {
			t.Errorf("Read(%q) = %q/%v, want %q/%v", tc.in, got, conv, tc.want, tc.conv)
		}
	}
	if _, _, err := Read("# nothing"); !errors.Is(err, apperr.ErrNoStatusField) {
		t.Errorf("Read err = %v", err)
	}
}

func TestSet_MixedLineEndingsUntouched(t *testing.T) {
	out, conv, err := Set("# T\r\n\n## Status\nproposed\n", "accepted")
	if err != nil {
		t.Fatalf("Set: %v", err)
	}
	if conv != Section {
		t.Errorf("convention = %v", conv)
	}
	if want := "# T\r\n\n## Status\naccepted\n"; out != want {
		t.Errorf("out = %q, want %q", out, want)
	}
}

func TestConventionString(t *testing.T) {
	if _, c, _ := Read("- Status: x"); c.String() != "bullet" {
		t.Errorf("String = %q, want bullet", c.String())
	}
	if s := None.String(); s != "none" {
		t.Errorf("String = %q", s)
	}
	if s := Section.String(); s != "section" {
		t.Errorf("String = %q", s)
	}
}

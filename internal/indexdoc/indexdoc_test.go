package indexdoc

import (
	"strings"
	"testing"
)

var entry = Entry{Title: "Use Kafka", Link: "0002-use-kafka.md", Status: "proposed", Date: "2024-02-01"}

func TestEntryLine(t *testing.T) {
	if got := entry.Line(); got != "- [Use Kafka](0002-use-kafka.md) (proposed, 2024-02-01)" {
		t.Errorf("Line = %q", got)
	}
}

func TestInsert(t *testing.T) {
	line := entry.Line()
	cases := []struct {
		name      string
		in        string
		want      string
		placement Placement
	}{
		{
			name:      "after last item in ADRs section",
			in:        "# Log\n\n## ADRs\n\n- [A](0001-a.md) (accepted, 2024-01-01)\n\n## Other\n\n- x\n",
			want:      "# Log\n\n## ADRs\n\n- [A](0001-a.md) (accepted, 2024-01-01)\n" + line + "\n\n## Other\n\n- x\n",
			placement: AfterLastItem,
		},
		{
			name:      "star items and case-insensitive heading",
			in:        "## adrs\n* [A](0001-a.md) (accepted, 2024-01-01)\ntrailing prose\n",
			want:      "## adrs\n* [A](0001-a.md) (accepted, 2024-01-01)\n" + line + "\ntrailing prose\n",
			placement: AfterLastItem,
		},
		{
			name:      "empty section at end of file",
			in:        "# Log\n\n## ADRs\n",
			want:      "# Log\n\n## ADRs\n\n" + line + "\n",
			placement: InSection,
		},
		{
			name:      "prose-only section appends at section end",
			in:        "## ADRs\nSee below.",
			want:      "## ADRs\nSee below.\n" + line,
			placement: InSection,
		},
		{
			name:      "heading directly followed by next heading",
			in:        "## ADRs\n## Other\n",
			want:      "## ADRs\n\n" + line + "\n## Other\n",
			placement: InSection,
		},
		{
			name:      "no heading appends",
			in:        Seed,
			want:      "# ADR Log\n\n" + line + "\n",
			placement: AtEnd,
		},
		{
			name:      "no heading without trailing newline",
			in:        "# ADR Log",
			want:      "# ADR Log\n" + line,
			placement: AtEnd,
		},
		{
			name:      "empty document",
			in:        "",
			want:      line,
			placement: AtEnd,
		},
		{
			name:      "crlf preserved",
			in:        "## ADRs\r\n\r\n- [A](a.md) (x, y)\r\n",
			want:      "## ADRs\r\n\r\n- [A](a.md) (x, y)\r\n" + line + "\r\n",
			placement: AfterLastItem,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, placement := Insert(tc.in, entry)
			if got != tc.want {
				t.Errorf("Insert = %q, want %q", got, tc.want)
			}
			if placement != tc.placement {
				t.Errorf("placement = %v, want %v", placement, tc.placement)
			}
		})
	}
}

func TestInsert_Idempotent(t *testing.T) {
	once, p1 := Insert("# Log\n\n## ADRs\n\n", entry)
	if p1 == Unchanged {
		t.Fatal("first insert reported unchanged")
	}
	twice, p2 := Insert(once, entry)
	if p2 != Unchanged || twice != once {
		t.Errorf("second insert changed document: %q", twice)
	}
	if n := strings.Count(twice, entry.Link); n != 1 {
		t.Errorf("link appears %d times", n)
	}
}

func TestInsert_LinkAnywhereIsNoop(t *testing.T) {
	in := "See [the kafka ADR](0002-use-kafka.md) for details.\n"
	got, p := Insert(in, entry)
	if p != Unchanged || got != in {
		t.Errorf("Insert = %q (%v)", got, p)
	}
}

func TestSetEntryStatus(t *testing.T) {
	in := "## ADRs\n\n- [A](0001-a.md) (accepted, 2024-01-01)\n- [Use Kafka](0002-use-kafka.md) (proposed, 2024-02-01)\n"
	got, changed := SetEntryStatus(in, "0002-use-kafka.md", "rejected")
	if !changed {
		t.Fatal("expected change")
	}
	want := "## ADRs\n\n- [A](0001-a.md) (accepted, 2024-01-01)\n- [Use Kafka](0002-use-kafka.md) (rejected, 2024-02-01)\n"
	if got != want {
		t.Errorf("SetEntryStatus = %q", got)
	}

	same, changed := SetEntryStatus(got, "0002-use-kafka.md", "rejected")
	if changed || same != got {
		t.Errorf("same status should be a no-op")
	}
	if _, changed := SetEntryStatus(in, "0009-missing.md", "x"); changed {
		t.Error("missing link should not change")
	}
}

func TestEntries(t *testing.T) {
	in := "# Log\n\n## ADRs\n\n- [A](0001-a.md) (accepted, 2024-01-01)\n* [B, with comma](b.md) (proposed,2024-02-02)\n- not an entry\n"
	got := Entries(in)
	if len(got) != 2 {
		t.Fatalf("Entries = %+v", got)
	}
	if got[0] != (Entry{Title: "A", Link: "0001-a.md", Status: "accepted", Date: "2024-01-01"}) {
		t.Errorf("entry 0 = %+v", got[0])
	}
	if got[1].Title != "B, with comma" || got[1].Date != "2024-02-02" {
		t.Errorf("entry 1 = %+v", got[1])
	}
}

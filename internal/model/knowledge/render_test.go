package knowledge

import "testing"

func TestRenderEntry(t *testing.T) {
	got := Render([]Entry{{
		Title:      "Bloat",
		Definition: "Gas in the rumen.",
		Symptoms:   Lines{"Swelling", "Pain"},
	}})

	want := "**Bloat**\n\nDefinition: Gas in the rumen.\n\nSymptoms:\n🟢 Swelling\n🟢 Pain"
	if got != want {
		t.Fatalf("unexpected render:\n%q\nwant\n%q", got, want)
	}
}

func TestRenderSeparatesEntries(t *testing.T) {
	got := Render([]Entry{{Title: "A"}, {Title: "B"}})
	if got != "**A**\n\n**B**" {
		t.Fatalf("unexpected render: %q", got)
	}
	if Render(nil) != "" {
		t.Fatal("no entries must render empty text")
	}
}

package ai

import (
	"strings"
	"testing"

	"github.com/zhouzirui/vetchat/internal/model/knowledge"
)

func TestBuildSystemPromptIncludesReferences(t *testing.T) {
	prompt := BuildSystemPrompt([]knowledge.Entry{{Title: "Mastitis", Definition: "Udder inflammation."}})

	for _, want := range []string{"**Mastitis**", "Definition: Udder inflammation.", "🟢"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

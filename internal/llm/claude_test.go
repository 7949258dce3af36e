package llm

import (
	"encoding/json"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
)

func TestExtractText(t *testing.T) {
	payload := `{
		"content": [
			{"type": "text", "text": "hello "},
			{"type": "tool_use", "id": "t1", "name": "noop", "input": {}},
			{"type": "text", "text": "world"}
		]
	}`

	var msg anthropic.Message
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		t.Fatalf("unmarshal message: %v", err)
	}

	if got := extractText(&msg); got != "hello world" {
		t.Errorf("extractText = %q, want %q", got, "hello world")
	}
}

func TestStripCodeFence(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"bare json", `{"title":"x"}`, `{"title":"x"}`},
		{"json fence", "```json\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"plain fence", "```\n{\"title\":\"x\"}\n```", `{"title":"x"}`},
		{"surrounding whitespace", "  {\"title\":\"x\"}  ", `{"title":"x"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripCodeFence(tt.input); got != tt.want {
				t.Errorf("stripCodeFence(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

package usecase

import (
	"testing"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
)

func TestClassifyCommands(t *testing.T) {
	tests := []struct {
		text string
		want domain.IntentKind
	}{
		{"/dt", domain.IntentOptOut},
		{"/DT", domain.IntentOptOut},
		{" /dt ", domain.IntentOptOut},
		{"/at", domain.IntentOptIn},
		{"/At", domain.IntentOptIn},
		{"/dt please", domain.IntentPlain},
		{"dt", domain.IntentPlain},
		{"hello", domain.IntentPlain},
	}

	for _, tt := range tests {
		got := Classify(tt.text, "scribe")
		if got.Kind != tt.want {
			t.Errorf("Classify(%q).Kind = %v, want %v", tt.text, got.Kind, tt.want)
		}
	}
}

func TestClassifyMention(t *testing.T) {
	tests := []struct {
		text     string
		alias    string
		question string
	}{
		{"@scribe what time is it", "scribe", "what time is it"},
		{"scribe what time is it", "scribe", "what time is it"},
		{"u/scribe tell me a joke", "scribe", "tell me a joke"},
		{"@u/scribe tell me a joke", "scribe", "tell me a joke"},
		{"hey @SCRIBE how are you", "scribe", "hey  how are you"},
		{"@scribe", "scribe", ""},
		{"  @scribe   ", "scribe", ""},
	}

	for _, tt := range tests {
		got := Classify(tt.text, tt.alias)
		if got.Kind != domain.IntentAssistantMention {
			t.Fatalf("Classify(%q) kind = %v, want assistant-mention", tt.text, got.Kind)
		}
		if got.Question != tt.question {
			t.Errorf("Classify(%q).Question = %q, want %q", tt.text, got.Question, tt.question)
		}
	}
}

func TestClassifyNoAlias(t *testing.T) {
	got := Classify("@scribe hello", "")
	if got.Kind != domain.IntentPlain {
		t.Errorf("Classify with empty alias = %v, want plain", got.Kind)
	}
}

func TestClassifyCommandBeatsMention(t *testing.T) {
	// A bare command is a command even when the alias appears in it.
	got := Classify("/dt", "dt")
	if got.Kind != domain.IntentOptOut {
		t.Errorf("Classify(\"/dt\") with alias \"dt\" = %v, want opt-out", got.Kind)
	}
}

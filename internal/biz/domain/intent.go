package domain

// IntentKind classifies what a message asks the pipeline to do.
type IntentKind int

const (
	// IntentPlain is a normal message: stored, no side channel.
	IntentPlain IntentKind = iota

	// IntentOptOut disables tracking for the author.
	IntentOptOut

	// IntentOptIn re-enables tracking for the author.
	IntentOptIn

	// IntentAssistantMention addresses the assistant. Question holds the
	// text with the alias stripped; when empty, no request is issued but
	// the message is still stored.
	IntentAssistantMention
)

// Intent is the result of classifying one message text.
type Intent struct {
	Kind     IntentKind
	Question string
}

func (k IntentKind) String() string {
	switch k {
	case IntentOptOut:
		return "opt-out"
	case IntentOptIn:
		return "opt-in"
	case IntentAssistantMention:
		return "assistant-mention"
	default:
		return "plain"
	}
}

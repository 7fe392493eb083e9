package usecase

import (
	"regexp"
	"strings"
	"sync"

	"github.com/roomscribe/roomscribe/internal/biz/domain"
)

// Inline command tokens, matched case-insensitively against the whole
// message text.
const (
	OptOutToken = "/dt"
	OptInToken  = "/at"
)

var (
	aliasPatternMu sync.Mutex
	aliasPatterns  = map[string]*regexp.Regexp{}
)

// aliasPattern returns a cached pattern matching the alias with an
// optional leading mention sigil (@ and/or u/).
func aliasPattern(alias string) *regexp.Regexp {
	aliasPatternMu.Lock()
	defer aliasPatternMu.Unlock()

	if re, ok := aliasPatterns[alias]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)@?(?:u/)?` + regexp.QuoteMeta(alias))
	aliasPatterns[alias] = re
	return re
}

// Classify inspects message text and produces the intent the polling
// loop should dispatch. It is total and side-effect-free: the caller
// sequences the resulting storage and queue effects.
func Classify(text, botAlias string) domain.Intent {
	trimmed := strings.TrimSpace(text)

	switch strings.ToLower(trimmed) {
	case OptOutToken:
		return domain.Intent{Kind: domain.IntentOptOut}
	case OptInToken:
		return domain.Intent{Kind: domain.IntentOptIn}
	}

	if botAlias != "" && strings.Contains(strings.ToLower(trimmed), strings.ToLower(botAlias)) {
		question := strings.TrimSpace(aliasPattern(botAlias).ReplaceAllString(trimmed, ""))
		return domain.Intent{Kind: domain.IntentAssistantMention, Question: question}
	}

	return domain.Intent{Kind: domain.IntentPlain}
}

package services

import (
	"regexp"
	"strings"

	"github.com/replyhub/replyhub/modules/autoreply/domain/entities/knowledgebase"
)

// selfDisclosurePhrases are removed case-insensitively so the reply
// never announces that it is automated. Longer phrases come first so
// their shorter suffixes do not leave fragments behind.
var selfDisclosurePhrases = compilePhrases([]string{
	"as an ai language model, ",
	"as an ai language model",
	"as an ai assistant, ",
	"as an ai assistant",
	"as an ai, ",
	"as an ai",
	"i am an ai language model",
	"i am an ai assistant",
	"i am an ai",
	"i'm an ai",
})

func compilePhrases(phrases []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(phrases))
	for _, p := range phrases {
		out = append(out, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(p)))
	}
	return out
}

// emojiTriggers maps substring triggers to a prefix emoji. Applied
// only when the response settings ask for emojis.
var emojiTriggers = []struct {
	trigger string
	emoji   string
}{
	{"thank", "🙏 "},
	{"welcome", "😊 "},
	{"congrat", "🎉 "},
	{"sorry", "🙇 "},
}

var thinkTagRe = regexp.MustCompile(`(?s)<think>.*?</think>`)

// postprocess shapes raw model output into the final reply: reasoning
// tags and self-disclosure phrases are stripped, emojis are applied
// when configured, and the result is trimmed and truncated to the
// configured length at a whitespace boundary.
func postprocess(raw string, settings knowledgebase.ResponseSettings) string {
	text := thinkTagRe.ReplaceAllString(raw, "")
	text = stripPhrases(text, selfDisclosurePhrases)
	if settings.IncludeEmojis {
		text = applyEmojis(text)
	}
	text = strings.TrimSpace(text)
	return truncateAtWhitespace(text, settings.MaxLength)
}

func stripPhrases(text string, phrases []*regexp.Regexp) string {
	for _, re := range phrases {
		text = re.ReplaceAllString(text, "")
	}
	return text
}

func applyEmojis(text string) string {
	lower := strings.ToLower(text)
	for _, e := range emojiTriggers {
		if strings.Contains(lower, e.trigger) {
			return e.emoji + text
		}
	}
	return text
}

// truncateAtWhitespace cuts text to at most maxLen runes at the
// nearest preceding whitespace, never mid-token.
func truncateAtWhitespace(text string, maxLen int) string {
	if maxLen <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	cut := maxLen
	for cut > 0 && !isSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		cut = maxLen
	}
	return strings.TrimSpace(string(runes[:cut]))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

package validate

import (
	"regexp"
	"strings"

	"fitserver/internal/domain"
)

// Markdown structural markers the coach is contractually forbidden from
// using: replies must read like a text message, not a document.
var markdownLineMarker = regexp.MustCompile(`(?m)^\s*(#{1,6}\s|[-*+]\s|\d+\.\s|>\s)`)

func (v *Validator) validateChat(raw string) (*domain.ValidatedOutput, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return nil, schemaErr("coach reply is empty")
	}
	if markdownLineMarker.MatchString(text) || strings.Contains(text, "**") || strings.Contains(text, "```") {
		return nil, policyErr("coach reply contains markdown formatting")
	}
	return &domain.ValidatedOutput{
		Kind: domain.JobKindChat,
		Chat: &domain.ChatReply{Text: v.trimReply(text)},
	}, nil
}

// trimReply collapses whitespace and enforces the coach word budget: at most
// two sentences, hard-capped at CoachMaxWords words.
func (v *Validator) trimReply(text string) string {
	cleaned := strings.Join(strings.Fields(strings.ReplaceAll(text, "\n", " ")), " ")
	if cleaned == "" {
		return cleaned
	}
	sentences := splitSentences(cleaned)
	if len(sentences) > 2 {
		cleaned = strings.Join(sentences[:2], " ")
	}
	words := strings.Fields(cleaned)
	maxWords := v.CoachMaxWords
	if maxWords <= 0 {
		maxWords = DefaultCoachMaxWords
	}
	if len(words) > maxWords {
		cleaned = strings.TrimRight(strings.Join(words[:maxWords], " "), ".,!?")
	}
	return cleaned
}

func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for i := 0; i < len(text)-1; i++ {
		switch text[i] {
		case '.', '!', '?':
			if text[i+1] == ' ' {
				sentences = append(sentences, strings.TrimSpace(text[start:i+1]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(text[start:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

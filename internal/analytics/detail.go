package analytics

import (
	"sort"
	"strings"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
)

const (
	// MaxContentRunes bounds SessionMessage.Content.
	MaxContentRunes = 500
	noTextContent   = "(no text content)"
)

// SessionDetail renders a session's messages oldest first. parts maps a
// message id to its parts; only non-empty text parts contribute content.
func SessionDetail(messages []core.RawMessage, parts map[string][]core.RawPart) []core.SessionMessage {
	sorted := append([]core.RawMessage(nil), messages...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Created < sorted[j].Time.Created })

	out := make([]core.SessionMessage, 0, len(sorted))
	for _, m := range sorted {
		sm := core.SessionMessage{
			ID:        m.ID,
			Role:      messageRole(m.Role),
			Content:   truncateRunes(messageText(parts[m.ID]), MaxContentRunes),
			Timestamp: m.Time.Created,
			Agent:     m.Agent,
			Model:     m.ModelID,
			Cost:      m.Cost,
		}
		if m.Tokens != nil {
			sm.Tokens = &core.MessageTokens{
				Input:     m.Tokens.Input,
				Output:    m.Tokens.Output,
				Reasoning: m.Tokens.Reasoning,
			}
		}
		out = append(out, sm)
	}
	return out
}

func messageText(parts []core.RawPart) string {
	var texts []string
	for _, p := range parts {
		if p.Type == "text" && p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	if len(texts) == 0 {
		return noTextContent
	}
	return strings.Join(texts, "\n")
}

func messageRole(role string) string {
	switch role {
	case "user", "assistant", "system":
		return role
	default:
		return "system"
	}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

package parsers

import (
	"time"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
)

// Candidate key lists, most common naming first.
var (
	idKeys        = []string{"id"}
	sessionIDKeys = []string{"sessionID", "session_id", "sessionId"}
	messageIDKeys = []string{"messageID", "message_id", "messageId"}
	projectIDKeys = []string{"projectID", "project_id", "projectId"}
	parentIDKeys  = []string{"parentID", "parent_id", "parentId"}
	modelIDKeys   = []string{"modelID", "model_id", "modelId"}
	providerKeys  = []string{"providerID", "provider_id", "providerId"}

	createdKeys   = []string{"created", "createdAt", "created_at", "time_created"}
	updatedKeys   = []string{"updated", "updatedAt", "updated_at", "time_updated"}
	completedKeys = []string{"completed", "completedAt", "completed_at", "time_completed"}
)

// timeSources returns the maps to search for time fields: the structured
// `time` value (object or JSON string) first, then the flat row.
func timeSources(row Row) []Row {
	if nested, ok := Object(row["time"]); ok {
		return []Row{nested, row}
	}
	return []Row{row}
}

// Times normalizes the created/updated pair of a row to milliseconds. A
// missing created defaults to now; a missing updated defaults to created.
func Times(row Row, now time.Time) core.TimeSpan {
	sources := timeSources(row)
	created, ok := firstTimestamp(sources, createdKeys...)
	if !ok {
		created = now.UnixMilli()
	}
	updated, ok := firstTimestamp(sources, updatedKeys...)
	if !ok {
		updated = created
	}
	return core.TimeSpan{Created: created, Updated: updated}
}

// Tokens decodes a token-usage value given as an object or a JSON string.
// Missing sub-fields are zero. The bool is false when value is absent or not
// an object.
func Tokens(value any) (core.Tokens, bool) {
	obj, ok := Object(value)
	if !ok {
		return core.Tokens{}, false
	}
	var t core.Tokens
	t.Input, _ = Int(obj, "input", "input_tokens", "inputTokens")
	t.Output, _ = Int(obj, "output", "output_tokens", "outputTokens")
	t.Reasoning, _ = Int(obj, "reasoning", "reasoning_tokens", "reasoningTokens")
	if cache, ok := Object(obj["cache"]); ok {
		t.Cache.Read, _ = Int(cache, "read")
		t.Cache.Write, _ = Int(cache, "write")
	} else {
		t.Cache.Read, _ = Int(obj, "cache_read", "cacheRead")
		t.Cache.Write, _ = Int(obj, "cache_write", "cacheWrite")
	}
	return t, true
}

func optionalNumber(row Row, keys ...string) *float64 {
	n, ok := Number(row, keys...)
	if !ok {
		return nil
	}
	return &n
}

func optionalTokens(row Row) *core.Tokens {
	t, ok := Tokens(row["tokens"])
	if !ok {
		return nil
	}
	return &t
}

// nestedString reads keys from a nested object such as
// {"model": {"modelID": "..."}}.
func nestedString(row Row, field string, keys ...string) string {
	obj, ok := Object(row[field])
	if !ok {
		return ""
	}
	return String(obj, keys...)
}

// Session decodes a session row. The bool is false when the row has no id.
func Session(row Row, now time.Time) (core.RawSession, bool) {
	row = Flatten(row)
	id := String(row, idKeys...)
	if id == "" {
		return core.RawSession{}, false
	}
	return core.RawSession{
		ID:        id,
		Slug:      String(row, "slug"),
		Version:   String(row, "version"),
		ProjectID: String(row, projectIDKeys...),
		Directory: String(row, "directory", "cwd"),
		ParentID:  String(row, parentIDKeys...),
		Title:     String(row, "title"),
		Time:      Times(row, now),
	}, true
}

// Message decodes a message row. The bool is false when the row has no id.
func Message(row Row, now time.Time) (core.RawMessage, bool) {
	row = Flatten(row)
	id := String(row, append([]string{"id"}, messageIDKeys...)...)
	if id == "" {
		return core.RawMessage{}, false
	}

	sources := timeSources(row)
	created, ok := firstTimestamp(sources, createdKeys...)
	if !ok {
		created = now.UnixMilli()
	}
	msgTime := core.MessageTime{Created: created}
	if completed, ok := firstTimestamp(sources, completedKeys...); ok {
		msgTime.Completed = &completed
	}

	modelID := String(row, modelIDKeys...)
	if modelID == "" {
		modelID = nestedString(row, "model", modelIDKeys...)
	}
	providerID := String(row, providerKeys...)
	if providerID == "" {
		providerID = nestedString(row, "model", providerKeys...)
	}

	return core.RawMessage{
		ID:         id,
		SessionID:  String(row, sessionIDKeys...),
		Role:       String(row, "role"),
		Time:       msgTime,
		ParentID:   String(row, parentIDKeys...),
		ModelID:    modelID,
		ProviderID: providerID,
		Mode:       String(row, "mode"),
		Agent:      String(row, "agent"),
		Cost:       optionalNumber(row, "cost"),
		Tokens:     optionalTokens(row),
		Finish:     String(row, "finish"),
	}, true
}

// Part decodes a part row. The bool is false when the row has no id.
func Part(row Row) (core.RawPart, bool) {
	row = Flatten(row)
	id := String(row, idKeys...)
	if id == "" {
		return core.RawPart{}, false
	}
	text, _ := row["text"].(string)
	return core.RawPart{
		ID:        id,
		SessionID: String(row, sessionIDKeys...),
		MessageID: String(row, messageIDKeys...),
		Type:      String(row, "type"),
		Text:      text,
		Cost:      optionalNumber(row, "cost"),
		Tokens:    optionalTokens(row),
	}, true
}

// Project decodes a project row. The bool is false when the row has no id.
func Project(row Row, now time.Time) (core.RawProject, bool) {
	row = Flatten(row)
	id := String(row, idKeys...)
	if id == "" {
		return core.RawProject{}, false
	}
	return core.RawProject{
		ID:       id,
		Worktree: String(row, "worktree"),
		VCS:      String(row, "vcs"),
		Time:     Times(row, now),
	}, true
}

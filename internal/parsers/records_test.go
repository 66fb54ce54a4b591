package parsers

import (
	"reflect"
	"testing"
	"time"
)

var fixedNow = time.UnixMilli(1_750_000_000_000)

func TestTimes_AllShapesNormalizeEqually(t *testing.T) {
	want := Times(Row{"time": map[string]any{"created": 1700000000000.0, "updated": 1700000100000.0}}, fixedNow)

	shapes := map[string]Row{
		"json string":       {"time": `{"created":1700000000000,"updated":1700000100000}`},
		"flat created":      {"created": 1700000000, "updated": 1700000100},
		"flat createdAt":    {"createdAt": "1700000000000", "updatedAt": "1700000100000"},
		"flat created_at":   {"created_at": 1700000000.0, "updated_at": 1700000100.0},
		"flat time_columns": {"time_created": int64(1700000000000), "time_updated": int64(1700000100000)},
	}
	for name, row := range shapes {
		t.Run(name, func(t *testing.T) {
			if got := Times(row, fixedNow); got != want {
				t.Fatalf("Times = %+v, want %+v", got, want)
			}
		})
	}
}

func TestTimes_UpdatedDefaultsToCreated(t *testing.T) {
	got := Times(Row{"time": map[string]any{"created": 1700000000000.0}}, fixedNow)
	if got.Created != 1700000000000 || got.Updated != got.Created {
		t.Fatalf("Times = %+v, want updated == created", got)
	}
}

func TestTimes_MissingCreatedIsNow(t *testing.T) {
	got := Times(Row{}, fixedNow)
	if got.Created != fixedNow.UnixMilli() || got.Updated != fixedNow.UnixMilli() {
		t.Fatalf("Times = %+v, want both %d", got, fixedNow.UnixMilli())
	}
}

func TestTokens_StringAndObjectAgree(t *testing.T) {
	obj := map[string]any{
		"input": 100.0, "output": 50.0, "reasoning": 5.0,
		"cache": map[string]any{"read": 10.0, "write": 2.0},
	}
	str := `{"input":100,"output":50,"reasoning":5,"cache":{"read":10,"write":2}}`

	a, okA := Tokens(obj)
	b, okB := Tokens(str)
	if !okA || !okB {
		t.Fatalf("Tokens ok = %v/%v, want true/true", okA, okB)
	}
	if a != b {
		t.Fatalf("Tokens(object) = %+v, Tokens(string) = %+v", a, b)
	}

	msgA, _ := Message(Row{"id": "m", "tokens": obj, "time": map[string]any{"created": 1.0}}, fixedNow)
	msgB, _ := Message(Row{"id": "m", "tokens": str, "time": map[string]any{"created": 1.0}}, fixedNow)
	if !reflect.DeepEqual(msgA, msgB) {
		t.Fatalf("Message(tokens object) = %+v, Message(tokens string) = %+v", msgA, msgB)
	}
}

func TestTokens_MissingSubfieldsAreZero(t *testing.T) {
	got, ok := Tokens(map[string]any{"input": 3.0})
	if !ok {
		t.Fatal("Tokens ok = false")
	}
	if got.Input != 3 || got.Output != 0 || got.Reasoning != 0 || got.Cache.Read != 0 {
		t.Fatalf("Tokens = %+v", got)
	}
	if _, ok := Tokens(nil); ok {
		t.Fatal("Tokens(nil) ok = true, want false")
	}
}

func TestMessage_HistoricalNamingConventions(t *testing.T) {
	rows := []Row{
		{"id": "m1", "sessionID": "s1", "modelID": "gpt-5.2", "providerID": "openai", "role": "assistant", "time": map[string]any{"created": 1700000000000.0}},
		{"id": "m1", "session_id": "s1", "model_id": "gpt-5.2", "provider_id": "openai", "role": "assistant", "time_created": int64(1700000000000)},
		{"id": "m1", "sessionId": "s1", "modelId": "gpt-5.2", "providerId": "openai", "role": "assistant", "createdAt": 1700000000.0},
		{"id": "m1", "sessionID": "s1", "model": map[string]any{"modelID": "gpt-5.2", "providerID": "openai"}, "role": "assistant", "time": `{"created":1700000000000}`},
	}
	for i, row := range rows {
		msg, ok := Message(row, fixedNow)
		if !ok {
			t.Fatalf("row %d: ok = false", i)
		}
		if msg.SessionID != "s1" || msg.ModelID != "gpt-5.2" || msg.ProviderID != "openai" || msg.Time.Created != 1700000000000 {
			t.Fatalf("row %d: Message = %+v", i, msg)
		}
	}
}

func TestMessage_OpenCodeSQLiteRow(t *testing.T) {
	row := Row{
		"id":           "msg_1",
		"session_id":   "ses_1",
		"time_created": int64(1771754400000),
		"time_updated": int64(1771754405000),
		"data":         `{"role":"assistant","agent":"build","modelID":"claude-sonnet-4-5","cost":0.012,"tokens":{"input":120,"output":40,"reasoning":5,"cache":{"read":10,"write":2}},"time":{"created":1771754400000,"completed":1771754405000},"finish":"stop"}`,
	}
	msg, ok := Message(row, fixedNow)
	if !ok {
		t.Fatal("ok = false")
	}
	if msg.ID != "msg_1" || msg.SessionID != "ses_1" || msg.Agent != "build" || msg.Finish != "stop" {
		t.Fatalf("Message = %+v", msg)
	}
	if msg.Cost == nil || *msg.Cost != 0.012 {
		t.Fatalf("Cost = %v, want 0.012", msg.Cost)
	}
	if msg.Tokens == nil || msg.Tokens.Total() != 165 || msg.Tokens.Cache.Read != 10 {
		t.Fatalf("Tokens = %+v", msg.Tokens)
	}
	if msg.Time.Completed == nil || *msg.Time.Completed != 1771754405000 {
		t.Fatalf("Completed = %v", msg.Time.Completed)
	}
}

func TestMessage_UnsetCostStaysNil(t *testing.T) {
	msg, ok := Message(Row{"id": "m", "time": map[string]any{"created": 1.0}}, fixedNow)
	if !ok {
		t.Fatal("ok = false")
	}
	if msg.Cost != nil || msg.Tokens != nil || msg.Time.Completed != nil {
		t.Fatalf("Message = %+v, want nil optional fields", msg)
	}
}

func TestSession_RequiresID(t *testing.T) {
	if _, ok := Session(Row{"title": "x"}, fixedNow); ok {
		t.Fatal("Session without id ok = true")
	}
	s, ok := Session(Row{
		"id": "ses_1", "slug": "brave-fox", "projectID": "p1", "directory": "/work",
		"title": "Refactor", "version": "1.0.0", "time": map[string]any{"created": 1700000000000.0, "updated": 1700000500000.0},
	}, fixedNow)
	if !ok {
		t.Fatal("ok = false")
	}
	if s.ProjectID != "p1" || s.Directory != "/work" || s.Slug != "brave-fox" || s.Time.Updated != 1700000500000 {
		t.Fatalf("Session = %+v", s)
	}
}

func TestPart_KeepsTextVerbatim(t *testing.T) {
	p, ok := Part(Row{"id": "prt_1", "messageID": "m1", "sessionID": "s1", "type": "text", "text": "  hello\n"})
	if !ok {
		t.Fatal("ok = false")
	}
	if p.Text != "  hello\n" || p.MessageID != "m1" || p.Type != "text" {
		t.Fatalf("Part = %+v", p)
	}
}

func TestProject_Decodes(t *testing.T) {
	p, ok := Project(Row{"id": "proj", "worktree": "/repo", "vcs": "git", "time": map[string]any{"created": 1700000000.0}}, fixedNow)
	if !ok {
		t.Fatal("ok = false")
	}
	if p.Worktree != "/repo" || p.VCS != "git" || p.Time.Created != 1700000000000 {
		t.Fatalf("Project = %+v", p)
	}
}

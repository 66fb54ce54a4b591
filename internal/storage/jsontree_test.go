package storage

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func fixedNow() time.Time { return time.UnixMilli(1_700_000_000_000) }

func newJSONTree(t *testing.T) string {
	t.Helper()
	base := t.TempDir()
	writeFile(t, filepath.Join(base, "project", "p1.json"), `{"id":"p1","worktree":"/src/app","vcs":"git","time":{"created":1699990000000}}`)
	writeFile(t, filepath.Join(base, "session", "p1", "s1.json"), `{"id":"s1","projectID":"p1","directory":"/src/app","title":"First","time":{"created":1699999000000,"updated":1699999500000}}`)
	writeFile(t, filepath.Join(base, "session", "p1", "broken.json"), `{"id":`)
	writeFile(t, filepath.Join(base, "session", "s2.json"), `{"id":"s2","slug":"quiet-owl","time":{"created":1699999100}}`)
	writeFile(t, filepath.Join(base, "session", "p1", "notes.txt"), `ignored`)
	writeFile(t, filepath.Join(base, "message", "s1", "m1.json"), `{"id":"m1","role":"user","agent":"build","time":{"created":1699999000100}}`)
	writeFile(t, filepath.Join(base, "message", "s1", "m2.json"), `{"id":"m2","sessionID":"s1","role":"assistant","modelID":"gpt-5.2","cost":0.25,"tokens":{"input":10,"output":20},"time":{"created":1699999000200}}`)
	writeFile(t, filepath.Join(base, "message", "s2", "m3.json"), `{"id":"m3","role":"user","time":{"created":1699999100000}}`)
	writeFile(t, filepath.Join(base, "part", "m1", "pt1.json"), `{"id":"pt1","type":"text","text":"hello"}`)
	writeFile(t, filepath.Join(base, "part", "m1", "pt2.json"), `{"id":"pt2","type":"tool"}`)
	return base
}

func TestJSONReader_ListSessionsSkipsCorruptFiles(t *testing.T) {
	r := NewJSONReader(newJSONTree(t), fixedNow)
	sessions := r.ListSessions(context.Background())
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2: %+v", len(sessions), sessions)
	}
	byID := map[string]int64{}
	for _, s := range sessions {
		byID[s.ID] = s.Time.Created
	}
	if byID["s1"] != 1699999000000 {
		t.Fatalf("s1 created = %d", byID["s1"])
	}
	if byID["s2"] != 1699999100000 {
		t.Fatalf("s2 created = %d, want seconds scaled to ms", byID["s2"])
	}
}

func TestJSONReader_ListMessagesFillsSessionFromDirectory(t *testing.T) {
	r := NewJSONReader(newJSONTree(t), fixedNow)
	msgs := r.ListMessages(context.Background(), "s1")
	if len(msgs) != 2 {
		t.Fatalf("messages = %d, want 2", len(msgs))
	}
	for _, m := range msgs {
		if m.SessionID != "s1" {
			t.Fatalf("message %s session = %q, want s1", m.ID, m.SessionID)
		}
	}

	all := r.ListMessages(context.Background(), "")
	ids := make([]string, 0, len(all))
	for _, m := range all {
		ids = append(ids, m.ID+":"+m.SessionID)
	}
	sort.Strings(ids)
	want := []string{"m1:s1", "m2:s1", "m3:s2"}
	if len(ids) != len(want) {
		t.Fatalf("all messages = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("all messages = %v, want %v", ids, want)
		}
	}
}

func TestJSONReader_ListParts(t *testing.T) {
	r := NewJSONReader(newJSONTree(t), fixedNow)
	parts := r.ListParts(context.Background(), "m1")
	if len(parts) != 2 {
		t.Fatalf("parts = %d, want 2", len(parts))
	}
	for _, p := range parts {
		if p.MessageID != "m1" {
			t.Fatalf("part %s message = %q", p.ID, p.MessageID)
		}
	}
	if got := r.ListParts(context.Background(), "missing"); len(got) != 0 {
		t.Fatalf("missing message parts = %+v", got)
	}
}

func TestJSONReader_RejectsTraversalIDs(t *testing.T) {
	r := NewJSONReader(newJSONTree(t), fixedNow)
	if got := r.ListMessages(context.Background(), "../message/s1"); len(got) != 0 {
		t.Fatalf("traversal id returned %d messages", len(got))
	}
}

func TestJSONReader_MissingBaseIsEmpty(t *testing.T) {
	r := NewJSONReader(filepath.Join(t.TempDir(), "nope"), fixedNow)
	ctx := context.Background()
	if len(r.ListProjects(ctx)) != 0 || len(r.ListSessions(ctx)) != 0 || len(r.ListMessages(ctx, "")) != 0 {
		t.Fatal("expected empty results for a missing tree")
	}
}

func TestJSONReader_ListProjects(t *testing.T) {
	r := NewJSONReader(newJSONTree(t), fixedNow)
	projects := r.ListProjects(context.Background())
	if len(projects) != 1 || projects[0].Worktree != "/src/app" {
		t.Fatalf("projects = %+v", projects)
	}
}

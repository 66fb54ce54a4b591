package core

// TimeSpan is a created/updated pair in milliseconds since the epoch.
type TimeSpan struct {
	Created int64 `json:"created"`
	Updated int64 `json:"updated"`
}

// MessageTime is the time block of a message. Completed is nil while the
// message is still streaming.
type MessageTime struct {
	Created   int64  `json:"created"`
	Completed *int64 `json:"completed,omitempty"`
}

type TokenCache struct {
	Read  int64 `json:"read"`
	Write int64 `json:"write"`
}

type Tokens struct {
	Input     int64      `json:"input"`
	Output    int64      `json:"output"`
	Reasoning int64      `json:"reasoning"`
	Cache     TokenCache `json:"cache"`
}

// Total is input + output + reasoning. Cache traffic is not counted.
func (t Tokens) Total() int64 {
	return t.Input + t.Output + t.Reasoning
}

// RawSession is one user-initiated work session as persisted by the agent runtime.
type RawSession struct {
	ID        string   `json:"id"`
	Slug      string   `json:"slug"`
	Version   string   `json:"version"`
	ProjectID string   `json:"projectId"`
	Directory string   `json:"directory"`
	ParentID  string   `json:"parentId,omitempty"`
	Title     string   `json:"title"`
	Time      TimeSpan `json:"time"`
}

// RawMessage belongs to exactly one RawSession via SessionID.
type RawMessage struct {
	ID         string      `json:"id"`
	SessionID  string      `json:"sessionId"`
	Role       string      `json:"role"`
	Time       MessageTime `json:"time"`
	ParentID   string      `json:"parentId,omitempty"`
	ModelID    string      `json:"modelId,omitempty"`
	ProviderID string      `json:"providerId,omitempty"`
	Mode       string      `json:"mode,omitempty"`
	Agent      string      `json:"agent,omitempty"`
	Cost       *float64    `json:"cost,omitempty"`
	Tokens     *Tokens     `json:"tokens,omitempty"`
	Finish     string      `json:"finish,omitempty"`
}

// CostValue returns the message cost, treating an unset cost as zero.
func (m RawMessage) CostValue() float64 {
	if m.Cost == nil {
		return 0
	}
	return *m.Cost
}

// RawPart is a fragment of a message's content.
type RawPart struct {
	ID        string   `json:"id"`
	SessionID string   `json:"sessionId"`
	MessageID string   `json:"messageId"`
	Type      string   `json:"type"`
	Text      string   `json:"text,omitempty"`
	Cost      *float64 `json:"cost,omitempty"`
	Tokens    *Tokens  `json:"tokens,omitempty"`
}

type RawProject struct {
	ID       string   `json:"id"`
	Worktree string   `json:"worktree"`
	VCS      string   `json:"vcs"`
	Time     TimeSpan `json:"time"`
}

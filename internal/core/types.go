package core

// Session is the dashboard view of a RawSession joined with its messages.
type Session struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Directory    string   `json:"directory"`
	ProjectID    string   `json:"projectId"`
	MessageCount int      `json:"messageCount"`
	Cost         float64  `json:"cost"`
	Agents       []string `json:"agents"`
	Time         TimeSpan `json:"time"`
}

type AgentStatus string

const (
	AgentStatusRunning   AgentStatus = "running"
	AgentStatusIdle      AgentStatus = "idle"
	AgentStatusCompleted AgentStatus = "completed"
)

type AgentActivity struct {
	Agent        string      `json:"agent"`
	Directory    string      `json:"directory"`
	Status       AgentStatus `json:"status"`
	SessionID    string      `json:"sessionId"`
	ElapsedMs    int64       `json:"elapsedMs"`
	Model        string      `json:"model"`
	MessageCount int         `json:"messageCount"`
}

type DashboardStats struct {
	TotalSessions int     `json:"totalSessions"`
	TotalMessages int     `json:"totalMessages"`
	TotalCost     float64 `json:"totalCost"`
	TotalTokens   int64   `json:"totalTokens"`
	ActiveAgents  int     `json:"activeAgents"`
}

type AgentUsage struct {
	Agent         string `json:"agent"`
	Count         int    `json:"count"`
	Percentage    int    `json:"percentage"`
	TotalMessages int    `json:"totalMessages"`
}

type CostHistoryEntry struct {
	Date     string  `json:"date"`
	Label    string  `json:"label"`
	Cost     float64 `json:"cost"`
	Sessions int     `json:"sessions"`
	Messages int     `json:"messages"`
}

type ModelUsage struct {
	Model      string  `json:"model"`
	Messages   int     `json:"messages"`
	Cost       float64 `json:"cost"`
	Percentage int     `json:"percentage"`
	Color      string  `json:"color"`
}

// HourlyActivity is one cell of the 7x24 heatmap. Day 0 is Sunday.
type HourlyActivity struct {
	Day   int `json:"day"`
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

type MessageTokens struct {
	Input     int64 `json:"input"`
	Output    int64 `json:"output"`
	Reasoning int64 `json:"reasoning"`
}

type SessionMessage struct {
	ID        string         `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Timestamp int64          `json:"timestamp"`
	Agent     string         `json:"agent,omitempty"`
	Model     string         `json:"model,omitempty"`
	Cost      *float64       `json:"cost,omitempty"`
	Tokens    *MessageTokens `json:"tokens,omitempty"`
}

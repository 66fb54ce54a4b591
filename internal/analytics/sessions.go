// Package analytics turns normalized raw records into dashboard views. Every
// function is pure: records and the current time go in, view values come out.
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/ohmydashboard/internal/core"
)

const (
	untitledSession = "Untitled"
	unknownValue    = "unknown"
)

// Sessions joins messages to sessions, keeps sessions created inside the
// range, and sorts them most recently updated first. Message counts and cost
// cover every message of a session regardless of the message's own time.
func Sessions(sessions []core.RawSession, messages []core.RawMessage, r core.DateRange, now time.Time) []core.Session {
	cutoff := r.Cutoff(now)
	bySession := lo.GroupBy(messages, func(m core.RawMessage) string { return m.SessionID })

	out := make([]core.Session, 0, len(sessions))
	for _, raw := range sessions {
		if raw.Time.Created < cutoff {
			continue
		}
		msgs := bySession[raw.ID]
		out = append(out, core.Session{
			ID:           raw.ID,
			Title:        sessionTitle(raw),
			Directory:    raw.Directory,
			ProjectID:    raw.ProjectID,
			MessageCount: len(msgs),
			Cost:         lo.SumBy(msgs, func(m core.RawMessage) float64 { return m.CostValue() }),
			Agents:       agentsOf(msgs),
			Time:         raw.Time,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time.Updated != out[j].Time.Updated {
			return out[i].Time.Updated > out[j].Time.Updated
		}
		return out[i].Time.Created > out[j].Time.Created
	})
	return out
}

func sessionTitle(s core.RawSession) string {
	switch {
	case s.Title != "":
		return s.Title
	case s.Slug != "":
		return s.Slug
	default:
		return untitledSession
	}
}

// agentsOf returns the distinct non-empty agent names in first-seen order.
func agentsOf(msgs []core.RawMessage) []string {
	names := lo.FilterMap(msgs, func(m core.RawMessage, _ int) (string, bool) {
		return m.Agent, m.Agent != ""
	})
	return lo.Uniq(names)
}

// Stats summarizes the sessions created inside the range. Token totals are
// taken from messages created inside the range, independent of the session
// filter.
func Stats(sessions []core.RawSession, messages []core.RawMessage, r core.DateRange, now time.Time) core.DashboardStats {
	filtered := Sessions(sessions, messages, r, now)
	activeCutoff := now.Add(-core.ActiveWindow).UnixMilli()
	cutoff := r.Cutoff(now)

	stats := core.DashboardStats{TotalSessions: len(filtered)}
	for _, s := range filtered {
		stats.TotalMessages += s.MessageCount
		stats.TotalCost += s.Cost
		if s.Time.Updated >= activeCutoff {
			stats.ActiveAgents++
		}
	}
	for _, m := range messages {
		if m.Time.Created >= cutoff && m.Tokens != nil {
			stats.TotalTokens += m.Tokens.Total()
		}
	}
	return stats
}

// ActiveAgents reports every session updated within core.ActiveWindow. The
// primary agent is the last agent seen in message time order and the model
// comes from the newest message. Status is always running: nothing in the
// stored records distinguishes an idle or completed agent.
func ActiveAgents(sessions []core.RawSession, messages []core.RawMessage, now time.Time) []core.AgentActivity {
	activeCutoff := now.Add(-core.ActiveWindow).UnixMilli()
	bySession := lo.GroupBy(messages, func(m core.RawMessage) string { return m.SessionID })

	var out []core.AgentActivity
	for _, s := range sessions {
		if s.Time.Updated < activeCutoff {
			continue
		}
		msgs := append([]core.RawMessage(nil), bySession[s.ID]...)
		sort.SliceStable(msgs, func(i, j int) bool { return msgs[i].Time.Created < msgs[j].Time.Created })

		agent, model := unknownValue, unknownValue
		for _, m := range msgs {
			if m.Agent != "" {
				agent = m.Agent
			}
		}
		if len(msgs) > 0 && msgs[len(msgs)-1].ModelID != "" {
			model = msgs[len(msgs)-1].ModelID
		}

		out = append(out, core.AgentActivity{
			Agent:        agent,
			Directory:    s.Directory,
			Status:       core.AgentStatusRunning,
			SessionID:    s.ID,
			ElapsedMs:    now.UnixMilli() - s.Time.Created,
			Model:        model,
			MessageCount: len(msgs),
		})
	}
	return out
}

// AgentUsage counts messages and distinct sessions per agent over messages
// created inside the range that name an agent.
func AgentUsage(messages []core.RawMessage, r core.DateRange, now time.Time) []core.AgentUsage {
	cutoff := r.Cutoff(now)
	filtered := lo.Filter(messages, func(m core.RawMessage, _ int) bool {
		return m.Time.Created >= cutoff && m.Agent != ""
	})

	type tally struct {
		messages int
		sessions map[string]struct{}
	}
	byAgent := make(map[string]*tally)
	for _, m := range filtered {
		t, ok := byAgent[m.Agent]
		if !ok {
			t = &tally{sessions: make(map[string]struct{})}
			byAgent[m.Agent] = t
		}
		t.messages++
		t.sessions[m.SessionID] = struct{}{}
	}

	out := make([]core.AgentUsage, 0, len(byAgent))
	for agent, t := range byAgent {
		out = append(out, core.AgentUsage{
			Agent:         agent,
			Count:         len(t.sessions),
			Percentage:    percentage(t.messages, len(filtered)),
			TotalMessages: t.messages,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalMessages != out[j].TotalMessages {
			return out[i].TotalMessages > out[j].TotalMessages
		}
		return out[i].Agent < out[j].Agent
	})
	return out
}

// percentage rounds part/total to the nearest whole percent, halves away
// from zero. Shares are not adjusted to sum to exactly 100.
func percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

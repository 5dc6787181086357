package manager

import (
	"faspmgr/internal/progress"
	"faspmgr/pkg/types"
)

// Status builds the aggregate view for /status. The aggregator is read under
// the same lock that serializes its event delivery.
func (m *Manager) Status() types.StatusResponse {
	var sessions []progress.Session
	m.aggMu.Do(func() { sessions = m.agg.Sessions() })
	st := m.snap.State()

	m.mu.RLock()
	resp := types.StatusResponse{
		Running: m.active,
		Started: m.started,
	}
	m.mu.RUnlock()

	resp.Progress = types.ProgressStatus{
		Total:    st.Total,
		Sized:    st.Sized,
		Progress: st.Progress,
		Percent:  st.Percent,
		Steps:    st.Steps,
		Title:    st.Title,
	}
	resp.Sessions = make([]types.SessionStatus, 0, len(sessions))
	for _, s := range sessions {
		resp.Sessions = append(resp.Sessions, types.SessionStatus{
			ID:         s.ID,
			Cumulative: s.Cumulative,
			JobSize:    s.JobSize,
			Sized:      s.Sized,
			Current:    s.Current,
			Stale:      s.Stale,
		})
		if s.Stale {
			resp.StaleSessions++
		}
	}
	now := m.now()
	resp.UptimeSeconds = int64(now.Sub(m.bootTime).Seconds())
	resp.ServerTimeUnix = now.Unix()
	return resp
}

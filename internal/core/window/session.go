package window

import (
	"sort"
	"time"
)

// Session holds the ordered billing windows for one session id within a
// project.
type Session struct {
	SessionId   string        `json:"session_id"`
	ProjectName string        `json:"project_name"`
	Blocks      []*TokenBlock `json:"blocks"`
	FirstSeen   time.Time     `json:"first_seen"`
	LastSeen    time.Time     `json:"last_seen"`
}

func newSession(sessionId, projectName string) *Session {
	return &Session{
		SessionId:   sessionId,
		ProjectName: projectName,
	}
}

// observe widens the first/last seen bounds to include the timestamp.
func (s *Session) observe(ts time.Time) {
	if s.FirstSeen.IsZero() || ts.Before(s.FirstSeen) {
		s.FirstSeen = ts
	}
	if ts.After(s.LastSeen) {
		s.LastSeen = ts
	}
}

// blockFor returns the existing block the event belongs to: a block whose
// nominal span contains the timestamp and that was still active at the
// event's own time. Newest blocks are checked first.
func (s *Session) blockFor(ts time.Time, threshold time.Duration) *TokenBlock {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		block := s.Blocks[i]
		if block.Contains(ts) && block.IsActive(ts, threshold) {
			return block
		}
	}
	return nil
}

// addBlock inserts a block keeping Blocks sorted by StartTime.
func (s *Session) addBlock(block *TokenBlock) {
	s.Blocks = append(s.Blocks, block)
	sort.SliceStable(s.Blocks, func(i, j int) bool {
		return s.Blocks[i].StartTime.Before(s.Blocks[j].StartTime)
	})
}

// ActiveBlock returns the most recent block active at now, or nil.
func (s *Session) ActiveBlock(now time.Time, threshold time.Duration) *TokenBlock {
	for i := len(s.Blocks) - 1; i >= 0; i-- {
		if s.Blocks[i].IsActive(now, threshold) {
			return s.Blocks[i]
		}
	}
	return nil
}

// BlocksWithGaps returns the session's blocks with synthetic gap blocks
// inserted wherever the idle span between consecutive real blocks reaches
// the threshold. Gap blocks span from the earlier block's last activity to
// the next block's start and are never active.
func (s *Session) BlocksWithGaps(threshold time.Duration) []*TokenBlock {
	if len(s.Blocks) < 2 {
		return s.Blocks
	}

	result := make([]*TokenBlock, 0, len(s.Blocks))
	for i, block := range s.Blocks {
		if i > 0 {
			prev := s.Blocks[i-1]
			idle := block.StartTime.Sub(prev.ActualEndTime)
			if idle >= threshold {
				result = append(result, &TokenBlock{
					Kind:          KindGap,
					StartTime:     prev.ActualEndTime,
					EndTime:       block.StartTime,
					ActualEndTime: prev.ActualEndTime,
					SessionId:     s.SessionId,
					ProjectName:   s.ProjectName,
				})
			}
		}
		result = append(result, block)
	}
	return result
}

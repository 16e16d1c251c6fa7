package boost

import (
	"time"

	"photo-vote-bot/internal/domain"
)

// DefaultLookahead — окно до дедлайна, в котором имеет смысл жечь буст.
const DefaultLookahead = 10 * time.Minute

// Policy решает, применять ли буст и к какой работе.
type Policy struct {
	Lookahead time.Duration
}

// NewPolicy создаёт политику. lookahead <= 0 — значение по умолчанию.
func NewPolicy(lookahead time.Duration) Policy {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	return Policy{Lookahead: lookahead}
}

// ShouldBoost истинно только для доступного буста с дедлайном
// в пределах (now, now+Lookahead].
func (p Policy) ShouldBoost(state domain.BoostState, now time.Time) bool {
	if state.State != domain.BoostAvailable {
		return false
	}
	if state.Timeout <= 0 {
		return false
	}
	remaining := state.Timeout - now.Unix()
	return remaining > 0 && remaining <= int64(p.Lookahead/time.Second)
}

// PickImage выбирает первую работу без turbo в порядке платформы.
// Выбор намеренно детерминированный: first-match, не best-match.
func (p Policy) PickImage(entries []domain.RankEntry) (string, bool) {
	for _, entry := range entries {
		if !entry.Turbo {
			return entry.ImageID, true
		}
	}
	return "", false
}

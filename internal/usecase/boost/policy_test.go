package boost

import (
	"testing"
	"time"

	"photo-vote-bot/internal/domain"
)

func TestShouldBoostGating(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	policy := NewPolicy(600 * time.Second)

	cases := []struct {
		name  string
		state domain.BoostState
		want  bool
	}{
		{"доступен и дедлайн в окне", domain.BoostState{State: domain.BoostAvailable, Timeout: now.Unix() + 300}, true},
		{"дедлайн на границе окна", domain.BoostState{State: domain.BoostAvailable, Timeout: now.Unix() + 600}, true},
		{"дедлайн за окном", domain.BoostState{State: domain.BoostAvailable, Timeout: now.Unix() + 601}, false},
		{"дедлайн уже прошёл", domain.BoostState{State: domain.BoostAvailable, Timeout: now.Unix()}, false},
		{"дедлайна нет", domain.BoostState{State: domain.BoostAvailable, Timeout: 0}, false},
		{"буст использован", domain.BoostState{State: domain.BoostUsed, Timeout: now.Unix() + 300}, false},
		{"буст недоступен", domain.BoostState{State: domain.BoostUnavailable, Timeout: now.Unix() + 300}, false},
		{"буст заблокирован", domain.BoostState{State: domain.BoostLocked, Timeout: now.Unix() + 300}, false},
	}
	for _, tc := range cases {
		if got := policy.ShouldBoost(tc.state, now); got != tc.want {
			t.Fatalf("%s: ожидали %v, получили %v", tc.name, tc.want, got)
		}
	}
}

func TestNewPolicyDefaultLookahead(t *testing.T) {
	policy := NewPolicy(0)
	if policy.Lookahead != DefaultLookahead {
		t.Fatalf("ожидали окно по умолчанию %v, получили %v", DefaultLookahead, policy.Lookahead)
	}
}

func TestPickImageFirstWithoutTurbo(t *testing.T) {
	policy := NewPolicy(0)
	entries := []domain.RankEntry{
		{ImageID: "x", Turbo: true},
		{ImageID: "y", Turbo: false},
		{ImageID: "z", Turbo: false},
	}
	id, ok := policy.PickImage(entries)
	if !ok || id != "y" {
		t.Fatalf("ожидали первую работу без turbo (y), получили %q ok=%v", id, ok)
	}
}

func TestPickImageNoneEligible(t *testing.T) {
	policy := NewPolicy(0)
	entries := []domain.RankEntry{
		{ImageID: "x", Turbo: true},
		{ImageID: "y", Turbo: true},
	}
	if id, ok := policy.PickImage(entries); ok {
		t.Fatalf("не ожидали кандидата, получили %q", id)
	}
	if _, ok := policy.PickImage(nil); ok {
		t.Fatalf("пустой список не должен давать кандидата")
	}
}

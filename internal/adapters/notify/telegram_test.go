package notify

import (
	"strings"
	"testing"
	"time"

	"photo-vote-bot/internal/domain"
)

func TestFormatReport(t *testing.T) {
	report := domain.CycleReport{
		ID:         "0b5c9e61-1111-2222-3333-444455556666",
		StartedAt:  time.Unix(1_700_000_000, 0),
		FinishedAt: time.Unix(1_700_000_060, 0),
		Outcomes: []domain.ChallengeOutcome{
			{ChallengeID: 1, Title: "Street", Voted: 3, Boosted: true},
			{ChallengeID: 2, Title: "Macro", Err: "таймаут"},
		},
	}
	text := FormatReport(report)
	if !strings.Contains(text, "0b5c9e61") {
		t.Fatalf("сводка должна содержать короткий id цикла: %q", text)
	}
	if !strings.Contains(text, "голосов 3") || !strings.Contains(text, "бустов 1") {
		t.Fatalf("сводка должна содержать счётчики: %q", text)
	}
	if !strings.Contains(text, "ошибок 1") || !strings.Contains(text, "Macro") {
		t.Fatalf("сводка должна перечислять ошибки: %q", text)
	}
}

func TestFormatReportWithoutFailures(t *testing.T) {
	report := domain.CycleReport{ID: "short"}
	text := FormatReport(report)
	if strings.Contains(text, "ошибок") {
		t.Fatalf("без ошибок строка ошибок не выводится: %q", text)
	}
}

package domain

import "time"

// ExposureTarget — целевой показатель экспозиции, фиксирован платформой.
const ExposureTarget = 100.0

// BoostStateValue перечисляет состояния буста, приходящие с платформы.
type BoostStateValue string

const (
	BoostAvailable   BoostStateValue = "AVAILABLE"
	BoostUnavailable BoostStateValue = "UNAVAILABLE"
	BoostUsed        BoostStateValue = "USED"
	BoostLocked      BoostStateValue = "LOCKED"
)

// BoostState описывает доступность буста и его дедлайн (unix-секунды, 0 — нет).
type BoostState struct {
	State   BoostStateValue
	Timeout int64
}

// ExposureState содержит текущий фактор экспозиции (шкала 0–100,
// после финального голоса может превысить 100).
type ExposureState struct {
	Factor float64
}

// RankEntry — собственная работа участника в рейтинге челленджа.
type RankEntry struct {
	ImageID string
	Turbo   bool
}

// MemberState — изменяемая между опросами часть челленджа.
type MemberState struct {
	Exposure ExposureState
	Boost    BoostState
	Entries  []RankEntry
}

// Challenge — снимок активного челленджа на момент цикла.
// StartTime неизменен после получения, меняется только Member.
type Challenge struct {
	ID        int64
	Title     string
	URL       string
	StartTime int64
	Member    MemberState
}

// Started сообщает, начался ли челлендж к моменту now.
func (c Challenge) Started(now time.Time) bool {
	return c.StartTime <= now.Unix()
}

// CandidateImage — кандидат на голос: сколько экспозиции даёт голос за него.
type CandidateImage struct {
	ID    string
	Ratio float64
	Turbo bool
}

// VotePool — выборка кандидатов вместе с текущей экспозицией участника.
type VotePool struct {
	Exposure float64
	Images   []CandidateImage
}

// VoteSelection — результат работы движка: за кого голосуем и что «посмотрели».
// Живёт один цикл и выбрасывается после отправки.
type VoteSelection struct {
	ChallengeID   int64
	ImageIDs      []string
	ViewedIDs     []string
	Exposure      float64
	ReachedTarget bool
}

// SubmissionResult — ответ платформы на отправку голосов.
type SubmissionResult struct {
	ChallengeID int64
	Exposure    float64
}

// ChallengeOutcome — итог обработки одного челленджа в цикле.
type ChallengeOutcome struct {
	ChallengeID int64
	Title       string
	Voted       int
	Exposure    float64
	Boosted     bool
	Skipped     string
	Err         string
}

// CycleReport — итог одного полного прохода по активным челленджам.
type CycleReport struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []ChallengeOutcome
}

// Voted возвращает суммарное число отданных голосов за цикл.
func (r CycleReport) Voted() int {
	total := 0
	for _, o := range r.Outcomes {
		total += o.Voted
	}
	return total
}

// Boosted возвращает число применённых бустов за цикл.
func (r CycleReport) Boosted() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.Boosted {
			total++
		}
	}
	return total
}

// Failed возвращает число челленджей, завершившихся ошибкой.
func (r CycleReport) Failed() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.Err != "" {
			total++
		}
	}
	return total
}

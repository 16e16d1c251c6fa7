package cycle

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"photo-vote-bot/internal/domain"
	"photo-vote-bot/internal/infra/metrics"
	"photo-vote-bot/internal/usecase/boost"
	"photo-vote-bot/internal/usecase/voting"
)

// Причины пропуска челленджа внутри цикла.
const (
	SkipExposureComplete = "exposure_complete"
	SkipNotStarted       = "not_started"
	SkipEmptyPool        = "empty_pool"
)

// Service выполняет один проход по активным челленджам:
// буст по политике, затем голосование до целевой экспозиции.
// Челленджи обрабатываются строго последовательно, ошибка одного
// никогда не прерывает остальные.
type Service struct {
	challenges domain.ChallengeFetcher
	images     domain.VoteImageFetcher
	votes      domain.VoteSubmitter
	booster    domain.Booster
	engine     *voting.Engine
	policy     boost.Policy
	log        zerolog.Logger

	journal  domain.CycleJournal
	notifier domain.Notifier

	pauseMin time.Duration
	pauseMax time.Duration
	sleep    func(time.Duration)
	now      func() time.Time
	rnd      *rand.Rand
}

type Option func(*Service)

// WithJournal подключает аудит циклов.
func WithJournal(journal domain.CycleJournal) Option {
	return func(s *Service) { s.journal = journal }
}

// WithNotifier подключает уведомления оператору.
func WithNotifier(notifier domain.Notifier) Option {
	return func(s *Service) { s.notifier = notifier }
}

// WithPacing задаёт границы случайной паузы между челленджами.
func WithPacing(min, max time.Duration) Option {
	return func(s *Service) {
		if min > 0 {
			s.pauseMin = min
		}
		if max >= s.pauseMin {
			s.pauseMax = max
		}
	}
}

// WithClock подменяет часы и сон (для тестов).
func WithClock(now func() time.Time, sleep func(time.Duration)) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
		if sleep != nil {
			s.sleep = sleep
		}
	}
}

// WithRand подменяет генератор пауз.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Service) { s.rnd = rnd }
}

// NewService создаёт оркестратор цикла.
func NewService(challenges domain.ChallengeFetcher, images domain.VoteImageFetcher, votes domain.VoteSubmitter, booster domain.Booster, engine *voting.Engine, policy boost.Policy, logger zerolog.Logger, opts ...Option) *Service {
	s := &Service{
		challenges: challenges,
		images:     images,
		votes:      votes,
		booster:    booster,
		engine:     engine,
		policy:     policy,
		log:        logger,
		pauseMin:   2 * time.Second,
		pauseMax:   7 * time.Second,
		sleep:      time.Sleep,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunCycle выполняет один проход. Повторно входима: вызывающий сам
// отвечает за то, чтобы циклы не перекрывались.
func (s *Service) RunCycle(ctx context.Context) (domain.CycleReport, error) {
	report := domain.CycleReport{ID: uuid.NewString(), StartedAt: s.now()}
	logger := s.log.With().Str("cycle", report.ID).Logger()

	challenges, err := s.challenges.ActiveChallenges(ctx)
	if err != nil {
		report.FinishedAt = s.now()
		logger.Warn().Err(err).Msg("cycle: не удалось получить челленджи, цикл завершён")
		s.finish(ctx, logger, report)
		return report, err
	}
	if len(challenges) == 0 {
		report.FinishedAt = s.now()
		logger.Info().Msg("cycle: активных челленджей нет")
		s.finish(ctx, logger, report)
		return report, nil
	}

	for i, challenge := range challenges {
		outcome := s.processChallenge(ctx, logger, challenge)
		report.Outcomes = append(report.Outcomes, outcome)
		if outcome.Voted > 0 && i < len(challenges)-1 {
			s.sleep(s.pause())
		}
	}

	report.FinishedAt = s.now()
	logger.Info().
		Int("challenges", len(report.Outcomes)).
		Int("votes", report.Voted()).
		Int("boosts", report.Boosted()).
		Int("failed", report.Failed()).
		Time("finished_at", report.FinishedAt).
		Msg("cycle: проход завершён")
	s.finish(ctx, logger, report)
	return report, nil
}

func (s *Service) processChallenge(ctx context.Context, logger zerolog.Logger, challenge domain.Challenge) (outcome domain.ChallengeOutcome) {
	outcome = domain.ChallengeOutcome{
		ChallengeID: challenge.ID,
		Title:       challenge.Title,
		Exposure:    challenge.Member.Exposure.Factor,
	}
	// Изоляция частичных отказов: паника одного челленджа не роняет проход.
	defer func() {
		if r := recover(); r != nil {
			outcome.Err = fmt.Sprintf("panic: %v", r)
			metrics.ChallengeFailures.Inc()
			logger.Error().Int64("challenge", challenge.ID).Str("panic", outcome.Err).Msg("cycle: паника при обработке челленджа")
		}
	}()

	clog := logger.With().Int64("challenge", challenge.ID).Logger()
	now := s.now()

	outcome.Boosted = s.tryBoost(ctx, clog, challenge, now)

	if challenge.Member.Exposure.Factor >= domain.ExposureTarget {
		outcome.Skipped = SkipExposureComplete
		clog.Debug().Float64("exposure", challenge.Member.Exposure.Factor).Msg("cycle: экспозиция уже набрана")
		return outcome
	}
	if !challenge.Started(now) {
		outcome.Skipped = SkipNotStarted
		clog.Debug().Int64("start_time", challenge.StartTime).Msg("cycle: челлендж ещё не начался")
		return outcome
	}

	pool, err := s.images.VoteImages(ctx, challenge)
	if err != nil {
		outcome.Err = err.Error()
		metrics.ChallengeFailures.Inc()
		clog.Warn().Err(err).Msg("cycle: не удалось получить пул изображений")
		return outcome
	}
	if len(pool.Images) == 0 {
		outcome.Skipped = SkipEmptyPool
		clog.Warn().Msg("cycle: платформа вернула пустой пул")
		return outcome
	}
	if pool.Exposure >= domain.ExposureTarget {
		// Свежая экспозиция из пула имеет приоритет над снимком челленджа.
		outcome.Skipped = SkipExposureComplete
		outcome.Exposure = pool.Exposure
		clog.Debug().Float64("exposure", pool.Exposure).Msg("cycle: экспозиция набрана между запросами")
		return outcome
	}

	selection := s.engine.Select(challenge.ID, pool.Images, pool.Exposure)
	if !selection.ReachedTarget {
		metrics.InsufficientPools.Inc()
		clog.Warn().
			Int("picked", len(selection.ImageIDs)).
			Float64("exposure", selection.Exposure).
			Msg("cycle: кандидатов не хватило до цели, отправляем что есть")
	}

	result, err := s.votes.SubmitVote(ctx, selection)
	if err != nil {
		outcome.Err = err.Error()
		metrics.ChallengeFailures.Inc()
		clog.Warn().Err(err).Msg("cycle: не удалось отправить голоса")
		return outcome
	}

	outcome.Voted = len(selection.ImageIDs)
	outcome.Exposure = result.Exposure
	metrics.VotesSubmitted.Add(float64(outcome.Voted))
	clog.Info().
		Int("votes", outcome.Voted).
		Float64("exposure", outcome.Exposure).
		Msg("cycle: голоса отправлены")
	return outcome
}

func (s *Service) tryBoost(ctx context.Context, clog zerolog.Logger, challenge domain.Challenge, now time.Time) bool {
	if !s.policy.ShouldBoost(challenge.Member.Boost, now) {
		return false
	}
	imageID, ok := s.policy.PickImage(challenge.Member.Entries)
	if !ok {
		clog.Warn().Msg("cycle: буст доступен, но нет работы без turbo")
		return false
	}
	if err := s.booster.BoostPhoto(ctx, challenge.ID, imageID); err != nil {
		// Неудачный буст не отменяет голосование по этому же челленджу.
		clog.Warn().Err(err).Str("image", imageID).Msg("cycle: буст не применился")
		return false
	}
	metrics.BoostsApplied.Inc()
	clog.Info().Str("image", imageID).Int64("deadline", challenge.Member.Boost.Timeout).Msg("cycle: буст применён")
	return true
}

func (s *Service) finish(ctx context.Context, logger zerolog.Logger, report domain.CycleReport) {
	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	if s.journal != nil {
		if err := s.journal.SaveCycle(ctx, report); err != nil {
			logger.Warn().Err(err).Msg("cycle: не удалось записать журнал")
		}
	}
	if s.notifier != nil {
		if err := s.notifier.NotifyCycle(ctx, report); err != nil {
			logger.Warn().Err(err).Msg("cycle: не удалось отправить сводку")
		}
	}
}

func (s *Service) pause() time.Duration {
	if s.pauseMax <= s.pauseMin {
		return s.pauseMin
	}
	span := s.pauseMax - s.pauseMin
	var offset time.Duration
	if s.rnd != nil {
		offset = time.Duration(s.rnd.Int63n(int64(span)))
	} else {
		offset = time.Duration(rand.Int63n(int64(span)))
	}
	return s.pauseMin + offset
}

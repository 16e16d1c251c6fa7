package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMissingToken возвращается, если токен платформы не настроен.
// Единственная фатальная ошибка: без токена выполнять запросы нельзя.
var ErrMissingToken = errors.New("токен платформы не задан")

// ErrAPIFailure возвращается, когда платформа ответила отказом или не 2xx.
var ErrAPIFailure = errors.New("платформа ответила ошибкой")

// ChallengeFetcher возвращает активные челленджи авторизованного участника.
type ChallengeFetcher interface {
	ActiveChallenges(ctx context.Context) ([]Challenge, error)
}

// VoteImageFetcher возвращает пул кандидатов по конкретному челленджу.
type VoteImageFetcher interface {
	VoteImages(ctx context.Context, challenge Challenge) (VotePool, error)
}

// VoteSubmitter отправляет платформе выбранные и просмотренные изображения.
type VoteSubmitter interface {
	SubmitVote(ctx context.Context, selection VoteSelection) (SubmissionResult, error)
}

// Booster применяет буст к изображению в рамках челленджа.
type Booster interface {
	BoostPhoto(ctx context.Context, challengeID int64, imageID string) error
}

// CycleJournal сохраняет итоги цикла для последующего аудита.
// Журнал не участвует в принятии решений и никогда не читается обратно.
type CycleJournal interface {
	SaveCycle(ctx context.Context, report CycleReport) error
}

// Notifier доставляет оператору сводку завершённого цикла.
type Notifier interface {
	NotifyCycle(ctx context.Context, report CycleReport) error
}

// CycleGuard не допускает перекрытия циклов: Acquire возвращает false,
// если предыдущий цикл ещё держит блокировку.
type CycleGuard interface {
	Acquire(ctx context.Context, ttl time.Duration) (release func(), ok bool, err error)
}

package voting

import (
	"math/rand"

	"photo-vote-bot/internal/domain"
)

// Engine выбирает случайное подмножество кандидатов, пока суммарная
// экспозиция не достигнет цели или пул не будет исчерпан.
//
// Выбор реализован как одна равномерная перетасовка пула и проход по ней:
// по распределению принятых множеств это эквивалентно выборке без
// возвращения по одному кандидату, но завершение очевидно ограничено
// размером пула.
type Engine struct {
	rnd *rand.Rand
}

// NewEngine создаёт движок. rnd == nil — глобальный генератор.
func NewEngine(rnd *rand.Rand) *Engine {
	return &Engine{rnd: rnd}
}

// Select строит VoteSelection по пулу и текущей экспозиции.
// Пустой пул даёт пустой выбор: решение «пропустить» остаётся за вызывающим.
func (e *Engine) Select(challengeID int64, pool []domain.CandidateImage, currentExposure float64) domain.VoteSelection {
	selection := domain.VoteSelection{
		ChallengeID: challengeID,
		ViewedIDs:   make([]string, 0, len(pool)),
		Exposure:    currentExposure,
	}
	for _, img := range pool {
		selection.ViewedIDs = append(selection.ViewedIDs, img.ID)
	}
	if currentExposure >= domain.ExposureTarget {
		selection.ReachedTarget = true
		return selection
	}
	if len(pool) == 0 {
		return selection
	}

	order := e.shuffledIndexes(len(pool))
	total := currentExposure
	for _, idx := range order {
		img := pool[idx]
		selection.ImageIDs = append(selection.ImageIDs, img.ID)
		total += img.Ratio
		if total >= domain.ExposureTarget {
			break
		}
	}
	selection.Exposure = total
	selection.ReachedTarget = total >= domain.ExposureTarget
	return selection
}

func (e *Engine) shuffledIndexes(n int) []int {
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	shuffle := rand.Shuffle
	if e.rnd != nil {
		shuffle = e.rnd.Shuffle
	}
	shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	return order
}

package voting

import (
	"math/rand"
	"testing"

	"photo-vote-bot/internal/domain"
)

func pool(ratios ...float64) []domain.CandidateImage {
	images := make([]domain.CandidateImage, 0, len(ratios))
	for i, r := range ratios {
		images = append(images, domain.CandidateImage{ID: string(rune('a' + i)), Ratio: r})
	}
	return images
}

func assertUnique(t *testing.T, ids []string) {
	t.Helper()
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			t.Fatalf("идентификатор %q выбран дважды", id)
		}
		seen[id] = struct{}{}
	}
}

func TestSelectReachesTargetOrExhausts(t *testing.T) {
	images := pool(40, 30, 50)
	for seed := int64(0); seed < 200; seed++ {
		engine := NewEngine(rand.New(rand.NewSource(seed)))
		sel := engine.Select(7, images, 60)

		assertUnique(t, sel.ImageIDs)
		if len(sel.ImageIDs) == 0 || len(sel.ImageIDs) > len(images) {
			t.Fatalf("seed %d: ожидали от 1 до %d голосов, получили %d", seed, len(images), len(sel.ImageIDs))
		}
		if !sel.ReachedTarget {
			t.Fatalf("seed %d: с этим пулом цель достижима всегда", seed)
		}
		if sel.Exposure < domain.ExposureTarget {
			t.Fatalf("seed %d: итоговая экспозиция %v ниже цели", seed, sel.Exposure)
		}
		// 60 + любой из {40, 50} уже даёт цель, 60+30 требует ещё одного.
		if len(sel.ImageIDs) > 2 {
			t.Fatalf("seed %d: ожидали не больше 2 голосов, получили %d", seed, len(sel.ImageIDs))
		}
	}
}

func TestSelectStopsAtFirstSufficient(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(1)))
	sel := engine.Select(1, pool(100), 0)
	if len(sel.ImageIDs) != 1 {
		t.Fatalf("ожидали ровно один голос, получили %d", len(sel.ImageIDs))
	}
	if !sel.ReachedTarget {
		t.Fatalf("один кандидат с ratio 100 обязан закрывать цель")
	}
}

func TestSelectExhaustsInsufficientPool(t *testing.T) {
	images := pool(10, 15, 20)
	for seed := int64(0); seed < 50; seed++ {
		engine := NewEngine(rand.New(rand.NewSource(seed)))
		sel := engine.Select(1, images, 0)
		if len(sel.ImageIDs) != len(images) {
			t.Fatalf("seed %d: недостаточный пул должен быть исчерпан целиком", seed)
		}
		if sel.ReachedTarget {
			t.Fatalf("seed %d: 45 очков не могут закрыть цель", seed)
		}
		if sel.Exposure != 45 {
			t.Fatalf("seed %d: ожидали экспозицию 45, получили %v", seed, sel.Exposure)
		}
		assertUnique(t, sel.ImageIDs)
	}
}

func TestSelectViewedAlwaysFullPool(t *testing.T) {
	images := pool(90, 90, 5, 5, 5)
	engine := NewEngine(rand.New(rand.NewSource(3)))
	sel := engine.Select(1, images, 50)
	if len(sel.ViewedIDs) != len(images) {
		t.Fatalf("ожидали %d просмотренных, получили %d", len(images), len(sel.ViewedIDs))
	}
	viewed := make(map[string]struct{}, len(sel.ViewedIDs))
	for _, id := range sel.ViewedIDs {
		viewed[id] = struct{}{}
	}
	for _, img := range images {
		if _, ok := viewed[img.ID]; !ok {
			t.Fatalf("изображение %q отсутствует в просмотренных", img.ID)
		}
	}
}

func TestSelectEmptyPool(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(1)))
	sel := engine.Select(1, nil, 30)
	if len(sel.ImageIDs) != 0 || len(sel.ViewedIDs) != 0 {
		t.Fatalf("пустой пул должен давать пустой выбор")
	}
	if sel.ReachedTarget {
		t.Fatalf("30 без кандидатов — цель не достигнута")
	}
}

func TestSelectExposureAlreadyComplete(t *testing.T) {
	engine := NewEngine(rand.New(rand.NewSource(1)))
	sel := engine.Select(1, pool(40, 40), 100)
	if len(sel.ImageIDs) != 0 {
		t.Fatalf("при полной экспозиции голосовать не нужно")
	}
	if !sel.ReachedTarget {
		t.Fatalf("полная экспозиция — цель уже достигнута")
	}
	if len(sel.ViewedIDs) != 2 {
		t.Fatalf("просмотренные всё равно содержат весь пул")
	}
}

func TestSelectTerminatesOnLargePool(t *testing.T) {
	images := make([]domain.CandidateImage, 100)
	for i := range images {
		images[i] = domain.CandidateImage{ID: string(rune('a'+i%26)) + string(rune('0'+i/26)), Ratio: 0.5}
	}
	engine := NewEngine(rand.New(rand.NewSource(42)))
	sel := engine.Select(1, images, 0)
	if len(sel.ImageIDs) != len(images) {
		t.Fatalf("пул из 100 кандидатов по 0.5 исчерпывается целиком, выбрано %d", len(sel.ImageIDs))
	}
	assertUnique(t, sel.ImageIDs)
}

package cache

import (
	"context"
	"testing"
	"time"
)

func TestLocalGuardPreventsOverlap(t *testing.T) {
	guard := NewLocalGuard()

	release, ok, err := guard.Acquire(context.Background(), time.Minute)
	if err != nil || !ok {
		t.Fatalf("первый захват должен пройти: ok=%v err=%v", ok, err)
	}

	if _, ok, _ := guard.Acquire(context.Background(), time.Minute); ok {
		t.Fatalf("повторный захват при живом цикле должен быть отклонён")
	}

	release()

	if _, ok, _ := guard.Acquire(context.Background(), time.Minute); !ok {
		t.Fatalf("после release захват должен снова проходить")
	}
}

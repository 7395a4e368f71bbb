package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/iliyamo/campusnest/internal/model"
	"github.com/iliyamo/campusnest/internal/service"
)

func TestSubmitRating_UpdateKeepsCount(t *testing.T) {
	pgs := newFakePGs(samplePG(1, "Sunrise PG", 8000))
	svc := service.NewRatingService(pgs)
	ctx := context.Background()

	r, err := svc.Submit(ctx, seeker, 1, 4)
	if err != nil {
		t.Fatal(err)
	}
	if r.Updated || r.RatingCount != 1 || r.Rating != 4.0 {
		t.Fatalf("first: %+v", r)
	}
	r, err = svc.Submit(ctx, seeker, 1, 2)
	if err != nil {
		t.Fatal(err)
	}
	if !r.Updated || r.RatingCount != 1 || r.Rating != 2.0 || r.UserRating != 2 {
		t.Fatalf("update: %+v", r)
	}
}

func TestSubmitRating_TwoSeekers(t *testing.T) {
	pgs := newFakePGs(samplePG(1, "Sunrise PG", 8000))
	svc := service.NewRatingService(pgs)
	ctx := context.Background()

	if _, err := svc.Submit(ctx, model.Seeker{ID: 1}, 1, 5); err != nil {
		t.Fatal(err)
	}
	r, err := svc.Submit(ctx, model.Seeker{ID: 2}, 1, 3)
	if err != nil {
		t.Fatal(err)
	}
	if r.Rating != 4.0 || r.RatingCount != 2 || r.Updated {
		t.Fatalf("got %+v", r)
	}
}

func TestSubmitRating_Rejects(t *testing.T) {
	svc := service.NewRatingService(newFakePGs(samplePG(1, "Sunrise PG", 8000)))
	for _, v := range []int{0, 6, -1} {
		if _, err := svc.Submit(context.Background(), seeker, 1, v); !errors.Is(err, service.ErrValidation) {
			t.Fatalf("value %d: want validation, got %v", v, err)
		}
	}
	if _, err := svc.Submit(context.Background(), seeker, 42, 3); !errors.Is(err, service.ErrNotFound) {
		t.Fatalf("missing pg: want not found, got %v", err)
	}
}

func TestSubmitRating_ConcurrentRatersAllCounted(t *testing.T) {
	pgs := newFakePGs(samplePG(1, "Sunrise PG", 8000))
	svc := service.NewRatingService(pgs)

	var wg sync.WaitGroup
	for i := 1; i <= 20; i++ {
		wg.Add(1)
		go func(id uint64) {
			defer wg.Done()
			if _, err := svc.Submit(context.Background(), model.Seeker{ID: id}, 1, 5); err != nil {
				t.Errorf("submit: %v", err)
			}
		}(uint64(i))
	}
	wg.Wait()
	p, _ := pgs.GetByID(context.Background(), 1)
	if p.RatingCount != 20 || len(p.Ratings) != 20 || p.Rating != 5.0 {
		t.Fatalf("count=%d entries=%d rating=%v", p.RatingCount, len(p.Ratings), p.Rating)
	}
}

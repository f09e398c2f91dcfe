package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/akoutras/medpress/internal/domain"
)

func sampleRun(id string, status domain.RunStatus, startedAt time.Time) *domain.ArticleRun {
	return &domain.ArticleRun{
		ID:          id,
		Topic:       "Μεταμόσχευση μαλλιών FUE",
		Status:      status,
		FinalScore:  84,
		Attempts:    2,
		History:     []domain.RetryAttempt{{Attempt: 1, Score: 72}, {Attempt: 2, Score: 84, Passed: true}},
		StartedAt:   startedAt,
		CompletedAt: startedAt.Add(90 * time.Second),
	}
}

func TestMockRunRepository_CreateAndGet(t *testing.T) {
	repo := NewMockRunRepository()
	ctx := context.Background()

	run := sampleRun("run-1", domain.RunPublished, time.Now())
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Create(ctx, run); !errors.Is(err, domain.ErrDuplicateRun) {
		t.Errorf("duplicate Create() error = %v, want ErrDuplicateRun", err)
	}

	got, err := repo.GetByID(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.FinalScore != 84 || len(got.History) != 2 {
		t.Errorf("GetByID() = %+v", got)
	}

	if _, err := repo.GetByID(ctx, "missing"); !errors.Is(err, domain.ErrRunNotFound) {
		t.Errorf("GetByID(missing) error = %v, want ErrRunNotFound", err)
	}
}

func TestMockRunRepository_ListOrdering(t *testing.T) {
	repo := NewMockRunRepository()
	ctx := context.Background()
	base := time.Now()

	repo.Create(ctx, sampleRun("old", domain.RunPublished, base.Add(-2*time.Hour)))
	repo.Create(ctx, sampleRun("mid", domain.RunFailed, base.Add(-1*time.Hour)))
	repo.Create(ctx, sampleRun("new", domain.RunNeedsReview, base))

	runs, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("List() returned %d runs, want 3", len(runs))
	}
	if runs[0].ID != "new" || runs[2].ID != "old" {
		t.Errorf("List() order = [%s %s %s], want newest first", runs[0].ID, runs[1].ID, runs[2].ID)
	}

	limited, _ := repo.List(ctx, 2)
	if len(limited) != 2 {
		t.Errorf("List(limit=2) returned %d runs", len(limited))
	}
}

func TestMockRunRepository_ByStatus(t *testing.T) {
	repo := NewMockRunRepository()
	ctx := context.Background()
	base := time.Now()

	repo.Create(ctx, sampleRun("a", domain.RunPublished, base))
	repo.Create(ctx, sampleRun("b", domain.RunPublished, base.Add(time.Minute)))
	repo.Create(ctx, sampleRun("c", domain.RunFailed, base))

	published, err := repo.ListByStatus(ctx, domain.RunPublished, 10)
	if err != nil {
		t.Fatalf("ListByStatus() error = %v", err)
	}
	if len(published) != 2 {
		t.Errorf("ListByStatus(published) returned %d runs, want 2", len(published))
	}

	count, err := repo.CountByStatus(ctx, domain.RunFailed)
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if count != 1 {
		t.Errorf("CountByStatus(failed) = %d, want 1", count)
	}
}

func TestMockRunRepository_CopiesOnWrite(t *testing.T) {
	repo := NewMockRunRepository()
	ctx := context.Background()

	run := sampleRun("run-1", domain.RunPublished, time.Now())
	repo.Create(ctx, run)

	run.FinalScore = 0

	got, _ := repo.GetByID(ctx, "run-1")
	if got.FinalScore != 84 {
		t.Errorf("stored run mutated through caller pointer: score = %d", got.FinalScore)
	}
}

func TestMockKnowledgeRepository(t *testing.T) {
	repo := NewMockKnowledgeRepository()
	ctx := context.Background()
	base := time.Now()

	facts := []*domain.Fact{
		{ID: "f1", Topic: "laser", Content: "Τα ποσοστά επιτυχίας κυμαίνονται 85-95%", Evidence: domain.EvidenceStrong, ExtractedAt: base},
		{ID: "f2", Topic: "laser", Content: "Η αποθεραπεία διαρκεί λίγες ημέρες", Evidence: domain.EvidenceModerate, ExtractedAt: base.Add(time.Minute)},
		{ID: "f3", Topic: "fue", Content: "Η μέθοδος FUE δεν αφήνει γραμμική ουλή", Evidence: domain.EvidenceStrong, ExtractedAt: base},
	}
	for _, f := range facts {
		if err := repo.CreateFact(ctx, f); err != nil {
			t.Fatalf("CreateFact(%s) error = %v", f.ID, err)
		}
	}

	if err := repo.CreateFact(ctx, facts[0]); !errors.Is(err, domain.ErrDuplicateFact) {
		t.Errorf("duplicate CreateFact() error = %v, want ErrDuplicateFact", err)
	}

	byTopic, err := repo.GetFactsByTopic(ctx, "laser", 10)
	if err != nil {
		t.Fatalf("GetFactsByTopic() error = %v", err)
	}
	if len(byTopic) != 2 {
		t.Fatalf("GetFactsByTopic(laser) returned %d facts, want 2", len(byTopic))
	}
	if byTopic[0].ID != "f2" {
		t.Errorf("GetFactsByTopic() order = %s first, want f2 (newest)", byTopic[0].ID)
	}

	found, err := repo.SearchFacts(ctx, "ποσοστά")
	if err != nil {
		t.Fatalf("SearchFacts() error = %v", err)
	}
	if len(found) != 1 || found[0].ID != "f1" {
		t.Errorf("SearchFacts() = %+v, want only f1", found)
	}
}

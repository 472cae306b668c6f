package catalog

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/kailas-cloud/popchoice/internal/db"
	"github.com/kailas-cloud/popchoice/internal/domain"
)

type mockStore struct {
	ensured   []string
	ensureErr error
	batches   [][]db.Point
	upsertErr error
}

func (m *mockStore) EnsureCollection(_ context.Context, collection string, _ int) error {
	m.ensured = append(m.ensured, collection)
	return m.ensureErr
}

func (m *mockStore) Upsert(_ context.Context, _ string, points []db.Point) error {
	m.batches = append(m.batches, points)
	return m.upsertErr
}

func passages(n, dim int) []domain.Passage {
	out := make([]domain.Passage, n)
	for i := range out {
		out[i] = domain.Passage{ID: strconv.Itoa(i + 1), Content: "chunk", Vector: make([]float32, dim)}
		out[i].Vector[0] = 1
	}
	return out
}

func TestEnsure(t *testing.T) {
	ms := &mockStore{}
	if err := New(ms, "movies", 3).Ensure(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.ensured) != 1 || ms.ensured[0] != "movies" {
		t.Errorf("ensured = %v", ms.ensured)
	}

	ms.ensureErr = errors.New("forbidden")
	if err := New(ms, "movies", 3).Ensure(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestSave_Batches(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "movies", 3).WithBatchSize(2)

	if err := repo.Save(context.Background(), passages(5, 3)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(ms.batches))
	}
	if len(ms.batches[2]) != 1 || ms.batches[2][0].ID != "5" {
		t.Errorf("last batch = %+v", ms.batches[2])
	}
}

func TestSave_RejectsWrongDimension(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, "movies", 4)

	err := repo.Save(context.Background(), passages(2, 3))
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if len(ms.batches) != 0 {
		t.Error("nothing must be written on validation failure")
	}
}

func TestSave_UpsertError(t *testing.T) {
	ms := &mockStore{upsertErr: errors.New("timeout")}
	if err := New(ms, "movies", 3).Save(context.Background(), passages(1, 3)); err == nil {
		t.Fatal("expected error")
	}
}

func TestSave_Empty(t *testing.T) {
	ms := &mockStore{}
	if err := New(ms, "movies", 3).Save(context.Background(), nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ms.batches) != 0 {
		t.Error("expected no upserts")
	}
}

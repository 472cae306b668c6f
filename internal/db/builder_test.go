package db

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIndexBuilder_Movies(t *testing.T) {
	idx, err := NewIndex("popchoice:movies:idx").
		Prefix("popchoice:movies:").
		Tag("id").
		VectorHNSW(FieldEmbedding, 1536, DistanceCosine, 16, 200).
		Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(idx.Fields) != 2 {
		t.Fatalf("fields count = %d, want 2", len(idx.Fields))
	}
	f := idx.Fields[1]
	if f.VectorAlgo != VectorHNSW || f.VectorDim != 1536 || f.VectorDistance != DistanceCosine {
		t.Errorf("vector field = %+v", f)
	}
	if f.VectorM != 16 || f.VectorEFConstruct != 200 {
		t.Errorf("HNSW params = %d/%d, want 16/200", f.VectorM, f.VectorEFConstruct)
	}
}

func TestIndexBuilder_Invalid(t *testing.T) {
	tests := []struct {
		name string
		b    *IndexBuilder
	}{
		{"empty name", NewIndex("").Tag("id")},
		{"bad chars", NewIndex("bad name!").Tag("id")},
		{"no fields", NewIndex("idx")},
		{"duplicate field", NewIndex("idx").Tag("id").Tag("id")},
		{"zero dim", NewIndex("idx").VectorHNSW("vec", 0, DistanceCosine, 16, 200)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tc.b.Build(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestIndexDefinition_String(t *testing.T) {
	idx, err := NewIndex("idx").Prefix("p:").Tag("id").VectorHNSW("vec", 4, DistanceCosine, 16, 200).Build()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := idx.String()
	for _, want := range []string{"FT.CREATE idx", "ON HASH", "PREFIX p:", "id TAG", "vec VECTOR HNSW"} {
		if !strings.Contains(got, want) {
			t.Errorf("String() = %q, missing %q", got, want)
		}
	}
}

func TestKNNQuery_Validate(t *testing.T) {
	tests := []struct {
		name    string
		q       KNNQuery
		wantErr bool
	}{
		{"ok", KNNQuery{Collection: "movies", Vector: []float32{0.1}, K: 4}, false},
		{"no collection", KNNQuery{Vector: []float32{0.1}, K: 4}, true},
		{"no vector", KNNQuery{Collection: "movies", K: 4}, true},
		{"zero k", KNNQuery{Collection: "movies", Vector: []float32{0.1}}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.q.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("Validate() err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidQuery) {
				t.Errorf("expected ErrInvalidQuery, got %v", err)
			}
		})
	}
}

func TestSimilarityFromCosineDistance(t *testing.T) {
	tests := []struct {
		d, want float64
	}{
		{0, 1},
		{0.2, 0.8},
		{1, 0},
		{1.5, 0},
		{-0.1, 1},
	}
	for _, tc := range tests {
		got := SimilarityFromCosineDistance(tc.d)
		if got < tc.want-1e-9 || got > tc.want+1e-9 {
			t.Errorf("SimilarityFromCosineDistance(%v) = %v, want %v", tc.d, got, tc.want)
		}
	}
}

type flakyPinger struct {
	failures int
	calls    int
}

func (p *flakyPinger) Ping(context.Context) error {
	p.calls++
	if p.calls <= p.failures {
		return errors.New("not ready")
	}
	return nil
}

func TestWaitForReady(t *testing.T) {
	p := &flakyPinger{failures: 2}
	if err := WaitForReady(context.Background(), p, 2*time.Second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.calls != 3 {
		t.Errorf("calls = %d, want 3", p.calls)
	}
}

func TestWaitForReady_Timeout(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	err := WaitForReady(context.Background(), p, 150*time.Millisecond)
	if err == nil {
		t.Fatal("expected timeout error")
	}
}

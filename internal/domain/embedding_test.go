package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	calls  int
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	s.calls++
	return s.result, s.err
}

type stubBatchEmbedder struct {
	stubEmbedder
	batchResult BatchEmbeddingResult
	batchErr    error
	batchTexts  []string
}

func (s *stubBatchEmbedder) BatchEmbed(_ context.Context, texts []string) (BatchEmbeddingResult, error) {
	s.batchTexts = texts
	return s.batchResult, s.batchErr
}

func TestBatchFallback_Success(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{
		Embedding:    []float32{0.1, 0.2},
		PromptTokens: 5,
		TotalTokens:  5,
	}}

	res, err := BatchFallback(context.Background(), inner, []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 3 {
		t.Fatalf("expected 3 embeddings, got %d", len(res.Embeddings))
	}
	if res.TotalTokens != 15 || res.PromptTokens != 15 {
		t.Errorf("expected aggregated tokens 15, got prompt=%d total=%d", res.PromptTokens, res.TotalTokens)
	}
	if inner.calls != 3 {
		t.Errorf("expected 3 Embed calls, got %d", inner.calls)
	}
}

func TestBatchFallback_Error(t *testing.T) {
	innerErr := errors.New("provider down")
	inner := &stubEmbedder{err: innerErr}

	_, err := BatchFallback(context.Background(), inner, []string{"a"})
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

func TestBatchEmbed_UsesNativeBatch(t *testing.T) {
	inner := &stubBatchEmbedder{batchResult: BatchEmbeddingResult{
		Embeddings: [][]float32{{1}, {2}},
	}}

	res, err := BatchEmbed(context.Background(), inner, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(res.Embeddings))
	}
	if len(inner.batchTexts) != 2 {
		t.Errorf("expected native batch to receive 2 texts, got %d", len(inner.batchTexts))
	}
	if inner.calls != 0 {
		t.Errorf("Embed should not be called when batch is supported, got %d calls", inner.calls)
	}
}

func TestBatchEmbed_FallsBack(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.3}}}

	res, err := BatchEmbed(context.Background(), inner, []string{"x", "y"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Embeddings) != 2 || inner.calls != 2 {
		t.Errorf("expected fallback over 2 texts, got %d embeddings / %d calls", len(res.Embeddings), inner.calls)
	}
}

func TestCheckDimensions(t *testing.T) {
	tests := []struct {
		name    string
		vec     []float32
		dim     int
		wantErr error
	}{
		{"empty vector", nil, 4, ErrValidation},
		{"mismatch", []float32{1, 2}, 4, ErrVectorDimMismatch},
		{"match", []float32{1, 2, 3, 4}, 4, nil},
		{"unconfigured dimension", []float32{1}, 0, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := CheckDimensions(tc.vec, tc.dim)
			if tc.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

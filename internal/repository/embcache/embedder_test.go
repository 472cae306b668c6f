package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

func TestEmbed_MissThenHit(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ctx := context.Background()

	first, err := ce.Embed(ctx, "Inception")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.TotalTokens != 10 {
		t.Errorf("miss TotalTokens = %d, want 10", first.TotalTokens)
	}
	if len(ms.data) != 1 {
		t.Fatalf("expected 1 cached entry, got %d", len(ms.data))
	}
	for _, ttl := range ms.ttls {
		if ttl != time.Hour {
			t.Errorf("ttl = %v, want 1h", ttl)
		}
	}

	second, err := ce.Embed(ctx, "Inception")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.embedCalls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.embedCalls)
	}
	if second.TotalTokens != 0 {
		t.Errorf("hit TotalTokens = %d, want 0", second.TotalTokens)
	}
	for i := range first.Embedding {
		if first.Embedding[i] != second.Embedding[i] {
			t.Fatalf("hit vector %v differs from miss vector %v", second.Embedding, first.Embedding)
		}
	}
}

func TestEmbed_KeyIncludesModel(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for k := range ms.data {
		if !strings.HasPrefix(k, "popchoice:emb_cache:text-embedding-ada-002:") {
			t.Errorf("key = %q", k)
		}
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{err: errors.New("provider down")}
	ce, ms := newTestCachedEmbedder(t, inner)

	if _, err := ce.Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
	if len(ms.data) != 0 {
		t.Error("failed embed must not be cached")
	}
}

func TestEmbed_StoreErrorsAreIgnored(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	ms := &mockKVStore{
		getFn: func(context.Context, string) ([]byte, error) { return nil, errors.New("conn refused") },
		setFn: func(context.Context, string, []byte) error { return errors.New("conn refused") },
	}
	ce := New(inner, ms, "m", time.Hour, nil, zap.NewNop())

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("cache failures must not fail Embed: %v", err)
	}
	if len(res.Embedding) != 1 {
		t.Errorf("unexpected vector: %v", res.Embedding)
	}
}

func TestEmbed_CorruptEntryIsMiss(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.7}}}
	ms := &mockKVStore{
		getFn: func(context.Context, string) ([]byte, error) { return []byte{1, 2, 3}, nil },
		setFn: func(context.Context, string, []byte) error { return nil },
	}
	ce := New(inner, ms, "m", time.Hour, nil, zap.NewNop())

	res, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.embedCalls != 1 || res.Embedding[0] != 0.7 {
		t.Errorf("expected inner call on corrupt entry, got %v", res.Embedding)
	}
}

func TestBatchEmbed_OnlyMissesReachInner(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.5},
		PromptTokens: 3,
		TotalTokens:  3,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.data[ce.cacheKey("hit")] = vectorToCacheBytes([]float32{0.9})

	res, err := ce.BatchEmbed(context.Background(), []string{"miss1", "hit", "miss2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 1 {
		t.Fatalf("batch calls = %d, want 1", inner.batchCalls)
	}
	if strings.Join(inner.batchTexts, ",") != "miss1,miss2" {
		t.Errorf("inner texts = %v", inner.batchTexts)
	}
	if res.Embeddings[1][0] != 0.9 {
		t.Errorf("index 1 = %v, want cached 0.9", res.Embeddings[1])
	}
	if res.Embeddings[0][0] != 0.5 || res.Embeddings[2][0] != 0.5 {
		t.Errorf("misses = %v, %v", res.Embeddings[0], res.Embeddings[2])
	}
	if res.TotalTokens != 6 {
		t.Errorf("TotalTokens = %d, want 6", res.TotalTokens)
	}
	if len(ms.data) != 3 {
		t.Errorf("cached entries = %d, want 3", len(ms.data))
	}
}

func TestBatchEmbed_AllHits(t *testing.T) {
	inner := &mockEmbedder{}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.data[ce.cacheKey("a")] = vectorToCacheBytes([]float32{0.1})
	ms.data[ce.cacheKey("b")] = vectorToCacheBytes([]float32{0.2})

	res, err := ce.BatchEmbed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.batchCalls != 0 {
		t.Errorf("batch calls = %d, want 0", inner.batchCalls)
	}
	if res.TotalTokens != 0 || len(res.Embeddings) != 2 {
		t.Errorf("result = %+v", res)
	}
}

func TestBatchEmbed_InnerError(t *testing.T) {
	inner := &mockEmbedder{batchErr: errors.New("api down")}
	ce, _ := newTestCachedEmbedder(t, inner)

	if _, err := ce.BatchEmbed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestBatchEmbed_Empty(t *testing.T) {
	ce, _ := newTestCachedEmbedder(t, &mockEmbedder{})

	res, err := ce.BatchEmbed(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Embeddings != nil {
		t.Error("expected nil embeddings for empty input")
	}
}

func TestBytesToVector_Invalid(t *testing.T) {
	if _, err := bytesToVector([]byte{1, 2, 3}); err == nil {
		t.Error("expected error for misaligned data")
	}
}

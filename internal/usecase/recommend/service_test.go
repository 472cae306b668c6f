package recommend

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
	"github.com/kailas-cloud/popchoice/internal/domain/match"
	"github.com/kailas-cloud/popchoice/internal/domain/query"
	"github.com/kailas-cloud/popchoice/internal/domain/recommendation"
	"github.com/kailas-cloud/popchoice/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockSummarizer struct {
	intent string
	err    error
	calls  int
	got    string
}

func (m *mockSummarizer) Summarize(_ context.Context, text string) (string, error) {
	m.calls++
	m.got = text
	return m.intent, m.err
}

type mockEmbedder struct {
	vec   []float32
	err   error
	calls int
	got   string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.got = text
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockSearcher struct {
	matches       match.Set
	err           error
	calls         int
	gotThreshold  float64
	gotTopK       int
	gotVector     []float32
	deadlineIsSet bool
}

func (m *mockSearcher) Search(ctx context.Context, vector []float32, threshold float64, topK int) (match.Set, error) {
	m.calls++
	m.gotVector = vector
	m.gotThreshold = threshold
	m.gotTopK = topK
	_, m.deadlineIsSet = ctx.Deadline()
	return m.matches, m.err
}

// echoSynthesizer returns the assembled context unless err is set.
type echoSynthesizer struct {
	err        error
	calls      int
	gotContext string
	gotIntent  string
}

func (m *echoSynthesizer) Synthesize(_ context.Context, contextText, intent string) (string, error) {
	m.calls++
	m.gotContext = contextText
	m.gotIntent = intent
	if m.err != nil {
		return "", m.err
	}
	return contextText, nil
}

type fixture struct {
	sum   *mockSummarizer
	emb   *mockEmbedder
	srch  *mockSearcher
	synth *echoSynthesizer
	svc   *Service
}

func newFixture(matches match.Set) *fixture {
	f := &fixture{
		sum:   &mockSummarizer{intent: "Looking for a new, serious, mind-bending film"},
		emb:   &mockEmbedder{vec: []float32{0.1, 0.2, 0.3, 0.4}},
		srch:  &mockSearcher{matches: matches},
		synth: &echoSynthesizer{},
	}
	f.svc = New(f.sum, f.emb, f.srch, f.synth, Config{
		Threshold:   0.50,
		TopK:        4,
		Dimensions:  4,
		CallTimeout: 5 * time.Second,
	}, zap.NewNop())
	return f
}

func (f *fixture) remoteCalls() int {
	return f.sum.calls + f.emb.calls + f.srch.calls + f.synth.calls
}

// --- Tests ---

func TestRecommend_EndToEnd(t *testing.T) {
	f := newFixture(match.Set{
		{ID: "1", Content: "Movie X (2010): a serious mind-bending thriller", Similarity: 0.88},
	})

	res, err := f.svc.RecommendAnswers(context.Background(),
		"Inception, loved the twist ending", "something new", "serious")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != "Movie X (2010): a serious mind-bending thriller" {
		t.Errorf("Content = %q", res.Content)
	}
	if res.Similarity != 0.88 {
		t.Errorf("Similarity = %v, want 0.88", res.Similarity)
	}
	if res.Outcome != recommendation.OutcomeOK {
		t.Errorf("Outcome = %s, want ok", res.Outcome)
	}

	if f.emb.got != "Looking for a new, serious, mind-bending film" {
		t.Errorf("embedder got %q, want the intent", f.emb.got)
	}
	if f.synth.gotIntent != f.sum.intent {
		t.Errorf("synthesizer intent = %q", f.synth.gotIntent)
	}
	if f.srch.gotThreshold != 0.50 || f.srch.gotTopK != 4 {
		t.Errorf("search params = %v/%d", f.srch.gotThreshold, f.srch.gotTopK)
	}
	if !f.srch.deadlineIsSet {
		t.Error("search call must carry a deadline")
	}
}

func TestRecommend_SummarizerGetsCombinedText(t *testing.T) {
	f := newFixture(match.Set{{ID: "1", Content: "c", Similarity: 0.9}})
	q, _ := query.New("Alien", "classic", "fun")

	if _, err := f.svc.Recommend(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.sum.got != q.CombinedText() {
		t.Errorf("summarizer got %q, want %q", f.sum.got, q.CombinedText())
	}
}

func TestRecommend_ValidationBeforeRemoteCalls(t *testing.T) {
	cases := []struct {
		name       string
		q1, q2, q3 string
	}{
		{"empty q1", "", "new", "fun"},
		{"blank q2", "Alien", "   ", "fun"},
		{"empty q3", "Alien", "new", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(nil)
			_, err := f.svc.RecommendAnswers(context.Background(), tc.q1, tc.q2, tc.q3)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if n := f.remoteCalls(); n != 0 {
				t.Errorf("remote calls = %d, want 0", n)
			}
		})
	}
}

func TestRecommend_ZeroQueryRejected(t *testing.T) {
	f := newFixture(nil)

	_, err := f.svc.Recommend(context.Background(), query.Query{})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if f.remoteCalls() != 0 {
		t.Error("zero query must not reach remote collaborators")
	}
}

func TestRecommend_NoMatch(t *testing.T) {
	f := newFixture(match.Set{})

	res, err := f.svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Content != recommendation.NoMatchMessage || res.Similarity != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Outcome != recommendation.OutcomeNoMatch {
		t.Errorf("Outcome = %s", res.Outcome)
	}
	if f.synth.calls != 0 {
		t.Errorf("synthesizer calls = %d, want 0", f.synth.calls)
	}
}

func TestRecommend_SynthesisFailureFallback(t *testing.T) {
	f := newFixture(match.Set{{ID: "1", Content: "c", Similarity: 0.9}})
	f.synth.err = errors.New("model overloaded")

	res, err := f.svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
	if err != nil {
		t.Fatalf("synthesis failure must be absorbed, got %v", err)
	}
	if res.Content != recommendation.FallbackMessage || res.Similarity != 0 {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.Outcome != recommendation.OutcomeFallback {
		t.Errorf("Outcome = %s", res.Outcome)
	}
}

func TestRecommend_ContextOrder(t *testing.T) {
	f := newFixture(match.Set{
		{ID: "1", Content: "A", Similarity: 0.91},
		{ID: "2", Content: "B", Similarity: 0.60},
	})

	res, err := f.svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.synth.gotContext != "A"+match.Delimiter+"B" {
		t.Errorf("context = %q", f.synth.gotContext)
	}
	if res.Similarity != 0.91 {
		t.Errorf("Similarity = %v, want top match 0.91", res.Similarity)
	}
}

func TestRecommend_UpstreamStages(t *testing.T) {
	boom := errors.New("boom")
	cases := []struct {
		name  string
		setup func(f *fixture)
		stage domain.Stage
	}{
		{"summarize", func(f *fixture) { f.sum.err = boom }, domain.StageSummarize},
		{"embed", func(f *fixture) { f.emb.err = boom }, domain.StageEmbed},
		{"search", func(f *fixture) { f.srch.err = boom }, domain.StageSearch},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(match.Set{{ID: "1", Content: "c", Similarity: 0.9}})
			tc.setup(f)

			_, err := f.svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
			if !errors.Is(err, domain.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("cause lost: %v", err)
			}
			var ue *domain.UpstreamError
			if !errors.As(err, &ue) || ue.Stage != tc.stage {
				t.Errorf("stage = %v, want %s", ue, tc.stage)
			}
			if f.synth.calls != 0 {
				t.Error("synthesizer must not run after an upstream failure")
			}
		})
	}
}

func TestRecommend_DimensionMismatch(t *testing.T) {
	f := newFixture(nil)
	f.emb.vec = []float32{0.1, 0.2}

	_, err := f.svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
	if !errors.Is(err, domain.ErrVectorDimMismatch) {
		t.Fatalf("expected ErrVectorDimMismatch, got %v", err)
	}
	if !errors.Is(err, domain.ErrValidation) {
		t.Error("dimension mismatch must be a validation error")
	}
	if f.srch.calls != 0 {
		t.Error("search must not run with a mismatched vector")
	}
}

func TestRecommend_EmptyVector(t *testing.T) {
	f := newFixture(nil)
	f.emb.vec = []float32{}

	_, err := f.svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestRecommend_BudgetExceededSurfaces(t *testing.T) {
	f := newFixture(nil)
	f.sum.err = domain.ErrBudgetExceeded

	_, err := f.svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
	if !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
}

func TestRecommend_EmbedderIdempotent(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.3, 0.1, 0.7, 0.2}}

	a, err := emb.Embed(context.Background(), "same intent")
	if err != nil {
		t.Fatal(err)
	}
	b, err := emb.Embed(context.Background(), "same intent")
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Embedding {
		if a.Embedding[i] != b.Embedding[i] {
			t.Fatalf("vectors differ at %d", i)
		}
	}
}

// blockingSummarizer waits until its context is done.
type blockingSummarizer struct{}

func (blockingSummarizer) Summarize(ctx context.Context, _ string) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

// blockingSearcher waits until its context is done.
type blockingSearcher struct{}

func (blockingSearcher) Search(ctx context.Context, _ []float32, _ float64, _ int) (match.Set, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestRecommend_CallTimeoutBoundsRemoteStage(t *testing.T) {
	const callTimeout = 20 * time.Millisecond

	tests := []struct {
		name      string
		summarize Summarizer
		search    Searcher
		wantStage domain.Stage
	}{
		{
			name:      "summarize",
			summarize: blockingSummarizer{},
			search:    &mockSearcher{},
			wantStage: domain.StageSummarize,
		},
		{
			name:      "search",
			summarize: &mockSummarizer{intent: "a serious film"},
			search:    blockingSearcher{},
			wantStage: domain.StageSearch,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			synth := &echoSynthesizer{}
			svc := New(tc.summarize, &mockEmbedder{vec: []float32{0.1, 0.2, 0.3, 0.4}}, tc.search, synth, Config{
				Threshold:   0.50,
				TopK:        4,
				Dimensions:  4,
				CallTimeout: callTimeout,
			}, zap.NewNop())

			start := time.Now()
			_, err := svc.RecommendAnswers(context.Background(), "Alien", "classic", "serious")
			elapsed := time.Since(start)

			if !errors.Is(err, domain.ErrUpstream) {
				t.Fatalf("expected ErrUpstream, got %v", err)
			}
			if !errors.Is(err, context.DeadlineExceeded) {
				t.Errorf("expected DeadlineExceeded in chain, got %v", err)
			}
			var ue *domain.UpstreamError
			if !errors.As(err, &ue) || ue.Stage != tc.wantStage {
				t.Errorf("expected UpstreamError at stage %s, got %v", tc.wantStage, err)
			}
			if elapsed > time.Second {
				t.Errorf("call returned after %v, want about %v", elapsed, callTimeout)
			}
			if synth.calls != 0 {
				t.Errorf("synthesizer called %d times after a timed out stage", synth.calls)
			}
		})
	}
}

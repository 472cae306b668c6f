package provider

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/popchoice/internal/domain"
)

type mockBudgetStore struct {
	mu     sync.Mutex
	data   map[string]int64
	getErr error
	setErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())
	bt.Record(100)

	err := bt.Check(context.Background())
	if !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionWarn, zap.NewNop())
	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil for warn action, got %v", err)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 500, BudgetActionReject, zap.NewNop())
	bt.Record(500)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrBudgetExceeded) {
		t.Fatalf("expected ErrBudgetExceeded for monthly limit, got %v", err)
	}
}

func TestBudgetTracker_UnlimitedWhenZero(t *testing.T) {
	bt := NewBudgetTracker("test", 0, 0, BudgetActionReject, zap.NewNop())
	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil for unlimited budget, got %v", err)
	}
	if bt.RemainingDaily() != -1 || bt.RemainingMonthly() != -1 {
		t.Errorf("expected -1 remaining, got %d/%d", bt.RemainingDaily(), bt.RemainingMonthly())
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("test", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.Record(300)

	if got := bt.RemainingDaily(); got != 700 {
		t.Errorf("daily remaining = %d, want 700", got)
	}
	if got := bt.RemainingMonthly(); got != 9700 {
		t.Errorf("monthly remaining = %d, want 9700", got)
	}

	bt.Record(5000)
	if got := bt.RemainingDaily(); got != 0 {
		t.Errorf("daily remaining = %d, want 0 once overspent", got)
	}
}

func TestBudgetTracker_DayRollover(t *testing.T) {
	bt := NewBudgetTracker("test", 100, 0, BudgetActionReject, zap.NewNop())
	day := time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)
	bt.now = func() time.Time { return day }
	bt.lastDayReset = truncateToDay(day)
	bt.lastMonthReset = truncateToMonth(day)

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before rollover")
	}

	day = day.Add(2 * time.Hour)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected budget reset after midnight, got %v", err)
	}
	if bt.MonthlyUsed() != 100 {
		t.Errorf("monthly counter must survive the day rollover, got %d", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionReject, zap.NewNop())
	now := bt.now()
	store.data[bt.dailyKey(now)] = 300
	store.data[bt.monthlyKey(now)] = 5000

	bt.WithStore(context.Background(), store)

	if bt.DailyUsed() != 300 {
		t.Errorf("daily_used = %d, want 300", bt.DailyUsed())
	}
	if bt.MonthlyUsed() != 5000 {
		t.Errorf("monthly_used = %d, want 5000", bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 10000, 100000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	bt.Record(100)
	bt.Record(200)

	store.mu.Lock()
	val := store.data[bt.dailyKey(bt.now())]
	store.mu.Unlock()
	if val != 300 {
		t.Errorf("store daily = %d, want 300", val)
	}
}

func TestBudgetTracker_WithStore_LoadError(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")

	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionReject, zap.NewNop())
	bt.WithStore(context.Background(), store)

	if bt.DailyUsed() != 0 || bt.MonthlyUsed() != 0 {
		t.Errorf("expected zero counters on load error, got %d/%d", bt.DailyUsed(), bt.MonthlyUsed())
	}
}

func TestBudgetTracker_Record_StoreWriteError(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("prov", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.WithStore(context.Background(), store)

	store.mu.Lock()
	store.setErr = errors.New("write timeout")
	store.mu.Unlock()

	bt.Record(50)

	if bt.DailyUsed() != 50 {
		t.Errorf("daily_used = %d, want 50 even with store error", bt.DailyUsed())
	}
}

func TestBudgetTracker_KeyFormat(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop())
	at := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	if got := bt.dailyKey(at); got != "popchoice:budget:openai:daily:2026-10-18" {
		t.Errorf("dailyKey = %q", got)
	}
	if got := bt.monthlyKey(at); !strings.HasSuffix(got, ":monthly:2026-10") {
		t.Errorf("monthlyKey = %q", got)
	}
}

package matcher

import (
	"context"
	"testing"

	"github.com/xaenox/faq-bot/internal/models"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

// countingStore wraps the memory storage to observe SearchFAQ calls.
type countingStore struct {
	*storage.MemoryStorage
	searches int
}

func (s *countingStore) SearchFAQ(ctx context.Context, keywords []string) ([]models.FAQEntry, error) {
	s.searches++
	return s.MemoryStorage.SearchFAQ(ctx, keywords)
}

func newTestMatcher(t *testing.T) (*Matcher, *countingStore) {
	t.Helper()
	store := &countingStore{MemoryStorage: storage.NewMemoryStorage()}
	return New(store, 0, zap.NewNop()), store
}

func mustCreateFAQ(t *testing.T, store storage.FAQStorage, question, answer, keywords string) models.FAQEntry {
	t.Helper()
	entry, err := store.CreateFAQ(context.Background(), question, answer, keywords)
	if err != nil {
		t.Fatalf("CreateFAQ: %v", err)
	}
	return *entry
}

func TestMatchEmptyKeywordsShortCircuits(t *testing.T) {
	m, store := newTestMatcher(t)
	mustCreateFAQ(t, store, "reset password", "Click 'forgot password'", "reset,password")

	match, err := m.Match(context.Background(), nil)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match != nil {
		t.Errorf("expected no match for empty keywords, got %+v", match)
	}
	if store.searches != 0 {
		t.Errorf("expected no store queries for empty keywords, got %d", store.searches)
	}
}

func TestMatchFullOverlapAlwaysHits(t *testing.T) {
	m, store := newTestMatcher(t)
	want := mustCreateFAQ(t, store, "reset password", "Click 'forgot password'", "reset,password")

	match, err := m.Match(context.Background(), []string{"reset", "password"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match, got none")
	}
	if match.Entry.ID != want.ID {
		t.Errorf("matched entry %s, want %s", match.Entry.ID, want.ID)
	}
	if match.Score != 2 {
		t.Errorf("score = %d, want 2", match.Score)
	}
}

func TestMatchPartialOverlapClearsFloor(t *testing.T) {
	m, store := newTestMatcher(t)
	mustCreateFAQ(t, store, "reset password", "Click 'forgot password'", "reset,password")

	// 2 of 6 keywords overlap: above the 0.3 floor.
	keywords := ExtractKeywords("How do I reset my password?")
	match, err := m.Match(context.Background(), keywords)
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match, got none")
	}
	if match.Entry.Answer != "Click 'forgot password'" {
		t.Errorf("answer = %q", match.Entry.Answer)
	}
}

func TestMatchBelowFloorMisses(t *testing.T) {
	m, store := newTestMatcher(t)
	mustCreateFAQ(t, store, "shipping cost", "Shipping is free", "shipping")

	// 1 of 5 keywords overlap: below the 0.3 floor.
	match, err := m.Match(context.Background(), []string{"shipping", "elephant", "quantum", "banjo", "tuesday"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match != nil {
		t.Errorf("expected no match below relevance floor, got %+v", match)
	}
}

func TestMatchMoreOverlapsRankHigher(t *testing.T) {
	m, store := newTestMatcher(t)
	mustCreateFAQ(t, store, "password rules", "Use 12 characters", "password")
	want := mustCreateFAQ(t, store, "reset password", "Click 'forgot password'", "reset,password")

	match, err := m.Match(context.Background(), []string{"reset", "password"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match, got none")
	}
	if match.Entry.ID != want.ID {
		t.Errorf("matched %q, want the higher-overlap entry %q", match.Entry.Question, want.Question)
	}
}

func TestMatchTieGoesToLowestID(t *testing.T) {
	m, store := newTestMatcher(t)
	a := mustCreateFAQ(t, store, "reset password", "answer one", "")
	b := mustCreateFAQ(t, store, "password reset", "answer two", "")

	lowest := a
	if b.ID < a.ID {
		lowest = b
	}

	match, err := m.Match(context.Background(), []string{"reset", "password"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match, got none")
	}
	if match.Entry.ID != lowest.ID {
		t.Errorf("tie resolved to %s, want lowest id %s", match.Entry.ID, lowest.ID)
	}
}

func TestMatchScoresKeywordHints(t *testing.T) {
	m, store := newTestMatcher(t)
	want := mustCreateFAQ(t, store, "account recovery", "Use the recovery form", "password,login,locked")

	match, err := m.Match(context.Background(), []string{"password", "locked"})
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if match == nil {
		t.Fatal("expected a match via keyword hints, got none")
	}
	if match.Entry.ID != want.ID {
		t.Errorf("matched %s, want %s", match.Entry.ID, want.ID)
	}
	if match.Score != 2 {
		t.Errorf("score = %d, want 2", match.Score)
	}
}

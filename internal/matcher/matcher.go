package matcher

import (
	"context"
	"fmt"
	"strings"

	"github.com/xaenox/faq-bot/internal/models"
	"github.com/xaenox/faq-bot/internal/storage"
	"go.uber.org/zap"
)

// DefaultMinOverlap is the relevance floor: a candidate must share at least
// this fraction of the query's distinct keywords to count as a match. An
// entry containing every query keyword therefore always clears the floor.
const DefaultMinOverlap = 0.3

// Match is a knowledge-base hit: the best-scoring entry and how many query
// keywords it shared.
type Match struct {
	Entry models.FAQEntry
	Score int
}

// Matcher ranks FAQ entries against extracted keywords. Retrieval is
// literal: more keyword overlaps rank above fewer, ties go to the lowest
// entry id so results are reproducible.
type Matcher struct {
	store      storage.FAQStorage
	minOverlap float64
	logger     *zap.Logger
}

func New(store storage.FAQStorage, minOverlap float64, logger *zap.Logger) *Matcher {
	if minOverlap <= 0 {
		minOverlap = DefaultMinOverlap
	}
	return &Matcher{
		store:      store,
		minOverlap: minOverlap,
		logger:     logger,
	}
}

// Match returns the best entry for the keyword set, or nil when nothing
// clears the relevance floor. An empty keyword set is a guaranteed miss and
// the store is never queried.
func (m *Matcher) Match(ctx context.Context, keywords []string) (*Match, error) {
	if len(keywords) == 0 {
		return nil, nil
	}

	candidates, err := m.store.SearchFAQ(ctx, keywords)
	if err != nil {
		return nil, fmt.Errorf("error searching knowledge base: %w", err)
	}

	var best *Match
	for _, entry := range candidates {
		score := overlap(keywords, entryTokens(entry))
		if score == 0 {
			continue
		}
		if float64(score)/float64(len(keywords)) < m.minOverlap {
			continue
		}
		if best == nil || score > best.Score || (score == best.Score && entry.ID < best.Entry.ID) {
			best = &Match{Entry: entry, Score: score}
		}
	}

	if best != nil {
		m.logger.Info("Found FAQ match",
			zap.String("faq_id", best.Entry.ID),
			zap.Int("score", best.Score),
			zap.Int("keywords", len(keywords)))
	}
	return best, nil
}

// entryTokens is the token set an entry is scored against: its question text
// plus the comma-separated keyword hints.
func entryTokens(entry models.FAQEntry) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, token := range ExtractKeywords(entry.Question) {
		tokens[token] = struct{}{}
	}
	for _, hint := range strings.Split(entry.Keywords, ",") {
		for _, token := range ExtractKeywords(hint) {
			tokens[token] = struct{}{}
		}
	}
	return tokens
}

func overlap(keywords []string, tokens map[string]struct{}) int {
	count := 0
	for _, kw := range keywords {
		if _, ok := tokens[kw]; ok {
			count++
		}
	}
	return count
}

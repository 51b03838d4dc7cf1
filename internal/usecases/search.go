package usecases

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"eximbot/internal/entities"
	"eximbot/internal/logger"
	"eximbot/internal/metrics"
	"eximbot/internal/repository"
)

// synonymSets is the static Indonesian↔English product lexicon. Every term in
// a set expands to the whole set, so "ikan" and "fish" match the same rows.
// The search algorithm is data-driven; extending the lexicon is a data change.
var synonymSets = [][]string{
	{"ikan", "fish", "seafood", "tuna", "salmon"},
	{"kelapa", "coconut", "cocos", "kopra"},
	{"minyak", "oil", "virgin", "vco"},
	{"arang", "charcoal", "briket", "briquette"},
	{"kopi", "coffee"},
	{"udang", "shrimp", "prawn"},
	{"manggis", "mangosteen"},
	{"teri", "anchovy"},
}

var synonymIndex = buildSynonymIndex(synonymSets)

func buildSynonymIndex(sets [][]string) map[string][]string {
	index := make(map[string][]string)
	for _, set := range sets {
		for _, term := range set {
			index[term] = set
		}
	}
	return index
}

// CategoryPatterns maps the closed set of category keys to their product
// predicates. Patterns carry their own wildcards and still bind as SQL
// parameters.
var CategoryPatterns = map[string][]string{
	"0301":     {"0301%"},
	"0302":     {"0302%"},
	"0303":     {"0303%"},
	"0304":     {"0304%"},
	"anchovy":  {"0305%", "%anchovy%", "%teri%"},
	"0901":     {"0901%"},
	"manggis":  {"0810%", "%manggis%", "%mangosteen%"},
	"1513":     {"1513%", "%coconut oil%", "%vco%"},
	"44029010": {"44029010%", "%briquette%", "%charcoal%"},
}

// IsCategoryKey reports whether key belongs to the closed category set.
func IsCategoryKey(key string) bool {
	_, ok := CategoryPatterns[key]
	return ok
}

type SearchService struct {
	importers *repository.ImporterRepository
	metrics   *metrics.Metrics
}

func NewSearchService(importers *repository.ImporterRepository, m *metrics.Metrics) *SearchService {
	return &SearchService{importers: importers, metrics: m}
}

// ExpandQuery tokenizes a free-text query and expands each token through the
// synonym lexicon. Zero-length tokens are dropped; an empty query yields no
// groups.
func ExpandQuery(query string) [][]string {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	groups := make([][]string, 0, len(fields))
	for _, token := range fields {
		if token == "" {
			continue
		}
		if set, ok := synonymIndex[token]; ok {
			groups = append(groups, set)
		} else {
			groups = append(groups, []string{token})
		}
	}
	return groups
}

// Search runs a free-text query. An empty query returns an empty result and
// never scans the catalog. The read path degrades: when retries are
// exhausted it logs and returns empty.
func (s *SearchService) Search(ctx context.Context, query string) []entities.DisplayContact {
	groups := ExpandQuery(query)
	if len(groups) == 0 {
		return []entities.DisplayContact{}
	}

	start := time.Now()
	contacts, err := s.importers.SearchText(ctx, groups)
	s.observe("text", start, err)
	if err != nil {
		logger.Log.Error("text search failed", zap.String("query", query), zap.Error(err))
		return []entities.DisplayContact{}
	}
	return contacts
}

// SearchCategory runs a category-key query. Unknown keys return empty.
func (s *SearchService) SearchCategory(ctx context.Context, key string) []entities.DisplayContact {
	patterns, ok := CategoryPatterns[key]
	if !ok {
		logger.Log.Warn("unknown category key", zap.String("key", key))
		return []entities.DisplayContact{}
	}

	start := time.Now()
	contacts, err := s.importers.SearchCategory(ctx, patterns)
	s.observe("category", start, err)
	if err != nil {
		logger.Log.Error("category search failed", zap.String("key", key), zap.Error(err))
		return []entities.DisplayContact{}
	}
	return contacts
}

func (s *SearchService) observe(kind string, start time.Time, err error) {
	if s.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.Searches.WithLabelValues(kind, status).Inc()
	s.metrics.SearchLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}

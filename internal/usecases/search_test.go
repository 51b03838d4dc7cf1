package usecases

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandQuerySynonyms(t *testing.T) {
	groups := ExpandQuery("Ikan segar")

	assert.Len(t, groups, 2)
	assert.ElementsMatch(t, []string{"ikan", "fish", "seafood", "tuna", "salmon"}, groups[0])
	assert.Equal(t, []string{"segar"}, groups[1])
}

func TestExpandQueryEnglishTermHitsSameSet(t *testing.T) {
	assert.Equal(t, ExpandQuery("fish"), ExpandQuery("ikan"))
}

func TestExpandQueryEmpty(t *testing.T) {
	assert.Empty(t, ExpandQuery(""))
	assert.Empty(t, ExpandQuery("   \t  "))
}

func TestExpandQueryLowercasesTokens(t *testing.T) {
	groups := ExpandQuery("KOPI Arabika")
	assert.ElementsMatch(t, []string{"kopi", "coffee"}, groups[0])
	assert.Equal(t, []string{"arabika"}, groups[1])
}

func TestIsCategoryKey(t *testing.T) {
	for key := range CategoryPatterns {
		assert.True(t, IsCategoryKey(key))
	}
	assert.False(t, IsCategoryKey("9999"))
	assert.False(t, IsCategoryKey(""))
}

func TestCategoryPatternsCarryWildcards(t *testing.T) {
	for key, patterns := range CategoryPatterns {
		assert.NotEmpty(t, patterns, key)
		for _, p := range patterns {
			assert.Contains(t, p, "%", key)
		}
	}
}

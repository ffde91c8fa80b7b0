package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreExactVariantMatch(t *testing.T) {
	variants := Normalize("Gale Klappa")

	// The corpus convention LAST FIRST MIDDLE-INITIAL
	assert.Equal(t, 1.0, Score(variants, "KLAPPA GALE E"))
	assert.Equal(t, 1.0, Score(variants, "Klappa, Gale E."))
}

func TestScoreUnrelatedName(t *testing.T) {
	variants := Normalize("Gale Klappa")
	assert.Zero(t, Score(variants, "SMITH JOHN"))
	assert.Zero(t, Score(variants, "BADGER METER INC"))
}

func TestScoreSharedSurnameAlone(t *testing.T) {
	// A single common token carries no signal for human names.
	variants := Normalize("John Klappa")
	assert.False(t, IsMatch(variants, "KLAPPA GALE E"))
}

func TestScoreTokenOrderInvariant(t *testing.T) {
	variants := Normalize("Mary Jane Watson")

	a := Score(variants, "JANE MARY WATSON")
	b := Score(variants, "WATSON JANE MARY")
	assert.Equal(t, a, b)
	assert.True(t, a >= MatchThreshold)
}

func TestScoreSpellingDrift(t *testing.T) {
	// "Jon" vs "John" shares only the surname token, so the edit-distance
	// component has to carry the match.
	variants := Normalize("Jon Smith")
	score := Score(variants, "JOHN SMITH")
	assert.True(t, score >= MatchThreshold, "score %v", score)
	assert.Less(t, score, 1.0)
}

func TestScoreDeterministic(t *testing.T) {
	variants := Normalize("William J. Smith")
	first := Score(variants, "SMITH WILLIAM JAY")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Score(variants, "SMITH WILLIAM JAY"))
	}
}

func TestScoreEmptyInputs(t *testing.T) {
	assert.Zero(t, Score(nil, "KLAPPA GALE E"))
	assert.Zero(t, Score(Normalize("Gale Klappa"), ""))
}

func TestScoreBounded(t *testing.T) {
	names := []string{"KLAPPA GALE E", "GALE KLAPPA", "Gale E Klappa Jr", "K G"}
	variants := Normalize("Gale E. Klappa")
	require.NotEmpty(t, variants)
	for _, n := range names {
		s := Score(variants, n)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

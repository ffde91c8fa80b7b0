package resolve

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fintrace/insider/budget"
	"github.com/fintrace/insider/errors"
)

type fakeIndex struct {
	refs  []FilingRef
	err   error
	calls int
}

func (f *fakeIndex) SearchFilings(_ context.Context, _ string) ([]FilingRef, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.refs, nil
}

func testBudget() *budget.Budget {
	return budget.New(1000, 1000)
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func wecRef(filer string) FilingRef {
	return FilingRef{
		AccessionNo: "0001264731-24-000012",
		EntityCIK:   "0000783325",
		EntityName:  "WEC ENERGY GROUP, INC.",
		FilerName:   filer,
		Filed:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestIndexedSearchScoresAndGroups(t *testing.T) {
	index := &fakeIndex{refs: []FilingRef{
		wecRef("KLAPPA GALE E"),
		wecRef("SMITH JOHN"),
	}}
	strategy := NewIndexedStrategy(index, testBudget(), 0, testLogger())

	matches, err := strategy.Search(context.Background(), Normalize("Gale Klappa"))
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Equal(t, "0000783325", matches[0].Entity.CIK)
	assert.Equal(t, "KLAPPA GALE E", matches[0].FilerName)
	assert.Equal(t, 1.0, matches[0].Confidence)
	require.Len(t, matches[0].Evidence, 1)
	assert.Equal(t, "0001264731-24-000012", matches[0].Evidence[0].AccessionNo)
}

func TestIndexedSearchDeduplicatesAcrossVariants(t *testing.T) {
	// Every variant query returns the same filing; the evidence must not
	// multiply with the variant count.
	index := &fakeIndex{refs: []FilingRef{wecRef("KLAPPA GALE E")}}
	strategy := NewIndexedStrategy(index, testBudget(), 0, testLogger())

	matches, err := strategy.Search(context.Background(), Normalize("Gale E. Klappa"))
	require.NoError(t, err)

	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Evidence, 1)
	assert.Equal(t, maxIndexedQueries, index.calls)
}

func TestIndexedSearchEmptyResultIsNotAnError(t *testing.T) {
	strategy := NewIndexedStrategy(&fakeIndex{}, testBudget(), 0, testLogger())

	matches, err := strategy.Search(context.Background(), Normalize("Gale Klappa"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestIndexedSearchAllQueriesFailed(t *testing.T) {
	index := &fakeIndex{err: errors.New("503 from upstream")}
	strategy := NewIndexedStrategy(index, testBudget(), 0, testLogger())

	_, err := strategy.Search(context.Background(), Normalize("Gale Klappa"))
	require.Error(t, err)
	assert.True(t, errors.IsSearchUnavailable(err))
}

func TestIndexedSearchBudgetExhausted(t *testing.T) {
	b := budget.New(0.001, 1) // next token is ~17 minutes away
	require.True(t, b.TryAcquire())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	strategy := NewIndexedStrategy(&fakeIndex{}, b, 0, testLogger())
	_, err := strategy.Search(ctx, Normalize("Gale Klappa"))
	require.Error(t, err)
	assert.True(t, errors.IsSearchUnavailable(err))
}

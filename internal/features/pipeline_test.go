package features

import (
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRows() []Row {
	return []Row{
		{Price: 120, Bedrooms: 1, Bathrooms: 1, Accommodates: 2, Neighbourhood: "Back Bay"},
		{Price: 250, Bedrooms: 2, Bathrooms: 1.5, Accommodates: 4, Neighbourhood: "South Boston"},
		{Price: 90, Bedrooms: 1, Bathrooms: 1, Accommodates: 2, Neighbourhood: "Allston"},
		{Price: 310, Bedrooms: 3, Bathrooms: 2, Accommodates: 6, Neighbourhood: "Back Bay"},
		{Price: 180, Bedrooms: 2, Bathrooms: 1, Accommodates: 3, Neighbourhood: "South Boston"},
	}
}

func newTestPipeline() *Pipeline {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return NewPipeline(logger)
}

func TestFitTransformShape(t *testing.T) {
	p := newTestPipeline()

	matrix, target, vocab, err := p.FitTransform(testRows())
	require.NoError(t, err)

	rows, cols := matrix.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 3+vocab.Len(), cols)
	assert.Len(t, target, rows)
	assert.Equal(t, 3, vocab.Len())
}

func TestFitTransformVocabularyIsDeterministic(t *testing.T) {
	p := newTestPipeline()

	_, _, vocab, err := p.FitTransform(testRows())
	require.NoError(t, err)

	// Same rows in a different order must produce the same vocabulary
	reversed := testRows()
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	_, _, vocab2, err := p.FitTransform(reversed)
	require.NoError(t, err)

	assert.Equal(t, vocab.Names(), vocab2.Names())
	assert.Equal(t, []string{"Allston", "Back Bay", "South Boston"}, vocab.Names())
}

func TestFitTransformOneHotBlock(t *testing.T) {
	p := newTestPipeline()

	matrix, _, vocab, err := p.FitTransform(testRows())
	require.NoError(t, err)

	rows, _ := matrix.Dims()
	for i := 0; i < rows; i++ {
		var ones int
		for j := 0; j < vocab.Len(); j++ {
			v := matrix.At(i, 3+j)
			if v == 1 {
				ones++
			} else {
				assert.Equal(t, 0.0, v)
			}
		}
		assert.Equal(t, 1, ones, "row %d must have exactly one hot column", i)
	}
}

func TestOneHotRoundTrip(t *testing.T) {
	vocab := NewVocabulary([]string{"Fenway", "Allston", "Back Bay"})

	for _, name := range vocab.Names() {
		row, err := TransformSingle(Record{Bedrooms: 1, Bathrooms: 1, Accommodates: 2, Neighbourhood: name}, vocab)
		require.NoError(t, err)

		hot := -1
		for j := 0; j < vocab.Len(); j++ {
			if row[3+j] == 1 {
				hot = j
			}
		}
		require.NotEqual(t, -1, hot)
		assert.Equal(t, name, vocab.Name(hot))
	}
}

func TestTransformSingleIdempotent(t *testing.T) {
	vocab := NewVocabulary([]string{"Allston", "Back Bay"})
	rec := Record{Bedrooms: 2, Bathrooms: 1, Accommodates: 4, Neighbourhood: "Back Bay"}

	first, err := TransformSingle(rec, vocab)
	require.NoError(t, err)
	second, err := TransformSingle(rec, vocab)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestTransformSingleUnknownCategory(t *testing.T) {
	vocab := NewVocabulary([]string{"Allston", "Back Bay"})

	_, err := TransformSingle(Record{Bedrooms: 1, Bathrooms: 1, Accommodates: 2, Neighbourhood: "Atlantis"}, vocab)
	assert.ErrorIs(t, err, ErrUnknownCategory)
	assert.Contains(t, err.Error(), "Atlantis")
}

func TestTransformSingleValidation(t *testing.T) {
	vocab := NewVocabulary([]string{"Allston"})

	_, err := TransformSingle(Record{Bedrooms: 1, Bathrooms: 1, Accommodates: 2}, vocab)
	assert.ErrorIs(t, err, ErrMissingField)

	_, err = TransformSingle(Record{Bedrooms: math.NaN(), Bathrooms: 1, Accommodates: 2, Neighbourhood: "Allston"}, vocab)
	assert.ErrorIs(t, err, ErrInvalidNumeric)

	_, err = TransformSingle(Record{Bedrooms: 1, Bathrooms: math.Inf(1), Accommodates: 2, Neighbourhood: "Allston"}, vocab)
	assert.ErrorIs(t, err, ErrInvalidNumeric)
}

func TestTransformSingleMatchesTrainingWidth(t *testing.T) {
	p := newTestPipeline()

	matrix, _, vocab, err := p.FitTransform(testRows())
	require.NoError(t, err)

	row, err := TransformSingle(Record{Bedrooms: 2, Bathrooms: 1, Accommodates: 4, Neighbourhood: "South Boston"}, vocab)
	require.NoError(t, err)

	_, cols := matrix.Dims()
	assert.Len(t, row, cols)
	assert.Equal(t, []float64{2, 1, 4}, row[:3])
}

func TestFitTransformImputesMissingValues(t *testing.T) {
	p := newTestPipeline()

	rows := append(testRows(),
		Row{Price: 200, Bedrooms: math.NaN(), Bathrooms: 1, Accommodates: 2, Neighbourhood: "Allston"},
		Row{Price: 150, Bedrooms: 1, Bathrooms: 1, Accommodates: 2, Neighbourhood: ""},
	)

	matrix, target, vocab, err := p.FitTransform(rows)
	require.NoError(t, err)

	nRows, _ := matrix.Dims()
	assert.Equal(t, len(rows), nRows, "imputed rows must not be dropped")
	assert.Len(t, target, len(rows))

	// Bedrooms median over {1,2,1,3,2,1} is 1.5
	assert.Equal(t, 1.5, matrix.At(5, 0))

	// All three neighbourhoods tie at 2; the lexicographically smallest wins
	idx, ok := vocab.Index("Allston")
	require.True(t, ok)
	assert.Equal(t, 1.0, matrix.At(6, 3+idx))
}

func TestFitTransformDropsUnimputableRows(t *testing.T) {
	p := newTestPipeline()

	rows := append(testRows(),
		Row{Price: math.NaN(), Bedrooms: 1, Bathrooms: 1, Accommodates: 2, Neighbourhood: "Allston"},
	)

	matrix, target, _, err := p.FitTransform(rows)
	require.NoError(t, err)

	nRows, _ := matrix.Dims()
	assert.Equal(t, len(rows)-1, nRows, "row with missing target must be dropped")
	assert.Len(t, target, nRows)
}

func TestFitTransformEmptyInput(t *testing.T) {
	p := newTestPipeline()

	_, _, _, err := p.FitTransform(nil)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	_, _, _, err = p.FitTransform([]Row{{Price: 100, Bedrooms: 1, Bathrooms: 1, Accommodates: 2}})
	assert.ErrorIs(t, err, ErrEmptyDataset)
}

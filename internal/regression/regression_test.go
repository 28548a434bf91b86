package regression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestFitRecoversLinearRelationship(t *testing.T) {
	// y = 10 + 2*x1 + 3*x2, no noise
	x := mat.NewDense(4, 2, []float64{
		1, 1,
		2, 1,
		3, 2,
		4, 5,
	})
	y := []float64{15, 17, 22, 33}

	model, err := Fit(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 10, model.Intercept, 1e-8)
	require.Len(t, model.Weights, 2)
	assert.InDelta(t, 2, model.Weights[0], 1e-8)
	assert.InDelta(t, 3, model.Weights[1], 1e-8)
}

func TestFitHandlesOneHotCollinearity(t *testing.T) {
	// Numeric column plus a full one-hot block: the one-hot columns sum to
	// the intercept column, so the design matrix is rank-deficient. Fit must
	// still produce a model that interpolates the training data.
	x := mat.NewDense(4, 3, []float64{
		1, 1, 0,
		2, 1, 0,
		1, 0, 1,
		3, 0, 1,
	})
	y := []float64{100, 150, 80, 180}

	model, err := Fit(x, y)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		row := mat.Row(nil, i, x)
		got, err := model.Predict(row)
		require.NoError(t, err)
		assert.InDelta(t, y[i], got, 1e-6, "row %d", i)
	}
}

func TestFitDegenerateInput(t *testing.T) {
	_, err := Fit(mat.NewDense(1, 1, []float64{1}), []float64{1, 2})
	assert.ErrorIs(t, err, ErrTrainingFailed)

	_, err = Fit(&mat.Dense{}, nil)
	assert.ErrorIs(t, err, ErrTrainingFailed)
}

func TestPredictWidthMismatch(t *testing.T) {
	model := &Model{Intercept: 1, Weights: []float64{2, 3}}

	_, err := model.Predict([]float64{1})
	assert.Error(t, err)

	got, err := model.Predict([]float64{1, 1})
	require.NoError(t, err)
	assert.Equal(t, 6.0, got)
}

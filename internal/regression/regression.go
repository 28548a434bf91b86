package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrTrainingFailed marks degenerate training input: an empty matrix, a
// target of the wrong length, or a system with no stable solution.
var ErrTrainingFailed = errors.New("training failed")

// Model is a fitted linear regression: predicted price is the dot product
// of Weights with a feature row, plus Intercept.
type Model struct {
	Intercept float64
	Weights   []float64
}

// Fit solves the ordinary least-squares problem for the given feature
// matrix and target vector. The one-hot block makes the design matrix
// rank-deficient by construction (its columns sum to the intercept column),
// so the minimum-norm solution is taken via the singular value
// decomposition rather than a plain QR solve.
func Fit(x mat.Matrix, y []float64) (*Model, error) {
	rows, cols := x.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("%w: empty feature matrix", ErrTrainingFailed)
	}
	if rows != len(y) {
		return nil, fmt.Errorf("%w: %d rows but %d targets", ErrTrainingFailed, rows, len(y))
	}

	// Design matrix with a leading column of ones for the intercept.
	design := mat.NewDense(rows, cols+1, nil)
	for i := 0; i < rows; i++ {
		design.Set(i, 0, 1)
		for j := 0; j < cols; j++ {
			design.Set(i, j+1, x.At(i, j))
		}
	}

	beta, err := solveMinNorm(design, y)
	if err != nil {
		return nil, err
	}

	return &Model{Intercept: beta[0], Weights: beta[1:]}, nil
}

// Predict returns the linear combination of weights and features plus the
// intercept. The output is not clamped; implausible inputs can yield
// implausible prices.
func (m *Model) Predict(features []float64) (float64, error) {
	if len(features) != len(m.Weights) {
		return 0, fmt.Errorf("feature row has %d columns, model expects %d", len(features), len(m.Weights))
	}

	price := m.Intercept
	for i, w := range m.Weights {
		price += w * features[i]
	}
	return price, nil
}

// solveMinNorm computes the minimum-norm least-squares solution of
// design·beta = y using a thin SVD, treating singular values below a
// relative tolerance as zero.
func solveMinNorm(design *mat.Dense, y []float64) ([]float64, error) {
	rows, cols := design.Dims()

	var svd mat.SVD
	if ok := svd.Factorize(design, mat.SVDThin); !ok {
		return nil, fmt.Errorf("%w: singular value decomposition did not converge", ErrTrainingFailed)
	}

	values := svd.Values(nil)
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)

	larger := rows
	if cols > larger {
		larger = cols
	}
	tol := float64(larger) * values[0] * 2.220446049250313e-16

	// z = Σ⁺·Uᵀ·y over the retained singular values
	z := make([]float64, len(values))
	rank := 0
	for k, sv := range values {
		if sv <= tol || sv == 0 {
			continue
		}
		var dot float64
		for i := 0; i < rows; i++ {
			dot += u.At(i, k) * y[i]
		}
		z[k] = dot / sv
		rank++
	}
	if rank == 0 {
		return nil, fmt.Errorf("%w: feature matrix has rank zero", ErrTrainingFailed)
	}

	beta := make([]float64, cols)
	for j := 0; j < cols; j++ {
		var sum float64
		for k := range z {
			sum += v.At(j, k) * z[k]
		}
		if math.IsNaN(sum) || math.IsInf(sum, 0) {
			return nil, fmt.Errorf("%w: solution is not finite", ErrTrainingFailed)
		}
		beta[j] = sum
	}
	return beta, nil
}

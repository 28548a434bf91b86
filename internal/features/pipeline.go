package features

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"bnbprice/server/internal/models"
)

// numericWidth is the number of numeric columns preceding the one-hot block.
// Feature rows are laid out [bedrooms, bathrooms, accommodates, one-hot...].
const numericWidth = 3

var (
	ErrMissingField    = errors.New("missing required field")
	ErrInvalidNumeric  = errors.New("invalid numeric value")
	ErrUnknownCategory = errors.New("unknown category")
	ErrEmptyDataset    = errors.New("no usable rows in dataset")
)

// Row is one training observation. NaN marks a missing numeric value and
// the empty string a missing category.
type Row struct {
	Price         float64
	Bedrooms      float64
	Bathrooms     float64
	Accommodates  float64
	Neighbourhood string
}

// Record is one prediction request in pipeline form.
type Record struct {
	Bedrooms      float64
	Bathrooms     float64
	Accommodates  float64
	Neighbourhood string
}

// RowsFromListings converts cleaned listings into pipeline rows.
func RowsFromListings(listings []models.Listing) []Row {
	rows := make([]Row, len(listings))
	for i, l := range listings {
		rows[i] = Row{
			Price:         l.Price,
			Bedrooms:      float64(l.Bedrooms),
			Bathrooms:     l.Bathrooms,
			Accommodates:  float64(l.Accommodates),
			Neighbourhood: l.Neighbourhood,
		}
	}
	return rows
}

// Pipeline turns cleaned rows into a fixed-width feature matrix and single
// prediction requests into rows of the same layout.
type Pipeline struct {
	logger *logrus.Logger
}

func NewPipeline(logger *logrus.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// FitTransform builds the category vocabulary from rows, imputes remaining
// missing values (median for numerics, most frequent for the category) and
// returns the training matrix, the price target vector and the fitted
// vocabulary. Rows still incomplete after imputation are dropped along with
// their target.
//
// The cleaner already drops null rows, so imputation normally touches
// nothing; it is kept as a second pass so a partially-null batch still fits.
func (p *Pipeline) FitTransform(rows []Row) (*mat.Dense, []float64, *Vocabulary, error) {
	if len(rows) == 0 {
		return nil, nil, nil, ErrEmptyDataset
	}

	imputed := p.impute(rows)

	categories := make([]string, 0, len(imputed))
	for _, r := range imputed {
		categories = append(categories, r.Neighbourhood)
	}
	vocab := NewVocabulary(categories)
	if vocab.Len() == 0 {
		return nil, nil, nil, ErrEmptyDataset
	}

	width := numericWidth + vocab.Len()
	data := make([]float64, 0, len(imputed)*width)
	target := make([]float64, 0, len(imputed))
	dropped := 0

	for _, r := range imputed {
		idx, ok := vocab.Index(r.Neighbourhood)
		if !ok || hasMissing(r) {
			dropped++
			continue
		}

		row := make([]float64, width)
		row[0] = r.Bedrooms
		row[1] = r.Bathrooms
		row[2] = r.Accommodates
		row[numericWidth+idx] = 1
		data = append(data, row...)
		target = append(target, r.Price)
	}

	if len(target) == 0 {
		return nil, nil, nil, ErrEmptyDataset
	}
	if dropped > 0 {
		p.logger.WithField("rows", dropped).Warn("Dropped rows still incomplete after imputation")
	}

	matrix := mat.NewDense(len(target), width, data)
	return matrix, target, vocab, nil
}

// TransformSingle encodes one record against a previously fitted vocabulary,
// producing a feature row with the exact column order and width used at fit
// time. A category outside the vocabulary is an error, never a zero block.
func TransformSingle(rec Record, vocab *Vocabulary) ([]float64, error) {
	if vocab == nil {
		return nil, fmt.Errorf("%w: vocabulary", ErrMissingField)
	}
	if rec.Neighbourhood == "" {
		return nil, fmt.Errorf("%w: neighbourhood", ErrMissingField)
	}
	for _, v := range []float64{rec.Bedrooms, rec.Bathrooms, rec.Accommodates} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: bedrooms, bathrooms and accommodates must be finite", ErrInvalidNumeric)
		}
	}

	idx, ok := vocab.Index(rec.Neighbourhood)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, rec.Neighbourhood)
	}

	row := make([]float64, numericWidth+vocab.Len())
	row[0] = rec.Bedrooms
	row[1] = rec.Bathrooms
	row[2] = rec.Accommodates
	row[numericWidth+idx] = 1
	return row, nil
}

// impute fills missing numerics with the column median and missing
// categories with the most frequent one.
func (p *Pipeline) impute(rows []Row) []Row {
	medBedrooms := median(collect(rows, func(r Row) float64 { return r.Bedrooms }))
	medBathrooms := median(collect(rows, func(r Row) float64 { return r.Bathrooms }))
	medAccommodates := median(collect(rows, func(r Row) float64 { return r.Accommodates }))
	topCategory := mostFrequentCategory(rows)

	out := make([]Row, len(rows))
	filled := 0
	for i, r := range rows {
		if math.IsNaN(r.Bedrooms) {
			r.Bedrooms = medBedrooms
			filled++
		}
		if math.IsNaN(r.Bathrooms) {
			r.Bathrooms = medBathrooms
			filled++
		}
		if math.IsNaN(r.Accommodates) {
			r.Accommodates = medAccommodates
			filled++
		}
		if r.Neighbourhood == "" && topCategory != "" {
			r.Neighbourhood = topCategory
			filled++
		}
		out[i] = r
	}

	if filled > 0 {
		p.logger.WithField("values", filled).Info("Imputed missing values")
	}
	return out
}

func hasMissing(r Row) bool {
	return math.IsNaN(r.Price) || math.IsNaN(r.Bedrooms) || math.IsNaN(r.Bathrooms) ||
		math.IsNaN(r.Accommodates) || r.Neighbourhood == ""
}

func collect(rows []Row, get func(Row) float64) []float64 {
	values := make([]float64, 0, len(rows))
	for _, r := range rows {
		if v := get(r); !math.IsNaN(v) {
			values = append(values, v)
		}
	}
	return values
}

// median returns NaN for an empty slice so a fully-missing column stays
// missing and its rows get dropped.
func median(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// mostFrequentCategory breaks frequency ties by taking the lexicographically
// smallest name so imputation is deterministic.
func mostFrequentCategory(rows []Row) string {
	counts := make(map[string]int)
	for _, r := range rows {
		if r.Neighbourhood != "" {
			counts[r.Neighbourhood]++
		}
	}

	best := ""
	bestCount := 0
	for name, count := range counts {
		if count > bestCount || (count == bestCount && name < best) {
			best = name
			bestCount = count
		}
	}
	return best
}

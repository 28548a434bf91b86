package prediction

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"bnbprice/server/config"
	"bnbprice/server/internal/dataset"
	"bnbprice/server/internal/features"
	"bnbprice/server/internal/models"
	"bnbprice/server/internal/regression"
)

// ErrModelNotLoaded is returned by Predict before the first successful
// reload in the process's lifetime.
var ErrModelNotLoaded = errors.New("model not loaded")

const topNeighbourhoodCount = 5

// DatasetSource provides raw listings, normally from the remote dataset.
type DatasetSource interface {
	Fetch(ctx context.Context) ([]dataset.RawListing, error)
}

// Store is the persistence layer for cleaned listings.
type Store interface {
	ReplaceListings(listings []models.Listing) error
}

// Snapshot is an immutable pair of trained model and fitted vocabulary.
// The two are created together on reload and only ever replaced together.
type Snapshot struct {
	Model *regression.Model
	Vocab *features.Vocabulary
}

// Service owns the model lifecycle: Reload refreshes stored data and
// retrains from scratch, Predict prices a single record against the last
// snapshot.
type Service struct {
	source   DatasetSource
	store    Store
	cleaner  *dataset.Cleaner
	pipeline *features.Pipeline
	logger   *logrus.Logger

	mu       sync.RWMutex
	snapshot *Snapshot

	// reloadMu serializes reloads; overlapping reload is out of scope.
	reloadMu sync.Mutex
}

func NewService(source DatasetSource, store Store, logger *logrus.Logger) *Service {
	return &Service{
		source:   source,
		store:    store,
		cleaner:  dataset.NewCleaner(logger),
		pipeline: features.NewPipeline(logger),
		logger:   logger,
	}
}

// Reload fetches the dataset, replaces the stored listings, retrains the
// model and swaps in the new snapshot. On any failure the previous snapshot
// stays in place, so a predict call never observes a torn or cleared state.
func (s *Service) Reload(ctx context.Context) (*models.ReloadSummary, error) {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	raw, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	listings := s.cleaner.Clean(raw)
	if len(listings) == 0 {
		return nil, fmt.Errorf("%w: no valid listings after cleaning", features.ErrEmptyDataset)
	}

	if err := s.store.ReplaceListings(listings); err != nil {
		return nil, fmt.Errorf("failed to store listings: %w", err)
	}

	matrix, target, vocab, err := s.pipeline.FitTransform(features.RowsFromListings(listings))
	if err != nil {
		return nil, err
	}

	model, err := regression.Fit(matrix, target)
	if err != nil {
		return nil, err
	}

	s.warnOnAllowlistDrift(vocab)

	s.mu.Lock()
	s.snapshot = &Snapshot{Model: model, Vocab: vocab}
	s.mu.Unlock()

	_, width := matrix.Dims()
	s.logger.WithFields(logrus.Fields{
		"listings":   len(listings),
		"features":   width,
		"categories": vocab.Len(),
	}).Info("Model retrained")

	return summarize(listings), nil
}

// Predict encodes one record with the current snapshot's vocabulary and
// applies the model. The (model, vocabulary) pair is read atomically.
func (s *Service) Predict(rec features.Record) (float64, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()

	if snap == nil {
		return 0, ErrModelNotLoaded
	}

	row, err := features.TransformSingle(rec, snap.Vocab)
	if err != nil {
		return 0, err
	}
	return snap.Model.Predict(row)
}

// Loaded reports whether a model is available.
func (s *Service) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot != nil
}

// warnOnAllowlistDrift compares the fitted vocabulary against the static
// neighbourhood allowlist. Drift is not fatal: an allowlisted name missing
// from the vocabulary fails predict with an unknown-category error instead
// of silently encoding to zeros.
func (s *Service) warnOnAllowlistDrift(vocab *features.Vocabulary) {
	var missing []string
	for _, name := range config.ValidNeighbourhoods {
		if _, ok := vocab.Index(name); !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		s.logger.WithField("neighbourhoods", missing).Warn("Allowlisted neighbourhoods absent from fitted vocabulary")
	}

	var extra []string
	for _, name := range vocab.Names() {
		if !config.IsValidNeighbourhood(name) {
			extra = append(extra, name)
		}
	}
	if len(extra) > 0 {
		s.logger.WithField("neighbourhoods", extra).Warn("Fitted vocabulary contains neighbourhoods outside the allowlist")
	}
}

func summarize(listings []models.Listing) *models.ReloadSummary {
	summary := &models.ReloadSummary{
		TotalListings: len(listings),
		MinPrice:      listings[0].Price,
		MaxPrice:      listings[0].Price,
	}

	counts := make(map[string]int)
	var totalPrice, totalBedrooms, totalBathrooms float64
	for _, l := range listings {
		totalPrice += l.Price
		totalBedrooms += float64(l.Bedrooms)
		totalBathrooms += l.Bathrooms
		if l.Price < summary.MinPrice {
			summary.MinPrice = l.Price
		}
		if l.Price > summary.MaxPrice {
			summary.MaxPrice = l.Price
		}
		counts[l.Neighbourhood]++
	}

	n := float64(len(listings))
	summary.AveragePrice = totalPrice / n
	summary.AverageBedrooms = totalBedrooms / n
	summary.AverageBathrooms = totalBathrooms / n
	summary.TopNeighbourhoods = topNeighbourhoods(counts, topNeighbourhoodCount)
	return summary
}

// topNeighbourhoods keeps the limit most frequent entries, breaking count
// ties by name so the result is deterministic.
func topNeighbourhoods(counts map[string]int, limit int) map[string]int {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	if len(names) > limit {
		names = names[:limit]
	}

	top := make(map[string]int, len(names))
	for _, name := range names {
		top[name] = counts[name]
	}
	return top
}

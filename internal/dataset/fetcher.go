package dataset

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrFetch marks failures to download or decode the remote dataset.
var ErrFetch = errors.New("dataset fetch failed")

var requiredColumns = []string{"price", "bedrooms", "bathrooms", "accommodates", "neighbourhood_cleansed"}

// RawListing is one dataset row before cleaning, values as they appear in
// the CSV.
type RawListing struct {
	Price         string
	Bedrooms      string
	Bathrooms     string
	Accommodates  string
	Neighbourhood string
}

// Fetcher downloads a gzip-compressed CSV of listings over HTTP.
type Fetcher struct {
	url    string
	client *http.Client
	logger *logrus.Logger
}

func NewFetcher(url string, timeout time.Duration, logger *logrus.Logger) *Fetcher {
	return &Fetcher{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Fetch retrieves the dataset and returns its rows projected onto the five
// columns the service uses. Rows shorter than the header are skipped.
func (f *Fetcher) Fetch(ctx context.Context) ([]RawListing, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d from %s", ErrFetch, resp.StatusCode, f.url)
	}

	gz, err := gzip.NewReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: decompress: %v", ErrFetch, err)
	}
	defer gz.Close()

	listings, err := parseCSV(gz)
	if err != nil {
		return nil, err
	}

	f.logger.WithField("rows", len(listings)).Info("Fetched dataset")
	return listings, nil
}

func parseCSV(r io.Reader) ([]RawListing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrFetch, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			return nil, fmt.Errorf("%w: dataset is missing column %q", ErrFetch, name)
		}
	}

	maxIndex := 0
	for _, name := range requiredColumns {
		if columns[name] > maxIndex {
			maxIndex = columns[name]
		}
	}

	var listings []RawListing
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: read row: %v", ErrFetch, err)
		}
		if len(record) <= maxIndex {
			continue
		}

		listings = append(listings, RawListing{
			Price:         record[columns["price"]],
			Bedrooms:      record[columns["bedrooms"]],
			Bathrooms:     record[columns["bathrooms"]],
			Accommodates:  record[columns["accommodates"]],
			Neighbourhood: record[columns["neighbourhood_cleansed"]],
		})
	}

	return listings, nil
}

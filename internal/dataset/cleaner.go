package dataset

import (
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"bnbprice/server/internal/models"
)

// priceSanitizer strips the currency symbol and thousands separators that
// appear in the raw price column ("$1,250.00").
var priceSanitizer = strings.NewReplacer("$", "", ",", "")

// Cleaner validates raw dataset rows and converts them into Listings.
type Cleaner struct {
	logger *logrus.Logger
}

func NewCleaner(logger *logrus.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean drops rows with a missing or unparseable field and returns the
// remainder as structurally valid listings. Rows are never imputed here.
func (c *Cleaner) Clean(raw []RawListing) []models.Listing {
	listings := make([]models.Listing, 0, len(raw))

	for _, r := range raw {
		price, ok := parsePrice(r.Price)
		if !ok {
			continue
		}

		bedrooms, ok := parseCount(r.Bedrooms)
		if !ok {
			continue
		}

		bathrooms, ok := parseNumber(r.Bathrooms)
		if !ok || bathrooms < 0 {
			continue
		}

		accommodates, ok := parseCount(r.Accommodates)
		if !ok {
			continue
		}

		neighbourhood := strings.TrimSpace(r.Neighbourhood)
		if neighbourhood == "" {
			continue
		}

		listings = append(listings, models.Listing{
			Price:         price,
			Bedrooms:      bedrooms,
			Bathrooms:     bathrooms,
			Accommodates:  accommodates,
			Neighbourhood: neighbourhood,
		})
	}

	c.logger.WithFields(logrus.Fields{
		"raw":     len(raw),
		"cleaned": len(listings),
		"dropped": len(raw) - len(listings),
	}).Info("Cleaned dataset")

	return listings
}

// parsePrice strips currency formatting and requires a positive finite value.
func parsePrice(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(priceSanitizer.Replace(raw))
	price, ok := parseFloat(cleaned)
	if !ok || price <= 0 {
		return 0, false
	}
	return price, true
}

// parseCount accepts integer-valued text, including float spellings like
// "2.0" that appear in the dataset.
func parseCount(raw string) (int, bool) {
	v, ok := parseNumber(raw)
	if !ok || v < 0 || v != math.Trunc(v) {
		return 0, false
	}
	return int(v), true
}

func parseNumber(raw string) (float64, bool) {
	return parseFloat(strings.TrimSpace(raw))
}

func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

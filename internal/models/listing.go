package models

// Listing is one cleaned row of the housing dataset. Rows are bulk-replaced
// on every reload; there is no incremental update.
type Listing struct {
	ID            uint    `gorm:"primaryKey" json:"id"`
	Price         float64 `gorm:"not null" json:"price"`
	Bedrooms      int     `gorm:"not null" json:"bedrooms"`
	Bathrooms     float64 `gorm:"not null" json:"bathrooms"`
	Accommodates  int     `gorm:"not null" json:"accommodates"`
	Neighbourhood string  `gorm:"size:100;not null;index" json:"neighbourhood"`
}

// ReloadSummary describes the batch of listings loaded by the last reload.
type ReloadSummary struct {
	TotalListings     int            `json:"total_listings"`
	AveragePrice      float64        `json:"average_price"`
	MinPrice          float64        `json:"min_price"`
	MaxPrice          float64        `json:"max_price"`
	AverageBedrooms   float64        `json:"average_bedrooms"`
	AverageBathrooms  float64        `json:"average_bathrooms"`
	TopNeighbourhoods map[string]int `json:"top_neighbourhoods"`
}

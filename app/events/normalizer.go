package events

import (
	"fmt"
)

// Default display values used when a field is empty after cleaning.
const (
	LabelDefaultTitle       = "Événement parisien"
	LabelDefaultLocation    = "Paris"
	LabelDefaultDescription = "Découvrez cet événement parisien"
)

// Paris city center, substituted when a record carries no usable
// coordinates so map rendering never receives missing values.
const (
	FallbackLatitude  = 48.8566
	FallbackLongitude = 2.3522
)

// Normalizer maps raw upstream records into display-safe events. It never
// fails: malformed fields degrade to fixed defaults instead of dropping the
// record or propagating an error.
type Normalizer struct {
	cleaner     *Cleaner
	formatter   *Formatter
	categorizer *Categorizer
}

func NewNormalizer() *Normalizer {
	cleaner := NewCleaner()
	return &Normalizer{
		cleaner:     cleaner,
		formatter:   NewFormatter(cleaner),
		categorizer: NewCategorizer(),
	}
}

// Run normalizes a batch, preserving source order. The source label seeds
// synthesized ids for records that arrive without one.
func (n *Normalizer) Run(records []RawRecord, sourceLabel string) []Event {
	normalized := make([]Event, 0, len(records))
	for i, record := range records {
		normalized = append(normalized, n.normalizeRecord(record, i, sourceLabel))
	}
	return normalized
}

func (n *Normalizer) normalizeRecord(record RawRecord, index int, sourceLabel string) Event {
	event := Event{
		ID:          record.ID,
		Title:       n.cleaner.Run(record.Title),
		Location:    n.cleaner.Run(record.AddressName),
		Date:        n.formatter.Date(record.DateStart, record.DateDescription, record.Occurrences),
		Price:       n.formatter.Price(record.PriceType, record.PriceDetail),
		Category:    n.categorizer.Run(record.Tags),
		Description: n.cleaner.RunDescription(record.Description),
		Image:       record.CoverURL,
		URL:         record.URL,
	}

	if event.ID == "" {
		event.ID = fmt.Sprintf("%s-%d", sourceLabel, index)
	}

	if event.Title == "" {
		event.Title = LabelDefaultTitle
	}

	if event.Location == "" {
		event.Location = n.cleaner.Run(record.AddressStreet)
	}
	if event.Location == "" {
		event.Location = LabelDefaultLocation
	}

	if event.Description == "" {
		event.Description = n.cleaner.Run(record.LeadText)
	}
	if event.Description == "" {
		event.Description = LabelDefaultDescription
	}

	// Zero-valued coordinates are treated the same as absent ones.
	if record.LatLon != nil && record.LatLon.Lat != 0 {
		event.Latitude = record.LatLon.Lat
	} else {
		event.Latitude = FallbackLatitude
	}
	if record.LatLon != nil && record.LatLon.Lon != 0 {
		event.Longitude = record.LatLon.Lon
	} else {
		event.Longitude = FallbackLongitude
	}

	// Placeholder images are keyed by batch position, not record id. The
	// same record at a different position gets a different placeholder;
	// placeholder images carry no semantic weight.
	if event.Image == "" || event.Image == "null" {
		event.Image = fmt.Sprintf("https://picsum.photos/300/200?random=%d", index)
	}

	return event
}

// Placeholder builds the synthetic single-element list substituted when a
// fetch cannot obtain real data.
func (n *Normalizer) Placeholder() []Event {
	return []Event{
		{
			ID:          "fallback-1",
			Title:       "Événements parisiens en cours de chargement",
			Location:    LabelDefaultLocation,
			Date:        "Chargement...",
			Price:       "Variable",
			Category:    CategoryCulture,
			Latitude:    FallbackLatitude,
			Longitude:   FallbackLongitude,
			Description: "Les événements sont en cours de chargement depuis l'API officielle de Paris. Veuillez patienter...",
			Image:       "https://picsum.photos/300/200?random=0",
		},
	}
}

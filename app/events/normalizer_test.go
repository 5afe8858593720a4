package events

import (
	"testing"
)

func TestNormalizer_Run_CompleteRecord(t *testing.T) {
	normalizer := NewNormalizer()

	records := []RawRecord{
		{
			ID:          "12345",
			Title:       "<p>Concert de Jazz</p>",
			Description: "<p>Une soirée jazz exceptionnelle.Au programme : standards et improvisations</p>",
			URL:         "https://example.com/events/12345",
			DateStart:   "2020-01-01T20:00:00+01:00",
			CoverURL:    "https://example.com/cover.jpg",
			AddressName: "Le Petit Journal",
			LatLon:      &LatLon{Lat: 48.846, Lon: 2.337},
			PriceType:   "payant",
			PriceDetail: "15&nbsp;euros",
			Tags:        "Concerts, Jazz",
		},
	}

	result := normalizer.Run(records, "paris")

	if len(result) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(result))
	}

	event := result[0]
	if event.ID != "12345" {
		t.Errorf("Expected ID '12345', got '%s'", event.ID)
	}
	if event.Title != "Concert de Jazz" {
		t.Errorf("Expected cleaned title, got '%s'", event.Title)
	}
	if event.Location != "Le Petit Journal" {
		t.Errorf("Expected 'Le Petit Journal', got '%s'", event.Location)
	}
	if event.Price != "15 euros" {
		t.Errorf("Expected '15 euros', got '%s'", event.Price)
	}
	if event.Category != CategoryMusique {
		t.Errorf("Expected %s, got %s", CategoryMusique, event.Category)
	}
	if event.Description != "Une soirée jazz exceptionnelle. Au programme : standards et improvisations" {
		t.Errorf("Unexpected description: '%s'", event.Description)
	}
	if event.Latitude != 48.846 || event.Longitude != 2.337 {
		t.Errorf("Expected real coordinates, got (%f, %f)", event.Latitude, event.Longitude)
	}
	if event.Image != "https://example.com/cover.jpg" {
		t.Errorf("Expected cover URL, got '%s'", event.Image)
	}
}

func TestNormalizer_Run_EmptyRecordGetsDefaults(t *testing.T) {
	normalizer := NewNormalizer()

	result := normalizer.Run([]RawRecord{{}}, "paris")

	if len(result) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(result))
	}

	event := result[0]
	if event.ID != "paris-0" {
		t.Errorf("Expected synthesized ID 'paris-0', got '%s'", event.ID)
	}
	if event.Title != LabelDefaultTitle {
		t.Errorf("Expected '%s', got '%s'", LabelDefaultTitle, event.Title)
	}
	if event.Location != LabelDefaultLocation {
		t.Errorf("Expected '%s', got '%s'", LabelDefaultLocation, event.Location)
	}
	if event.Date != LabelDateUnconfirmed {
		t.Errorf("Expected '%s', got '%s'", LabelDateUnconfirmed, event.Date)
	}
	if event.Price != LabelPriceUnconfirmed {
		t.Errorf("Expected '%s', got '%s'", LabelPriceUnconfirmed, event.Price)
	}
	if event.Category != CategoryCulture {
		t.Errorf("Expected %s, got %s", CategoryCulture, event.Category)
	}
	if event.Description != LabelDefaultDescription {
		t.Errorf("Expected '%s', got '%s'", LabelDefaultDescription, event.Description)
	}
	if event.Latitude != FallbackLatitude || event.Longitude != FallbackLongitude {
		t.Errorf("Expected fallback coordinates, got (%f, %f)", event.Latitude, event.Longitude)
	}
	if event.Image != "https://picsum.photos/300/200?random=0" {
		t.Errorf("Expected placeholder image, got '%s'", event.Image)
	}
}

func TestNormalizer_Run_LocationFallsBackToStreet(t *testing.T) {
	normalizer := NewNormalizer()

	records := []RawRecord{
		{AddressName: "", AddressStreet: "12 rue de Rivoli"},
		{AddressName: "null", AddressStreet: "null"},
	}

	result := normalizer.Run(records, "paris")

	if result[0].Location != "12 rue de Rivoli" {
		t.Errorf("Expected street fallback, got '%s'", result[0].Location)
	}
	if result[1].Location != LabelDefaultLocation {
		t.Errorf("Expected '%s', got '%s'", LabelDefaultLocation, result[1].Location)
	}
}

func TestNormalizer_Run_DescriptionFallsBackToLeadText(t *testing.T) {
	normalizer := NewNormalizer()

	records := []RawRecord{
		{Description: "", LeadText: "<p>Un aperçu de l'événement</p>"},
	}

	result := normalizer.Run(records, "paris")

	if result[0].Description != "Un aperçu de l'événement" {
		t.Errorf("Expected lead text fallback, got '%s'", result[0].Description)
	}
}

func TestNormalizer_Run_ZeroCoordinatesTreatedAsAbsent(t *testing.T) {
	normalizer := NewNormalizer()

	records := []RawRecord{
		{LatLon: &LatLon{Lat: 0, Lon: 2.337}},
		{LatLon: &LatLon{Lat: 48.846, Lon: 0}},
	}

	result := normalizer.Run(records, "paris")

	if result[0].Latitude != FallbackLatitude {
		t.Errorf("Expected fallback latitude, got %f", result[0].Latitude)
	}
	if result[0].Longitude != 2.337 {
		t.Errorf("Expected real longitude, got %f", result[0].Longitude)
	}
	if result[1].Latitude != 48.846 {
		t.Errorf("Expected real latitude, got %f", result[1].Latitude)
	}
	if result[1].Longitude != FallbackLongitude {
		t.Errorf("Expected fallback longitude, got %f", result[1].Longitude)
	}
}

func TestNormalizer_Run_PlaceholderImageKeyedByPosition(t *testing.T) {
	normalizer := NewNormalizer()

	records := []RawRecord{
		{ID: "a", CoverURL: ""},
		{ID: "b", CoverURL: "null"},
	}

	result := normalizer.Run(records, "paris")

	if result[0].Image != "https://picsum.photos/300/200?random=0" {
		t.Errorf("Unexpected image for first record: '%s'", result[0].Image)
	}
	if result[1].Image != "https://picsum.photos/300/200?random=1" {
		t.Errorf("Unexpected image for second record: '%s'", result[1].Image)
	}
}

func TestNormalizer_Run_PreservesOrder(t *testing.T) {
	normalizer := NewNormalizer()

	records := []RawRecord{
		{ID: "premier"},
		{ID: "deuxième"},
		{ID: "troisième"},
	}

	result := normalizer.Run(records, "paris")

	if len(result) != 3 {
		t.Fatalf("Expected 3 events, got %d", len(result))
	}
	for i, id := range []string{"premier", "deuxième", "troisième"} {
		if result[i].ID != id {
			t.Errorf("Expected event %d to have ID '%s', got '%s'", i, id, result[i].ID)
		}
	}
}

func TestNormalizer_Placeholder(t *testing.T) {
	normalizer := NewNormalizer()

	placeholder := normalizer.Placeholder()

	if len(placeholder) != 1 {
		t.Fatalf("Expected single placeholder event, got %d", len(placeholder))
	}
	if placeholder[0].ID != "fallback-1" {
		t.Errorf("Expected ID 'fallback-1', got '%s'", placeholder[0].ID)
	}
	if placeholder[0].Latitude != FallbackLatitude || placeholder[0].Longitude != FallbackLongitude {
		t.Errorf("Placeholder should carry fallback coordinates")
	}
}

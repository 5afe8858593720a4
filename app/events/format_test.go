package events

import (
	"testing"
	"time"
)

func newTestFormatter(now time.Time) *Formatter {
	f := NewFormatter(NewCleaner())
	f.now = func() time.Time { return now }
	return f
}

func TestFormatter_Date_DescriptionWins(t *testing.T) {
	f := newTestFormatter(time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local))

	result := f.Date("2025-06-15T20:00:00+02:00", "Tous les soirs à 20h", "")

	if result != "Tous les soirs à 20h" {
		t.Errorf("Expected date description to win, got '%s'", result)
	}
}

func TestFormatter_Date_OccurrencesBeforeStartDate(t *testing.T) {
	f := newTestFormatter(time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local))

	result := f.Date("2025-06-20T20:00:00+02:00", "", "2025-06-20;2025-06-21")

	if result != LabelMultipleDates {
		t.Errorf("Expected '%s', got '%s'", LabelMultipleDates, result)
	}
}

func TestFormatter_Date_Today(t *testing.T) {
	f := newTestFormatter(time.Date(2025, 6, 15, 9, 0, 0, 0, time.Local))

	result := f.Date("2025-06-15 20:00:00", "", "")

	if result != LabelToday {
		t.Errorf("Expected '%s', got '%s'", LabelToday, result)
	}
}

func TestFormatter_Date_Tomorrow(t *testing.T) {
	f := newTestFormatter(time.Date(2025, 6, 15, 23, 30, 0, 0, time.Local))

	result := f.Date("2025-06-16", "", "")

	if result != LabelTomorrow {
		t.Errorf("Expected '%s', got '%s'", LabelTomorrow, result)
	}
}

func TestFormatter_Date_FrenchShortFormat(t *testing.T) {
	f := newTestFormatter(time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local))

	// 2025-12-25 is a Thursday.
	result := f.Date("2025-12-25", "", "")

	if result != "jeu. 25 déc." {
		t.Errorf("Expected 'jeu. 25 déc.', got '%s'", result)
	}
}

func TestFormatter_Date_Fallbacks(t *testing.T) {
	f := newTestFormatter(time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local))

	tests := []struct {
		dateStart string
	}{
		{""},
		{"null"},
		{"pas une date"},
	}

	for _, tt := range tests {
		result := f.Date(tt.dateStart, "", "")
		if result != LabelDateUnconfirmed {
			t.Errorf("Date(%q): expected '%s', got '%s'", tt.dateStart, LabelDateUnconfirmed, result)
		}
	}
}

func TestFormatter_Date_NullDescriptionIgnored(t *testing.T) {
	f := newTestFormatter(time.Date(2025, 6, 15, 12, 0, 0, 0, time.Local))

	result := f.Date("", "null", "null")

	if result != LabelDateUnconfirmed {
		t.Errorf("Expected '%s', got '%s'", LabelDateUnconfirmed, result)
	}
}

func TestFormatter_Price_FreeWinsOverDetail(t *testing.T) {
	f := newTestFormatter(time.Now())

	result := f.Price("gratuit", "10 euros la séance")

	if result != LabelPriceFree {
		t.Errorf("Expected '%s', got '%s'", LabelPriceFree, result)
	}
}

func TestFormatter_Price_DetailIsCleaned(t *testing.T) {
	f := newTestFormatter(time.Now())

	result := f.Price("payant", "<p>Tarif r&eacute;duit : 8&nbsp;euros</p>")

	if result != "Tarif réduit : 8 euros" {
		t.Errorf("Expected cleaned detail, got '%s'", result)
	}
}

func TestFormatter_Price_EmptyDetailAfterCleaning(t *testing.T) {
	f := newTestFormatter(time.Now())

	result := f.Price("", "<p></p>")

	if result != LabelPriceUnconfirmed {
		t.Errorf("Expected '%s', got '%s'", LabelPriceUnconfirmed, result)
	}
}

func TestFormatter_Price_PaidWithoutDetail(t *testing.T) {
	f := newTestFormatter(time.Now())

	result := f.Price("payant", "")

	if result != LabelPricePaid {
		t.Errorf("Expected '%s', got '%s'", LabelPricePaid, result)
	}
}

func TestFormatter_Price_Unknown(t *testing.T) {
	f := newTestFormatter(time.Now())

	tests := []struct {
		priceType   string
		priceDetail string
	}{
		{"", ""},
		{"", "null"},
		{"autre", ""},
	}

	for _, tt := range tests {
		result := f.Price(tt.priceType, tt.priceDetail)
		if result != LabelPriceUnconfirmed {
			t.Errorf("Price(%q, %q): expected '%s', got '%s'",
				tt.priceType, tt.priceDetail, LabelPriceUnconfirmed, result)
		}
	}
}

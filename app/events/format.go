package events

import (
	"fmt"
	"time"
)

// Display literals. The upstream dataset and its consumers are French, so
// the fallback strings are too.
const (
	LabelDateUnconfirmed  = "Date à confirmer"
	LabelMultipleDates    = "Plusieurs dates disponibles"
	LabelToday            = "Aujourd'hui"
	LabelTomorrow         = "Demain"
	LabelPriceUnconfirmed = "Prix à confirmer"
	LabelPriceFree        = "Gratuit"
	LabelPricePaid        = "Payant"
)

// Upstream price_type values.
const (
	priceTypeFree = "gratuit"
	priceTypePaid = "payant"
)

var frenchWeekdays = [7]string{"dim.", "lun.", "mar.", "mer.", "jeu.", "ven.", "sam."}

var frenchMonths = [13]string{"", "janv.", "févr.", "mars", "avr.", "mai", "juin",
	"juil.", "août", "sept.", "oct.", "nov.", "déc."}

// dateLayouts are tried in order when parsing an upstream start timestamp.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Formatter derives the single human-readable date and price strings for an
// event. The clock is injectable so today/tomorrow comparisons are testable.
type Formatter struct {
	cleaner *Cleaner
	now     func() time.Time
}

func NewFormatter(cleaner *Cleaner) *Formatter {
	return &Formatter{
		cleaner: cleaner,
		now:     time.Now,
	}
}

// Date resolves the display date with a strict priority order: a
// human-authored description wins, then the presence of occurrences, then
// the parsed start timestamp, then the fixed fallback literal.
func (f *Formatter) Date(dateStart, dateDescription, occurrences string) string {
	if dateDescription != "" && dateDescription != "null" {
		return dateDescription
	}

	if occurrences != "" && occurrences != "null" {
		return LabelMultipleDates
	}

	if dateStart == "" || dateStart == "null" {
		return LabelDateUnconfirmed
	}

	date, err := parseDate(dateStart)
	if err != nil {
		return LabelDateUnconfirmed
	}

	now := f.now()
	today := now.In(time.Local)
	tomorrow := today.AddDate(0, 0, 1)
	local := date.In(time.Local)

	switch {
	case sameDay(local, today):
		return LabelToday
	case sameDay(local, tomorrow):
		return LabelTomorrow
	default:
		return fmt.Sprintf("%s %d %s",
			frenchWeekdays[local.Weekday()], local.Day(), frenchMonths[local.Month()])
	}
}

// Price resolves the display price. A free price type wins regardless of any
// detail text; otherwise the cleaned detail is used when it survives
// cleaning, then the paid literal, then the fallback.
func (f *Formatter) Price(priceType, priceDetail string) string {
	if priceType == priceTypeFree {
		return LabelPriceFree
	}

	if priceDetail != "" && priceDetail != "null" {
		cleaned := f.cleaner.Run(priceDetail)
		if cleaned == "" {
			return LabelPriceUnconfirmed
		}
		return cleaned
	}

	if priceType == priceTypePaid {
		return LabelPricePaid
	}

	return LabelPriceUnconfirmed
}

func parseDate(value string) (time.Time, error) {
	var err error
	for _, layout := range dateLayouts {
		var date time.Time
		if date, err = time.Parse(layout, value); err == nil {
			return date, nil
		}
	}
	return time.Time{}, err
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

package events

import (
	"fmt"
	"log/slog"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// DetailExtractor pulls readable text out of an event's page so catalog
// entries whose upstream description was empty can still show something
// meaningful on the detail view.
type DetailExtractor struct {
	cleaner *Cleaner
}

func NewDetailExtractor() *DetailExtractor {
	return &DetailExtractor{cleaner: NewCleaner()}
}

// Run extracts the main content from an HTML page and flattens it through
// the description cleaning rules.
func (e *DetailExtractor) Run(data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("HTML data is empty")
	}

	article, err := readability.FromReader(strings.NewReader(string(data)), nil)
	if err != nil {
		return "", fmt.Errorf("failed to extract content: %w", err)
	}

	if article.Content == "" {
		return "", fmt.Errorf("no content extracted from HTML data")
	}

	description := e.cleaner.RunDescription(article.Content)
	if description == "" {
		return "", fmt.Errorf("extracted content empty after cleaning")
	}

	slog.Debug("Detail content extracted",
		"title", article.Title,
		"content_length", len(description))

	return description, nil
}

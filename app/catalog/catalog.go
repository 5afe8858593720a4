// Package catalog holds the in-memory snapshot of normalized events.
//
// Events are rebuilt on every fetch and never persisted; the catalog is the
// only place refresh results land. Concurrent refreshes for the same source
// (scheduler tick racing a manual refresh) are serialized by a generation
// counter: a commit carrying a stale generation is discarded, so the last
// started refresh wins and a slow earlier response can never overwrite
// fresher results.
package catalog

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spota/spota-server/app/events"
)

type Catalog struct {
	mu          sync.RWMutex
	bySource    map[string][]events.Event
	status      map[string]events.Status
	generations map[string]uint64
	refreshedAt map[string]time.Time
}

func New() *Catalog {
	return &Catalog{
		bySource:    make(map[string][]events.Event),
		status:      make(map[string]events.Status),
		generations: make(map[string]uint64),
		refreshedAt: make(map[string]time.Time),
	}
}

// Begin reserves a refresh generation for a source. The returned value must
// be passed back to Commit.
func (c *Catalog) Begin(source string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[source]++
	return c.generations[source]
}

// Commit stores a refresh result. It reports false, and stores nothing,
// when a newer refresh for the same source has begun since gen was taken.
func (c *Catalog) Commit(source string, gen uint64, result events.Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generations[source] != gen {
		return false
	}

	c.bySource[source] = result.Events
	c.status[source] = result.Status
	c.refreshedAt[source] = time.Now().UTC()
	return true
}

// Events returns the combined snapshot across all sources, each source's
// events in their committed (upstream) order.
func (c *Catalog) Events() []events.Event {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var combined []events.Event
	for _, source := range c.sourceNamesLocked() {
		combined = append(combined, c.bySource[source]...)
	}
	return combined
}

// SourceEvents returns the snapshot for one source and whether the source
// has committed anything yet. Callers iterate outside the lock, so they get
// a copy rather than the backing slice.
func (c *Catalog) SourceEvents(source string) ([]events.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot, ok := c.bySource[source]
	if !ok {
		return nil, false
	}
	copied := make([]events.Event, len(snapshot))
	copy(copied, snapshot)
	return copied, true
}

// SourceStatus reports the status of the last committed refresh.
func (c *Catalog) SourceStatus(source string) (events.Status, time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status, ok := c.status[source]
	return status, c.refreshedAt[source], ok
}

// Degraded reports whether any source's last refresh fell back to
// placeholder data.
func (c *Catalog) Degraded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, status := range c.status {
		if status == events.StatusDegraded {
			return true
		}
	}
	return false
}

// Filter returns the combined snapshot narrowed by category and price.
// Filtering is local: it never triggers a fetch.
func (c *Catalog) Filter(category string, freeOnly bool) []events.Event {
	all := c.Events()

	filtered := make([]events.Event, 0, len(all))
	for _, event := range all {
		if category != "" && !strings.EqualFold(event.Category, category) {
			continue
		}
		if freeOnly && event.Price != events.LabelPriceFree {
			continue
		}
		filtered = append(filtered, event)
	}
	return filtered
}

// Get returns a single event by id.
func (c *Catalog) Get(id string) (events.Event, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, snapshot := range c.bySource {
		for _, event := range snapshot {
			if event.ID == id {
				return event, true
			}
		}
	}
	return events.Event{}, false
}

// UpdateDescription replaces the description of a single event, used by
// detail extraction. It reports whether the event was found.
func (c *Catalog) UpdateDescription(id, description string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for source, snapshot := range c.bySource {
		for i := range snapshot {
			if snapshot[i].ID == id {
				c.bySource[source][i].Description = description
				return true
			}
		}
	}
	return false
}

// EventCount returns the total number of events across sources.
func (c *Catalog) EventCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	count := 0
	for _, snapshot := range c.bySource {
		count += len(snapshot)
	}
	return count
}

func (c *Catalog) sourceNamesLocked() []string {
	names := make([]string, 0, len(c.bySource))
	for name := range c.bySource {
		names = append(names, name)
	}
	// Stable output order regardless of map iteration.
	sort.Strings(names)
	return names
}

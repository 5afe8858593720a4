package events

// Upstream types

// RawRecord is a single record as returned by the Paris OpenData v2.1
// "que-faire-a-paris-" dataset. Every field is untrusted: free text may
// carry embedded HTML, strings may hold the literal "null", and numeric
// or structured fields may be absent entirely.
type RawRecord struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	LeadText        string  `json:"lead_text"`
	Description     string  `json:"description"`
	URL             string  `json:"url"`
	DateStart       string  `json:"date_start"`
	DateDescription string  `json:"date_description"`
	Occurrences     string  `json:"occurrences"`
	CoverURL        string  `json:"cover_url"`
	AddressName     string  `json:"address_name"`
	AddressStreet   string  `json:"address_street"`
	LatLon          *LatLon `json:"lat_lon"`
	PriceType       string  `json:"price_type"`
	PriceDetail     string  `json:"price_detail"`
	Tags            string  `json:"qfap_tags"`
}

type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// recordsResponse is the envelope the OpenData explore API wraps results in.
type recordsResponse struct {
	TotalCount int         `json:"total_count"`
	Results    []RawRecord `json:"results"`
}

// Domain types

// Event is the normalized, display-safe representation served to clients.
// Every field is guaranteed non-empty and free of markup.
type Event struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	Price       string  `json:"price"`
	Category    string  `json:"category"`
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	URL         string  `json:"url,omitempty"`
}

type Status string

const (
	// StatusOK carries real upstream data.
	StatusOK Status = "ok"
	// StatusDegraded carries the single-element placeholder substituted
	// when a fetch could not obtain real data.
	StatusDegraded Status = "degraded"
	// StatusEmpty carries no events because a search could not be
	// completed. A search that succeeds but matches nothing is StatusOK
	// with an empty slice.
	StatusEmpty Status = "empty"
)

// Result is what pipeline operations return instead of propagating errors.
// Callers branch on Status, never on a returned error.
type Result struct {
	Status Status  `json:"status"`
	Events []Event `json:"events"`
}

func (r Result) Degraded() bool {
	return r.Status == StatusDegraded
}

// FetchOptions controls a source fetch. Zero values mean "no filter";
// a zero Limit falls back to the configured default.
type FetchOptions struct {
	Limit      int
	FreeOnly   bool
	SearchTerm string
	Category   string
}

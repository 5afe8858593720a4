package api

import (
	"github.com/spota/spota-server/app/auth"
	"github.com/spota/spota-server/app/catalog"
	"github.com/spota/spota-server/app/database"
	"github.com/spota/spota-server/app/events"
	"github.com/spota/spota-server/app/tasks"
)

type Handler struct {
	catalog     *catalog.Catalog
	configCache *events.ConfigCache
	client      *events.Client
	rssClient   *events.RSSClient
	favorites   database.FavoriteRepository
	authService *auth.Service
	scheduler   tasks.TaskSchedulerInterface
}

// eventsResponse is the payload served for event listings and searches. The
// status field lets clients distinguish degraded (placeholder) content from
// real data without any error handling.
type eventsResponse struct {
	Status events.Status  `json:"status"`
	Total  int            `json:"total"`
	Events []events.Event `json:"events"`
}

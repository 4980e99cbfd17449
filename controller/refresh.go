package controller

import (
	"net/http"
	"time"

	"github.com/microcosm-cc/avatars/models"
)

// RefreshStatusType describes the store and its last refresh
type RefreshStatusType struct {
	URL         string     `json:"url"`
	LastRefresh *time.Time `json:"lastRefresh"`
	Avatars     int        `json:"avatars"`
	Timeout     int64      `json:"timeoutMs"`
}

// RefreshJobType describes a scheduled refresh
type RefreshJobType struct {
	Name  string `json:"name"`
	State string `json:"state"`
}

// RefreshHandler is a web handler
func RefreshHandler(w http.ResponseWriter, r *http.Request) {
	c := makeContext(w, r)
	if c == nil {
		return
	}

	ctl := RefreshController{}

	switch c.GetHTTPMethod() {
	case "OPTIONS":
		c.RespondWithOptions([]string{"OPTIONS", "GET", "POST"})
		return
	case "GET":
		ctl.Read(c)
	case "POST":
		ctl.Create(c)
	default:
		c.RespondWithStatus(http.StatusMethodNotAllowed)
		return
	}
}

// RefreshController is a web controller
type RefreshController struct{}

// Read handles GET
func (ctl *RefreshController) Read(c *models.Context) {
	m := RefreshStatusType{
		URL:     c.Store.URL(),
		Avatars: c.Store.Len(),
		Timeout: c.Store.Timeout().Milliseconds(),
	}

	if t := c.Store.RefreshTime(); !t.IsZero() {
		m.LastRefresh = &t
	}

	c.RespondWithData(m)
}

// Create handles POST by scheduling a refresh of every cached avatar
func (ctl *RefreshController) Create(c *models.Context) {
	job := c.Store.ScheduleRefresh()

	c.RespondWithAccepted(RefreshJobType{
		Name:  job.Name,
		State: job.State().String(),
	})
}

package controller

import (
	"net/http"

	"github.com/golang/glog"

	e "github.com/microcosm-cc/avatars/errors"
	h "github.com/microcosm-cc/avatars/helpers"
	"github.com/microcosm-cc/avatars/models"
)

// AvatarHandler is a web handler
func AvatarHandler(w http.ResponseWriter, r *http.Request) {
	c := makeContext(w, r)
	if c == nil {
		return
	}

	ctl := AvatarController{}

	switch c.GetHTTPMethod() {
	case "OPTIONS":
		c.RespondWithOptions([]string{"OPTIONS", "HEAD", "GET"})
		return
	case "HEAD":
		ctl.Read(c)
	case "GET":
		ctl.Read(c)
	default:
		c.RespondWithStatus(http.StatusMethodNotAllowed)
		return
	}
}

// AvatarController is a web controller
type AvatarController struct{}

// Read handles GET. Avatars that are not cached yet are fetched from the
// avatar service before responding.
func (ctl *AvatarController) Read(c *models.Context) {
	hash := c.RouteVars["hash"]
	if !h.IsValidHash(hash) {
		c.RespondWithErrorMessage(
			"The avatar hash must be 64 lowercase hex digits",
			http.StatusBadRequest,
		)
		return
	}

	m := c.Store.GetAvatarByHash(hash)
	if m == nil {
		var err error
		m, err = c.Store.LoadAvatarByHash(c.Request.Context(), hash)
		if err != nil {
			if e.HasCode(err, e.Cancelled) {
				c.RespondWithErrorDetail(err, http.StatusServiceUnavailable)
				return
			}

			glog.Warningf("LoadAvatarByHash(%s) %+v", hash, err)
			c.RespondWithErrorDetail(err, http.StatusBadGateway)
			return
		}
	}

	if m == nil {
		c.RespondWithNotFound()
		return
	}

	c.RespondWithAvatar(*m)
}

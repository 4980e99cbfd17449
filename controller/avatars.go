package controller

import (
	"fmt"
	"net/http"

	h "github.com/microcosm-cc/avatars/helpers"
	"github.com/microcosm-cc/avatars/models"
)

// AvatarsHandler is a web handler
func AvatarsHandler(w http.ResponseWriter, r *http.Request) {
	c := makeContext(w, r)
	if c == nil {
		return
	}

	ctl := AvatarsController{}

	switch c.GetHTTPMethod() {
	case "OPTIONS":
		c.RespondWithOptions([]string{"OPTIONS", "GET"})
		return
	case "GET":
		if c.Request.URL.Query().Get("email") != "" {
			ctl.Redirect(c)
			return
		}
		ctl.ReadMany(c)
	default:
		c.RespondWithStatus(http.StatusMethodNotAllowed)
		return
	}
}

// AvatarsController is a web controller
type AvatarsController struct{}

// Redirect handles GET ?email= by sending the client to the avatar of the
// hashed address
func (ctl *AvatarsController) Redirect(c *models.Context) {
	hash := c.Store.GetHash(c.Request.URL.Query().Get("email"))
	if hash == "" {
		c.RespondWithErrorMessage(
			"The email address could not be hashed",
			http.StatusBadRequest,
		)
		return
	}

	c.RespondWithSeeOther(fmt.Sprintf("%s/%s", h.APITypeAvatar, hash))
}

// ReadMany handles GET and lists the cached avatars
func (ctl *AvatarsController) ReadMany(c *models.Context) {
	limit, offset, status, err := h.GetLimitAndOffset(c.Request.URL.Query())
	if err != nil {
		c.RespondWithErrorDetail(err, status)
		return
	}

	ems, total := c.Store.GetAvatars(int(offset), int(limit))

	summaries := make([]models.AvatarSummaryType, 0, len(ems))
	for _, m := range ems {
		summaries = append(summaries, m.Summary())
	}

	c.RespondWithData(
		h.ConstructArray(
			summaries,
			"avatar",
			int64(total),
			limit,
			offset,
			c.Request.URL,
		),
	)
}

package server

import (
	"net/http"

	"github.com/microcosm-cc/avatars/controller"
	h "github.com/microcosm-cc/avatars/helpers"
)

var (
	handlers = map[string]func(http.ResponseWriter, *http.Request){
		h.APITypeAvatar:                          controller.AvatarsHandler,
		h.APITypeAvatar + "/refresh":             controller.RefreshHandler,
		h.APITypeAvatar + "/{hash:[0-9a-f]{64}}": controller.AvatarHandler,

		"/api/v1/version": controller.VersionHandler,
	}
)

package controller

import (
	"net/http"
	"runtime"
)

var (
	// BuildVersion and BuildDate are set via ldflags during build
	BuildVersion = "development"
	BuildDate    = "unknown"
)

// VersionHandler is a web handler that returns build information
func VersionHandler(w http.ResponseWriter, r *http.Request) {
	c := makeContext(w, r)
	if c == nil {
		return
	}

	switch c.GetHTTPMethod() {
	case "OPTIONS":
		c.RespondWithOptions([]string{"OPTIONS", "GET"})
		return
	case "GET":
		version := map[string]string{
			"version": BuildVersion,
			"date":    BuildDate,
			"go":      runtime.Version(),
		}
		c.RespondWithData(version)
		return
	default:
		c.RespondWithStatus(http.StatusMethodNotAllowed)
		return
	}
}

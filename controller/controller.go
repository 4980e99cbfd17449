/*
Package controller contains the web handlers of the avatar API. Every handler
serves from the store registered with SetStore.
*/
package controller

import (
	"net/http"
	"sync"

	"github.com/microcosm-cc/avatars/models"
)

var (
	storeMu sync.RWMutex
	store   *models.Store
)

// SetStore registers the store the handlers serve from
func SetStore(s *models.Store) {
	storeMu.Lock()
	store = s
	storeMu.Unlock()
}

// getStore returns the registered store, or nil
func getStore() *models.Store {
	storeMu.RLock()
	defer storeMu.RUnlock()
	return store
}

// makeContext returns the context of a request, or nil after responding with
// an error when no store has been registered
func makeContext(w http.ResponseWriter, r *http.Request) *models.Context {
	s := getStore()
	c := models.MakeContext(r, w, s)
	if s == nil {
		c.RespondWithErrorMessage("No avatar store is configured", http.StatusServiceUnavailable)
		return nil
	}
	return c
}

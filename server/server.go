package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/mux"

	"github.com/microcosm-cc/avatars/controller"
	"github.com/microcosm-cc/avatars/models"
)

// shutdownTimeout bounds how long in-flight requests may take once the server
// is asked to stop
const shutdownTimeout = 10 * time.Second

// NewRouter returns a router with every API handler registered
func NewRouter() *mux.Router {
	r := mux.NewRouter()

	for url, handler := range handlers {
		r.HandleFunc(url, handler)
	}

	return r
}

// StartServer owns the http process and cron jobs. It serves from store until
// ctx is done, then stops the cron jobs and waits for in-flight requests.
func StartServer(
	ctx context.Context,
	port int64,
	store *models.Store,
	snapshots models.SnapshotStore,
) error {
	controller.SetStore(store)

	// Set up the cron jobs
	c, err := StartCron(store, snapshots)
	if err != nil {
		return err
	}
	defer c.Stop()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		errs <- srv.ListenAndServe()
	}()

	if glog.V(2) {
		glog.Infof("Listening on %s", srv.Addr)
	}

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err = srv.Shutdown(shutdownCtx)
	if err != nil {
		glog.Warningf("srv.Shutdown() %+v", err)
		return err
	}

	return nil
}

package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robfig/cron"

	conf "github.com/microcosm-cc/avatars/config"
	"github.com/microcosm-cc/avatars/controller"
	h "github.com/microcosm-cc/avatars/helpers"
	"github.com/microcosm-cc/avatars/models"
)

type recordingSnapshots struct {
	saved []*models.StoreSnapshot
	err   error
}

func (r *recordingSnapshots) Load() (*models.StoreSnapshot, error) {
	return nil, nil
}

func (r *recordingSnapshots) Save(s *models.StoreSnapshot) error {
	r.saved = append(r.saved, s)
	return r.err
}

func newTestStore(t *testing.T) *models.Store {
	s, err := models.NewStore(models.StoreOptions{Workers: 1})
	if err != nil {
		t.Fatalf("NewStore() %+v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestRoutes(t *testing.T) {
	r := NewRouter()

	controller.SetStore(newTestStore(t))
	defer controller.SetStore(nil)

	routes := map[string]int{
		"/api/v1/version":               http.StatusOK,
		h.APITypeAvatar + "/refresh":    http.StatusOK,
		h.APITypeAvatar:                 http.StatusOK,
		h.APITypeAvatar + "/not-a-hash": http.StatusNotFound,
		"/api/v1/unknown":               http.StatusNotFound,
	}

	for target, status := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", target, nil))
		if w.Code != status {
			t.Errorf("GET %s = %d should be %d", target, w.Code, status)
		}
	}
}

func TestDefaultSchedulesParse(t *testing.T) {
	for _, key := range []string{conf.RefreshSchedule, conf.SnapshotSchedule} {
		if _, err := cron.Parse(conf.ConfigStrings[key]); err != nil {
			t.Errorf("cron.Parse(%q) %+v", conf.ConfigStrings[key], err)
		}
	}
}

func TestStartCron(t *testing.T) {
	defer conf.Reset()

	c, err := StartCron(newTestStore(t), nil)
	if err != nil {
		t.Fatalf("StartCron() %+v", err)
	}
	if len(c.Entries()) != 2 {
		t.Errorf("Expected 2 cron entries, got %d", len(c.Entries()))
	}
	c.Stop()

	conf.ConfigStrings[conf.SnapshotSchedule] = ""
	c, err = StartCron(newTestStore(t), nil)
	if err != nil {
		t.Fatalf("StartCron() %+v", err)
	}
	if len(c.Entries()) != 1 {
		t.Errorf("Expected a disabled job to be skipped, got %d entries", len(c.Entries()))
	}
	c.Stop()

	conf.ConfigStrings[conf.RefreshSchedule] = "every now and then"
	if _, err := StartCron(newTestStore(t), nil); err == nil {
		t.Error("Expected an invalid schedule to be an error")
	}
}

func TestSaveSnapshot(t *testing.T) {
	s := newTestStore(t)
	snapshots := &recordingSnapshots{}

	if err := SaveSnapshot(s, snapshots); err != nil {
		t.Fatalf("SaveSnapshot() %+v", err)
	}
	if len(snapshots.saved) != 1 {
		t.Fatalf("Expected one snapshot, got %d", len(snapshots.saved))
	}
	if snapshots.saved[0].URL != s.URL() {
		t.Errorf("Expected snapshot URL %s, got %s", s.URL(), snapshots.saved[0].URL)
	}

	snapshots.err = errors.New("disk full")
	if err := SaveSnapshot(s, snapshots); err == nil {
		t.Error("Expected the save error to be returned")
	}

	if err := SaveSnapshot(s, nil); err != nil {
		t.Errorf("Expected no error without a snapshot store, got %+v", err)
	}
}

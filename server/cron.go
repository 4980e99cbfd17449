package server

import (
	"fmt"

	"github.com/golang/glog"
	"github.com/robfig/cron"

	conf "github.com/microcosm-cc/avatars/config"
	"github.com/microcosm-cc/avatars/models"
)

// Schedules are read from the config file and have six fields:
//
// Field name   | Mandatory? | Allowed values  | Allowed special characters
// ----------   | ---------- | --------------  | --------------------------
// Seconds      | Yes        | 0-59            | * / , -
// Minutes      | Yes        | 0-59            | * / , -
// Hours        | Yes        | 0-23            | * / , -
// Day of month | Yes        | 1-31            | * / , - ?
// Month        | Yes        | 1-12 or JAN-DEC | * / , -
// Day of week  | Yes        | 0-6 or SUN-SAT  | * / , - ?
//
// An empty schedule disables the job.

type cronJob struct {
	schedule string
	run      func()
}

// jobs returns the cron jobs keyed by name
func jobs(store *models.Store, snapshots models.SnapshotStore) map[string]cronJob {
	return map[string]cronJob{
		"refresh": {
			schedule: conf.ConfigStrings[conf.RefreshSchedule],
			run: func() {
				store.ScheduleRefresh()
			},
		},
		"snapshot": {
			schedule: conf.ConfigStrings[conf.SnapshotSchedule],
			run: func() {
				SaveSnapshot(store, snapshots)
			},
		},
	}
}

// StartCron registers and starts the cron jobs for store
func StartCron(store *models.Store, snapshots models.SnapshotStore) (*cron.Cron, error) {
	c := cron.New()

	for name, job := range jobs(store, snapshots) {
		if job.schedule == "" {
			if glog.V(2) {
				glog.Infof("Cron job %s disabled", name)
			}
			continue
		}

		err := c.AddFunc(job.schedule, job.run)
		if err != nil {
			return nil, fmt.Errorf("cron job %s (%q): %+v", name, job.schedule, err)
		}
	}

	c.Start()

	return c, nil
}

// SaveSnapshot saves the contents of store, failures are logged
func SaveSnapshot(store *models.Store, snapshots models.SnapshotStore) error {
	if snapshots == nil {
		return nil
	}

	snap := store.Snapshot()

	err := snapshots.Save(snap)
	if err != nil {
		glog.Errorf("snapshots.Save() %+v", err)
		return err
	}

	if glog.V(2) {
		glog.Infof("Saved snapshot of %d avatars", len(snap.Avatars))
	}

	return nil
}

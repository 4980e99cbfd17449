package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	// Expose profiling info at /debug/pprof/
	_ "net/http/pprof"

	"github.com/golang/glog"

	conf "github.com/microcosm-cc/avatars/config"
	"github.com/microcosm-cc/avatars/models"
	"github.com/microcosm-cc/avatars/server"
	"github.com/microcosm-cc/avatars/snapshot"
)

var configFile = flag.String("config", conf.ConfigFilePath, "path to the config file")

func main() {

	// Go as fast as we can
	runtime.GOMAXPROCS(runtime.NumCPU())

	// Parse flags, also used to init glog
	flag.Parse()
	defer glog.Flush()

	// 100 megabytes max before rolling the log files
	glog.MaxSize = 1024 * 1024 * 100

	if _, err := os.Stat(*configFile); err == nil {
		err = conf.Load(*configFile)
		if err != nil {
			glog.Fatalf("conf.Load(%s) %+v", *configFile, err)
		}
	} else if glog.V(2) {
		glog.Infof("No config file at %s, using defaults", *configFile)
	}

	snapshots, err := snapshot.New(conf.ConfigStrings[conf.SnapshotBackend])
	if err != nil {
		glog.Fatalf("snapshot.New() %+v", err)
	}

	snap, err := snapshots.Load()
	if err != nil {
		// A broken snapshot only costs a cold start
		glog.Errorf("snapshots.Load() %+v", err)
		snap = nil
	}

	store, err := models.RestoreStore(snap, models.StoreOptions{
		URL:     conf.ConfigStrings[conf.AvatarURL],
		Timeout: time.Duration(conf.ConfigInt64s[conf.FetchTimeoutMS]) * time.Millisecond,
		Workers: int(conf.ConfigInt64s[conf.Workers]),
		Normaliser: models.ImageNormaliser{
			MaxWidth:  int(conf.ConfigInt64s[conf.MaxWidth]),
			MaxHeight: int(conf.ConfigInt64s[conf.MaxHeight]),
		},
	})
	if err != nil {
		glog.Fatalf("models.RestoreStore() %+v", err)
	}

	// Catch closing signal, stop serving and save what we have
	ctx, cancel := context.WithCancel(context.Background())
	sigc := make(chan os.Signal, 1)
	signal.Notify(
		sigc,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	go func() {
		sig := <-sigc
		glog.Warningf("Caught %v, shutting down..", sig)
		cancel()
	}()

	if glog.V(2) {
		glog.Infof(
			"Starting server on port %d",
			conf.ConfigInt64s[conf.ListenPort],
		)
	}
	err = server.StartServer(ctx, conf.ConfigInt64s[conf.ListenPort], store, snapshots)
	if err != nil {
		glog.Errorf("server.StartServer() %+v", err)
	}

	store.Close()
	server.SaveSnapshot(store, snapshots)
}

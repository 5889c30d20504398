package main

import (
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/cgast/nrfu/internal/config"
	"github.com/cgast/nrfu/pkg/events"
	"github.com/cgast/nrfu/pkg/nrfu"
	"github.com/cgast/nrfu/pkg/platform/fs"
	"github.com/cgast/nrfu/pkg/testcases"
)

var logger = log.WithFields(log.Fields{
	"package": "main",
})

// openStore opens the configured test case store for device. A non-empty
// location overrides the configured directory or database path.
func openStore(cfg config.Config, device, location string) (testcases.Store, error) {
	vars := testcases.Vars(device, nil)
	switch cfg.TestCases.Backend {
	case config.BackendBolt:
		path := cfg.TestCases.DBPath
		if location != "" {
			path = location
		}
		return testcases.NewBoltStore(path, device, vars)
	default:
		dir := cfg.TestCases.Dir
		if location != "" {
			dir = location
		}
		return testcases.NewDirStore(dir, vars)
	}
}

// openStoreAt opens a store from a location alone: a path ending in .db is
// a bolt database scoped to device, anything else a directory.
func openStoreAt(location, device string) (testcases.Store, error) {
	vars := testcases.Vars(device, nil)
	if strings.EqualFold(filepath.Ext(location), ".db") {
		if device == "" {
			return nil, fmt.Errorf("%s: --device is required for a bolt database", location)
		}
		return testcases.NewBoltStore(location, device, vars)
	}
	return testcases.NewDirStore(location, vars)
}

// newFetcher serves captured show outputs for device.
func newFetcher(cfg config.Config, device, dir string) (*fs.DirFetcher, error) {
	if dir == "" {
		dir = cfg.Capture.Dir
	}
	var opts []fs.Option
	if device != "" {
		opts = append(opts, fs.WithDevice(device))
	}
	return fs.NewDirFetcher(dir, cfg.Capture.MaxFileSize, opts...)
}

// selectDomains resolves domain patterns, falling back to the configured
// selection.
func selectDomains(reg *nrfu.Registry, cfg config.Config, patterns []string) ([]nrfu.Domain, error) {
	if len(patterns) == 0 {
		patterns = cfg.Verify.Domains
	}
	return reg.Select(patterns...)
}

// watchEvents logs engine progress at debug level until stop is called.
func watchEvents(bus events.EventBus) (stop func()) {
	ch := bus.Subscribe(
		events.EventDomainStart,
		events.EventDomainSkipped,
		events.EventDomainEnd,
		events.EventSnapshotFetched,
		events.EventBaselineSaved,
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range ch {
			l := logger.WithField("event", string(ev.Type)).WithField("domain", ev.Domain)
			if ev.Duration > 0 {
				l = l.WithField("duration", ev.Duration)
			}
			l.Debug(fmt.Sprint(ev.Data))
		}
	}()
	return func() {
		bus.Unsubscribe(ch)
		<-done
	}
}

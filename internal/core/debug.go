package core

import (
	"fmt"
	"net/http"
	_ "net/http/pprof"

	"github.com/sirupsen/logrus"
)

// StartPprofServer starts the default pprof HTTP server on localhost if the
// config enables it. It never blocks; failures are logged, not fatal, since
// pprof is a diagnostic aid rather than a server dependency.
func StartPprofServer(cfg *Config, log *logrus.Logger) {
	if !cfg.Debugging.PprofEnabled {
		return
	}

	addr := fmt.Sprintf("localhost:%d", cfg.Debugging.PprofPort)
	log.Infof("starting pprof server on %s", addr)

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			log.Warnf("pprof server exited: %s", err)
		}
	}()
}

package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/fulldump/box"

	"github.com/fulldump/entitycache/configuration"
	"github.com/fulldump/entitycache/logging"
	"github.com/fulldump/entitycache/server"
)

var VERSION = "dev"

// Bootstrap prepares the entity server described by c. The listener is open
// when it returns; start serves until stop is called or the process receives
// SIGINT or SIGTERM.
func Bootstrap(c *configuration.Configuration) (start, stop func(), addr string, err error) {

	logger := logging.New(c.Logging()).With("version", VERSION)

	config := c.Store()
	switch config.IDMode {
	case "", server.IDModeAuto, server.IDModeUUID:
	default:
		return nil, nil, "", fmt.Errorf("unknown id mode '%s'", config.IDMode)
	}

	store := server.NewStore(config)
	if c.Seed != "" {
		if err := store.LoadFile(c.Seed); err != nil {
			return nil, nil, "", err
		}
		logger.Info("seed loaded", "file", c.Seed, "resources", store.Names())
	}

	b := server.Build(store, logger)

	s := &http.Server{
		Addr:     c.HttpAddr,
		Handler:  box.Box2Http(b),
		ErrorLog: slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ln, err := net.Listen("tcp", c.HttpAddr)
	if err != nil {
		return nil, nil, "", fmt.Errorf("listen: %w", err)
	}
	addr = ln.Addr().String()
	logger.Info("listening", "addr", addr)

	once := &sync.Once{}
	stop = func() {
		once.Do(func() {
			s.Shutdown(context.Background())
		})
	}

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-signalChan
		logger.Info("signal received", "signal", sig.String())
		stop()
	}()

	start = func() {
		defer signal.Stop(signalChan)
		err := s.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", "error", err)
		}
	}

	return start, stop, addr, nil
}

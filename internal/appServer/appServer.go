// launching the http server and shutting it down
package appServer

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ds124wfegd/item-analyzer/config"
	"github.com/ds124wfegd/item-analyzer/internal/transport"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 15 * time.Second

type Server struct {
	httpServer *http.Server
}

func (s *Server) Run(cfg *config.Config, handler http.Handler) error {
	s.httpServer = &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		MaxHeaderBytes:    1 << 20,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       cfg.Server.Idle_timeout,
		ReadHeaderTimeout: 3 * time.Second,
		ErrorLog:          log.New(os.Stderr, "SERVER ERROR: ", log.LstdFlags),
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func NewServer(cfg *config.Config) {

	ConfigureLogging(cfg.Server.LogLevel)

	deps, err := NewDependencies(context.Background(), cfg)
	if err != nil {
		logrus.Fatalf("error occured while wiring dependencies: %s", err.Error())
	}
	defer deps.Close()

	itemHandler := transport.NewItemHandler(deps.Service, cfg.Server.MaxRequestBytes)
	healthHandler := transport.NewHealthHandler(cfg.Server.AppVersion, deps.HealthChecks)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	srv := new(Server)
	go func() {
		router := transport.InitRoutes(itemHandler, healthHandler, deps.Metrics, cfg.Server.AnalyzeTimeout)
		if err := srv.Run(cfg, router); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("error occured while running http server: %s", err.Error())
		}
	}()

	logrus.WithField("port", cfg.Server.Port).Print("App Started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logrus.Print("App Shutting Down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("error occured on server shutting down: %s", err.Error())
	}
}

// ConfigureLogging switches logrus to JSON output at the given level.
// Unknown levels fall back to info.
func ConfigureLogging(level string) {
	logrus.SetFormatter(new(logrus.JSONFormatter))

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.Warnf("unknown log level %q, using info", level)
		lvl = logrus.InfoLevel
	}
	logrus.SetLevel(lvl)
}

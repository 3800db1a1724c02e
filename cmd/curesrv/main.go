// Command curesrv runs the engine's minimal HTTP demonstration surface
// (applications/httpapi), wiring a runner.Runner loaded from config and
// serving it until SIGINT/SIGTERM.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/curetrace/engine/applications/httpapi"
	"github.com/curetrace/engine/applications/runner"
	"github.com/curetrace/engine/infrastructure/config"
	"github.com/curetrace/engine/infrastructure/logging"
)

func main() {
	addr := getenv("CURESRV_ADDR", ":8080")
	configRoot := getenv("CURETRACE_CONFIG_ROOT", "./config")

	cfg, err := config.LoadStartupConfig(configRoot)
	if err != nil {
		log.Fatalf("load startup config: %v", err)
	}
	logger := logging.New("curesrv", cfg.LogLevel, cfg.LogFormat)

	r, err := runner.New(cfg, logger)
	if err != nil {
		log.Fatalf("initialize runner: %v", err)
	}

	svc := httpapi.NewService(addr, r)
	if err := svc.Start(context.Background()); err != nil {
		log.Fatalf("start http service: %v", err)
	}
	log.Printf("curesrv listening on %s", addr)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := svc.Stop(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
}

func getenv(key, defaultValue string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return defaultValue
	}
	return v
}

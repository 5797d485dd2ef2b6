// Command reconcile ejecuta una corrida de conciliación del ledger y escribe el reporte JSON
// en stdout. Sale con código 2 si quedan discrepancias sin resolver.
//
//	reconcile -scope=batch -id=<uuid> -dry-run
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jhoicas/batch-ledger/internal/application/reconciliation"
	"github.com/jhoicas/batch-ledger/internal/bootstrap"
	"github.com/jhoicas/batch-ledger/pkg/config"
	"github.com/jhoicas/batch-ledger/pkg/logger"
)

func main() {
	scopeKind := flag.String("scope", "all", "alcance: all | product | batch")
	scopeID := flag.String("id", "", "id del producto o lote (requerido si scope != all)")
	dryRun := flag.Bool("dry-run", false, "solo reportar, sin escribir")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	// Logs a stderr; stdout queda para el reporte.
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Output: os.Stderr})

	scope, err := reconciliation.ParseScope(*scopeKind, *scopeID)
	if err != nil {
		log.Fatal().Err(err).Msg("alcance inválido")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	components, err := bootstrap.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicialización")
	}

	report, err := components.Engine.Run(ctx, scope, *dryRun)
	components.Close()
	if err != nil {
		log.Fatal().Err(err).Msg("conciliación")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		log.Fatal().Err(err).Msg("escribir reporte")
	}
	if report.HasUnresolved() {
		os.Exit(2)
	}
}

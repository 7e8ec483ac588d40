package main

import (
	"fmt"
	"os"
	"time"

	"github.com/nurpe/rodify-dispatch/internal/config"
	"github.com/nurpe/rodify-dispatch/internal/db"
	"github.com/nurpe/rodify-dispatch/internal/excel"
	httphandler "github.com/nurpe/rodify-dispatch/internal/http"
	"github.com/nurpe/rodify-dispatch/internal/logger"
	"github.com/nurpe/rodify-dispatch/internal/pdf"
	"github.com/nurpe/rodify-dispatch/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log, cfg.Environment)

	store, err := db.NewStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DB.Driver).Msg("failed to open store")
	}

	location, err := cfg.PricingLocation()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load pricing timezone")
	}

	pricingService := service.NewPricingService(store, location, cfg.Pricing.Currency)
	lifecycleService := service.NewLifecycleService(store, pricingService, time.Now)
	reportService := service.NewReportService(
		store,
		lifecycleService,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		cfg.Pricing.Currency,
	)

	handler := httphandler.NewHandler(httphandler.Services{
		Lifecycle:   lifecycleService,
		Pricing:     pricingService,
		Technicians: service.NewTechnicianService(store),
		Reports:     reportService,
		System:      service.NewSystemService(store),
	}, log)
	router := httphandler.NewRouter(handler, log, cfg)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().
		Str("addr", addr).
		Str("driver", cfg.DB.Driver).
		Str("pricing_timezone", location.String()).
		Msg("starting dispatch service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}

// Command detectord runs the privilege-escalation/lateral-movement
// detection engine as an HTTP service: ingest endpoint, alerts API,
// enrichment status, health check.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/BrizoSec/privesc-detector/internal/authgraph"
	"github.com/BrizoSec/privesc-detector/internal/config"
	"github.com/BrizoSec/privesc-detector/internal/detect"
	"github.com/BrizoSec/privesc-detector/internal/dispatch"
	"github.com/BrizoSec/privesc-detector/internal/enrichment"
	"github.com/BrizoSec/privesc-detector/internal/httpapi"
	"github.com/BrizoSec/privesc-detector/internal/ingest"
	"github.com/BrizoSec/privesc-detector/internal/ingest/crowdstrike"
	"github.com/BrizoSec/privesc-detector/internal/ingest/unixauth"
	"github.com/BrizoSec/privesc-detector/internal/logging"
	"github.com/BrizoSec/privesc-detector/internal/store"
	"github.com/BrizoSec/privesc-detector/internal/store/memstore"
	"github.com/BrizoSec/privesc-detector/internal/store/pgxstore"
)

func main() {
	configPath := flag.String("config", "config/thresholds.yaml", "path to thresholds.yaml")
	storeKind := flag.String("store", "postgres", "persistence backend: postgres|memory")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	seed := flag.Bool("seed", false, "normalize and ingest events from the configured source adapters at startup")
	flag.Parse()

	log := logging.New("detectord")
	cfg := config.Load(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		eventStore store.EventStore
		alertStore store.AlertStore
		pinger     httpapi.Pinger
	)

	switch *storeKind {
	case "memory":
		eventStore = memstore.NewEventStore()
		alertStore = memstore.NewAlertStore()
	default:
		pool, err := pgxstore.Connect(ctx, cfg.StoreURI)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to store")
		}
		defer pool.Close()
		eventStore = pgxstore.NewEventStore(pool)
		alertStore = pgxstore.NewAlertStore(pool)
		pinger = pool
	}

	enrichmentManager := enrichment.NewManager(
		cfg.Enrichment,
		enrichment.StaticVaultStore{Data: enrichment.DefaultVaultSeed()},
		enrichment.StaticCriticalAccountsStore{Data: enrichment.DefaultCriticalAccountsSeed()},
		logging.New("enrichment"),
	)
	if err := enrichmentManager.LoadSync(); err != nil {
		log.Fatal().Err(err).Msg("initial enrichment load failed")
	}
	enrichmentManager.StartRefreshLoop(ctx)
	defer enrichmentManager.Stop()

	burstState := detect.NewBurstWindowState()
	dispatcher := dispatch.New(alertStore, burstState, enrichmentManager, dispatch.Config{
		AuthBurst:           cfg.AuthBurst,
		AuthChain:           cfg.AuthChain,
		PrivilegeEscalation: cfg.PrivilegeEscalation,
		KeytabSmuggling:     cfg.KeytabSmuggling,
	})

	if *seed {
		seedFromNormalizers(ctx, eventStore, dispatcher, log, crowdstrike.New(), unixauth.New())
	}

	server := httpapi.New(eventStore, alertStore, dispatcher, enrichmentManager, pinger, logging.New("httpapi"))

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", *addr).Msg("starting detectord")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("http server stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// seedFromNormalizers runs each source-specific Normalizer once at startup,
// persisting and dispatching the events it returns exactly as the HTTP
// ingest endpoint would for one event at a time — the normalizers
// canonicalize telemetry, they don't sit on the HTTP ingest path itself.
func seedFromNormalizers(ctx context.Context, eventStore store.EventStore, dispatcher *dispatch.Dispatcher, log zerolog.Logger, normalizers ...ingest.Normalizer) {
	for _, n := range normalizers {
		events, err := n.FetchEvents()
		if err != nil {
			log.Error().Err(err).Str("raw_source", string(n.RawSource())).Msg("normalizer fetch failed")
			continue
		}
		for _, event := range events {
			if err := eventStore.Insert(ctx, event); err != nil {
				log.Error().Err(err).Str("raw_source", string(n.RawSource())).Msg("failed to persist seeded event")
				continue
			}
			allEvents, err := eventStore.GetAllForGraph(ctx)
			if err != nil {
				log.Error().Err(err).Msg("failed to load events for seeded graph rebuild")
				continue
			}
			graph := authgraph.BuildGraph(allEvents)
			if _, err := dispatcher.OnEventInserted(ctx, event, graph); err != nil {
				log.Error().Err(err).Msg("dispatch failed for seeded event")
			}
		}
		log.Info().Str("raw_source", string(n.RawSource())).Int("count", len(events)).Msg("seeded events from normalizer")
	}
}

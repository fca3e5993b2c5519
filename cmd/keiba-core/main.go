// cmd/keiba-core wires the prediction core, the walk-forward backtest
// engine, and the four ticket simulators against a SQLite store and the
// official payout endpoint. It is an example wiring, not a serving CLI:
// no HTML scraping and no front end live here, per the explicit
// non-goals this module carries. Runs one backtest/simulation pass on
// start, then keeps a cron schedule alive that re-runs the same pass on
// the configured retrain cadence, the way the data-fetching services in
// this codebase do.
package main

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/tndhk/keiba-core/internal/backtest"
	"github.com/tndhk/keiba-core/internal/factor"
	"github.com/tndhk/keiba-core/internal/fetcher"
	"github.com/tndhk/keiba-core/internal/metrics"
	"github.com/tndhk/keiba-core/internal/pedigree"
	"github.com/tndhk/keiba-core/internal/platform/config"
	"github.com/tndhk/keiba-core/internal/platform/logger"
	"github.com/tndhk/keiba-core/internal/store"
	"github.com/tndhk/keiba-core/internal/ticket"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}

	log := logger.Init(cfg.LogLevel, cfg.IsDevelopment())

	db, err := store.Open(cfg.DatabasePath, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.AutoMigrate(); err != nil {
		log.Fatalf("migrate schema: %v", err)
	}

	raceStore := store.NewRaceStore(db)
	pastResultsStore := store.NewPastResultsStore(db)
	master := pedigree.NewDefaultMaster()

	payoutClient := fetcher.New(fetcher.Config{
		BaseURL:   cfg.PayoutBaseURL,
		RateLimit: time.Duration(cfg.RequestDelaySeconds * float64(time.Second)),
	}, log)

	engine := backtest.New(
		log,
		raceStore,
		pastResultsStore,
		raceStore,
		master,
		factor.DefaultWeights,
		cfg,
	)

	runBacktestAndSimulate := func() {
		to := time.Now().UTC()
		from := to.AddDate(-1, 0, 0)

		report, err := engine.Run(from, to, cfg.Venues)
		if err != nil {
			log.WithError(err).Error("backtest run failed")
			return
		}
		log.WithFields(logrus.Fields{
			"predictions": len(report.Predictions),
			"retrains":    len(report.Retrains),
			"skipped":     len(report.SkippedRaces),
			"state":       report.State,
		}).Info("backtest run complete")

		evaluations := make([]metrics.RaceEvaluation, 0, len(report.Predictions))
		venueOf := map[string]string{}
		for _, p := range report.Predictions {
			evaluations = append(evaluations, metrics.BuildRaceEvaluation(p.Race.RaceID, p.Predictions, p.Results))
			venueOf[p.Race.RaceID] = p.Race.VenueName
		}
		report2 := metrics.NewReport(evaluations, venueOf)
		log.Info("\n" + report2.Render())

		predictor := engine.Predictor()
		simulators := []*ticket.BaseSimulator{
			ticket.New(log, raceStore, predictor, payoutClient, ticket.PlaceSimulator{TopN: cfg.TopN}),
			ticket.New(log, raceStore, predictor, payoutClient, ticket.WinSimulator{TopN: cfg.TopN}),
			ticket.New(log, raceStore, predictor, payoutClient, ticket.QuinellaSimulator{}),
			ticket.New(log, raceStore, predictor, payoutClient, ticket.TrioSimulator{}),
		}
		for _, sim := range simulators {
			summary, err := sim.SimulatePeriod(from, to, cfg.Venues)
			if err != nil {
				log.WithError(err).Error("ticket simulation failed")
				continue
			}
			log.WithFields(logrus.Fields{
				"total_races":      summary.TotalRaces,
				"hit_rate":         summary.HitRate,
				"return_rate":      summary.ReturnRate,
				"total_investment": summary.TotalInvestment.String(),
				"total_payout":     summary.TotalPayout.String(),
			}).Info("ticket simulation complete")
		}
	}

	runBacktestAndSimulate()

	scheduler := cron.New()
	schedule := "0 4 * * *"
	switch cfg.RetrainInterval {
	case config.CadenceWeekly:
		schedule = "0 4 * * 1"
	case config.CadenceMonthly:
		schedule = "0 4 1 * *"
	}
	if _, err := scheduler.AddFunc(schedule, runBacktestAndSimulate); err != nil {
		log.Fatalf("schedule backtest job: %v", err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info("shutting down")
}

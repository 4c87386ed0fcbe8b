// Command simulate runs one market-microstructure session: it builds a
// market, populates it with maker, informed and noise agents, advances the
// clock, prints a per-trader performance report and optionally serves the
// session over HTTP while it runs.
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/pprof"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"microstruct/engine"
	"microstruct/metrics"
	"microstruct/server"
	"microstruct/traders"
)

func main() {
	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config (env vars apply when empty)")
	cpuProfile := flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile := flag.String("memprofile", "", "write heap profile to file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger, err := buildLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			logger.Fatal("cpu profile", zap.Error(err))
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			logger.Fatal("cpu profile", zap.Error(err))
		}
		defer pprof.StopCPUProfile()
	}

	m := engine.NewMarket(engine.Config{
		InitialFairPrice: cfg.Simulation.InitialFairPrice,
		Seed:             cfg.Simulation.Seed,
		NewsArrivalRate:  cfg.Simulation.NewsArrivalRate,
		GoodNewsProb:     cfg.Simulation.GoodNewsProb,
		Logger:           logger,
	})

	if cfg.ListenAddr != "" {
		srv := server.New(logger)
		go srv.Consume(m.Events())
		go func() {
			logger.Info("http server listening", zap.String("addr", cfg.ListenAddr))
			if err := http.ListenAndServe(cfg.ListenAddr, srv.Routes()); err != nil {
				logger.Error("http server stopped", zap.Error(err))
			}
		}()
	}

	buildAgents(m, cfg)
	logger.Info("agents registered", zap.Int("participants", len(m.Participants)))

	start := time.Now()
	if err := m.Run(cfg.Simulation.Ticks); err != nil {
		logger.Fatal("simulation failed", zap.Error(err))
	}
	logger.Info("simulation finished",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("trades", len(m.TradeHistory)),
	)

	printReport(m)

	if cfg.StatePath != "" {
		if err := m.SaveFile(cfg.StatePath); err != nil {
			logger.Fatal("save state", zap.Error(err))
		}
		logger.Info("state saved", zap.String("path", cfg.StatePath))
	}

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err == nil {
			defer f.Close()
			_ = pprof.WriteHeapProfile(f)
		}
	}

	if cfg.ListenAddr != "" {
		m.CloseEvents()
		logger.Info("session finished, still serving; interrupt to exit")
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt)
		<-sig
	}
}

func buildLogger(level string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.Set(level); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}

func buildAgents(m *engine.Market, cfg *config) {
	for i := 0; i < cfg.Agents.KyleMakers; i++ {
		traders.NewKyleMarketMaker(m, fmt.Sprintf("kyle-mm-%d", i))
	}
	for i := 0; i < cfg.Agents.AdaptiveMakers; i++ {
		traders.NewAdaptiveMarketMaker(m, fmt.Sprintf("adaptive-mm-%d", i))
	}
	for i := 0; i < cfg.Agents.InformedTraders; i++ {
		traders.NewNewsInformedTrader(m)
	}
	traders.Ensemble(cfg.Agents.NoiseTraders, func(i int) *traders.NoiseTrader {
		return traders.NewNoiseTrader(m,
			fmt.Sprintf("noise-%d", i),
			cfg.Agents.NoiseRate,
			traders.UniformVolume(cfg.Agents.NoiseMaxVolume, cfg.Simulation.Seed+int64(i)),
			cfg.Simulation.Seed-int64(i)-1)
	})
}

func printReport(m *engine.Market) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TRADER\tPROFIT\tPOSITION\tTRADES\tVOLUME\tFILL RATE\tAGGR RATIO\tTIME IN MKT")
	for _, r := range metrics.MarketReport(m) {
		fmt.Fprintf(w, "%s\t%.2f\t%d\t%d\t%d\t%.2f\t%.2f\t%.2f\n",
			r.Name, r.FinalProfit, r.FinalPosition, r.TotalTrades,
			r.VolumeTraded, r.FillRate, r.AggressorRatio, r.TimeInMarket)
	}
	w.Flush()
}

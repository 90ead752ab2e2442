package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TpexRadar/internal/collector"
	"TpexRadar/internal/config"
	"TpexRadar/internal/notifier"
	"TpexRadar/internal/radar"
	"TpexRadar/internal/recorder"
	"TpexRadar/internal/scheduler"
	"TpexRadar/internal/tpex"
	"TpexRadar/internal/trend"
	"TpexRadar/internal/web"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] TpexRadar starting...")

	// Load config first so flag defaults reflect it.
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}

	webhook := flag.String("webhook", cfg.Slack.WebhookURL, "Slack incoming webhook URL (overrides env)")
	window := flag.Int("window", cfg.Radar.Window, "number of most recent bars for trend fitting")
	days := flag.Int("days", cfg.Radar.Days, "lookback days of 5-minute bars")
	strength := flag.Float64("strength", cfg.Radar.Strength, "threshold for trend strength (±)")
	r2 := flag.Float64("r2", cfg.Radar.R2, "R^2 threshold")
	title := flag.String("title", cfg.Radar.Title, "Slack report title")
	flag.Parse()

	cfg.Radar.Window = *window
	cfg.Radar.Days = *days
	cfg.Radar.Strength = *strength
	cfg.Radar.R2 = *r2
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init flow fetcher
	httpClient := web.NewClient(web.Options{
		Headers:               tpex.DefaultHeaders(cfg.Tpex.Referer),
		Proxy:                 cfg.Proxy,
		AllowInsecureFallback: !cfg.HTTP.StrictTLS,
		RequestsPerSecond:     cfg.HTTP.RequestsPerSecond,
	})
	flow := tpex.NewClient(httpClient, cfg.Tpex.BaseURL)

	// Init bar fetcher
	bars := collector.NewYahooFetcher(cfg.Proxy, cfg.HTTP.RequestsPerSecond)
	log.Printf("[INFO] bar source: %s", bars.Name())

	// Init scanner
	params := trend.Params{Window: *window, Strength: *strength, RSquared: *r2}
	scanner := radar.NewScanner(flow, bars, params, cfg.Radar.TopN, *days)

	// Init Slack notifier
	sn := notifier.NewSlackNotifier(*webhook, cfg.Proxy)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.NewScheduler(ctx, scanner, sn, rec, *window, *title)

	// One-shot mode when no cron schedule is configured.
	if cfg.Schedule.ScanCron == "" {
		sched.RunNow()
		return
	}

	if err := sched.Register(cfg.Schedule.ScanCron); err != nil {
		log.Fatalf("[FATAL] register cron task: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing scan now")
		go sched.RunNow()
	}

	log.Println("[INFO] TpexRadar is running. Press Ctrl+C to stop.")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] TpexRadar stopped")
}

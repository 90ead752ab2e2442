package scheduler

import (
	"context"
	"fmt"
	"log"

	"TpexRadar/internal/notifier"
	"TpexRadar/internal/radar"
	"TpexRadar/internal/recorder"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the radar scan on a cron schedule and pushes the
// report to Slack.
type Scheduler struct {
	Cron     *cron.Cron
	Radar    *radar.Scanner
	Notifier *notifier.SlackNotifier
	Recorder recorder.Recorder
	Ctx      context.Context
	Window   int
	Title    string
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, sc *radar.Scanner, sn *notifier.SlackNotifier, rec recorder.Recorder, window int, title string) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds()),
		Radar:    sc,
		Notifier: sn,
		Recorder: rec,
		Ctx:      ctx,
		Window:   window,
		Title:    title,
	}
}

// Register adds the scan task at the given cron expression.
func (s *Scheduler) Register(cronSpec string) error {
	if _, err := s.Cron.AddFunc(cronSpec, s.scanTask); err != nil {
		return fmt.Errorf("register scan task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (s *Scheduler) Stop() {
	s.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// RunNow executes the scan task immediately (one-shot mode / manual trigger).
func (s *Scheduler) RunNow() {
	s.scanTask()
}

func (s *Scheduler) scanTask() {
	log.Println("[INFO] running radar scan")
	label, results, err := s.Radar.Scan(s.Ctx)
	if err != nil {
		// A failed watchlist fetch degrades to an empty report instead
		// of aborting the run.
		log.Printf("[ERROR] radar scan: %v", err)
	}
	log.Printf("[INFO] scan complete: %s, %d instruments", label, len(results))

	text := notifier.FormatLines(results, s.Window)
	if text != "" {
		fmt.Println(text)
	}

	msg := notifier.Message{
		Text:   text,
		Blocks: notifier.BuildBlocks(results, s.Window, s.Title),
	}
	if s.Notifier.WebhookURL == "" {
		log.Println("[WARN] no Slack webhook configured, skipping notification")
	} else if err := s.Notifier.SendWithRetry(s.Ctx, msg, 3); err != nil {
		log.Printf("[ERROR] send notification: %v", err)
	}

	if err := s.Recorder.RecordScan(&recorder.ScanRecord{DateLabel: label, Results: results}); err != nil {
		log.Printf("[ERROR] record scan: %v", err)
	}
}

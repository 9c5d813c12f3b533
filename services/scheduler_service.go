package services

import (
	"context"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"habitLogAPI/internal/guard"
)

// SchedulerConfig holds the cadence configuration. Cadence is config, not
// core logic: the guard's markers make overlapping or repeated ticks safe.
type SchedulerConfig struct {
	EnsureRowHour     int          // daily, early
	ReminderHour      int          // daily, evening
	WeeklySummaryDay  time.Weekday // one fixed weekday
	WeeklySummaryHour int
}

func SchedulerConfigFromEnv() SchedulerConfig {
	cfg := SchedulerConfig{
		EnsureRowHour:     envInt("ENSURE_ROW_HOUR", 6),
		ReminderHour:      envInt("REMINDER_HOUR", 19),
		WeeklySummaryDay:  time.Sunday,
		WeeklySummaryHour: envInt("WEEKLY_SUMMARY_HOUR", 18),
	}
	if day := os.Getenv("WEEKLY_SUMMARY_DAY"); day != "" {
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if strings.EqualFold(wd.String(), day) {
				cfg.WeeklySummaryDay = wd
				break
			}
		}
	}
	return cfg
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("Scheduler: invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return n
}

// SchedulerService drives the guarded actions from a minute ticker. It owns
// no correctness: dedup lives in the guard, so a tick firing twice or two
// schedulers overlapping cannot double an action.
type SchedulerService struct {
	guard    *guard.Guard
	cfg      SchedulerConfig
	stopChan chan struct{}
}

func NewSchedulerService(g *guard.Guard, cfg SchedulerConfig) *SchedulerService {
	return &SchedulerService{
		guard:    g,
		cfg:      cfg,
		stopChan: make(chan struct{}),
	}
}

func (s *SchedulerService) Start() {
	go s.run()
	log.Printf("Scheduler: started (row %02d:00, reminder %02d:00, weekly %s %02d:00)",
		s.cfg.EnsureRowHour, s.cfg.ReminderHour, s.cfg.WeeklySummaryDay, s.cfg.WeeklySummaryHour)
}

func (s *SchedulerService) Stop() {
	close(s.stopChan)
}

func (s *SchedulerService) run() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			s.tick(now)
		case <-s.stopChan:
			return
		}
	}
}

func (s *SchedulerService) tick(now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if now.Hour() >= s.cfg.EnsureRowHour {
		if err := s.guard.EnsureTodayRecord(ctx, now); err != nil {
			log.Printf("Scheduler: ensure today record failed: %v", err)
		}
	}

	if now.Hour() >= s.cfg.ReminderHour {
		if err := s.guard.MaybeSendReminder(ctx, now); err != nil {
			log.Printf("Scheduler: reminder failed: %v", err)
		}
	}

	if now.Weekday() == s.cfg.WeeklySummaryDay && now.Hour() >= s.cfg.WeeklySummaryHour {
		if err := s.guard.SendWeeklySummary(ctx, now); err != nil {
			log.Printf("Scheduler: weekly summary failed: %v", err)
		}
	}
}

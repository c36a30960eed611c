package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/weather-cities/internal/weather"
)

// Prober is the part of weather.Service the scheduler drives.
type Prober interface {
	Probe(ctx context.Context, loc weather.Location) int
}

// Scheduler periodically probes the weather providers so /health reflects
// upstream availability even when no user is browsing.
type Scheduler struct {
	scheduler *gocron.Scheduler
	prober    Prober
	location  weather.Location
	interval  time.Duration
}

// New creates a new Scheduler.
func New(location weather.Location, interval time.Duration, prober Prober) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		prober:    prober,
		location:  location,
		interval:  interval,
	}
}

// Start schedules the periodic probe and starts the underlying scheduler.
// The first probe runs immediately.
func (s *Scheduler) Start() error {
	if s.interval <= 0 || s.location.City == "" {
		log.Println("scheduler: provider probing disabled")
		return nil
	}

	_, err := s.scheduler.Every(s.interval).Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	log.Println("scheduler: running provider probe")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	healthy := s.prober.Probe(ctx, s.location)
	log.Printf("scheduler: completed provider probe, %d healthy", healthy)
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

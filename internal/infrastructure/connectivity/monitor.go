// Package connectivity watches network reachability and triggers queue
// drains: one immediate drain on every offline-to-online transition, plus
// a cron-scheduled periodic drain while online.
package connectivity

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Probe reports whether the remote system is currently reachable.
type Probe func(ctx context.Context) bool

// Drainer is the sync queue's drain entry point. Drain serializes
// internally, so overlapping triggers are safe.
type Drainer interface {
	Drain(ctx context.Context) error
}

// Monitor polls a reachability probe and drives the drainer.
type Monitor struct {
	probe    Probe
	drainer  Drainer
	interval time.Duration
	schedule string
	logger   zerolog.Logger

	online atomic.Bool
	cron   *cron.Cron
	stop   chan struct{}
	done   chan struct{}
}

// NewMonitor creates a connectivity monitor. interval is the probe
// polling period; schedule is a cron spec (e.g. "@every 2m") for the
// periodic background drain.
func NewMonitor(probe Probe, drainer Drainer, interval time.Duration, schedule string, logger zerolog.Logger) *Monitor {
	return &Monitor{
		probe:    probe,
		drainer:  drainer,
		interval: interval,
		schedule: schedule,
		logger:   logger.With().Str("service", "connectivity").Logger(),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Start begins polling. The first probe runs immediately so the initial
// state is known before Start returns.
func (m *Monitor) Start(ctx context.Context) error {
	m.online.Store(m.probe(ctx))

	m.cron = cron.New()
	if _, err := m.cron.AddFunc(m.schedule, func() {
		if !m.Online() {
			return
		}
		if err := m.drainer.Drain(context.Background()); err != nil {
			m.logger.Warn().Err(err).Msg("scheduled drain failed")
		}
	}); err != nil {
		return err
	}
	m.cron.Start()

	go m.loop(ctx)
	return nil
}

// Stop halts polling and the periodic schedule.
func (m *Monitor) Stop() {
	close(m.stop)
	if m.cron != nil {
		m.cron.Stop()
	}
	<-m.done
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			was := m.online.Load()
			now := m.probe(ctx)
			m.online.Store(now)
			if !was && now {
				m.logger.Info().Msg("connectivity regained, draining queue")
				// Drain serializes internally; a transition arriving
				// mid-drain coalesces instead of running twice.
				go func() {
					if err := m.drainer.Drain(context.Background()); err != nil {
						m.logger.Warn().Err(err).Msg("reconnect drain failed")
					}
				}()
			} else if was && !now {
				m.logger.Info().Msg("connectivity lost")
			}
		}
	}
}

// HTTPProbe probes reachability with a GET against a health endpoint.
func HTTPProbe(url string, timeout time.Duration) Probe {
	client := &http.Client{Timeout: timeout}
	return func(ctx context.Context) bool {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return false
		}
		resp, err := client.Do(req)
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode < http.StatusInternalServerError
	}
}

// Package monitor implements periodic polling of the configured game
// servers. Each poll is a single legacy status query; results are kept in
// an in-memory snapshot for the API and CLI, appended to the history
// store, and published on the event bus.
package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/squareland/pinger/internal/config"
	"github.com/squareland/pinger/internal/db"
	"github.com/squareland/pinger/internal/events"
	"github.com/squareland/pinger/internal/ping"
	"github.com/squareland/pinger/internal/util"
)

// TargetState is the latest known state of one monitored target.
type TargetState struct {
	Target    string        `json:"target"`
	Address   string        `json:"address"`
	Online    bool          `json:"online"`
	Status    *ping.Status  `json:"status,omitempty"`
	RTT       time.Duration `json:"rtt_ns"`
	Error     string        `json:"error,omitempty"`
	CheckedAt time.Time     `json:"checked_at"`
}

// Monitor polls all configured targets on a fixed interval.
type Monitor struct {
	cfg      *config.Config
	eventBus *events.EventBus
	history  *db.HistoryDatabase // nil when history is disabled

	mu     sync.RWMutex
	latest map[string]TargetState // keyed by target name

	log zerolog.Logger
}

// NewMonitor creates a new monitor. history may be nil.
func NewMonitor(cfg *config.Config, eventBus *events.EventBus, history *db.HistoryDatabase) *Monitor {
	return &Monitor{
		cfg:      cfg,
		eventBus: eventBus,
		history:  history,
		latest:   make(map[string]TargetState),
		log:      util.ComponentLogger("monitor"),
	}
}

// Start runs the poll loop until ctx is cancelled. The first round runs
// immediately so the API has data as soon as the process is up.
func (m *Monitor) Start(ctx context.Context) {
	interval := time.Duration(m.cfg.Monitor.PollIntervalSec) * time.Second

	m.log.Info().
		Dur("interval", interval).
		Int("targets", len(m.cfg.GetTargets())).
		Msg("monitor started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	pruneTicker := time.NewTicker(time.Hour)
	defer pruneTicker.Stop()

	m.pollAll(ctx)
	m.pruneHistory()

	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("monitor stopped")
			return
		case <-ticker.C:
			m.pollAll(ctx)
		case <-pruneTicker.C:
			m.pruneHistory()
		}
	}
}

// pruneHistory removes samples older than the configured retention.
func (m *Monitor) pruneHistory() {
	if m.history == nil {
		return
	}
	retention := time.Duration(m.cfg.History.RetentionDays) * 24 * time.Hour
	if _, err := m.history.Prune(retention); err != nil {
		m.log.Error().Err(err).Msg("history prune failed")
	}
}

// pollAll queries every configured target concurrently. Each target gets
// its own connection, so one slow server never delays the others.
func (m *Monitor) pollAll(ctx context.Context) {
	targets := m.cfg.GetTargets()

	var wg sync.WaitGroup
	for _, target := range targets {
		wg.Add(1)
		go func(t config.Target) {
			defer wg.Done()
			m.poll(ctx, t)
		}(target)
	}
	wg.Wait()
}

// poll performs one status query against a single target and fans the
// result out to the snapshot, the history store, and the event bus.
func (m *Monitor) poll(ctx context.Context, target config.Target) {
	connectTimeout := time.Duration(m.cfg.Monitor.ConnectTimeoutSec) * time.Second

	start := time.Now()
	status, err := ping.GetStatus(target.Address, connectTimeout)
	rtt := time.Since(start)
	now := time.Now().UTC()

	wasOnline, seenBefore := m.previousState(target.Name)

	if err != nil {
		m.log.Warn().
			Err(err).
			Str("target", target.Name).
			Str("address", target.Address).
			Msg("poll failed")

		m.store(TargetState{
			Target:    target.Name,
			Address:   target.Address,
			Online:    false,
			Error:     err.Error(),
			CheckedAt: now,
		})

		if m.history != nil {
			if dbErr := m.history.RecordFailure(target.Name, target.Address, err); dbErr != nil {
				m.log.Error().Err(dbErr).Str("target", target.Name).Msg("failed to record poll failure")
			}
		}

		if wasOnline {
			m.eventBus.Emit(ctx, events.Event{
				Type:   events.EventServerDown,
				Source: "monitor",
				Payload: events.ServerDownPayload{
					Target:    target.Name,
					Address:   target.Address,
					Error:     err.Error(),
					Timestamp: now,
				},
			})
		}
		return
	}

	m.log.Debug().
		Str("target", target.Name).
		Str("motd", status.MOTD).
		Uint16("players", status.Online.Current).
		Uint16("max", status.Online.Max).
		Dur("rtt", rtt).
		Msg("poll succeeded")

	m.store(TargetState{
		Target:    target.Name,
		Address:   target.Address,
		Online:    true,
		Status:    status,
		RTT:       rtt,
		CheckedAt: now,
	})

	if m.history != nil {
		if dbErr := m.history.RecordSuccess(target.Name, target.Address, status, rtt); dbErr != nil {
			m.log.Error().Err(dbErr).Str("target", target.Name).Msg("failed to record poll result")
		}
	}

	m.eventBus.Emit(ctx, events.Event{
		Type:   events.EventStatusUpdate,
		Source: "monitor",
		Payload: events.StatusUpdatePayload{
			Target:    target.Name,
			Address:   target.Address,
			Status:    status,
			RTT:       rtt,
			Timestamp: now,
		},
	})

	if !wasOnline && seenBefore {
		m.eventBus.Emit(ctx, events.Event{
			Type:   events.EventServerRecovered,
			Source: "monitor",
			Payload: events.ServerDownPayload{
				Target:    target.Name,
				Address:   target.Address,
				Recovered: true,
				Timestamp: now,
			},
		})
	}
}

// store replaces the latest snapshot for a target.
func (m *Monitor) store(state TargetState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latest[state.Target] = state
}

// previousState reports whether the last poll of the target succeeded
// and whether the target has been polled at all. Targets never seen
// before produce neither a down nor a recovery event on their first poll.
func (m *Monitor) previousState(target string) (online, seen bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.latest[target]
	return ok && state.Online, ok
}

// Latest returns a copy of the most recent state for every target.
func (m *Monitor) Latest() []TargetState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	states := make([]TargetState, 0, len(m.latest))
	for _, s := range m.latest {
		states = append(states, s)
	}
	return states
}

// LatestFor returns the most recent state for one target by name.
func (m *Monitor) LatestFor(target string) (TargetState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	state, ok := m.latest[target]
	return state, ok
}

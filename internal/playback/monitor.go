// Package playback tracks a single viewer's playback honestly-reached
// high-water mark and decides completion credit eligibility. It is purely
// local to the viewing client: no network events, one monitor per player.
package playback

import (
	"math"
	"sync"
	"time"
)

// State mirrors the underlying player's status.
type State int

const (
	StateCued State = iota
	StatePlaying
	StatePaused
	StateBuffering
	StateEnded
)

func (s State) String() string {
	switch s {
	case StateCued:
		return "cued"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateBuffering:
		return "buffering"
	case StateEnded:
		return "ended"
	}
	return "unknown"
}

// Player is the read-only view of the underlying video player. Duration
// returning zero (or less) means the player is not ready; the sampler skips
// that cycle entirely.
type Player interface {
	CurrentTime() float64
	Duration() float64
}

const (
	DefaultSampleInterval = time.Second
	DefaultSeekThreshold  = 1.5
)

// Snapshot is a point-in-time copy of the monitor's output values.
type Snapshot struct {
	State          State
	MaxReachedTime float64
	FastForwarded  bool
	Progress       float64
	WatchComplete  bool
}

// Monitor samples a player's position while it is playing, latches a
// disqualification flag on discontinuous forward jumps, and decides at
// end-of-media whether the session earns completion credit.
type Monitor struct {
	player    Player
	interval  time.Duration
	threshold float64

	mu            sync.Mutex
	state         State
	maxReached    float64
	fastForwarded bool
	progress      float64
	watchComplete bool
	stopSampler   chan struct{} // nil when no sampler is running
}

type Option func(*Monitor)

func WithSampleInterval(d time.Duration) Option {
	return func(m *Monitor) {
		if d > 0 {
			m.interval = d
		}
	}
}

func WithSeekThreshold(seconds float64) Option {
	return func(m *Monitor) {
		if seconds > 0 {
			m.threshold = seconds
		}
	}
}

func NewMonitor(p Player, opts ...Option) *Monitor {
	m := &Monitor{
		player:    p,
		interval:  DefaultSampleInterval,
		threshold: DefaultSeekThreshold,
		state:     StateCued,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// HandleStateChange drives the monitor through the player's status
// transitions. Entering Playing (re)starts the sampler; Paused and
// Buffering stop it so stalls never read as skips; Ended stops it and makes
// the one-shot eligibility decision; Cued resets everything for a fresh
// media load, the only transition that clears the disqualification latch.
func (m *Monitor) HandleStateChange(next State) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopSamplerLocked()

	switch next {
	case StateCued:
		m.maxReached = 0
		m.fastForwarded = false
		m.progress = 0
		m.watchComplete = false
	case StatePlaying:
		m.startSamplerLocked()
	case StatePaused, StateBuffering:
		// Sampler already stopped; nothing counts against the viewer.
	case StateEnded:
		m.finishLocked()
	}

	m.state = next
}

// Stop halts the sampler goroutine without touching any recorded values.
// Call it when the monitor's owner goes away while playback is still
// running, such as a player surface being torn down mid-video. Safe to
// call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopSamplerLocked()
}

// Snapshot returns the monitor's current output values.
func (m *Monitor) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		State:          m.state,
		MaxReachedTime: m.maxReached,
		FastForwarded:  m.fastForwarded,
		Progress:       m.progress,
		WatchComplete:  m.watchComplete,
	}
}

func (m *Monitor) startSamplerLocked() {
	stop := make(chan struct{})
	m.stopSampler = stop

	go func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.sample()
			case <-stop:
				return
			}
		}
	}()
}

func (m *Monitor) stopSamplerLocked() {
	if m.stopSampler != nil {
		close(m.stopSampler)
		m.stopSampler = nil
	}
}

// sample is one sampler tick. The maxReached > 0 guard keeps the very first
// tick after playback starts from reading as a seek; the high-water mark
// never retreats on rewinds.
func (m *Monitor) sample() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StatePlaying || m.player == nil {
		return
	}

	duration := m.player.Duration()
	if duration <= 0 {
		// Player not ready yet; skip this cycle.
		return
	}

	t := m.player.CurrentTime()
	diff := t - m.maxReached

	if !m.fastForwarded && diff > m.threshold && m.maxReached > 0 {
		m.fastForwarded = true
	} else if !m.fastForwarded && diff <= m.threshold {
		if t > m.maxReached {
			m.maxReached = t
		}
	}

	m.progress = math.Min(100, 100*t/duration)
}

// finishLocked makes the end-of-media eligibility decision. Displayed
// progress is forced to 100 whatever the outcome.
func (m *Monitor) finishLocked() {
	duration := float64(0)
	if m.player != nil {
		duration = m.player.Duration()
	}

	nearEnd := duration
	if duration > 1 {
		nearEnd = duration - m.threshold
	}

	if !m.fastForwarded && m.maxReached >= nearEnd {
		m.watchComplete = true
	}

	m.progress = 100
}

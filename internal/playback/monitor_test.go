package playback

import (
	"testing"
	"time"
)

// scriptedPlayer lets a test set the playhead between samples.
type scriptedPlayer struct {
	t   float64
	dur float64
}

func (p *scriptedPlayer) CurrentTime() float64 { return p.t }
func (p *scriptedPlayer) Duration() float64    { return p.dur }

// newTestMonitor uses a huge sample interval so the background sampler never
// fires on its own; tests drive sample() directly.
func newTestMonitor(p *scriptedPlayer) *Monitor {
	return NewMonitor(p, WithSampleInterval(time.Hour))
}

func playThrough(m *Monitor, p *scriptedPlayer, positions ...float64) {
	for _, pos := range positions {
		p.t = pos
		m.sample()
	}
}

func TestLinearWatchEarnsCompletion(t *testing.T) {
	p := &scriptedPlayer{dur: 10}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)
	m.HandleStateChange(StateEnded)

	snap := m.Snapshot()
	if !snap.WatchComplete {
		t.Error("continuous watch should earn completion credit")
	}
	if snap.FastForwarded {
		t.Error("continuous watch should not be flagged as fast-forwarded")
	}
	if snap.Progress != 100 {
		t.Errorf("Progress = %v, want 100", snap.Progress)
	}
	if snap.MaxReachedTime != 10 {
		t.Errorf("MaxReachedTime = %v, want 10", snap.MaxReachedTime)
	}
}

func TestForwardJumpDisqualifies(t *testing.T) {
	p := &scriptedPlayer{dur: 60}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2, 3)
	// Seek from 3 to 10: the jump exceeds the threshold.
	playThrough(m, p, 10)

	snap := m.Snapshot()
	if !snap.FastForwarded {
		t.Fatal("jump past the threshold should latch the fast-forward flag")
	}
	if snap.MaxReachedTime != 3 {
		t.Errorf("MaxReachedTime = %v, want 3 (frozen at the jump)", snap.MaxReachedTime)
	}

	// Watching the rest normally does not restore eligibility.
	playThrough(m, p, 11, 12, 60)
	m.HandleStateChange(StateEnded)

	snap = m.Snapshot()
	if snap.WatchComplete {
		t.Error("disqualified session must not earn completion credit")
	}
	if snap.Progress != 100 {
		t.Errorf("Progress = %v, want 100 even when disqualified", snap.Progress)
	}
}

func TestRewindDoesNotRetreat(t *testing.T) {
	p := &scriptedPlayer{dur: 60}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2, 3)
	playThrough(m, p, 1)

	snap := m.Snapshot()
	if snap.FastForwarded {
		t.Error("rewind should never latch the fast-forward flag")
	}
	if snap.MaxReachedTime != 3 {
		t.Errorf("MaxReachedTime = %v, want 3 after rewind", snap.MaxReachedTime)
	}
}

func TestFirstSampleNeverReadsAsSeek(t *testing.T) {
	p := &scriptedPlayer{dur: 60}
	m := newTestMonitor(p)

	// Playback resumed mid-video: first sample lands far from zero.
	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 30)

	if snap := m.Snapshot(); snap.FastForwarded {
		t.Error("first sample must not latch the fast-forward flag")
	}
}

func TestCuedResetsEverything(t *testing.T) {
	p := &scriptedPlayer{dur: 60}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2, 20)
	m.HandleStateChange(StateEnded)

	m.HandleStateChange(StateCued)

	snap := m.Snapshot()
	if snap.FastForwarded {
		t.Error("Cued should clear the fast-forward latch")
	}
	if snap.MaxReachedTime != 0 {
		t.Errorf("MaxReachedTime = %v, want 0 after Cued", snap.MaxReachedTime)
	}
	if snap.Progress != 0 {
		t.Errorf("Progress = %v, want 0 after Cued", snap.Progress)
	}
	if snap.WatchComplete {
		t.Error("Cued should clear completion")
	}
}

func TestPausedIgnoresSamples(t *testing.T) {
	p := &scriptedPlayer{dur: 60}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2)
	m.HandleStateChange(StatePaused)

	// A stale tick after pausing must not move anything.
	playThrough(m, p, 50)

	snap := m.Snapshot()
	if snap.MaxReachedTime != 2 {
		t.Errorf("MaxReachedTime = %v, want 2 while paused", snap.MaxReachedTime)
	}
	if snap.FastForwarded {
		t.Error("paused position change should not latch the fast-forward flag")
	}
}

func TestResumeAfterPause(t *testing.T) {
	p := &scriptedPlayer{dur: 60}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2)
	m.HandleStateChange(StatePaused)
	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 3)

	if snap := m.Snapshot(); snap.MaxReachedTime != 3 {
		t.Errorf("MaxReachedTime = %v, want 3 after resume", snap.MaxReachedTime)
	}
}

func TestNearEndToleranceEarnsCredit(t *testing.T) {
	p := &scriptedPlayer{dur: 100}
	m := NewMonitor(p, WithSampleInterval(time.Hour), WithSeekThreshold(1.5))

	m.HandleStateChange(StatePlaying)
	positions := make([]float64, 0, 100)
	for i := 0; i <= 99; i++ {
		positions = append(positions, float64(i))
	}
	// Reaches 99 of 100 seconds; within the near-end tolerance.
	playThrough(m, p, positions...)
	m.HandleStateChange(StateEnded)

	if snap := m.Snapshot(); !snap.WatchComplete {
		t.Error("reaching duration minus the threshold should earn credit")
	}
}

func TestEndingShortOfNearEndDeniesCredit(t *testing.T) {
	p := &scriptedPlayer{dur: 100}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2)
	m.HandleStateChange(StateEnded)

	snap := m.Snapshot()
	if snap.WatchComplete {
		t.Error("ending far from the end must not earn credit")
	}
	if snap.Progress != 100 {
		t.Errorf("Progress = %v, want 100 at Ended", snap.Progress)
	}
}

func TestVeryShortVideoRequiresFullDuration(t *testing.T) {
	p := &scriptedPlayer{dur: 0.8}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0.5)
	m.HandleStateChange(StateEnded)

	if snap := m.Snapshot(); snap.WatchComplete {
		t.Error("short video must be watched to its full duration")
	}

	m.HandleStateChange(StateCued)
	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0.4, 0.8)
	m.HandleStateChange(StateEnded)

	if snap := m.Snapshot(); !snap.WatchComplete {
		t.Error("reaching the full duration of a short video should earn credit")
	}
}

func TestNotReadyPlayerSkipsSample(t *testing.T) {
	p := &scriptedPlayer{dur: 0}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	p.t = 5
	m.sample()

	snap := m.Snapshot()
	if snap.MaxReachedTime != 0 || snap.Progress != 0 {
		t.Errorf("sample against a not-ready player moved state: %+v", snap)
	}
}

func TestProgressTracksPlayhead(t *testing.T) {
	p := &scriptedPlayer{dur: 200}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 50)

	if snap := m.Snapshot(); snap.Progress != 25 {
		t.Errorf("Progress = %v, want 25", snap.Progress)
	}
}

func TestStopHaltsSamplerMidPlayback(t *testing.T) {
	p := &scriptedPlayer{dur: 60}
	m := newTestMonitor(p)

	m.HandleStateChange(StatePlaying)
	playThrough(m, p, 0, 1, 2)

	m.mu.Lock()
	running := m.stopSampler != nil
	m.mu.Unlock()
	if !running {
		t.Fatal("sampler should be running while playing")
	}

	m.Stop()

	m.mu.Lock()
	running = m.stopSampler != nil
	m.mu.Unlock()
	if running {
		t.Error("Stop should halt the sampler")
	}

	// Recorded values survive the teardown.
	snap := m.Snapshot()
	if snap.MaxReachedTime != 2 {
		t.Errorf("MaxReachedTime = %v, want 2", snap.MaxReachedTime)
	}
	if snap.State != StatePlaying {
		t.Errorf("State = %v, want %v", snap.State, StatePlaying)
	}

	// A second Stop is a no-op.
	m.Stop()
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateCued, "cued"},
		{StatePlaying, "playing"},
		{StatePaused, "paused"},
		{StateBuffering, "buffering"},
		{StateEnded, "ended"},
		{State(99), "unknown"},
	}

	for _, tc := range tests {
		if got := tc.state.String(); got != tc.want {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.want)
		}
	}
}

// Package registry owns the authoritative videoID → watch-party map. It is
// the only place party state is mutated; the protocol layer calls through
// the domain.PartyRegistry operations and never touches the map directly.
package registry

import (
	"sync"
	"time"

	"github.com/roadpeak/foolu/internal/domain"
)

type party struct {
	participants map[string]domain.Participant // connID -> participant
	messages     []domain.ChatMessage
	lastAccess   time.Time
}

type Registry struct {
	parties         map[string]*party // videoID -> party
	historyCapacity uint
	idleExpiry      time.Duration
	mu              sync.RWMutex
}

type Option func(*Registry)

// WithHistoryCapacity bounds each party's chat log; oldest messages are
// dropped first. Zero keeps the default.
func WithHistoryCapacity(capacity uint) Option {
	return func(r *Registry) {
		if capacity > 0 {
			r.historyCapacity = capacity
		}
	}
}

// WithIdleExpiry enables eviction of parties untouched for the given
// duration. Zero means parties live for the life of the process.
func WithIdleExpiry(expiry time.Duration) Option {
	return func(r *Registry) {
		r.idleExpiry = expiry
	}
}

func New(opts ...Option) *Registry {
	r := &Registry{
		parties:         make(map[string]*party),
		historyCapacity: 500,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ensure returns the party for videoID, creating it if needed. Callers must
// hold the write lock.
func (r *Registry) ensure(videoID string) *party {
	p, ok := r.parties[videoID]
	if !ok {
		p = &party{
			participants: make(map[string]domain.Participant),
			messages:     make([]domain.ChatMessage, 0, 64),
		}
		r.parties[videoID] = p
	}
	p.lastAccess = time.Now()
	return p
}

func (r *Registry) EnsureParty(videoID string) {
	if videoID == "" {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.ensure(videoID)
}

func (r *Registry) AddParticipant(videoID, connID, name string) bool {
	if videoID == "" || connID == "" {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.ensure(videoID)
	if _, exists := p.participants[connID]; exists {
		return false
	}

	p.participants[connID] = domain.Participant{ConnID: connID, Name: name}
	return true
}

func (r *Registry) RemoveParticipant(videoID, connID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parties[videoID]
	if !ok {
		return false
	}

	if _, exists := p.participants[connID]; !exists {
		return false
	}

	delete(p.participants, connID)
	p.lastAccess = time.Now()
	return true
}

func (r *Registry) AppendMessage(videoID string, msg domain.ChatMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.parties[videoID]
	if !ok {
		// Late or malformed event for an unknown party: drop it.
		return
	}

	p.messages = append(p.messages, msg)
	if uint(len(p.messages)) > r.historyCapacity {
		excess := uint(len(p.messages)) - r.historyCapacity
		p.messages = p.messages[excess:] // drop oldest
	}
	p.lastAccess = time.Now()
}

func (r *Registry) HasParty(videoID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.parties[videoID]
	return ok
}

func (r *Registry) ParticipantCount(videoID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parties[videoID]
	if !ok {
		return 0
	}
	return len(p.participants)
}

func (r *Registry) Messages(videoID string) []domain.ChatMessage {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parties[videoID]
	if !ok || len(p.messages) == 0 {
		return []domain.ChatMessage{}
	}

	// Copy so callers can't mutate the log
	cpy := make([]domain.ChatMessage, len(p.messages))
	copy(cpy, p.messages)
	return cpy
}

func (r *Registry) IsActive(videoID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.parties[videoID]
	return ok && len(p.participants) > 0
}

// EvictIdle removes empty parties untouched for longer than the configured
// idle expiry and returns how many were dropped. A no-op when eviction is
// disabled. Parties that still have participants are never evicted.
func (r *Registry) EvictIdle() int {
	if r.idleExpiry == 0 {
		return 0
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := time.Now().Add(-r.idleExpiry)
	evicted := 0
	for id, p := range r.parties {
		if len(p.participants) == 0 && p.lastAccess.Before(cutoff) {
			delete(r.parties, id)
			evicted++
		}
	}
	return evicted
}

var _ domain.PartyRegistry = (*Registry)(nil)

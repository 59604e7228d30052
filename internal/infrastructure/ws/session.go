package ws

import (
	"strings"

	"github.com/roadpeak/foolu/internal/domain"
	"github.com/roadpeak/foolu/internal/infrastructure/logging"
	"github.com/roadpeak/foolu/internal/infrastructure/metrics"
	"github.com/roadpeak/foolu/internal/infrastructure/profanity"
	"github.com/roadpeak/foolu/internal/infrastructure/validate"
)

var usernameValidator = validate.Field("username",
	validate.Required(),
	validate.MaxLength(32),
)

// sender is the outbound half of a connection as the session sees it.
// *Client implements it; tests substitute recorders.
type sender interface {
	ConnID() string
	TrySend(Envelope) bool
	CloseSend()
}

// InboundFrame pairs a decoded action with the connection it arrived on.
type InboundFrame struct {
	From  sender
	Frame ClientFrame
}

// connState caches the last-known party key and display name per
// connection, used for disconnect cleanup. Mutated only on the Run
// goroutine.
type connState struct {
	peer     sender
	videoID  string
	username string
}

// Session is the watch-party protocol loop. Every inbound event (register,
// unregister, client action) is processed to completion on the single Run
// goroutine, so registry mutations and their broadcasts never interleave.
type Session struct {
	registry domain.PartyRegistry
	logger   logging.Logger
	metrics  *metrics.Metrics
	filter   *profanity.ProfanityFilter

	register   chan sender
	unregister chan sender
	frames     chan InboundFrame
	done       chan struct{}

	// Owned by the Run goroutine.
	conns   map[string]*connState        // connID -> state
	members map[string]map[string]sender // videoID -> connID -> peer
}

func NewSession(reg domain.PartyRegistry, logger logging.Logger, m *metrics.Metrics) *Session {
	return &Session{
		registry:   reg,
		logger:     logger,
		metrics:    m,
		filter:     profanity.NewProfanityFilter(),
		register:   make(chan sender),
		unregister: make(chan sender),
		frames:     make(chan InboundFrame, 256),
		done:       make(chan struct{}),
		conns:      make(map[string]*connState),
		members:    make(map[string]map[string]sender),
	}
}

func (s *Session) Register() chan<- sender { return s.register }

func (s *Session) Unregister() chan<- sender { return s.unregister }

func (s *Session) Frames() chan<- InboundFrame { return s.frames }

// Run processes events until Stop is called. Call it in a goroutine.
func (s *Session) Run() {
	for {
		select {
		case p := <-s.register:
			s.handleRegister(p)
		case p := <-s.unregister:
			s.handleUnregister(p)
		case in := <-s.frames:
			s.dispatch(in)
		case <-s.done:
			return
		}
	}
}

func (s *Session) Stop() {
	close(s.done)
}

func (s *Session) handleRegister(p sender) {
	if _, exists := s.conns[p.ConnID()]; exists {
		return
	}
	s.conns[p.ConnID()] = &connState{peer: p}
	s.metrics.ConnectedClients.Inc()
}

func (s *Session) handleUnregister(p sender) {
	st, ok := s.conns[p.ConnID()]
	if !ok {
		return
	}
	delete(s.conns, p.ConnID())
	s.metrics.ConnectedClients.Dec()

	s.handleDisconnect(st)
	st.peer.CloseSend()
}

func (s *Session) dispatch(in InboundFrame) {
	st, ok := s.conns[in.From.ConnID()]
	if !ok {
		// Frame from a connection that already unregistered: late event,
		// drop it.
		s.drop("unknown_connection")
		return
	}

	switch in.Frame.Action {
	case ActionStartParty:
		s.handleStart(st, in.Frame)
	case ActionJoinParty:
		s.handleJoin(st, in.Frame)
	case ActionSendMessage:
		s.handleSend(st, in.Frame)
	case ActionLeaveParty:
		s.handleLeave(st, in.Frame)
	default:
		s.drop("unknown_action")
	}
}

// admit runs the shared start/join bookkeeping: depart any previous party,
// cache the connection's last-known party and name, make sure the party
// exists, and track the membership. Reports whether the membership actually
// changed (false for a duplicate join from the same connection).
func (s *Session) admit(st *connState, f ClientFrame) bool {
	if st.videoID != "" && st.videoID != f.VideoID {
		// Switching parties is an implicit leave of the previous one. The
		// old subscription must go too, or later broadcasts to that party
		// would still address this connection.
		s.departParty(st, st.videoID)
	}

	st.videoID = f.VideoID
	st.username = f.Username

	s.registry.EnsureParty(f.VideoID)
	added := s.registry.AddParticipant(f.VideoID, st.peer.ConnID(), f.Username)
	s.subscribe(f.VideoID, st.peer)
	return added
}

func (s *Session) handleStart(st *connState, f ClientFrame) {
	if f.VideoID == "" || usernameValidator(f.Username) != nil {
		s.drop("missing_field")
		return
	}
	s.metrics.ActionsTotal.WithLabelValues(ActionStartParty).Inc()

	added := s.admit(st, f)

	if added {
		msg := domain.NewSystemMessage(f.Username + " started the watch party")
		s.registry.AppendMessage(f.VideoID, msg)
		s.broadcastAll(f.VideoID, NewReceiveMessage(msg))
	}
	s.broadcastAll(f.VideoID, NewParticipantCount(s.registry.ParticipantCount(f.VideoID)))

	s.logger.Info(logging.WatchParty, logging.Join, "watch party started", map[logging.ExtraKey]any{
		logging.VideoID:  f.VideoID,
		logging.Username: f.Username,
		logging.ConnID:   st.peer.ConnID(),
	})
}

func (s *Session) handleJoin(st *connState, f ClientFrame) {
	if f.VideoID == "" || usernameValidator(f.Username) != nil {
		s.drop("missing_field")
		return
	}
	s.metrics.ActionsTotal.WithLabelValues(ActionJoinParty).Inc()

	added := s.admit(st, f)

	// The joiner gets the backlog as it stood before they joined and never
	// their own "joined" narration; everyone already present gets the
	// narration. Duplicate joins from the same connection re-deliver the
	// backlog but narrate at most once.
	history := s.registry.Messages(f.VideoID)

	if added {
		msg := domain.NewSystemMessage(f.Username + " joined the chat")
		s.registry.AppendMessage(f.VideoID, msg)
		s.broadcastOthers(f.VideoID, st.peer.ConnID(), NewReceiveMessage(msg))
	}

	s.sendTo(st.peer, NewInitialChatMessages(history))
	s.sendTo(st.peer, NewParticipantCount(s.registry.ParticipantCount(f.VideoID)))
	s.broadcastAll(f.VideoID, NewParticipantCount(s.registry.ParticipantCount(f.VideoID)))

	s.logger.Info(logging.WatchParty, logging.Join, "joined watch party", map[logging.ExtraKey]any{
		logging.VideoID:  f.VideoID,
		logging.Username: f.Username,
		logging.ConnID:   st.peer.ConnID(),
	})
}

func (s *Session) handleSend(st *connState, f ClientFrame) {
	body := strings.TrimSpace(f.Message)
	if f.VideoID == "" || f.Username == "" || body == "" {
		s.drop("missing_field")
		return
	}
	if !s.registry.HasParty(f.VideoID) {
		// A send must never create a party as a side effect.
		s.drop("unknown_party")
		return
	}
	if s.filter.ContainsProfanity(body) {
		s.drop("profanity")
		return
	}
	s.metrics.ActionsTotal.WithLabelValues(ActionSendMessage).Inc()

	msg, err := domain.NewUserMessage(f.Username, body)
	if err != nil {
		s.drop("invalid_message")
		return
	}

	s.registry.AppendMessage(f.VideoID, msg)
	s.broadcastAll(f.VideoID, NewReceiveMessage(msg))
}

func (s *Session) handleLeave(st *connState, f ClientFrame) {
	if f.VideoID == "" || f.Username == "" {
		s.drop("missing_field")
		return
	}
	if !s.registry.HasParty(f.VideoID) {
		s.drop("unknown_party")
		return
	}
	s.metrics.ActionsTotal.WithLabelValues(ActionLeaveParty).Inc()

	s.registry.RemoveParticipant(f.VideoID, st.peer.ConnID())
	s.unsubscribe(f.VideoID, st.peer.ConnID())
	if st.videoID == f.VideoID {
		st.videoID = ""
	}

	msg := domain.NewSystemMessage(f.Username + " left the chat")
	s.registry.AppendMessage(f.VideoID, msg)
	s.broadcastAll(f.VideoID, NewReceiveMessage(msg))
	s.broadcastAll(f.VideoID, NewParticipantCount(s.registry.ParticipantCount(f.VideoID)))

	s.logger.Info(logging.WatchParty, logging.Leave, "left watch party", map[logging.ExtraKey]any{
		logging.VideoID:  f.VideoID,
		logging.Username: f.Username,
		logging.ConnID:   st.peer.ConnID(),
	})
}

// handleDisconnect uses the connection's cached last-known party. It
// broadcasts only when the removal actually changed membership, so a
// connection that already left explicitly does not produce a second "left"
// notification.
func (s *Session) handleDisconnect(st *connState) {
	if st.videoID == "" {
		return
	}

	if !s.departParty(st, st.videoID) {
		return
	}

	s.logger.Info(logging.WatchParty, logging.Leave, "removed on disconnect", map[logging.ExtraKey]any{
		logging.VideoID:  st.videoID,
		logging.Username: st.username,
		logging.ConnID:   st.peer.ConnID(),
	})
}

// departParty removes the connection from a party's registry entry and its
// broadcast subscription, narrating the departure only when the removal
// actually changed membership. Shared by disconnects and party switches.
func (s *Session) departParty(st *connState, videoID string) bool {
	removed := s.registry.RemoveParticipant(videoID, st.peer.ConnID())
	s.unsubscribe(videoID, st.peer.ConnID())
	if !removed {
		return false
	}

	msg := domain.NewSystemMessage(st.username + " left the chat")
	s.registry.AppendMessage(videoID, msg)
	s.broadcastAll(videoID, NewReceiveMessage(msg))
	s.broadcastAll(videoID, NewParticipantCount(s.registry.ParticipantCount(videoID)))
	return true
}

func (s *Session) subscribe(videoID string, p sender) {
	room, ok := s.members[videoID]
	if !ok {
		room = make(map[string]sender)
		s.members[videoID] = room
	}
	room[p.ConnID()] = p
}

func (s *Session) unsubscribe(videoID, connID string) {
	room, ok := s.members[videoID]
	if !ok {
		return
	}
	delete(room, connID)
	if len(room) == 0 {
		delete(s.members, videoID)
	}
}

func (s *Session) broadcastAll(videoID string, env Envelope) {
	for _, p := range s.members[videoID] {
		s.sendTo(p, env)
	}
}

func (s *Session) broadcastOthers(videoID, exceptConnID string, env Envelope) {
	for connID, p := range s.members[videoID] {
		if connID == exceptConnID {
			continue
		}
		s.sendTo(p, env)
	}
}

func (s *Session) sendTo(p sender, env Envelope) {
	if !p.TrySend(env) {
		// Client is too slow – drop the event
		s.logger.Warn(logging.WatchParty, logging.Broadcast, "client buffer full, dropping event", map[logging.ExtraKey]any{
			logging.ConnID: p.ConnID(),
		})
		return
	}
	s.metrics.BroadcastsTotal.Inc()
}

func (s *Session) drop(reason string) {
	s.metrics.DroppedActionsTotal.WithLabelValues(reason).Inc()
}

package party

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/roadpeak/foolu/internal/domain"
	"github.com/roadpeak/foolu/internal/infrastructure/json"
	"github.com/roadpeak/foolu/internal/infrastructure/logging"
	"github.com/roadpeak/foolu/internal/infrastructure/validate"
	"github.com/roadpeak/foolu/internal/infrastructure/ws"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

var videoIDValidator = validate.Field("videoId",
	validate.Required(),
	validate.MaxLength(64),
	validate.VideoID(),
)

type Handler struct {
	registry domain.PartyRegistry
	session  *ws.Session
	logger   logging.Logger
	tracer   trace.Tracer
}

func NewHandler(
	registry domain.PartyRegistry,
	session *ws.Session,
	logger logging.Logger,
	tracer trace.Tracer,
) *Handler {
	return &Handler{
		registry: registry,
		session:  session,
		logger:   logger,
		tracer:   tracer,
	}
}

// ConnectHandler upgrades the request to a websocket and hands the
// connection to the party session loop. The party a connection belongs to is
// decided later by the frames it sends, so the route takes no parameters.
func (h *Handler) ConnectHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.WatchParty, logging.Join, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ClientIp:     r.RemoteAddr,
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	client := ws.NewClient(conn, uuid.NewString())

	h.session.Register() <- client

	go client.WritePump()
	go client.ReadPump(h.session)
}

// CheckWatchPartyHandler reports whether a party with at least one
// participant exists for the given video.
func (h *Handler) CheckWatchPartyHandler(w http.ResponseWriter, r *http.Request) {
	_, span := h.tracer.Start(r.Context(), "party.CheckWatchParty")
	defer span.End()

	videoID := r.URL.Query().Get("videoId")
	if videoID == "" {
		json.WriteValidationError(w, errors.New("videoId query parameter is required"))
		return
	}
	if err := videoIDValidator(videoID); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	span.SetAttributes(attribute.String("video.id", videoID))

	json.Write(w, http.StatusOK, checkWatchPartyResponse{
		IsActive: h.registry.IsActive(videoID),
	})
}

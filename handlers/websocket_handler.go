package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/Dosada05/sports-center/realtime"
	"github.com/Dosada05/sports-center/services"
)

// WebSocketHandler subscribes clients to live availability and enrollment
// updates. The room must name an existing facility or tournament.
type WebSocketHandler struct {
	hub               *realtime.Hub
	facilityService   services.FacilityService
	tournamentService services.TournamentService
	upgrader          websocket.Upgrader
	logger            *slog.Logger
}

func NewWebSocketHandler(
	hub *realtime.Hub,
	facilityService services.FacilityService,
	tournamentService services.TournamentService,
	allowedOrigins []string,
	logger *slog.Logger,
) *WebSocketHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebSocketHandler{
		hub:               hub,
		facilityService:   facilityService,
		tournamentService: tournamentService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// originChecker accepts requests without an Origin header (non-browser
// clients) and browser requests from the configured origins.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set["*"] || set[origin]
	}
}

func (h *WebSocketHandler) ServeFacility(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "facilityID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.facilityService.Get(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, realtime.FacilityRoom(id))
}

func (h *WebSocketHandler) ServeTournament(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if _, err := h.tournamentService.Get(r.Context(), nil, id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.serve(w, r, realtime.TournamentRoom(id))
}

func (h *WebSocketHandler) serve(w http.ResponseWriter, r *http.Request, room string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.WarnContext(r.Context(), "websocket upgrade failed", slog.String("room", room), slog.Any("error", err))
		return
	}
	h.logger.DebugContext(r.Context(), "websocket connected", slog.String("room", room))

	client := realtime.NewClient(h.hub, conn, room)
	h.hub.Register <- client

	go client.WritePump()
	go client.ReadPump()
}

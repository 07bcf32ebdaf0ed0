package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	gorilla "github.com/gorilla/websocket"

	"github.com/steam-tracker/internal/domain"
	"github.com/steam-tracker/internal/service"
	"github.com/steam-tracker/internal/websocket"
)

// Pinger is a dependency checked by /ready
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler provides HTTP handlers for the tracker API
type Handler struct {
	tracker        *service.Tracker
	stats          *service.StatsService
	hub            *websocket.Hub
	upgrader       *gorilla.Upgrader
	allowedOrigins []string
	checks         map[string]Pinger
	logger         *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	tracker *service.Tracker,
	stats *service.StatsService,
	hub *websocket.Hub,
	allowedOrigins []string,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		tracker:        tracker,
		stats:          stats,
		hub:            hub,
		upgrader:       websocket.NewUpgrader(allowedOrigins),
		allowedOrigins: allowedOrigins,
		checks:         make(map[string]Pinger),
		logger:         logger,
	}
}

// AddReadinessCheck registers a dependency pinged by /ready
func (h *Handler) AddReadinessCheck(name string, p Pinger) {
	h.checks[name] = p
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	r.Get("/games/{handle}", h.GetGames)
	r.Get("/achievements/{handle}/{titleID}", h.GetAchievements)
	r.Get("/steamuser/{playerID}", h.GetSteamUser)
	r.Get("/guide/{titleName}", h.RedirectToGuide)
	r.Get("/guidelink/{titleName}", h.GetGuideLink)

	r.Route("/stats", func(r chi.Router) {
		r.Get("/trending", h.GetTrending)
		r.Post("/trending/reset", h.ResetTrending)
		r.Get("/lookups", h.GetRecentLookups)
		r.Get("/summary", h.GetLookupSummary)
	})

	r.Get("/ws", h.HandleWebSocket)
	r.Get("/ws/stats", h.GetWebSocketStats)

	return r
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeSuccess writes a successful JSON response
func (h *Handler) writeSuccess(w http.ResponseWriter, data interface{}) {
	h.writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
	})
}

// writeError writes an error JSON response
func (h *Handler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, APIResponse{
		Success: false,
		Error:   err.Error(),
	})
}

// writeServiceError maps a service error onto a status code. Unexpected
// errors are logged and hidden behind domain.ErrInternalError.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, public := classify(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(op+" failed",
			"error", err,
			"request_id", middleware.GetReqID(r.Context()),
		)
	} else {
		h.logger.Info(op+" rejected", "status", status, "error", err)
	}
	h.writeError(w, status, public)
}

func classify(err error) (int, error) {
	var upstream *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return http.StatusInternalServerError, domain.ErrMissingAPIKey
	case errors.Is(err, domain.ErrSearchNotConfigured):
		return http.StatusInternalServerError, domain.ErrSearchNotConfigured
	case errors.Is(err, domain.ErrResolution):
		return http.StatusNotFound, domain.ErrResolution
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusNotFound, domain.ErrPlayerNotFound
	case errors.Is(err, domain.ErrGuideNotFound):
		return http.StatusNotFound, domain.ErrGuideNotFound
	case errors.Is(err, domain.ErrInvalidRequest):
		return http.StatusBadRequest, domain.ErrInvalidRequest
	case errors.Is(err, domain.ErrFeatureDisabled):
		return http.StatusServiceUnavailable, domain.ErrFeatureDisabled
	case errors.As(err, &upstream):
		return http.StatusBadGateway, domain.ErrUpstream
	default:
		return http.StatusInternalServerError, domain.ErrInternalError
	}
}

func queryLimit(r *http.Request) int {
	if s := r.URL.Query().Get("limit"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 0
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck pings every registered dependency
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := map[string]string{"status": "ready"}
	ready := true
	for _, name := range names {
		if err := h.checks[name].Ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", "dependency", name, "error", err)
			status[name] = "unavailable"
			ready = false
			continue
		}
		status[name] = "ok"
	}

	if !ready {
		status["status"] = "not_ready"
		h.writeJSON(w, http.StatusServiceUnavailable, APIResponse{Success: false, Data: status, Error: "dependencies unavailable"})
		return
	}
	h.writeSuccess(w, status)
}

// GetGames lists the player's owned games, most played first. Any failure
// yields an empty list.
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")

	titles, err := h.tracker.Library(r.Context(), handle)
	if err != nil {
		h.logger.Info("library lookup failed", "handle", handle, "error", err)
		titles = []domain.OwnedTitle{}
	}

	h.writeJSON(w, http.StatusOK, titles)
}

// GetAchievements returns the merged achievement view for one game
func (h *Handler) GetAchievements(w http.ResponseWriter, r *http.Request) {
	handle := chi.URLParam(r, "handle")
	titleID := chi.URLParam(r, "titleID")

	result, err := h.tracker.Achievements(r.Context(), handle, titleID)
	if err != nil {
		h.writeServiceError(w, r, "achievements lookup", err)
		return
	}

	h.writeJSON(w, http.StatusOK, result)
}

// GetSteamUser returns the public profile of a player
func (h *Handler) GetSteamUser(w http.ResponseWriter, r *http.Request) {
	playerID := chi.URLParam(r, "playerID")

	summary, err := h.tracker.Profile(r.Context(), playerID)
	if err != nil {
		h.writeServiceError(w, r, "profile lookup", err)
		return
	}

	h.writeJSON(w, http.StatusOK, summary)
}

// RedirectToGuide redirects to a strategy guide for the game
func (h *Handler) RedirectToGuide(w http.ResponseWriter, r *http.Request) {
	link, err := h.tracker.Guide(r.Context(), chi.URLParam(r, "titleName"))
	if err != nil {
		h.writeServiceError(w, r, "guide lookup", err)
		return
	}

	http.Redirect(w, r, link, http.StatusFound)
}

// GetGuideLink returns the strategy guide URL for the game
func (h *Handler) GetGuideLink(w http.ResponseWriter, r *http.Request) {
	link, err := h.tracker.Guide(r.Context(), chi.URLParam(r, "titleName"))
	if err != nil {
		h.writeServiceError(w, r, "guide lookup", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"url": link})
}

// GetTrending returns the most looked-up games
func (h *Handler) GetTrending(w http.ResponseWriter, r *http.Request) {
	titles, err := h.stats.TopTitles(r.Context(), queryLimit(r))
	if err != nil {
		h.writeServiceError(w, r, "trending lookup", err)
		return
	}

	h.writeSuccess(w, titles)
}

// ResetTrending clears the trending ranking
func (h *Handler) ResetTrending(w http.ResponseWriter, r *http.Request) {
	if err := h.stats.ResetTrending(r.Context()); err != nil {
		h.writeServiceError(w, r, "trending reset", err)
		return
	}

	h.writeSuccess(w, map[string]string{"status": "reset"})
}

// GetRecentLookups returns the newest audit log rows
func (h *Handler) GetRecentLookups(w http.ResponseWriter, r *http.Request) {
	events, err := h.stats.RecentLookups(r.Context(), queryLimit(r))
	if err != nil {
		h.writeServiceError(w, r, "recent lookups", err)
		return
	}

	h.writeSuccess(w, events)
}

// GetLookupSummary returns lookup counts per kind
func (h *Handler) GetLookupSummary(w http.ResponseWriter, r *http.Request) {
	stats, err := h.stats.LookupStats(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "lookup summary", err)
		return
	}

	h.writeSuccess(w, stats)
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.upgrader, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

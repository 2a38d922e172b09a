package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pacerank/internal/domain"
	"github.com/pacerank/internal/service"
	"github.com/pacerank/internal/websocket"
)

// Handler provides HTTP handlers for the competition API
type Handler struct {
	service *service.LeaderboardService
	hub     *websocket.Hub
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service *service.LeaderboardService, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
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

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint
	r.Get("/ws", h.HandleWebSocket)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Workout ingestion
		r.Post("/workouts", h.IngestWorkout)

		// Competition operations
		r.Route("/competitions", func(r chi.Router) {
			r.Post("/", h.CreateCompetition)
			r.Get("/", h.ListCompetitions)

			r.Route("/{competitionID}", func(r chi.Router) {
				r.Get("/", h.GetCompetition)
				r.Delete("/", h.DeleteCompetition)

				// Standings
				r.Get("/leaderboard", h.GetLeaderboard)
				r.Get("/teams", h.GetTeamLeaderboard)
				r.Get("/participants/{participantID}", h.GetParticipantEntry)

				// Roster
				r.Post("/roster", h.RegisterParticipant)
				r.Get("/roster", h.GetRoster)
			})
		})

		// WebSocket info endpoint
		r.Get("/ws/stats", h.GetWebSocketStats)
	})

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
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

// standingsParams extracts the optional mode/target/limit query parameters
// shared by the standings endpoints. An unknown mode is a client error.
func standingsParams(r *http.Request) (domain.ScoringMode, float64, int, error) {
	var mode domain.ScoringMode
	if modeStr := r.URL.Query().Get("mode"); modeStr != "" {
		parsed, err := domain.ParseScoringMode(modeStr)
		if err != nil {
			return "", 0, 0, err
		}
		mode = parsed
	}

	var targetKm float64
	if targetStr := r.URL.Query().Get("target"); targetStr != "" {
		if t, err := strconv.ParseFloat(targetStr, 64); err == nil && t > 0 {
			targetKm = t
		}
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	return mode, targetKm, limit, nil
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// GetWebSocketStats returns WebSocket connection statistics
func (h *Handler) GetWebSocketStats(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]interface{}{
		"total_connections": h.hub.GetTotalConnections(),
	})
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeSuccess(w, map[string]string{"status": "ready"})
}

// IngestWorkout handles workout event submission
func (h *Handler) IngestWorkout(w http.ResponseWriter, r *http.Request) {
	var event domain.WorkoutEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if event.ParticipantID == "" || event.CompetitionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.IngestWorkout(r.Context(), event); err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		if errors.Is(err, domain.ErrInvalidRequest) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("failed to ingest workout", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]string{"status": "accepted"})
}

// CreateCompetition handles competition creation
func (h *Handler) CreateCompetition(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCompetitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	comp, err := h.service.CreateCompetition(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrCompetitionExists) {
			h.writeError(w, http.StatusConflict, err)
			return
		}
		if errors.Is(err, domain.ErrInvalidCompetition) || errors.Is(err, domain.ErrInvalidMode) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("failed to create competition", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeJSON(w, http.StatusCreated, APIResponse{
		Success: true,
		Data:    comp,
	})
}

// ListCompetitions returns all competitions
func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	comps, err := h.service.ListCompetitions(r.Context())
	if err != nil {
		h.logger.Error("failed to list competitions", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, comps)
}

// GetCompetition returns a competition by ID
func (h *Handler) GetCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")
	if competitionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	comp, err := h.service.GetCompetition(r.Context(), competitionID)
	if err != nil {
		if errors.Is(err, domain.ErrCompetitionNotFound) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get competition", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, comp)
}

// DeleteCompetition deletes a competition
func (h *Handler) DeleteCompetition(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")
	if competitionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.DeleteCompetition(r.Context(), competitionID); err != nil {
		if errors.Is(err, domain.ErrCompetitionNotFound) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to delete competition", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]string{"status": "deleted"})
}

// GetLeaderboard returns ranked standings for a competition
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")
	if competitionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	mode, targetKm, limit, err := standingsParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	entries, err := h.service.GetLeaderboard(r.Context(), competitionID, mode, targetKm, limit)
	if err != nil {
		if errors.Is(err, domain.ErrCompetitionNotFound) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get leaderboard", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, entries)
}

// GetTeamLeaderboard returns ranked team standings for a competition
func (h *Handler) GetTeamLeaderboard(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")
	if competitionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	mode, targetKm, _, err := standingsParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	entries, err := h.service.GetTeamLeaderboard(r.Context(), competitionID, mode, targetKm)
	if err != nil {
		if errors.Is(err, domain.ErrCompetitionNotFound) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get team leaderboard", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, entries)
}

// GetParticipantEntry returns a single participant's standing
func (h *Handler) GetParticipantEntry(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")
	participantID := chi.URLParam(r, "participantID")
	if competitionID == "" || participantID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	mode, targetKm, _, err := standingsParams(r)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	entry, err := h.service.GetParticipantEntry(r.Context(), competitionID, participantID, mode, targetKm)
	if err != nil {
		if domain.IsNotFoundError(err) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		h.logger.Error("failed to get participant entry", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, entry)
}

// rosterRequest is the body of a roster registration
type rosterRequest struct {
	ParticipantID string `json:"participant_id"`
}

// RegisterParticipant adds a participant to a competition's roster
func (h *Handler) RegisterParticipant(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")
	if competitionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	var req rosterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}
	if req.ParticipantID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	if err := h.service.RegisterParticipant(r.Context(), competitionID, req.ParticipantID); err != nil {
		if errors.Is(err, domain.ErrCompetitionNotFound) {
			h.writeError(w, http.StatusNotFound, err)
			return
		}
		if errors.Is(err, domain.ErrInvalidRequest) {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
		h.logger.Error("failed to register participant", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, map[string]string{"status": "registered"})
}

// GetRoster returns a competition's registered participants
func (h *Handler) GetRoster(w http.ResponseWriter, r *http.Request) {
	competitionID := chi.URLParam(r, "competitionID")
	if competitionID == "" {
		h.writeError(w, http.StatusBadRequest, domain.ErrInvalidRequest)
		return
	}

	roster, err := h.service.GetRoster(r.Context(), competitionID)
	if err != nil {
		h.logger.Error("failed to get roster", "error", err)
		h.writeError(w, http.StatusInternalServerError, domain.ErrInternalError)
		return
	}

	h.writeSuccess(w, roster)
}

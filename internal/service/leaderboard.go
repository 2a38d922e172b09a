package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pacerank/internal/config"
	"github.com/pacerank/internal/domain"
	"github.com/pacerank/internal/postgres"
	"github.com/pacerank/internal/redis"
	"github.com/pacerank/internal/scoring"
	"github.com/pacerank/internal/websocket"
)

// LeaderboardService provides business logic for competition scoring
type LeaderboardService struct {
	cache  *redis.Cache
	store  *postgres.Repository
	config *config.ScoringConfig
	logger *slog.Logger
	hub    *websocket.Hub
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(
	cache *redis.Cache,
	store *postgres.Repository,
	cfg *config.ScoringConfig,
	logger *slog.Logger,
) *LeaderboardService {
	return &LeaderboardService{
		cache:  cache,
		store:  store,
		config: cfg,
		logger: logger,
	}
}

// SetHub attaches the WebSocket hub used for broadcasting recomputed
// leaderboards. Broadcasting stays disabled until a hub is set.
func (s *LeaderboardService) SetHub(hub *websocket.Hub) {
	s.hub = hub
}

// IngestWorkout validates and stores one workout event, then invalidates
// the competition's cached leaderboards and broadcasts fresh standings
func (s *LeaderboardService) IngestWorkout(ctx context.Context, event domain.WorkoutEvent) error {
	if event.ParticipantID == "" || event.CompetitionID == "" {
		return domain.ErrInvalidRequest
	}

	exists, err := s.store.CompetitionExists(ctx, event.CompetitionID)
	if err != nil {
		return fmt.Errorf("checking competition existence: %w", err)
	}
	if !exists {
		return domain.ErrCompetitionNotFound
	}

	rec := event.ToRecord()
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	if err := s.store.InsertRecord(ctx, event.CompetitionID, rec); err != nil {
		return fmt.Errorf("storing record: %w", err)
	}

	if err := s.cache.Invalidate(ctx, event.CompetitionID); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", "competition_id", event.CompetitionID, "error", err)
	}

	s.broadcast(ctx, event.CompetitionID)
	return nil
}

// IngestWorkoutBatch stores multiple workout events, invalidating and
// broadcasting once per affected competition
func (s *LeaderboardService) IngestWorkoutBatch(ctx context.Context, events []domain.WorkoutEvent) error {
	byCompetition := make(map[string][]domain.ActivityRecord)
	for _, event := range events {
		if event.ParticipantID == "" || event.CompetitionID == "" {
			s.logger.Warn("skipping invalid workout event",
				"participant_id", event.ParticipantID,
				"competition_id", event.CompetitionID,
			)
			continue
		}
		rec := event.ToRecord()
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		byCompetition[event.CompetitionID] = append(byCompetition[event.CompetitionID], rec)
	}

	for competitionID, recs := range byCompetition {
		exists, err := s.store.CompetitionExists(ctx, competitionID)
		if err != nil {
			s.logger.Error("failed to check competition", "competition_id", competitionID, "error", err)
			continue
		}
		if !exists {
			s.logger.Warn("dropping records for unknown competition", "competition_id", competitionID, "count", len(recs))
			continue
		}

		if err := s.store.BatchInsertRecords(ctx, competitionID, recs); err != nil {
			s.logger.Error("failed to store record batch", "competition_id", competitionID, "error", err)
			// Continue processing other competitions
			continue
		}

		if err := s.cache.Invalidate(ctx, competitionID); err != nil {
			s.logger.Warn("failed to invalidate leaderboard cache", "competition_id", competitionID, "error", err)
		}
		s.broadcast(ctx, competitionID)
	}
	return nil
}

// GetLeaderboard returns ranked standings for a competition. mode and
// targetKm override the competition's configured values when set; limit
// truncates the output after ranking
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, competitionID string, mode domain.ScoringMode, targetKm float64, limit int) ([]domain.LeaderboardEntry, error) {
	comp, err := s.store.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	mode, targetKm = s.resolveParams(comp, mode, targetKm)

	entries, hit, err := s.cache.GetLeaderboard(ctx, competitionID, mode, targetKm)
	if err != nil {
		s.logger.Warn("leaderboard cache read failed", "competition_id", competitionID, "error", err)
	}
	if !hit {
		entries, err = s.computeLeaderboard(ctx, competitionID, mode, targetKm)
		if err != nil {
			return nil, err
		}
		if err := s.cache.SetLeaderboard(ctx, competitionID, mode, targetKm, entries); err != nil {
			s.logger.Warn("leaderboard cache write failed", "competition_id", competitionID, "error", err)
		}
	}

	return truncate(entries, s.clampLimit(limit)), nil
}

// GetTeamLeaderboard returns ranked team standings for a competition
func (s *LeaderboardService) GetTeamLeaderboard(ctx context.Context, competitionID string, mode domain.ScoringMode, targetKm float64) ([]domain.TeamLeaderboardEntry, error) {
	comp, err := s.store.GetCompetition(ctx, competitionID)
	if err != nil {
		return nil, err
	}
	mode, targetKm = s.resolveParams(comp, mode, targetKm)

	entries, hit, err := s.cache.GetTeamLeaderboard(ctx, competitionID, mode, targetKm)
	if err != nil {
		s.logger.Warn("team leaderboard cache read failed", "competition_id", competitionID, "error", err)
	}
	if hit {
		return entries, nil
	}

	records, err := s.store.GetTeamRecords(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("loading team records: %w", err)
	}
	entries = scoring.BuildTeamLeaderboard(records, mode, targetKm)

	if err := s.cache.SetTeamLeaderboard(ctx, competitionID, mode, targetKm, entries); err != nil {
		s.logger.Warn("team leaderboard cache write failed", "competition_id", competitionID, "error", err)
	}
	return entries, nil
}

// GetParticipantEntry returns a single participant's row from the standings
func (s *LeaderboardService) GetParticipantEntry(ctx context.Context, competitionID, participantID string, mode domain.ScoringMode, targetKm float64) (*domain.LeaderboardEntry, error) {
	entries, err := s.GetLeaderboard(ctx, competitionID, mode, targetKm, 0)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].ParticipantID == participantID {
			return &entries[i], nil
		}
	}
	return nil, domain.ErrParticipantNotFound
}

// CreateCompetition creates a new competition
func (s *LeaderboardService) CreateCompetition(ctx context.Context, req domain.CreateCompetitionRequest) (*domain.Competition, error) {
	// Validate request
	if req.ID == "" || req.Name == "" {
		return nil, domain.ErrInvalidCompetition
	}
	if req.Mode != "" {
		if _, err := domain.ParseScoringMode(string(req.Mode)); err != nil {
			return nil, domain.ErrInvalidMode
		}
	}

	exists, err := s.store.CompetitionExists(ctx, req.ID)
	if err != nil {
		return nil, fmt.Errorf("checking competition existence: %w", err)
	}
	if exists {
		return nil, domain.ErrCompetitionExists
	}

	comp := req.ToCompetition()
	if err := s.store.CreateCompetition(ctx, comp); err != nil {
		return nil, fmt.Errorf("creating competition: %w", err)
	}
	return &comp, nil
}

// ListCompetitions returns all competitions
func (s *LeaderboardService) ListCompetitions(ctx context.Context) ([]domain.Competition, error) {
	return s.store.ListCompetitions(ctx)
}

// GetCompetition returns a competition by ID
func (s *LeaderboardService) GetCompetition(ctx context.Context, competitionID string) (*domain.Competition, error) {
	return s.store.GetCompetition(ctx, competitionID)
}

// DeleteCompetition deletes a competition and its cached state
func (s *LeaderboardService) DeleteCompetition(ctx context.Context, competitionID string) error {
	if err := s.cache.DeleteCompetition(ctx, competitionID); err != nil {
		s.logger.Warn("failed to delete cached competition state", "competition_id", competitionID, "error", err)
	}
	if err := s.store.DeleteCompetition(ctx, competitionID); err != nil {
		return err
	}
	return nil
}

// RegisterParticipant adds a participant to a competition's roster so the
// leaderboard stays total over everyone expected to compete
func (s *LeaderboardService) RegisterParticipant(ctx context.Context, competitionID, participantID string) error {
	if participantID == "" {
		return domain.ErrInvalidRequest
	}

	exists, err := s.store.CompetitionExists(ctx, competitionID)
	if err != nil {
		return fmt.Errorf("checking competition existence: %w", err)
	}
	if !exists {
		return domain.ErrCompetitionNotFound
	}

	if err := s.store.AddRosterMember(ctx, competitionID, participantID); err != nil {
		return err
	}
	if err := s.cache.AddRosterMember(ctx, competitionID, participantID); err != nil {
		s.logger.Warn("failed to mirror roster member to redis", "competition_id", competitionID, "error", err)
	}

	// A roster change alters backfill output, so cached standings are stale.
	if err := s.cache.Invalidate(ctx, competitionID); err != nil {
		s.logger.Warn("failed to invalidate leaderboard cache", "competition_id", competitionID, "error", err)
	}
	return nil
}

// GetRoster returns a competition's registered participants
func (s *LeaderboardService) GetRoster(ctx context.Context, competitionID string) ([]string, error) {
	return s.store.GetRoster(ctx, competitionID)
}

// RecomputeAndBroadcast recomputes a competition's standings under its
// configured mode, warms the cache, and pushes the result to subscribers.
// Used by the periodic recompute worker.
func (s *LeaderboardService) RecomputeAndBroadcast(ctx context.Context, competitionID string) error {
	comp, err := s.store.GetCompetition(ctx, competitionID)
	if err != nil {
		return err
	}

	entries, err := s.computeLeaderboard(ctx, competitionID, comp.Mode, comp.TargetDistanceKm)
	if err != nil {
		return err
	}
	if err := s.cache.SetLeaderboard(ctx, competitionID, comp.Mode, comp.TargetDistanceKm, entries); err != nil {
		s.logger.Warn("leaderboard cache write failed", "competition_id", competitionID, "error", err)
	}

	if s.hub != nil {
		s.hub.BroadcastLeaderboardUpdate(competitionID, string(comp.Mode), entries)
	}
	return nil
}

// computeLeaderboard runs the scoring engine against the stored record set
func (s *LeaderboardService) computeLeaderboard(ctx context.Context, competitionID string, mode domain.ScoringMode, targetKm float64) ([]domain.LeaderboardEntry, error) {
	records, err := s.store.GetRecordsByParticipant(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("loading records: %w", err)
	}
	roster, err := s.store.GetRoster(ctx, competitionID)
	if err != nil {
		return nil, fmt.Errorf("loading roster: %w", err)
	}

	entries, err := scoring.BuildLeaderboard(records, mode, targetKm, roster)
	if err != nil {
		return nil, fmt.Errorf("building leaderboard: %w", err)
	}
	return entries, nil
}

// broadcast pushes fresh standings for a competition to hub subscribers
func (s *LeaderboardService) broadcast(ctx context.Context, competitionID string) {
	if s.hub == nil {
		return
	}
	if err := s.RecomputeAndBroadcast(ctx, competitionID); err != nil {
		s.logger.Warn("failed to broadcast leaderboard", "competition_id", competitionID, "error", err)
	}
}

func (s *LeaderboardService) resolveParams(comp *domain.Competition, mode domain.ScoringMode, targetKm float64) (domain.ScoringMode, float64) {
	if mode == "" {
		mode = comp.Mode
	}
	if targetKm <= 0 {
		targetKm = comp.TargetDistanceKm
	}
	if targetKm <= 0 {
		targetKm = s.config.DefaultTargetKm
	}
	return mode, targetKm
}

func (s *LeaderboardService) clampLimit(limit int) int {
	if limit <= 0 {
		return 0 // no truncation
	}
	if limit > s.config.MaxLimit {
		return s.config.MaxLimit
	}
	return limit
}

func truncate(entries []domain.LeaderboardEntry, limit int) []domain.LeaderboardEntry {
	if limit > 0 && len(entries) > limit {
		return entries[:limit]
	}
	return entries
}

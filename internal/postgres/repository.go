package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pacerank/internal/config"
	"github.com/pacerank/internal/domain"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// Pool returns the underlying connection pool
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS competitions (
			id VARCHAR(64) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			mode VARCHAR(20) NOT NULL DEFAULT 'fastest_time',
			target_distance_km DOUBLE PRECISION NOT NULL DEFAULT 5,
			starts_at TIMESTAMP,
			ends_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS activity_records (
			id VARCHAR(64) PRIMARY KEY,
			competition_id VARCHAR(64) NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
			participant_id VARCHAR(64) NOT NULL,
			distance_meters DOUBLE PRECISION NOT NULL DEFAULT 0,
			duration_seconds INT NOT NULL DEFAULT 0,
			splits JSONB,
			team_id VARCHAR(64),
			recorded_at TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS competition_roster (
			competition_id VARCHAR(64) NOT NULL REFERENCES competitions(id) ON DELETE CASCADE,
			participant_id VARCHAR(64) NOT NULL,
			joined_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (competition_id, participant_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_records_competition ON activity_records(competition_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_participant ON activity_records(competition_id, participant_id)`,
		`CREATE INDEX IF NOT EXISTS idx_records_team ON activity_records(competition_id, team_id) WHERE team_id IS NOT NULL`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// CreateCompetition creates a new competition
func (r *Repository) CreateCompetition(ctx context.Context, comp domain.Competition) error {
	query := `
		INSERT INTO competitions (id, name, mode, target_distance_km, starts_at, ends_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	now := time.Now()
	_, err := r.pool.Exec(ctx, query,
		comp.ID,
		comp.Name,
		string(comp.Mode),
		comp.TargetDistanceKm,
		comp.StartsAt,
		comp.EndsAt,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("creating competition: %w", err)
	}
	return nil
}

// GetCompetition retrieves a competition by ID
func (r *Repository) GetCompetition(ctx context.Context, competitionID string) (*domain.Competition, error) {
	query := `
		SELECT id, name, mode, target_distance_km, starts_at, ends_at, created_at, updated_at
		FROM competitions
		WHERE id = $1
	`
	var comp domain.Competition
	err := r.pool.QueryRow(ctx, query, competitionID).Scan(
		&comp.ID,
		&comp.Name,
		&comp.Mode,
		&comp.TargetDistanceKm,
		&comp.StartsAt,
		&comp.EndsAt,
		&comp.CreatedAt,
		&comp.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrCompetitionNotFound
		}
		return nil, fmt.Errorf("getting competition: %w", err)
	}
	return &comp, nil
}

// ListCompetitions retrieves all competitions
func (r *Repository) ListCompetitions(ctx context.Context) ([]domain.Competition, error) {
	query := `
		SELECT id, name, mode, target_distance_km, starts_at, ends_at, created_at, updated_at
		FROM competitions
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing competitions: %w", err)
	}
	defer rows.Close()

	var comps []domain.Competition
	for rows.Next() {
		var comp domain.Competition
		err := rows.Scan(
			&comp.ID,
			&comp.Name,
			&comp.Mode,
			&comp.TargetDistanceKm,
			&comp.StartsAt,
			&comp.EndsAt,
			&comp.CreatedAt,
			&comp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning competition: %w", err)
		}
		comps = append(comps, comp)
	}
	return comps, nil
}

// DeleteCompetition removes a competition and all associated data
func (r *Repository) DeleteCompetition(ctx context.Context, competitionID string) error {
	query := `DELETE FROM competitions WHERE id = $1`
	result, err := r.pool.Exec(ctx, query, competitionID)
	if err != nil {
		return fmt.Errorf("deleting competition: %w", err)
	}
	if result.RowsAffected() == 0 {
		return domain.ErrCompetitionNotFound
	}
	return nil
}

// CompetitionExists checks if a competition exists
func (r *Repository) CompetitionExists(ctx context.Context, competitionID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM competitions WHERE id = $1)`
	var exists bool
	err := r.pool.QueryRow(ctx, query, competitionID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking competition existence: %w", err)
	}
	return exists, nil
}

// InsertRecord stores one activity record. The raw split annotations are
// kept as JSONB so scoring always re-validates them at read time.
func (r *Repository) InsertRecord(ctx context.Context, competitionID string, rec domain.ActivityRecord) error {
	splitsJSON, err := marshalSplits(rec.Splits)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO activity_records (id, competition_id, participant_id, distance_meters, duration_seconds, splits, team_id, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	_, err = r.pool.Exec(ctx, query,
		rec.ID,
		competitionID,
		rec.ParticipantID,
		rec.DistanceMeters,
		rec.DurationSeconds,
		splitsJSON,
		rec.TeamID,
		rec.RecordedAt,
		time.Now(),
	)
	if err != nil {
		return fmt.Errorf("inserting record: %w", err)
	}
	return nil
}

// BatchInsertRecords stores multiple activity records efficiently
func (r *Repository) BatchInsertRecords(ctx context.Context, competitionID string, recs []domain.ActivityRecord) error {
	if len(recs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO activity_records (id, competition_id, participant_id, distance_meters, duration_seconds, splits, team_id, recorded_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
		ON CONFLICT (id) DO NOTHING
	`
	now := time.Now()

	for _, rec := range recs {
		splitsJSON, err := marshalSplits(rec.Splits)
		if err != nil {
			return err
		}
		batch.Queue(query, rec.ID, competitionID, rec.ParticipantID, rec.DistanceMeters,
			rec.DurationSeconds, splitsJSON, rec.TeamID, rec.RecordedAt, now)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range recs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch inserting records: %w", err)
		}
	}
	return nil
}

// GetRecordsByParticipant loads a competition's records grouped by
// participant, the shape the scoring engine consumes.
func (r *Repository) GetRecordsByParticipant(ctx context.Context, competitionID string) (map[string][]domain.ActivityRecord, error) {
	query := `
		SELECT id, participant_id, distance_meters, duration_seconds, splits, COALESCE(team_id, ''), recorded_at
		FROM activity_records
		WHERE competition_id = $1
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("getting records: %w", err)
	}
	defer rows.Close()

	records := make(map[string][]domain.ActivityRecord)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records[rec.ParticipantID] = append(records[rec.ParticipantID], rec)
	}
	return records, nil
}

// GetTeamRecords loads a competition's team-tagged records as a flat list
// for team aggregation.
func (r *Repository) GetTeamRecords(ctx context.Context, competitionID string) ([]domain.ActivityRecord, error) {
	query := `
		SELECT id, participant_id, distance_meters, duration_seconds, splits, COALESCE(team_id, ''), recorded_at
		FROM activity_records
		WHERE competition_id = $1 AND team_id IS NOT NULL
		ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("getting team records: %w", err)
	}
	defer rows.Close()

	var records []domain.ActivityRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// AddRosterMember registers a participant on a competition's roster
func (r *Repository) AddRosterMember(ctx context.Context, competitionID, participantID string) error {
	query := `
		INSERT INTO competition_roster (competition_id, participant_id, joined_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (competition_id, participant_id) DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, competitionID, participantID, time.Now())
	if err != nil {
		return fmt.Errorf("adding roster member: %w", err)
	}
	return nil
}

// GetRoster returns all registered participants for a competition
func (r *Repository) GetRoster(ctx context.Context, competitionID string) ([]string, error) {
	query := `SELECT participant_id FROM competition_roster WHERE competition_id = $1 ORDER BY participant_id`
	rows, err := r.pool.Query(ctx, query, competitionID)
	if err != nil {
		return nil, fmt.Errorf("getting roster: %w", err)
	}
	defer rows.Close()

	var roster []string
	for rows.Next() {
		var participantID string
		if err := rows.Scan(&participantID); err != nil {
			return nil, fmt.Errorf("scanning roster member: %w", err)
		}
		roster = append(roster, participantID)
	}
	return roster, nil
}

// GetRecordCount returns the number of records in a competition
func (r *Repository) GetRecordCount(ctx context.Context, competitionID string) (int64, error) {
	query := `SELECT COUNT(*) FROM activity_records WHERE competition_id = $1`
	var count int64
	err := r.pool.QueryRow(ctx, query, competitionID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("getting record count: %w", err)
	}
	return count, nil
}

func marshalSplits(splits []domain.SplitAnnotation) ([]byte, error) {
	if len(splits) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(splits)
	if err != nil {
		return nil, fmt.Errorf("marshaling splits: %w", err)
	}
	return data, nil
}

func scanRecord(rows pgx.Rows) (domain.ActivityRecord, error) {
	var rec domain.ActivityRecord
	var splitsJSON []byte
	var recordedAt *time.Time
	err := rows.Scan(
		&rec.ID,
		&rec.ParticipantID,
		&rec.DistanceMeters,
		&rec.DurationSeconds,
		&splitsJSON,
		&rec.TeamID,
		&recordedAt,
	)
	if err != nil {
		return rec, fmt.Errorf("scanning record: %w", err)
	}
	if recordedAt != nil {
		rec.RecordedAt = *recordedAt
	}
	if len(splitsJSON) > 0 {
		if err := json.Unmarshal(splitsJSON, &rec.Splits); err != nil {
			return rec, fmt.Errorf("unmarshaling splits: %w", err)
		}
	}
	return rec, nil
}

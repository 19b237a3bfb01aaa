package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/poker-club/models"
)

var ErrStatisticsNotFound = errors.New("player statistics not found")

type StatisticsRepository interface {
	Upsert(ctx context.Context, exec SQLExecutor, stats *models.PlayerStatistics) error
	GetByPlayerID(ctx context.Context, playerID string) (*models.PlayerStatistics, error)
	DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID string) error
	// ListScoreboard returns every player; players without a statistics row get zeros.
	ListScoreboard(ctx context.Context) ([]models.ScoreboardEntry, error)
}

type postgresStatisticsRepository struct {
	db *sql.DB
}

func NewPostgresStatisticsRepository(db *sql.DB) StatisticsRepository {
	return &postgresStatisticsRepository{db: db}
}

func (r *postgresStatisticsRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresStatisticsRepository) Upsert(ctx context.Context, exec SQLExecutor, s *models.PlayerStatistics) error {
	query := `
		INSERT INTO player_statistics
			(player_id, total_tournaments, total_points, average_rank, best_rank, bounty, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (player_id) DO UPDATE SET
			total_tournaments = EXCLUDED.total_tournaments,
			total_points = EXCLUDED.total_points,
			average_rank = EXCLUDED.average_rank,
			best_rank = EXCLUDED.best_rank,
			bounty = EXCLUDED.bounty,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`

	return r.getExecutor(exec).QueryRowContext(ctx, query,
		s.PlayerID, s.TotalTournaments, s.TotalPoints, s.AverageRank, s.BestRank, s.Bounty,
	).Scan(&s.UpdatedAt)
}

func (r *postgresStatisticsRepository) GetByPlayerID(ctx context.Context, playerID string) (*models.PlayerStatistics, error) {
	query := `
		SELECT player_id, total_tournaments, total_points, average_rank, best_rank, bounty, updated_at
		FROM player_statistics
		WHERE player_id = $1`

	s := &models.PlayerStatistics{}
	err := r.db.QueryRowContext(ctx, query, playerID).Scan(
		&s.PlayerID, &s.TotalTournaments, &s.TotalPoints, &s.AverageRank, &s.BestRank, &s.Bounty, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStatisticsNotFound
		}
		return nil, err
	}
	return s, nil
}

func (r *postgresStatisticsRepository) DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM player_statistics WHERE player_id = $1`, playerID)
	return err
}

func (r *postgresStatisticsRepository) ListScoreboard(ctx context.Context) ([]models.ScoreboardEntry, error) {
	query := `
		SELECT p.id, p.name,
		       COALESCE(s.total_points, 0),
		       COALESCE(s.total_tournaments, 0),
		       COALESCE(s.bounty, 0),
		       COALESCE(s.average_rank, 0),
		       s.best_rank
		FROM players p
		LEFT JOIN player_statistics s ON s.player_id = p.id
		ORDER BY p.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.ScoreboardEntry, 0)
	for rows.Next() {
		var e models.ScoreboardEntry
		if err := rows.Scan(
			&e.PlayerID, &e.Name, &e.TotalPoints, &e.TotalTournaments, &e.Bounty, &e.AverageRank, &e.BestRank,
		); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

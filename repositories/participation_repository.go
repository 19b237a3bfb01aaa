package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/poker-club/models"
)

var (
	ErrParticipationNotFound   = errors.New("participation not found")
	ErrParticipationExists     = errors.New("player is already registered for this tournament")
	ErrParticipationInvalidRef = errors.New("participation references an unknown player or tournament")
)

type ParticipationRepository interface {
	Create(ctx context.Context, exec SQLExecutor, p *models.Participation) error
	Get(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.Participation, error)
	Update(ctx context.Context, exec SQLExecutor, p *models.Participation) error
	// UpdatePoints writes points only when the row exists.
	UpdatePoints(ctx context.Context, exec SQLExecutor, tournamentID, playerID string, points int) error
	Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) error
	DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error
	DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID string) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Participation, error)
	ListByPlayer(ctx context.Context, exec SQLExecutor, playerID string) ([]models.Participation, error)
	ListHistoryByPlayer(ctx context.Context, playerID string) ([]models.TournamentHistoryItem, error)
	ListTournamentIDsByPlayer(ctx context.Context, exec SQLExecutor, playerID string) ([]string, error)
	SumReentries(ctx context.Context) (int, error)
	SumPoints(ctx context.Context) (int, error)
}

type postgresParticipationRepository struct {
	db *sql.DB
}

func NewPostgresParticipationRepository(db *sql.DB) ParticipationRepository {
	return &postgresParticipationRepository{db: db}
}

func (r *postgresParticipationRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresParticipationRepository) Create(ctx context.Context, exec SQLExecutor, p *models.Participation) error {
	query := `
		INSERT INTO player_tournaments (player_id, tournament_id, rank, points, bounty, reentries)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		p.PlayerID, p.TournamentID, p.Rank, p.Points, p.Bounty, p.Reentries,
	).Scan(&p.CreatedAt)
	return r.handleParticipationError(err)
}

func (r *postgresParticipationRepository) Get(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) (*models.Participation, error) {
	query := `
		SELECT pt.player_id, pt.tournament_id, pt.rank, pt.points, pt.bounty, pt.reentries, pt.created_at, p.name
		FROM player_tournaments pt
		JOIN players p ON p.id = pt.player_id
		WHERE pt.tournament_id = $1 AND pt.player_id = $2`

	p := &models.Participation{}
	err := r.getExecutor(exec).QueryRowContext(ctx, query, tournamentID, playerID).Scan(
		&p.PlayerID, &p.TournamentID, &p.Rank, &p.Points, &p.Bounty, &p.Reentries, &p.CreatedAt, &p.PlayerName,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrParticipationNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresParticipationRepository) Update(ctx context.Context, exec SQLExecutor, p *models.Participation) error {
	query := `
		UPDATE player_tournaments SET
			rank = $1,
			points = $2,
			bounty = $3,
			reentries = $4
		WHERE tournament_id = $5 AND player_id = $6`

	result, err := r.getExecutor(exec).ExecContext(ctx, query,
		p.Rank, p.Points, p.Bounty, p.Reentries, p.TournamentID, p.PlayerID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipationNotFound)
}

func (r *postgresParticipationRepository) UpdatePoints(ctx context.Context, exec SQLExecutor, tournamentID, playerID string, points int) error {
	_, err := r.getExecutor(exec).ExecContext(ctx,
		`UPDATE player_tournaments SET points = $1 WHERE tournament_id = $2 AND player_id = $3`,
		points, tournamentID, playerID,
	)
	return err
}

func (r *postgresParticipationRepository) Delete(ctx context.Context, exec SQLExecutor, tournamentID, playerID string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx,
		`DELETE FROM player_tournaments WHERE tournament_id = $1 AND player_id = $2`,
		tournamentID, playerID,
	)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrParticipationNotFound)
}

func (r *postgresParticipationRepository) DeleteByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM player_tournaments WHERE tournament_id = $1`, tournamentID)
	return err
}

func (r *postgresParticipationRepository) DeleteByPlayer(ctx context.Context, exec SQLExecutor, playerID string) error {
	_, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM player_tournaments WHERE player_id = $1`, playerID)
	return err
}

// ListByTournament returns participations in insertion order.
func (r *postgresParticipationRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID string) ([]models.Participation, error) {
	query := `
		SELECT pt.player_id, pt.tournament_id, pt.rank, pt.points, pt.bounty, pt.reentries, pt.created_at, p.name
		FROM player_tournaments pt
		JOIN players p ON p.id = pt.player_id
		WHERE pt.tournament_id = $1
		ORDER BY pt.created_at ASC, pt.player_id ASC`

	return r.list(ctx, r.getExecutor(exec), query, tournamentID)
}

func (r *postgresParticipationRepository) ListByPlayer(ctx context.Context, exec SQLExecutor, playerID string) ([]models.Participation, error) {
	query := `
		SELECT pt.player_id, pt.tournament_id, pt.rank, pt.points, pt.bounty, pt.reentries, pt.created_at, p.name
		FROM player_tournaments pt
		JOIN players p ON p.id = pt.player_id
		WHERE pt.player_id = $1
		ORDER BY pt.created_at ASC, pt.tournament_id ASC`

	return r.list(ctx, r.getExecutor(exec), query, playerID)
}

func (r *postgresParticipationRepository) list(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]models.Participation, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Participation, 0)
	for rows.Next() {
		var p models.Participation
		if err := rows.Scan(
			&p.PlayerID, &p.TournamentID, &p.Rank, &p.Points, &p.Bounty, &p.Reentries, &p.CreatedAt, &p.PlayerName,
		); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *postgresParticipationRepository) ListHistoryByPlayer(ctx context.Context, playerID string) ([]models.TournamentHistoryItem, error) {
	query := `
		SELECT t.id, t.name, t.date, pt.rank, pt.points, pt.bounty, pt.reentries
		FROM player_tournaments pt
		JOIN tournaments t ON t.id = pt.tournament_id
		WHERE pt.player_id = $1
		ORDER BY t.date DESC, t.created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, playerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]models.TournamentHistoryItem, 0)
	for rows.Next() {
		var h models.TournamentHistoryItem
		if err := rows.Scan(&h.TournamentID, &h.TournamentName, &h.Date, &h.Rank, &h.Points, &h.Bounty, &h.Reentries); err != nil {
			return nil, err
		}
		h.DateText = h.Date.Format("2006-01-02")
		history = append(history, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}

func (r *postgresParticipationRepository) ListTournamentIDsByPlayer(ctx context.Context, exec SQLExecutor, playerID string) ([]string, error) {
	return queryIDs(ctx, r.getExecutor(exec), `SELECT tournament_id FROM player_tournaments WHERE player_id = $1 ORDER BY tournament_id`, playerID)
}

func (r *postgresParticipationRepository) SumReentries(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(reentries), 0) FROM player_tournaments`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to sum reentries: %w", err)
	}
	return n, nil
}

func (r *postgresParticipationRepository) SumPoints(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(points), 0) FROM player_tournaments`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return n, nil
}

func (r *postgresParticipationRepository) handleParticipationError(err error) error {
	if err == nil {
		return nil
	}
	if code, _, ok := pqErrorCode(err); ok {
		switch code {
		case pqUniqueViolation:
			return ErrParticipationExists
		case pqForeignKeyViolation:
			return ErrParticipationInvalidRef
		}
	}
	return err
}

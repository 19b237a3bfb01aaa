package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/poker-club/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type ListPlayersFilter struct {
	Search string
	Limit  int
	Offset int
}

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id string) (*models.Player, error)
	List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, int, error)
	Update(ctx context.Context, player *models.Player) error
	UpdateAvatarKey(ctx context.Context, playerID string, avatarKey *string) error
	Delete(ctx context.Context, exec SQLExecutor, id string) error
	ListIDs(ctx context.Context) ([]string, error)
	Count(ctx context.Context) (int, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresPlayerRepository) Create(ctx context.Context, p *models.Player) error {
	query := `
		INSERT INTO players (id, name, telegram, phone, avatar_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.db.QueryRowContext(ctx, query, p.ID, p.Name, p.Telegram, p.Phone, p.AvatarKey).Scan(&p.CreatedAt)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id string) (*models.Player, error) {
	query := `
		SELECT id, name, telegram, phone, avatar_key, created_at
		FROM players
		WHERE id = $1`

	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &p.Telegram, &p.Phone, &p.AvatarKey, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) List(ctx context.Context, filter ListPlayersFilter) ([]models.Player, int, error) {
	where := ""
	args := []interface{}{}
	if filter.Search != "" {
		where = " WHERE name ILIKE $1 OR telegram ILIKE $1 OR phone ILIKE $1"
		args = append(args, likePattern(filter.Search))
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM players"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count players: %w", err)
	}

	query := "SELECT id, name, telegram, phone, avatar_key, created_at FROM players" + where + " ORDER BY name ASC, id ASC"
	argID := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argID)
		args = append(args, filter.Limit)
		argID++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argID)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	players := make([]models.Player, 0)
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Telegram, &p.Phone, &p.AvatarKey, &p.CreatedAt); err != nil {
			return nil, 0, err
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return players, total, nil
}

func (r *postgresPlayerRepository) Update(ctx context.Context, p *models.Player) error {
	query := `
		UPDATE players SET
			name = $1,
			telegram = $2,
			phone = $3
		WHERE id = $4`

	result, err := r.db.ExecContext(ctx, query, p.Name, p.Telegram, p.Phone, p.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) UpdateAvatarKey(ctx context.Context, playerID string, avatarKey *string) error {
	result, err := r.db.ExecContext(ctx, `UPDATE players SET avatar_key = $1 WHERE id = $2`, avatarKey, playerID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) Delete(ctx context.Context, exec SQLExecutor, id string) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrPlayerNotFound)
}

func (r *postgresPlayerRepository) ListIDs(ctx context.Context) ([]string, error) {
	return queryIDs(ctx, r.db, `SELECT id FROM players ORDER BY id`)
}

func (r *postgresPlayerRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM players`).Scan(&n)
	return n, err
}

func queryIDs(ctx context.Context, exec SQLExecutor, query string, args ...interface{}) ([]string, error) {
	rows, err := exec.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

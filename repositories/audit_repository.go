package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/poker-club/models"
)

type ListAuditLogsFilter struct {
	Action     *models.AuditAction
	EntityType *models.AuditEntityType
	Limit      int
	Offset     int
}

type AuditLogRepository interface {
	Create(ctx context.Context, exec SQLExecutor, log *models.AuditLog) error
	List(ctx context.Context, filter ListAuditLogsFilter) ([]models.AuditLog, int, error)
}

type postgresAuditLogRepository struct {
	db *sql.DB
}

func NewPostgresAuditLogRepository(db *sql.DB) AuditLogRepository {
	return &postgresAuditLogRepository{db: db}
}

func (r *postgresAuditLogRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresAuditLogRepository) Create(ctx context.Context, exec SQLExecutor, l *models.AuditLog) error {
	query := `
		INSERT INTO audit_logs (id, user_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`

	return r.getExecutor(exec).QueryRowContext(ctx, query,
		l.ID, l.UserID, l.Action, l.EntityType, l.EntityID, l.Details,
	).Scan(&l.CreatedAt)
}

func (r *postgresAuditLogRepository) List(ctx context.Context, filter ListAuditLogsFilter) ([]models.AuditLog, int, error) {
	where := " WHERE 1=1"
	args := []interface{}{}
	argID := 1

	if filter.Action != nil {
		where += fmt.Sprintf(" AND a.action = $%d", argID)
		args = append(args, *filter.Action)
		argID++
	}
	if filter.EntityType != nil {
		where += fmt.Sprintf(" AND a.entity_type = $%d", argID)
		args = append(args, *filter.EntityType)
		argID++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_logs a"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit logs: %w", err)
	}

	query := `
		SELECT a.id, a.user_id, a.action, a.entity_type, a.entity_id, a.details, a.created_at,
		       u.name, u.email
		FROM audit_logs a
		LEFT JOIN users u ON u.id = a.user_id` + where + `
		ORDER BY a.created_at DESC, a.id DESC`

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

	logs := make([]models.AuditLog, 0)
	for rows.Next() {
		var (
			l         models.AuditLog
			userName  sql.NullString
			userEmail sql.NullString
		)
		if err := rows.Scan(
			&l.ID, &l.UserID, &l.Action, &l.EntityType, &l.EntityID, &l.Details, &l.CreatedAt,
			&userName, &userEmail,
		); err != nil {
			return nil, 0, err
		}
		if l.UserID != nil && userEmail.Valid {
			l.User = &models.AuditUser{ID: *l.UserID, Name: userName.String, Email: userEmail.String}
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

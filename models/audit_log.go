package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

type AuditEntityType string

const (
	AuditEntityPlayer        AuditEntityType = "Player"
	AuditEntityTournament    AuditEntityType = "Tournament"
	AuditEntityParticipation AuditEntityType = "Participation"
)

// AuditLog records an admin write. Details holds a JSON document.
type AuditLog struct {
	ID         string          `json:"id" db:"id"`
	UserID     *string         `json:"user_id" db:"user_id"`
	Action     AuditAction     `json:"action" db:"action"`
	EntityType AuditEntityType `json:"entity_type" db:"entity_type"`
	EntityID   string          `json:"entity_id" db:"entity_id"`
	Details    string          `json:"details" db:"details"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`

	User *AuditUser `json:"user,omitempty" db:"-"`
}

type AuditUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

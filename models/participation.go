package models

import "time"

// Participation is a player's result in one tournament (player_tournaments).
type Participation struct {
	PlayerID     string    `json:"player_id" db:"player_id"`
	TournamentID string    `json:"tournament_id" db:"tournament_id"`
	Rank         *int      `json:"rank" db:"rank"`
	Points       *int      `json:"points" db:"points"`
	Bounty       *float64  `json:"bounty" db:"bounty"`
	Reentries    int       `json:"reentries" db:"reentries"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`

	// Имя игрока подтягивается JOIN-ом при выборке по турниру
	PlayerName string `json:"player_name,omitempty" db:"-"`
}

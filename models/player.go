package models

import "time"

// Player: участник клуба. Не связан с учётной записью User.
type Player struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Telegram  string    `json:"telegram" db:"telegram"`
	Phone     string    `json:"phone" db:"phone"`
	AvatarKey *string   `json:"-" db:"avatar_key"`
	AvatarURL *string   `json:"avatar_url,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// PlayerStatistics is the aggregate row kept in player_statistics.
type PlayerStatistics struct {
	PlayerID         string    `json:"player_id" db:"player_id"`
	TotalTournaments int       `json:"total_tournaments" db:"total_tournaments"`
	TotalPoints      int       `json:"total_points" db:"total_points"`
	AverageRank      float64   `json:"average_rank" db:"average_rank"`
	BestRank         *int      `json:"best_rank" db:"best_rank"`
	Bounty           float64   `json:"bounty" db:"bounty"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// TournamentHistoryItem is one line of a player's profile history.
type TournamentHistoryItem struct {
	TournamentID   string    `json:"id"`
	TournamentName string    `json:"name"`
	Date           time.Time `json:"-"`
	DateText       string    `json:"date"`
	Rank           *int      `json:"rank"`
	Points         *int      `json:"points"`
	Bounty         *float64  `json:"bounty"`
	Reentries      int       `json:"reentries"`
}

type PlayerProfile struct {
	Player     *Player                 `json:"player"`
	Statistics PlayerStatistics        `json:"statistics"`
	History    []TournamentHistoryItem `json:"history"`
}

// ScoreboardEntry is a player joined with their statistics.
type ScoreboardEntry struct {
	Rank             int     `json:"rank"`
	PlayerID         string  `json:"player_id"`
	Name             string  `json:"name"`
	TotalPoints      int     `json:"total_points"`
	TotalTournaments int     `json:"total_tournaments"`
	Bounty           float64 `json:"bounty"`
	AverageRank      float64 `json:"average_rank"`
	BestRank         *int    `json:"best_rank"`
}

package models

import "time"

// Tournament представляет турнир клуба.
type Tournament struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Date        time.Time `json:"date" db:"date"`
	Location    string    `json:"location" db:"location"`
	Description *string   `json:"description,omitempty" db:"description"`
	BuyIn       float64   `json:"buy_in" db:"buy_in"`
	RebuyAmount float64   `json:"rebuy_amount" db:"rebuy_amount"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	LogoKey     *string   `json:"-" db:"logo_key"`
	LogoURL     *string   `json:"logo_url,omitempty" db:"-"`

	// Заполняется только при просмотре турнира
	Participants []TournamentParticipant `json:"participants,omitempty" db:"-"`
}

// TotalCost is the buy-in plus every re-entry the player paid for.
func (t *Tournament) TotalCost(reentries int) float64 {
	return t.BuyIn + float64(reentries)*t.RebuyAmount
}

// TournamentParticipant: строка таблицы участников на странице турнира.
type TournamentParticipant struct {
	PlayerID  string   `json:"id"`
	Name      string   `json:"name"`
	Rank      *int     `json:"rank"`
	Points    *int     `json:"points"`
	Bounty    *float64 `json:"bounty"`
	Reentries int      `json:"reentries"`
	TotalCost float64  `json:"total_cost"`
}

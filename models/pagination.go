package models

// Page describes a page of a list response.
type Page struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// NewPage считает количество страниц для total записей.
func NewPage(page, limit, total int) Page {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Page{Page: page, Limit: limit, Total: total, TotalPages: totalPages}
}

// Offset returns the number of rows to skip for this page.
func (p Page) Offset() int {
	if p.Page <= 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

// ClubStatistics are the club-wide totals shown on the statistics page.
type ClubStatistics struct {
	TotalPlayers     int `json:"totalPlayers"`
	TotalTournaments int `json:"totalTournaments"`
	TotalReentries   int `json:"totalReentries"`
	TotalPoints      int `json:"totalPoints"`
}

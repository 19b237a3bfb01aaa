// Package scoring содержит чистые функции подсчёта очков, статистики игроков
// и сортировки общего рейтинга клуба. Пакет не обращается к базе данных.
package scoring

import (
	"cmp"
	"slices"
)

// Entry is one player's participation as seen by the points assignment.
type Entry struct {
	PlayerID string
	Rank     *int
	Points   *int
}

// PointsChange describes a points value that differs from what is stored.
type PointsChange struct {
	PlayerID string
	Points   int
}

// AssignPoints distributes points among ranked entries of a single tournament.
// With n ranked entries sorted by rank, the entry at position i gets n-i points,
// so the winner gets n and the last ranked player gets 1. Entries with equal
// ranks keep their input order. Unranked entries are never touched.
//
// Only entries whose stored points differ from the computed value are returned,
// so running it twice over its own output yields no changes.
func AssignPoints(entries []Entry) []PointsChange {
	ranked := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Rank != nil {
			ranked = append(ranked, e)
		}
	}

	slices.SortStableFunc(ranked, func(a, b Entry) int {
		return cmp.Compare(*a.Rank, *b.Rank)
	})

	n := len(ranked)
	changes := make([]PointsChange, 0, n)
	for i, e := range ranked {
		points := n - i
		if e.Points != nil && *e.Points == points {
			continue
		}
		changes = append(changes, PointsChange{PlayerID: e.PlayerID, Points: points})
	}
	return changes
}

// ApplyPoints returns a copy of entries with changes applied.
func ApplyPoints(entries []Entry, changes []PointsChange) []Entry {
	byPlayer := make(map[string]int, len(changes))
	for _, c := range changes {
		byPlayer[c.PlayerID] = c.Points
	}

	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
		if p, ok := byPlayer[e.PlayerID]; ok {
			out[i].Points = &p
		}
	}
	return out
}

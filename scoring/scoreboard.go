package scoring

import (
	"cmp"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Standing is a player's row on the club scoreboard.
type Standing struct {
	PlayerID         string
	Name             string
	TotalPoints      int
	TotalTournaments int
	Bounty           float64
	AverageRank      float64
	Rank             int
}

// RankScoreboard orders standings and assigns 1-based ranks.
//
// Order: more points first, then more tournaments played, then more bounty,
// then the lower average rank, then the name. Names are compared with a
// language-neutral collator so that Cyrillic and Latin names sort naturally;
// names the collator considers equal fall back to a byte comparison.
// The input slice is not modified.
func RankScoreboard(standings []Standing) []Standing {
	out := slices.Clone(standings)
	if len(out) == 0 {
		return []Standing{}
	}

	// collate.Collator не потокобезопасен, создаём на каждый вызов.
	col := collate.New(language.Und)

	slices.SortStableFunc(out, func(a, b Standing) int {
		if c := cmp.Compare(b.TotalPoints, a.TotalPoints); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalTournaments, a.TotalTournaments); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Bounty, a.Bounty); c != 0 {
			return c
		}
		if c := cmp.Compare(a.AverageRank, b.AverageRank); c != 0 {
			return c
		}
		if c := col.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})

	for i := range out {
		out[i].Rank = i + 1
	}
	return out
}

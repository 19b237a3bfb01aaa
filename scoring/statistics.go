package scoring

// Result is the part of a participation that feeds player statistics.
type Result struct {
	Rank   *int
	Points *int
	Bounty *float64
}

// Statistics is the aggregate over every participation of one player.
type Statistics struct {
	TotalTournaments int
	TotalPoints      int
	TotalBounty      float64
	AverageRank      float64
	BestRank         *int
}

// AggregateStatistics recomputes a player's statistics from scratch.
// Missing points and bounty count as zero. AverageRank and BestRank only
// consider ranked results; with none, AverageRank is 0 and BestRank is nil.
func AggregateStatistics(results []Result) Statistics {
	stats := Statistics{TotalTournaments: len(results)}

	var rankSum, ranked int
	for _, r := range results {
		if r.Points != nil {
			stats.TotalPoints += *r.Points
		}
		if r.Bounty != nil {
			stats.TotalBounty += *r.Bounty
		}
		if r.Rank == nil {
			continue
		}

		rank := *r.Rank
		rankSum += rank
		ranked++
		if stats.BestRank == nil || rank < *stats.BestRank {
			best := rank
			stats.BestRank = &best
		}
	}

	if ranked > 0 {
		stats.AverageRank = float64(rankSum) / float64(ranked)
	}
	return stats
}

package services

import (
	"context"
	"fmt"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/scoring"
	"golang.org/x/sync/errgroup"
)

type StatisticsService interface {
	Scoreboard(ctx context.Context, page, limit int) (*Scoreboard, error)
	ClubStatistics(ctx context.Context) (*models.ClubStatistics, error)
}

type Scoreboard struct {
	Players []models.ScoreboardEntry `json:"players"`
	models.Page
}

type statisticsService struct {
	playerRepo        repositories.PlayerRepository
	tournamentRepo    repositories.TournamentRepository
	participationRepo repositories.ParticipationRepository
	statsRepo         repositories.StatisticsRepository
}

func NewStatisticsService(
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	participationRepo repositories.ParticipationRepository,
	statsRepo repositories.StatisticsRepository,
) StatisticsService {
	return &statisticsService{
		playerRepo:        playerRepo,
		tournamentRepo:    tournamentRepo,
		participationRepo: participationRepo,
		statsRepo:         statsRepo,
	}
}

// Scoreboard ranks every player and then cuts the requested page, so ranks
// always come from the full ordering.
func (s *statisticsService) Scoreboard(ctx context.Context, page, limit int) (*Scoreboard, error) {
	page, limit = normalizePage(page, limit)

	rows, err := s.statsRepo.ListScoreboard(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load scoreboard: %w", err)
	}

	bestRanks := make(map[string]*int, len(rows))
	standings := make([]scoring.Standing, len(rows))
	for i, r := range rows {
		bestRanks[r.PlayerID] = r.BestRank
		standings[i] = scoring.Standing{
			PlayerID:         r.PlayerID,
			Name:             r.Name,
			TotalPoints:      r.TotalPoints,
			TotalTournaments: r.TotalTournaments,
			Bounty:           r.Bounty,
			AverageRank:      r.AverageRank,
		}
	}
	ranked := scoring.RankScoreboard(standings)

	p := models.NewPage(page, limit, len(ranked))
	from := min(max(p.Offset(), 0), len(ranked))
	to := min(from+limit, len(ranked))

	entries := make([]models.ScoreboardEntry, 0, to-from)
	for _, st := range ranked[from:to] {
		entries = append(entries, models.ScoreboardEntry{
			Rank:             st.Rank,
			PlayerID:         st.PlayerID,
			Name:             st.Name,
			TotalPoints:      st.TotalPoints,
			TotalTournaments: st.TotalTournaments,
			Bounty:           st.Bounty,
			AverageRank:      st.AverageRank,
			BestRank:         bestRanks[st.PlayerID],
		})
	}
	return &Scoreboard{Players: entries, Page: p}, nil
}

func (s *statisticsService) ClubStatistics(ctx context.Context) (*models.ClubStatistics, error) {
	var stats models.ClubStatistics

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.TotalPlayers, err = s.playerRepo.Count(gctx)
		return wrapErr(err, "failed to count players")
	})
	g.Go(func() (err error) {
		stats.TotalTournaments, err = s.tournamentRepo.Count(gctx)
		return wrapErr(err, "failed to count tournaments")
	})
	g.Go(func() (err error) {
		stats.TotalReentries, err = s.participationRepo.SumReentries(gctx)
		return wrapErr(err, "failed to sum reentries")
	})
	g.Go(func() (err error) {
		stats.TotalPoints, err = s.participationRepo.SumPoints(gctx)
		return wrapErr(err, "failed to sum points")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}

func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

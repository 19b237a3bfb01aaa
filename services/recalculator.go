package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/Dosada05/poker-club/metrics"
	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/scoring"
)

// Recalculator keeps stored points and player statistics consistent with
// the participations. Every method that takes an executor runs inside the
// caller's transaction.
type Recalculator struct {
	tx                repositories.Transactor
	playerRepo        repositories.PlayerRepository
	tournamentRepo    repositories.TournamentRepository
	participationRepo repositories.ParticipationRepository
	statsRepo         repositories.StatisticsRepository
	metrics           metrics.Metrics
	logger            *slog.Logger
}

func NewRecalculator(
	tx repositories.Transactor,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	participationRepo repositories.ParticipationRepository,
	statsRepo repositories.StatisticsRepository,
	m metrics.Metrics,
	logger *slog.Logger,
) *Recalculator {
	return &Recalculator{
		tx:                tx,
		playerRepo:        playerRepo,
		tournamentRepo:    tournamentRepo,
		participationRepo: participationRepo,
		statsRepo:         statsRepo,
		metrics:           m,
		logger:            logger,
	}
}

// ReassignPoints re-derives points for every ranked participation of the
// tournament and writes back the ones that changed. It returns the
// participations as they are stored afterwards.
func (r *Recalculator) ReassignPoints(ctx context.Context, exec repositories.SQLExecutor, tournamentID string) ([]models.Participation, error) {
	parts, err := r.participationRepo.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participations of tournament %s: %w", tournamentID, err)
	}

	changes := scoring.AssignPoints(toEntries(parts))
	for _, c := range changes {
		if err := r.participationRepo.UpdatePoints(ctx, exec, tournamentID, c.PlayerID, c.Points); err != nil {
			return nil, fmt.Errorf("failed to store points for player %s in tournament %s: %w", c.PlayerID, tournamentID, err)
		}
	}
	if len(changes) > 0 {
		r.metrics.IncPointsReassigned(len(changes))
	}

	return applyPointChanges(parts, changes), nil
}

// RecomputePlayer rebuilds one player's statistics from all of their participations.
func (r *Recalculator) RecomputePlayer(ctx context.Context, exec repositories.SQLExecutor, playerID string) (*models.PlayerStatistics, error) {
	parts, err := r.participationRepo.ListByPlayer(ctx, exec, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participations of player %s: %w", playerID, err)
	}

	results := make([]scoring.Result, len(parts))
	for i, p := range parts {
		results[i] = scoring.Result{Rank: p.Rank, Points: p.Points, Bounty: p.Bounty}
	}
	agg := scoring.AggregateStatistics(results)

	stats := &models.PlayerStatistics{
		PlayerID:         playerID,
		TotalTournaments: agg.TotalTournaments,
		TotalPoints:      agg.TotalPoints,
		AverageRank:      agg.AverageRank,
		BestRank:         agg.BestRank,
		Bounty:           agg.TotalBounty,
	}
	if err := r.statsRepo.Upsert(ctx, exec, stats); err != nil {
		return nil, fmt.Errorf("failed to store statistics of player %s: %w", playerID, err)
	}
	r.metrics.IncStatisticsRecomputed(1)
	return stats, nil
}

// RecomputePlayers recomputes each distinct player once, in a stable order.
func (r *Recalculator) RecomputePlayers(ctx context.Context, exec repositories.SQLExecutor, playerIDs []string) error {
	ids := slices.Clone(playerIDs)
	slices.Sort(ids)
	for _, id := range slices.Compact(ids) {
		if _, err := r.RecomputePlayer(ctx, exec, id); err != nil {
			return err
		}
	}
	return nil
}

// RefreshTournament re-runs points assignment for the tournament and then
// recomputes statistics of every current participant plus extraPlayerIDs
// (players that just left the tournament).
func (r *Recalculator) RefreshTournament(ctx context.Context, exec repositories.SQLExecutor, tournamentID string, extraPlayerIDs ...string) error {
	start := time.Now()

	parts, err := r.ReassignPoints(ctx, exec, tournamentID)
	if err != nil {
		return err
	}

	ids := make([]string, 0, len(parts)+len(extraPlayerIDs))
	for _, p := range parts {
		ids = append(ids, p.PlayerID)
	}
	ids = append(ids, extraPlayerIDs...)

	if err := r.RecomputePlayers(ctx, exec, ids); err != nil {
		return err
	}

	r.metrics.ObserveRecalculationDuration(time.Since(start).Seconds())
	return nil
}

type RecalculationSummary struct {
	Tournaments int `json:"tournaments"`
	Players     int `json:"players"`
}

// RecalculateAll re-derives points of every tournament and statistics of
// every player in a single transaction.
func (r *Recalculator) RecalculateAll(ctx context.Context) (*RecalculationSummary, error) {
	tournamentIDs, err := r.tournamentRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	playerIDs, err := r.playerRepo.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	start := time.Now()
	err = r.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		for _, id := range tournamentIDs {
			if _, err := r.ReassignPoints(ctx, exec, id); err != nil {
				return err
			}
		}
		return r.RecomputePlayers(ctx, exec, playerIDs)
	})
	if err != nil {
		return nil, err
	}
	r.metrics.ObserveRecalculationDuration(time.Since(start).Seconds())

	summary := &RecalculationSummary{Tournaments: len(tournamentIDs), Players: len(playerIDs)}
	r.logger.InfoContext(ctx, "full recalculation finished",
		slog.Int("tournaments", summary.Tournaments),
		slog.Int("players", summary.Players),
		slog.Duration("took", time.Since(start)),
	)
	return summary, nil
}

func toEntries(parts []models.Participation) []scoring.Entry {
	entries := make([]scoring.Entry, len(parts))
	for i, p := range parts {
		entries[i] = scoring.Entry{PlayerID: p.PlayerID, Rank: p.Rank, Points: p.Points}
	}
	return entries
}

func applyPointChanges(parts []models.Participation, changes []scoring.PointsChange) []models.Participation {
	out := slices.Clone(parts)
	if len(changes) == 0 {
		return out
	}
	applied := scoring.ApplyPoints(toEntries(parts), changes)
	for i := range out {
		out[i].Points = applied[i].Points
	}
	return out
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rankedTournament registers a, b, c in t1 and ranks them b=1, a=2, c=3.
func rankedTournament(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	ctx := context.Background()

	h.store.addTournament("t1", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	for _, id := range []string{"a", "b", "c"} {
		h.store.addPlayer(id, "Player "+id)
		_, err := h.participations.AddPlayer(ctx, "admin", "t1", id)
		require.NoError(t, err)
	}

	for _, step := range []struct {
		player string
		rank   int
	}{{"a", 2}, {"b", 1}, {"c", 3}} {
		_, err := h.participations.UpdateResult(ctx, "admin", "t1", step.player, UpdateResultInput{Rank: intPtr(step.rank)})
		require.NoError(t, err)
	}
	return h
}

func TestParticipationService_UpdateResult(t *testing.T) {
	t.Run("points follow the final ranking", func(t *testing.T) {
		h := rankedTournament(t)

		assert.Equal(t, 3, h.pointsOf(t, "t1", "b"))
		assert.Equal(t, 2, h.pointsOf(t, "t1", "a"))
		assert.Equal(t, 1, h.pointsOf(t, "t1", "c"))

		stats := h.store.stats["b"]
		assert.Equal(t, 1, stats.TotalTournaments)
		assert.Equal(t, 3, stats.TotalPoints)
		assert.Equal(t, 1.0, stats.AverageRank)
		require.NotNil(t, stats.BestRank)
		assert.Equal(t, 1, *stats.BestRank)
	})

	t.Run("tied ranks keep registration order", func(t *testing.T) {
		h := rankedTournament(t)

		p, err := h.participations.UpdateResult(context.Background(), "admin", "t1", "c", UpdateResultInput{Rank: intPtr(1), Bounty: floatPtr(250)})
		require.NoError(t, err)
		require.NotNil(t, p.Points)
		assert.Equal(t, 2, *p.Points, "tied with b on rank 1, b registered first")
		assert.Equal(t, 3, h.pointsOf(t, "t1", "b"))
		assert.Equal(t, 1, h.pointsOf(t, "t1", "a"))
		require.NotNil(t, p.Bounty)
		assert.Equal(t, 250.0, *p.Bounty)
		assert.Equal(t, 250.0, h.store.stats["c"].Bounty)
	})

	t.Run("clearing a rank keeps stored points and re-ranks the rest", func(t *testing.T) {
		h := rankedTournament(t)

		_, err := h.participations.UpdateResult(context.Background(), "admin", "t1", "c", UpdateResultInput{ClearRank: true})
		require.NoError(t, err)

		assert.Nil(t, h.store.participation("t1", "c").Rank)
		assert.Equal(t, 1, h.pointsOf(t, "t1", "c"), "unranked entry keeps its points")
		assert.Equal(t, 2, h.pointsOf(t, "t1", "b"))
		assert.Equal(t, 1, h.pointsOf(t, "t1", "a"))

		stats := h.store.stats["c"]
		assert.Equal(t, 1, stats.TotalPoints)
		assert.Equal(t, 0.0, stats.AverageRank)
		assert.Nil(t, stats.BestRank)
	})

	t.Run("invalid patch is rejected before any write", func(t *testing.T) {
		h := rankedTournament(t)
		before := h.store.txCount

		_, err := h.participations.UpdateResult(context.Background(), "admin", "t1", "a", UpdateResultInput{Rank: intPtr(0), Reentries: intPtr(-1)})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrValidationFailed)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Contains(t, verr.Fields, "rank")
		assert.Contains(t, verr.Fields, "reentries")
		assert.Equal(t, before, h.store.txCount)
	})

	t.Run("empty patch is rejected", func(t *testing.T) {
		h := rankedTournament(t)
		_, err := h.participations.UpdateResult(context.Background(), "admin", "t1", "a", UpdateResultInput{})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})

	t.Run("unknown participation", func(t *testing.T) {
		h := rankedTournament(t)
		_, err := h.participations.UpdateResult(context.Background(), "admin", "t1", "zzz", UpdateResultInput{Rank: intPtr(1)})
		assert.ErrorIs(t, err, ErrParticipationNotFound)
	})

	t.Run("each update is announced and audited", func(t *testing.T) {
		h := rankedTournament(t)
		assert.Equal(t, []string{"t1", "t1", "t1", "t1", "t1", "t1"}, h.live.updates, "three adds and three updates")
		assert.Len(t, h.store.audit, 6)
		assert.Positive(t, h.metrics.PointsReassigned())
	})
}

func TestParticipationService_AddPlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("adding does not reassign points of ranked players", func(t *testing.T) {
		h := rankedTournament(t)
		h.store.addPlayer("d", "Player d")

		p, err := h.participations.AddPlayer(ctx, "admin", "t1", "d")
		require.NoError(t, err)
		assert.Nil(t, p.Rank)

		assert.Equal(t, 3, h.pointsOf(t, "t1", "b"))
		assert.Equal(t, 2, h.pointsOf(t, "t1", "a"))
		assert.Equal(t, 1, h.pointsOf(t, "t1", "c"))
		assert.Equal(t, 1, h.store.stats["d"].TotalTournaments)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		h := rankedTournament(t)
		_, err := h.participations.AddPlayer(ctx, "admin", "t1", "a")
		assert.ErrorIs(t, err, ErrAlreadyRegistered)
	})

	t.Run("unknown references", func(t *testing.T) {
		h := rankedTournament(t)
		_, err := h.participations.AddPlayer(ctx, "admin", "t1", "ghost")
		assert.ErrorIs(t, err, ErrPlayerNotFound)
		_, err = h.participations.AddPlayer(ctx, "admin", "nope", "a")
		assert.ErrorIs(t, err, ErrTournamentNotFound)
	})

	t.Run("refused while the database is down", func(t *testing.T) {
		h := rankedTournament(t)
		h.store.pingErr = errBoom
		_, err := h.participations.AddPlayer(ctx, "admin", "t1", "a")
		assert.ErrorIs(t, err, ErrDatabaseUnavailable)
	})
}

func TestParticipationService_RemovePlayer(t *testing.T) {
	ctx := context.Background()

	t.Run("remaining ranked players are re-scored", func(t *testing.T) {
		h := rankedTournament(t)

		require.NoError(t, h.participations.RemovePlayer(ctx, "admin", "t1", "b"))

		assert.Nil(t, h.store.participation("t1", "b"))
		assert.Equal(t, 2, h.pointsOf(t, "t1", "a"))
		assert.Equal(t, 1, h.pointsOf(t, "t1", "c"))

		removed := h.store.stats["b"]
		assert.Equal(t, 0, removed.TotalTournaments)
		assert.Equal(t, 0, removed.TotalPoints)
		assert.Equal(t, 2, h.store.stats["a"].TotalPoints)
	})

	t.Run("absent participation", func(t *testing.T) {
		h := rankedTournament(t)
		err := h.participations.RemovePlayer(ctx, "admin", "t1", "ghost")
		assert.ErrorIs(t, err, ErrParticipationNotFound)
	})
}

func TestParticipationService_ListParticipants(t *testing.T) {
	h := rankedTournament(t)

	parts, err := h.participations.ListParticipants(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "Player a", parts[0].PlayerName)

	_, err = h.participations.ListParticipants(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrTournamentNotFound)
}

func TestRecalculationWriteFailures(t *testing.T) {
	ctx := context.Background()

	// prepare returns a ranked tournament with recorded updates cleared.
	prepare := func(t *testing.T) *harness {
		h := rankedTournament(t)
		h.live.updates = nil
		return h
	}

	t.Run("points write fails on result update", func(t *testing.T) {
		h := prepare(t)
		h.store.updatePointsErr = errBoom

		_, err := h.participations.UpdateResult(ctx, "admin", "t1", "c", UpdateResultInput{Rank: intPtr(1)})
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "failed to store points")
		assert.Empty(t, h.live.updates)
	})

	t.Run("statistics write fails on result update", func(t *testing.T) {
		h := prepare(t)
		h.store.upsertStatsErr = errBoom

		_, err := h.participations.UpdateResult(ctx, "admin", "t1", "a", UpdateResultInput{Bounty: floatPtr(100)})
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Contains(t, err.Error(), "failed to store statistics")
		assert.Empty(t, h.live.updates)
	})

	t.Run("points write fails on removal", func(t *testing.T) {
		h := prepare(t)
		h.store.updatePointsErr = errBoom

		// b moves from 3 points to 2 once a leaves.
		err := h.participations.RemovePlayer(ctx, "admin", "t1", "a")
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, h.live.updates)
	})

	t.Run("statistics write fails on removal", func(t *testing.T) {
		h := prepare(t)
		h.store.upsertStatsErr = errBoom

		err := h.participations.RemovePlayer(ctx, "admin", "t1", "c")
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, h.live.updates)
	})

	t.Run("statistics write fails on tournament deletion", func(t *testing.T) {
		h := prepare(t)
		h.store.upsertStatsErr = errBoom

		err := h.tournaments.DeleteTournament(ctx, "admin", "t1")
		require.Error(t, err)
		assert.ErrorIs(t, err, errBoom)
		assert.Empty(t, h.live.updates)
	})
}

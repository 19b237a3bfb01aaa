package services

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/poker-club/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("all contact fields are required", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.players.CreatePlayer(ctx, "admin", CreatePlayerInput{Name: "Ivan"})
		assert.ErrorIs(t, err, ErrValidationFailed)
		assert.Empty(t, h.store.players)
	})

	t.Run("refused while the database is down", func(t *testing.T) {
		h := newHarness(t)
		h.store.pingErr = errBoom
		_, err := h.players.CreatePlayer(ctx, "admin", CreatePlayerInput{Name: "Ivan", Telegram: "@ivan", Phone: "+7900"})
		assert.ErrorIs(t, err, ErrDatabaseUnavailable)
	})

	t.Run("created and audited", func(t *testing.T) {
		h := newHarness(t)
		p, err := h.players.CreatePlayer(ctx, "admin", CreatePlayerInput{Name: " Ivan ", Telegram: "@ivan", Phone: "+7900"})
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, "Ivan", p.Name)
		require.Len(t, h.store.audit, 1)
		assert.Equal(t, models.AuditEntityPlayer, h.store.audit[0].EntityType)
		assert.Contains(t, h.store.audit[0].Details, `"telegram":"@ivan"`)
	})
}

func TestPlayerService_Update(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.addPlayer("a", "Anna")

	p, err := h.players.UpdatePlayer(ctx, "admin", "a", UpdatePlayerInput{Name: "Anna K", Phone: strPtr("+7111")})
	require.NoError(t, err)
	assert.Equal(t, "Anna K", p.Name)
	assert.Equal(t, "+7111", p.Phone)
	assert.Equal(t, "@a", p.Telegram, "omitted fields are kept")

	_, err = h.players.UpdatePlayer(ctx, "admin", "a", UpdatePlayerInput{Name: "Anna", Telegram: strPtr(" ")})
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = h.players.UpdatePlayer(ctx, "admin", "ghost", UpdatePlayerInput{Name: "X"})
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}

func TestPlayerService_Delete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	for _, id := range []string{"a", "b", "c"} {
		h.store.addPlayer(id, "Player "+id)
	}
	h.store.addTournament("t1", time.Now())
	h.store.addParticipation("t1", "a", intPtr(1), intPtr(3))
	h.store.addParticipation("t1", "b", intPtr(2), intPtr(2))
	h.store.addParticipation("t1", "c", intPtr(3), intPtr(1))
	require.NoError(t, h.recalc.RecomputePlayers(ctx, nil, []string{"a", "b", "c"}))

	require.NoError(t, h.players.DeletePlayer(ctx, "admin", "a"))

	assert.NotContains(t, h.store.players, "a")
	assert.NotContains(t, h.store.stats, "a")
	assert.Nil(t, h.store.participation("t1", "a"))
	assert.Equal(t, 2, h.pointsOf(t, "t1", "b"))
	assert.Equal(t, 1, h.pointsOf(t, "t1", "c"))
	assert.Equal(t, 2, h.store.stats["b"].TotalPoints)
	assert.Equal(t, []string{"t1"}, h.live.updates)

	assert.ErrorIs(t, h.players.DeletePlayer(ctx, "admin", "a"), ErrPlayerNotFound)
}

func TestPlayerService_List(t *testing.T) {
	h := newHarness(t)
	h.store.addPlayer("1", "Boris")
	h.store.addPlayer("2", "Anna")
	h.store.addPlayer("3", "Borislava")

	list, err := h.players.ListPlayers(context.Background(), ListPlayersInput{Search: "boris", Page: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Total)
	assert.Equal(t, 2, list.TotalPages)
	require.Len(t, list.Players, 1)
	assert.Equal(t, "Boris", list.Players[0].Name)

	list, err = h.players.ListPlayers(context.Background(), ListPlayersInput{Page: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Page)
	assert.Equal(t, DefaultPageLimit, list.Limit)
	assert.Len(t, list.Players, 3)

	list, err = h.players.ListPlayers(context.Background(), ListPlayersInput{Page: math.MaxInt, Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, list.Players)
	assert.Equal(t, 3, list.Total)
}

func TestPlayerService_Profile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.addPlayer("a", "Anna")

	t.Run("player without results gets zero statistics", func(t *testing.T) {
		profile, err := h.players.GetPlayerProfile(ctx, "a")
		require.NoError(t, err)
		assert.Equal(t, "Anna", profile.Player.Name)
		assert.Equal(t, 0, profile.Statistics.TotalTournaments)
		assert.Nil(t, profile.Statistics.BestRank)
		assert.NotNil(t, profile.History)
		assert.Empty(t, profile.History)
	})

	t.Run("history is newest first", func(t *testing.T) {
		h.store.addTournament("old", time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
		h.store.addTournament("new", time.Date(2024, 2, 5, 0, 0, 0, 0, time.UTC))
		h.store.addParticipation("old", "a", intPtr(1), intPtr(4))
		h.store.addParticipation("new", "a", intPtr(2), intPtr(3))
		_, err := h.recalc.RecomputePlayer(ctx, nil, "a")
		require.NoError(t, err)

		profile, err := h.players.GetPlayerProfile(ctx, "a")
		require.NoError(t, err)
		require.Len(t, profile.History, 2)
		assert.Equal(t, "new", profile.History[0].TournamentID)
		assert.Equal(t, "2024-02-05", profile.History[0].DateText)
		assert.Equal(t, 7, profile.Statistics.TotalPoints)
		assert.Equal(t, 1.5, profile.Statistics.AverageRank)
	})

	t.Run("unknown player", func(t *testing.T) {
		_, err := h.players.GetPlayerProfile(ctx, "ghost")
		assert.ErrorIs(t, err, ErrPlayerNotFound)
	})
}

func TestPlayerService_UploadAvatar(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.addPlayer("a", "Anna")

	first, err := h.players.UploadPlayerAvatar(ctx, "admin", "a", strings.NewReader("1"), "image/jpeg")
	require.NoError(t, err)
	firstKey := *first.AvatarKey

	second, err := h.players.UploadPlayerAvatar(ctx, "admin", "a", strings.NewReader("2"), "image/webp")
	require.NoError(t, err)

	assert.NotEqual(t, firstKey, *second.AvatarKey)
	assert.Equal(t, []string{firstKey}, h.uploader.deleted, "previous avatar is removed")
	require.NotNil(t, second.AvatarURL)
	assert.Contains(t, h.uploader.objects, *second.AvatarKey)
}

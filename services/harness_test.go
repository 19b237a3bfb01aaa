package services

import (
	"testing"

	"github.com/Dosada05/poker-club/metrics"
)

type harness struct {
	store    *memStore
	metrics  *metrics.Mock
	uploader *fakeUploader
	live     *recordingLiveUpdater

	recalc         *Recalculator
	health         HealthService
	audit          AuditService
	players        PlayerService
	tournaments    TournamentService
	participations ParticipationService
	stats          StatisticsService
	auth           AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := newMemStore()
	h := &harness{
		store:    store,
		metrics:  metrics.NewMock(),
		uploader: newFakeUploader(),
		live:     &recordingLiveUpdater{},
	}
	logger := discardLogger()

	tx := fakeTransactor{store: store}
	playerRepo := fakePlayerRepo{store: store}
	tournamentRepo := fakeTournamentRepo{store: store}
	participationRepo := fakeParticipationRepo{store: store}
	statsRepo := fakeStatsRepo{store: store}

	h.recalc = NewRecalculator(tx, playerRepo, tournamentRepo, participationRepo, statsRepo, h.metrics, logger)
	h.health = NewHealthService(fakeHealthRepo{store: store}, logger)
	h.audit = NewAuditService(fakeAuditRepo{store: store}, logger)
	h.players = NewPlayerService(tx, playerRepo, participationRepo, statsRepo, h.recalc, h.health, h.audit, h.uploader, h.live, logger)
	h.tournaments = NewTournamentService(tx, tournamentRepo, participationRepo, h.recalc, h.audit, h.uploader, h.live, logger)
	h.participations = NewParticipationService(tx, playerRepo, tournamentRepo, participationRepo, h.recalc, h.health, h.audit, h.live, logger)
	h.stats = NewStatisticsService(playerRepo, tournamentRepo, participationRepo, statsRepo)
	h.auth = NewAuthService(fakeUserRepo{store: store}, logger)
	return h
}

// pointsOf returns the stored points of a participation, -1 when unset.
func (h *harness) pointsOf(t *testing.T, tournamentID, playerID string) int {
	t.Helper()
	p := h.store.participation(tournamentID, playerID)
	if p == nil {
		t.Fatalf("no participation %s/%s", tournamentID, playerID)
	}
	if p.Points == nil {
		return -1
	}
	return *p.Points
}

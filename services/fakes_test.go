package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/storage"
)

// memStore is an in-memory stand-in for the Postgres schema shared by the fake repositories.
type memStore struct {
	mu          sync.Mutex
	players     map[string]models.Player
	tournaments map[string]models.Tournament
	parts       []models.Participation
	stats       map[string]models.PlayerStatistics
	audit       []models.AuditLog
	users       map[string]models.User

	pingErr error
	txCount int

	// write failures injected into the recalculation path
	updatePointsErr error
	upsertStatsErr  error
}

func newMemStore() *memStore {
	return &memStore{
		players:     make(map[string]models.Player),
		tournaments: make(map[string]models.Tournament),
		stats:       make(map[string]models.PlayerStatistics),
		users:       make(map[string]models.User),
	}
}

func (m *memStore) addPlayer(id, name string) {
	m.players[id] = models.Player{ID: id, Name: name, Telegram: "@" + id, Phone: "+7" + id}
}

func (m *memStore) addTournament(id string, date time.Time) {
	m.tournaments[id] = models.Tournament{ID: id, Name: "T " + id, Date: date, Location: "club", BuyIn: 100, RebuyAmount: 50}
}

func (m *memStore) addParticipation(tournamentID, playerID string, rank, points *int) {
	m.parts = append(m.parts, models.Participation{
		TournamentID: tournamentID,
		PlayerID:     playerID,
		Rank:         rank,
		Points:       points,
		CreatedAt:    time.Unix(int64(len(m.parts)), 0),
	})
}

func (m *memStore) participation(tournamentID, playerID string) *models.Participation {
	for i := range m.parts {
		if m.parts[i].TournamentID == tournamentID && m.parts[i].PlayerID == playerID {
			return &m.parts[i]
		}
	}
	return nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

// fakeTransactor runs fn directly; repositories ignore the executor.
type fakeTransactor struct{ store *memStore }

func (t fakeTransactor) WithinTransaction(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	t.store.txCount++
	return fn(nil)
}

type fakeHealthRepo struct{ store *memStore }

func (r fakeHealthRepo) Ping(context.Context) error { return r.store.pingErr }

type fakePlayerRepo struct{ store *memStore }

func (r fakePlayerRepo) Create(_ context.Context, p *models.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p.CreatedAt = time.Now()
	r.store.players[p.ID] = *p
	return nil
}

func (r fakePlayerRepo) GetByID(_ context.Context, id string) (*models.Player, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[id]
	if !ok {
		return nil, repositories.ErrPlayerNotFound
	}
	return &p, nil
}

func (r fakePlayerRepo) List(_ context.Context, f repositories.ListPlayersFilter) ([]models.Player, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var all []models.Player
	search := strings.ToLower(f.Search)
	for _, p := range r.store.players {
		if search == "" || strings.Contains(strings.ToLower(p.Name+p.Telegram+p.Phone), search) {
			all = append(all, p)
		}
	}
	slices.SortFunc(all, func(a, b models.Player) int { return strings.Compare(a.Name, b.Name) })
	from := min(f.Offset, len(all))
	to := min(from+f.Limit, len(all))
	return all[from:to], len(all), nil
}

func (r fakePlayerRepo) Update(_ context.Context, p *models.Player) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.players[p.ID]; !ok {
		return repositories.ErrPlayerNotFound
	}
	r.store.players[p.ID] = *p
	return nil
}

func (r fakePlayerRepo) UpdateAvatarKey(_ context.Context, id string, key *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p, ok := r.store.players[id]
	if !ok {
		return repositories.ErrPlayerNotFound
	}
	p.AvatarKey = key
	r.store.players[id] = p
	return nil
}

func (r fakePlayerRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.players[id]; !ok {
		return repositories.ErrPlayerNotFound
	}
	delete(r.store.players, id)
	return nil
}

func (r fakePlayerRepo) ListIDs(context.Context) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ids := make([]string, 0, len(r.store.players))
	for id := range r.store.players {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r fakePlayerRepo) Count(context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.players), nil
}

type fakeTournamentRepo struct{ store *memStore }

func (r fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.tournaments[t.ID] = *t
	return nil
}

func (r fakeTournamentRepo) GetByID(_ context.Context, id string) (*models.Tournament, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return &t, nil
}

func (r fakeTournamentRepo) List(_ context.Context, f repositories.ListTournamentsFilter) ([]models.Tournament, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var all []models.Tournament
	for _, t := range r.store.tournaments {
		all = append(all, t)
	}
	slices.SortFunc(all, func(a, b models.Tournament) int { return b.Date.Compare(a.Date) })
	from := min(f.Offset, len(all))
	to := min(from+f.Limit, len(all))
	return all[from:to], len(all), nil
}

func (r fakeTournamentRepo) Update(_ context.Context, t *models.Tournament) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tournaments[t.ID]; !ok {
		return repositories.ErrTournamentNotFound
	}
	r.store.tournaments[t.ID] = *t
	return nil
}

func (r fakeTournamentRepo) UpdateLogoKey(_ context.Context, id string, key *string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	t, ok := r.store.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.LogoKey = key
	r.store.tournaments[id] = t
	return nil
}

func (r fakeTournamentRepo) Delete(_ context.Context, _ repositories.SQLExecutor, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	for _, p := range r.store.parts {
		if p.TournamentID == id {
			return repositories.ErrTournamentInUse
		}
	}
	delete(r.store.tournaments, id)
	return nil
}

func (r fakeTournamentRepo) ListIDs(context.Context) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	ids := make([]string, 0, len(r.store.tournaments))
	for id := range r.store.tournaments {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (r fakeTournamentRepo) Count(context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return len(r.store.tournaments), nil
}

type fakeParticipationRepo struct{ store *memStore }

func (r fakeParticipationRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.Participation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.participation(p.TournamentID, p.PlayerID) != nil {
		return repositories.ErrParticipationExists
	}
	p.CreatedAt = time.Unix(int64(len(r.store.parts)), 0)
	r.store.parts = append(r.store.parts, *p)
	return nil
}

func (r fakeParticipationRepo) Get(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID string) (*models.Participation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	p := r.store.participation(tournamentID, playerID)
	if p == nil {
		return nil, repositories.ErrParticipationNotFound
	}
	cp := *p
	return &cp, nil
}

func (r fakeParticipationRepo) Update(_ context.Context, _ repositories.SQLExecutor, p *models.Participation) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored := r.store.participation(p.TournamentID, p.PlayerID)
	if stored == nil {
		return repositories.ErrParticipationNotFound
	}
	stored.Rank, stored.Points, stored.Bounty, stored.Reentries = p.Rank, p.Points, p.Bounty, p.Reentries
	return nil
}

func (r fakeParticipationRepo) UpdatePoints(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID string, points int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.updatePointsErr != nil {
		return r.store.updatePointsErr
	}
	if stored := r.store.participation(tournamentID, playerID); stored != nil {
		stored.Points = &points
	}
	return nil
}

func (r fakeParticipationRepo) Delete(_ context.Context, _ repositories.SQLExecutor, tournamentID, playerID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	n := len(r.store.parts)
	r.store.parts = slices.DeleteFunc(r.store.parts, func(p models.Participation) bool {
		return p.TournamentID == tournamentID && p.PlayerID == playerID
	})
	if len(r.store.parts) == n {
		return repositories.ErrParticipationNotFound
	}
	return nil
}

func (r fakeParticipationRepo) DeleteByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.parts = slices.DeleteFunc(r.store.parts, func(p models.Participation) bool { return p.TournamentID == tournamentID })
	return nil
}

func (r fakeParticipationRepo) DeleteByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.parts = slices.DeleteFunc(r.store.parts, func(p models.Participation) bool { return p.PlayerID == playerID })
	return nil
}

func (r fakeParticipationRepo) ListByTournament(_ context.Context, _ repositories.SQLExecutor, tournamentID string) ([]models.Participation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Participation
	for _, p := range r.store.parts {
		if p.TournamentID == tournamentID {
			p.PlayerName = r.store.players[p.PlayerID].Name
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeParticipationRepo) ListByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID string) ([]models.Participation, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.Participation
	for _, p := range r.store.parts {
		if p.PlayerID == playerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r fakeParticipationRepo) ListHistoryByPlayer(_ context.Context, playerID string) ([]models.TournamentHistoryItem, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.TournamentHistoryItem
	for _, p := range r.store.parts {
		if p.PlayerID != playerID {
			continue
		}
		t := r.store.tournaments[p.TournamentID]
		out = append(out, models.TournamentHistoryItem{
			TournamentID:   t.ID,
			TournamentName: t.Name,
			Date:           t.Date,
			DateText:       t.Date.Format(time.DateOnly),
			Rank:           p.Rank,
			Points:         p.Points,
			Bounty:         p.Bounty,
			Reentries:      p.Reentries,
		})
	}
	slices.SortFunc(out, func(a, b models.TournamentHistoryItem) int { return b.Date.Compare(a.Date) })
	return out, nil
}

func (r fakeParticipationRepo) ListTournamentIDsByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID string) ([]string, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var ids []string
	for _, p := range r.store.parts {
		if p.PlayerID == playerID {
			ids = append(ids, p.TournamentID)
		}
	}
	return ids, nil
}

func (r fakeParticipationRepo) SumReentries(context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	total := 0
	for _, p := range r.store.parts {
		total += p.Reentries
	}
	return total, nil
}

func (r fakeParticipationRepo) SumPoints(context.Context) (int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	total := 0
	for _, p := range r.store.parts {
		if p.Points != nil {
			total += *p.Points
		}
	}
	return total, nil
}

type fakeStatsRepo struct{ store *memStore }

func (r fakeStatsRepo) Upsert(_ context.Context, _ repositories.SQLExecutor, s *models.PlayerStatistics) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if r.store.upsertStatsErr != nil {
		return r.store.upsertStatsErr
	}
	s.UpdatedAt = time.Now()
	r.store.stats[s.PlayerID] = *s
	return nil
}

func (r fakeStatsRepo) GetByPlayerID(_ context.Context, playerID string) (*models.PlayerStatistics, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.stats[playerID]
	if !ok {
		return nil, repositories.ErrStatisticsNotFound
	}
	return &s, nil
}

func (r fakeStatsRepo) DeleteByPlayer(_ context.Context, _ repositories.SQLExecutor, playerID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	delete(r.store.stats, playerID)
	return nil
}

func (r fakeStatsRepo) ListScoreboard(context.Context) ([]models.ScoreboardEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.ScoreboardEntry
	for _, p := range r.store.players {
		s := r.store.stats[p.ID]
		out = append(out, models.ScoreboardEntry{
			PlayerID:         p.ID,
			Name:             p.Name,
			TotalPoints:      s.TotalPoints,
			TotalTournaments: s.TotalTournaments,
			Bounty:           s.Bounty,
			AverageRank:      s.AverageRank,
			BestRank:         s.BestRank,
		})
	}
	return out, nil
}

type fakeAuditRepo struct{ store *memStore }

func (r fakeAuditRepo) Create(_ context.Context, _ repositories.SQLExecutor, log *models.AuditLog) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	log.CreatedAt = time.Now()
	r.store.audit = append(r.store.audit, *log)
	return nil
}

func (r fakeAuditRepo) List(_ context.Context, f repositories.ListAuditLogsFilter) ([]models.AuditLog, int, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []models.AuditLog
	for i := len(r.store.audit) - 1; i >= 0; i-- {
		l := r.store.audit[i]
		if f.Action != nil && l.Action != *f.Action {
			continue
		}
		if f.EntityType != nil && l.EntityType != *f.EntityType {
			continue
		}
		out = append(out, l)
	}
	from := min(f.Offset, len(out))
	to := min(from+f.Limit, len(out))
	return out[from:to], len(out), nil
}

type fakeUserRepo struct{ store *memStore }

func (r fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, existing := range r.store.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	r.store.users[u.ID] = *u
	return nil
}

func (r fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	return &u, nil
}

func (r fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r fakeUserRepo) UpdateRole(_ context.Context, id string, role models.UserRole) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	u, ok := r.store.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	r.store.users[id] = u
	return nil
}

type fakeUploader struct {
	mu      sync.Mutex
	objects map[string]string
	deleted []string
	failErr error
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: make(map[string]string)}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failErr != nil {
		return nil, u.failErr
	}
	if _, err := io.ReadAll(reader); err != nil {
		return nil, err
	}
	u.objects[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

type recordingLiveUpdater struct {
	mu      sync.Mutex
	updates []string
}

func (r *recordingLiveUpdater) ResultsUpdated(tournamentID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, tournamentID)
}

var errBoom = errors.New("boom")

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

package services

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/scoring"
	"github.com/Dosada05/poker-club/storage"
	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

type TournamentService interface {
	CreateTournament(ctx context.Context, actorID string, input TournamentInput) (*models.Tournament, error)
	UpdateTournament(ctx context.Context, actorID, tournamentID string, input TournamentInput) (*models.Tournament, error)
	DeleteTournament(ctx context.Context, actorID, tournamentID string) error
	ListTournaments(ctx context.Context, input ListTournamentsInput) (*TournamentList, error)
	GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error)
	UploadTournamentLogo(ctx context.Context, actorID, tournamentID string, file io.Reader, contentType string) (*models.Tournament, error)
}

// TournamentInput is shared by create and update. Date accepts any format
// dateparse understands ("2024-03-15", "15.03.2024 19:00", RFC3339, ...).
type TournamentInput struct {
	Name        string   `json:"name"`
	Date        string   `json:"date"`
	Location    string   `json:"location"`
	Description *string  `json:"description,omitempty"`
	BuyIn       *float64 `json:"buy_in,omitempty"`
	RebuyAmount *float64 `json:"rebuy_amount,omitempty"`
}

type ListTournamentsInput struct {
	Search string
	Page   int
	Limit  int
}

type TournamentList struct {
	Tournaments []models.Tournament `json:"tournaments"`
	models.Page
}

type tournamentService struct {
	tx                repositories.Transactor
	tournamentRepo    repositories.TournamentRepository
	participationRepo repositories.ParticipationRepository
	recalculator      *Recalculator
	audit             AuditService
	uploader          storage.FileUploader
	live              LiveUpdater
	logger            *slog.Logger
}

func NewTournamentService(
	tx repositories.Transactor,
	tournamentRepo repositories.TournamentRepository,
	participationRepo repositories.ParticipationRepository,
	recalculator *Recalculator,
	audit AuditService,
	uploader storage.FileUploader,
	live LiveUpdater,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		tx:                tx,
		tournamentRepo:    tournamentRepo,
		participationRepo: participationRepo,
		recalculator:      recalculator,
		audit:             audit,
		uploader:          uploader,
		live:              liveUpdaterOrNop(live),
		logger:            logger,
	}
}

// apply валидирует input и переносит значения в турнир.
func (in TournamentInput) apply(t *models.Tournament) error {
	verr := newValidationError()

	name := strings.TrimSpace(in.Name)
	location := strings.TrimSpace(in.Location)
	verr.Check(name != "", "name", "must be provided")
	verr.Check(location != "", "location", "must be provided")

	var date time.Time
	if raw := strings.TrimSpace(in.Date); raw == "" {
		verr.Add("date", "must be provided")
	} else if parsed, err := dateparse.ParseIn(raw, time.UTC); err != nil {
		verr.Add("date", "must be a valid date")
	} else {
		date = parsed
	}

	buyIn, rebuy := 0.0, 0.0
	if in.BuyIn != nil {
		buyIn = *in.BuyIn
	}
	if in.RebuyAmount != nil {
		rebuy = *in.RebuyAmount
	}
	verr.Check(buyIn >= 0, "buy_in", "must not be negative")
	verr.Check(rebuy >= 0, "rebuy_amount", "must not be negative")

	if err := verr.OrNil(); err != nil {
		return err
	}

	t.Name = name
	t.Location = location
	t.Date = date
	t.BuyIn = buyIn
	t.RebuyAmount = rebuy
	t.Description = trimmedPtr(in.Description)
	if t.Description != nil && *t.Description == "" {
		t.Description = nil
	}
	return nil
}

func (s *tournamentService) CreateTournament(ctx context.Context, actorID string, input TournamentInput) (*models.Tournament, error) {
	tournament := &models.Tournament{ID: uuid.NewString()}
	if err := input.apply(tournament); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Create(ctx, tournament); err != nil {
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}

	recordOutsideTx(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actorID,
		Action:     models.AuditActionCreate,
		EntityType: models.AuditEntityTournament,
		EntityID:   tournament.ID,
		Details:    input,
	})
	return tournament, nil
}

func (s *tournamentService) UpdateTournament(ctx context.Context, actorID, tournamentID string, input TournamentInput) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	if err := input.apply(tournament); err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.Update(ctx, tournament); err != nil {
		return nil, mapRepositoryError(err)
	}
	populateTournamentLogoURL(tournament, s.uploader)

	recordOutsideTx(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actorID,
		Action:     models.AuditActionUpdate,
		EntityType: models.AuditEntityTournament,
		EntityID:   tournament.ID,
		Details:    input,
	})
	// Изменение бай-ина меняет total cost в таблице участников.
	s.live.ResultsUpdated(tournament.ID)
	return tournament, nil
}

// DeleteTournament удаляет участия и турнир, затем пересчитывает статистику
// всех бывших участников. Всё в одной транзакции.
func (s *tournamentService) DeleteTournament(ctx context.Context, actorID, tournamentID string) error {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return mapRepositoryError(err)
	}

	var playerIDs []string
	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		parts, err := s.participationRepo.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to list participants: %w", err)
		}
		for _, p := range parts {
			playerIDs = append(playerIDs, p.PlayerID)
		}

		if err := s.participationRepo.DeleteByTournament(ctx, exec, tournamentID); err != nil {
			return fmt.Errorf("failed to delete participations: %w", err)
		}
		if err := s.tournamentRepo.Delete(ctx, exec, tournamentID); err != nil {
			return mapRepositoryError(err)
		}
		if err := s.recalculator.RecomputePlayers(ctx, exec, playerIDs); err != nil {
			return err
		}

		return s.audit.Record(ctx, exec, AuditEntry{
			ActorID:    actorID,
			Action:     models.AuditActionDelete,
			EntityType: models.AuditEntityTournament,
			EntityID:   tournamentID,
			Details:    map[string]interface{}{"name": tournament.Name, "players": playerIDs},
		})
	})
	if err != nil {
		return err
	}

	deleteObjectQuietly(ctx, s.uploader, tournament.LogoKey, s.logger)
	s.live.ResultsUpdated(tournamentID)
	s.logger.InfoContext(ctx, "tournament deleted",
		slog.String("tournament_id", tournamentID),
		slog.Int("players_recomputed", len(playerIDs)),
	)
	return nil
}

func (s *tournamentService) ListTournaments(ctx context.Context, input ListTournamentsInput) (*TournamentList, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	tournaments, total, err := s.tournamentRepo.List(ctx, repositories.ListTournamentsFilter{
		Search: strings.TrimSpace(input.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list tournaments: %w", err)
	}
	for i := range tournaments {
		populateTournamentLogoURL(&tournaments[i], s.uploader)
	}
	return &TournamentList{Tournaments: tournaments, Page: models.NewPage(page, limit, total)}, nil
}

// GetTournament returns the tournament with its participants sorted by rank,
// unranked last. Points of ranked participants are derived from the current ranks.
func (s *tournamentService) GetTournament(ctx context.Context, tournamentID string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	parts, err := s.participationRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	derived := applyPointChanges(parts, scoring.AssignPoints(toEntries(parts)))

	tournament.Participants = make([]models.TournamentParticipant, len(derived))
	for i, p := range derived {
		tournament.Participants[i] = models.TournamentParticipant{
			PlayerID:  p.PlayerID,
			Name:      p.PlayerName,
			Rank:      p.Rank,
			Points:    p.Points,
			Bounty:    p.Bounty,
			Reentries: p.Reentries,
			TotalCost: tournament.TotalCost(p.Reentries),
		}
	}
	slices.SortStableFunc(tournament.Participants, compareByRankNullsLast)

	populateTournamentLogoURL(tournament, s.uploader)
	return tournament, nil
}

func compareByRankNullsLast(a, b models.TournamentParticipant) int {
	switch {
	case a.Rank == nil && b.Rank == nil:
		return 0
	case a.Rank == nil:
		return 1
	case b.Rank == nil:
		return -1
	default:
		return cmp.Compare(*a.Rank, *b.Rank)
	}
}

func (s *tournamentService) UploadTournamentLogo(ctx context.Context, actorID, tournamentID string, file io.Reader, contentType string) (*models.Tournament, error) {
	tournament, err := s.tournamentRepo.GetByID(ctx, tournamentID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	key, err := uploadImage(ctx, s.uploader, storage.FolderTournamentLogos, tournamentID, file, contentType)
	if err != nil {
		return nil, err
	}

	if err := s.tournamentRepo.UpdateLogoKey(ctx, tournamentID, &key); err != nil {
		deleteObjectQuietly(ctx, s.uploader, &key, s.logger)
		return nil, mapRepositoryError(err)
	}

	oldKey := tournament.LogoKey
	tournament.LogoKey = &key
	deleteObjectQuietly(ctx, s.uploader, oldKey, s.logger)
	populateTournamentLogoURL(tournament, s.uploader)

	recordOutsideTx(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actorID,
		Action:     models.AuditActionUpdate,
		EntityType: models.AuditEntityTournament,
		EntityID:   tournamentID,
		Details:    map[string]string{"logo_key": key},
	})
	return tournament, nil
}

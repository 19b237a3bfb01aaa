package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
)

type ParticipationService interface {
	AddPlayer(ctx context.Context, actorID, tournamentID, playerID string) (*models.Participation, error)
	RemovePlayer(ctx context.Context, actorID, tournamentID, playerID string) error
	UpdateResult(ctx context.Context, actorID, tournamentID, playerID string, input UpdateResultInput) (*models.Participation, error)
	ListParticipants(ctx context.Context, tournamentID string) ([]models.Participation, error)
}

// UpdateResultInput is a partial update: nil fields are left as they are.
// ClearRank removes the rank; the stored points stay untouched.
type UpdateResultInput struct {
	Rank      *int     `json:"rank,omitempty"`
	ClearRank bool     `json:"clear_rank,omitempty"`
	Points    *int     `json:"points,omitempty"`
	Bounty    *float64 `json:"bounty,omitempty"`
	Reentries *int     `json:"reentries,omitempty"`
}

func (in UpdateResultInput) validate() error {
	verr := newValidationError()
	if in.Rank != nil {
		verr.Check(*in.Rank > 0, "rank", "must be a positive integer")
		verr.Check(!in.ClearRank, "clear_rank", "cannot be combined with rank")
	}
	if in.Points != nil {
		verr.Check(*in.Points >= 0, "points", "must not be negative")
	}
	if in.Bounty != nil {
		verr.Check(*in.Bounty >= 0, "bounty", "must not be negative")
	}
	if in.Reentries != nil {
		verr.Check(*in.Reentries >= 0, "reentries", "must not be negative")
	}
	verr.Check(in.Rank != nil || in.ClearRank || in.Points != nil || in.Bounty != nil || in.Reentries != nil,
		"body", "at least one field must be provided")
	return verr.OrNil()
}

func (in UpdateResultInput) apply(p *models.Participation) {
	switch {
	case in.ClearRank:
		p.Rank = nil
	case in.Rank != nil:
		rank := *in.Rank
		p.Rank = &rank
	}
	if in.Points != nil {
		points := *in.Points
		p.Points = &points
	}
	if in.Bounty != nil {
		bounty := *in.Bounty
		p.Bounty = &bounty
	}
	if in.Reentries != nil {
		p.Reentries = *in.Reentries
	}
}

type participationService struct {
	tx                repositories.Transactor
	playerRepo        repositories.PlayerRepository
	tournamentRepo    repositories.TournamentRepository
	participationRepo repositories.ParticipationRepository
	recalculator      *Recalculator
	health            HealthService
	audit             AuditService
	live              LiveUpdater
	logger            *slog.Logger
}

func NewParticipationService(
	tx repositories.Transactor,
	playerRepo repositories.PlayerRepository,
	tournamentRepo repositories.TournamentRepository,
	participationRepo repositories.ParticipationRepository,
	recalculator *Recalculator,
	health HealthService,
	audit AuditService,
	live LiveUpdater,
	logger *slog.Logger,
) ParticipationService {
	return &participationService{
		tx:                tx,
		playerRepo:        playerRepo,
		tournamentRepo:    tournamentRepo,
		participationRepo: participationRepo,
		recalculator:      recalculator,
		health:            health,
		audit:             audit,
		live:              liveUpdaterOrNop(live),
		logger:            logger,
	}
}

func (s *participationService) ensureExists(ctx context.Context, tournamentID, playerID string) error {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return mapRepositoryError(err)
	}
	if _, err := s.playerRepo.GetByID(ctx, playerID); err != nil {
		return mapRepositoryError(err)
	}
	return nil
}

// AddPlayer регистрирует игрока без места. Очки турнира не пересчитываются,
// меняется только статистика самого игрока (число турниров).
func (s *participationService) AddPlayer(ctx context.Context, actorID, tournamentID, playerID string) (*models.Participation, error) {
	if err := s.health.Check(ctx); err != nil {
		return nil, err
	}
	if err := s.ensureExists(ctx, tournamentID, playerID); err != nil {
		return nil, err
	}

	var created *models.Participation
	err := s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		p := &models.Participation{TournamentID: tournamentID, PlayerID: playerID}
		if err := s.participationRepo.Create(ctx, exec, p); err != nil {
			return mapRepositoryError(err)
		}
		if _, err := s.recalculator.RecomputePlayer(ctx, exec, playerID); err != nil {
			return err
		}
		created = p

		return s.audit.Record(ctx, exec, AuditEntry{
			ActorID:    actorID,
			Action:     models.AuditActionCreate,
			EntityType: models.AuditEntityParticipation,
			EntityID:   participationEntityID(tournamentID, playerID),
			Details:    map[string]string{"tournament_id": tournamentID, "player_id": playerID},
		})
	})
	if err != nil {
		return nil, err
	}

	s.live.ResultsUpdated(tournamentID)
	return created, nil
}

func (s *participationService) RemovePlayer(ctx context.Context, actorID, tournamentID, playerID string) error {
	err := s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.participationRepo.Delete(ctx, exec, tournamentID, playerID); err != nil {
			return mapRepositoryError(err)
		}
		if err := s.recalculator.RefreshTournament(ctx, exec, tournamentID, playerID); err != nil {
			return err
		}

		return s.audit.Record(ctx, exec, AuditEntry{
			ActorID:    actorID,
			Action:     models.AuditActionDelete,
			EntityType: models.AuditEntityParticipation,
			EntityID:   participationEntityID(tournamentID, playerID),
			Details:    map[string]string{"tournament_id": tournamentID, "player_id": playerID},
		})
	})
	if err != nil {
		return err
	}

	s.live.ResultsUpdated(tournamentID)
	return nil
}

// UpdateResult applies the patch, re-assigns points for the whole tournament
// and recomputes statistics of every participant in one transaction.
func (s *participationService) UpdateResult(ctx context.Context, actorID, tournamentID, playerID string, input UpdateResultInput) (*models.Participation, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	var updated *models.Participation
	err := s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		p, err := s.participationRepo.Get(ctx, exec, tournamentID, playerID)
		if err != nil {
			return mapRepositoryError(err)
		}

		input.apply(p)
		if err := s.participationRepo.Update(ctx, exec, p); err != nil {
			return mapRepositoryError(err)
		}
		if err := s.recalculator.RefreshTournament(ctx, exec, tournamentID); err != nil {
			return err
		}

		updated, err = s.participationRepo.Get(ctx, exec, tournamentID, playerID)
		if err != nil {
			return mapRepositoryError(err)
		}

		return s.audit.Record(ctx, exec, AuditEntry{
			ActorID:    actorID,
			Action:     models.AuditActionUpdate,
			EntityType: models.AuditEntityParticipation,
			EntityID:   participationEntityID(tournamentID, playerID),
			Details:    input,
		})
	})
	if err != nil {
		return nil, err
	}

	s.live.ResultsUpdated(tournamentID)
	s.logger.InfoContext(ctx, "tournament result updated",
		slog.String("tournament_id", tournamentID),
		slog.String("player_id", playerID),
	)
	return updated, nil
}

func (s *participationService) ListParticipants(ctx context.Context, tournamentID string) ([]models.Participation, error) {
	if _, err := s.tournamentRepo.GetByID(ctx, tournamentID); err != nil {
		return nil, mapRepositoryError(err)
	}
	parts, err := s.participationRepo.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	if parts == nil {
		parts = []models.Participation{}
	}
	return parts, nil
}

func participationEntityID(tournamentID, playerID string) string {
	return tournamentID + ":" + playerID
}

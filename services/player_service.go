package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type PlayerService interface {
	CreatePlayer(ctx context.Context, actorID string, input CreatePlayerInput) (*models.Player, error)
	UpdatePlayer(ctx context.Context, actorID, playerID string, input UpdatePlayerInput) (*models.Player, error)
	DeletePlayer(ctx context.Context, actorID, playerID string) error
	ListPlayers(ctx context.Context, input ListPlayersInput) (*PlayerList, error)
	GetPlayerProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error)
	UploadPlayerAvatar(ctx context.Context, actorID, playerID string, file io.Reader, contentType string) (*models.Player, error)
}

type CreatePlayerInput struct {
	Name     string `json:"name"`
	Telegram string `json:"telegram"`
	Phone    string `json:"phone"`
}

// UpdatePlayerInput: telegram и phone меняются, только если переданы.
type UpdatePlayerInput struct {
	Name     string  `json:"name"`
	Telegram *string `json:"telegram,omitempty"`
	Phone    *string `json:"phone,omitempty"`
}

type ListPlayersInput struct {
	Search string
	Page   int
	Limit  int
}

type PlayerList struct {
	Players []models.Player `json:"players"`
	models.Page
}

type playerService struct {
	tx                repositories.Transactor
	playerRepo        repositories.PlayerRepository
	participationRepo repositories.ParticipationRepository
	statsRepo         repositories.StatisticsRepository
	recalculator      *Recalculator
	health            HealthService
	audit             AuditService
	uploader          storage.FileUploader
	live              LiveUpdater
	logger            *slog.Logger
}

func NewPlayerService(
	tx repositories.Transactor,
	playerRepo repositories.PlayerRepository,
	participationRepo repositories.ParticipationRepository,
	statsRepo repositories.StatisticsRepository,
	recalculator *Recalculator,
	health HealthService,
	audit AuditService,
	uploader storage.FileUploader,
	live LiveUpdater,
	logger *slog.Logger,
) PlayerService {
	return &playerService{
		tx:                tx,
		playerRepo:        playerRepo,
		participationRepo: participationRepo,
		statsRepo:         statsRepo,
		recalculator:      recalculator,
		health:            health,
		audit:             audit,
		uploader:          uploader,
		live:              liveUpdaterOrNop(live),
		logger:            logger,
	}
}

func (s *playerService) CreatePlayer(ctx context.Context, actorID string, input CreatePlayerInput) (*models.Player, error) {
	player := &models.Player{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(input.Name),
		Telegram: strings.TrimSpace(input.Telegram),
		Phone:    strings.TrimSpace(input.Phone),
	}

	verr := newValidationError()
	verr.Check(player.Name != "", "name", "must be provided")
	verr.Check(player.Telegram != "", "telegram", "must be provided")
	verr.Check(player.Phone != "", "phone", "must be provided")
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.health.Check(ctx); err != nil {
		return nil, err
	}

	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	recordOutsideTx(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actorID,
		Action:     models.AuditActionCreate,
		EntityType: models.AuditEntityPlayer,
		EntityID:   player.ID,
		Details:    input,
	})
	return player, nil
}

func (s *playerService) UpdatePlayer(ctx context.Context, actorID, playerID string, input UpdatePlayerInput) (*models.Player, error) {
	name := strings.TrimSpace(input.Name)
	telegram := trimmedPtr(input.Telegram)
	phone := trimmedPtr(input.Phone)

	verr := newValidationError()
	verr.Check(name != "", "name", "must be provided")
	verr.Check(telegram == nil || *telegram != "", "telegram", "must not be empty")
	verr.Check(phone == nil || *phone != "", "phone", "must not be empty")
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	if err := s.health.Check(ctx); err != nil {
		return nil, err
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	player.Name = name
	if telegram != nil {
		player.Telegram = *telegram
	}
	if phone != nil {
		player.Phone = *phone
	}

	if err := s.playerRepo.Update(ctx, player); err != nil {
		return nil, mapRepositoryError(err)
	}
	populatePlayerAvatarURL(player, s.uploader)

	recordOutsideTx(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actorID,
		Action:     models.AuditActionUpdate,
		EntityType: models.AuditEntityPlayer,
		EntityID:   player.ID,
		Details:    input,
	})
	return player, nil
}

// DeletePlayer удаляет статистику, участия и самого игрока в одной транзакции,
// затем пересчитывает очки и статистику в турнирах, где он играл.
func (s *playerService) DeletePlayer(ctx context.Context, actorID, playerID string) error {
	if err := s.health.Check(ctx); err != nil {
		return err
	}

	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return mapRepositoryError(err)
	}

	var affectedTournaments []string
	err = s.tx.WithinTransaction(ctx, func(exec repositories.SQLExecutor) error {
		ids, err := s.participationRepo.ListTournamentIDsByPlayer(ctx, exec, playerID)
		if err != nil {
			return fmt.Errorf("failed to list tournaments of player: %w", err)
		}
		affectedTournaments = ids

		if err := s.statsRepo.DeleteByPlayer(ctx, exec, playerID); err != nil {
			return fmt.Errorf("failed to delete player statistics: %w", err)
		}
		if err := s.participationRepo.DeleteByPlayer(ctx, exec, playerID); err != nil {
			return fmt.Errorf("failed to delete player participations: %w", err)
		}
		if err := s.playerRepo.Delete(ctx, exec, playerID); err != nil {
			return mapRepositoryError(err)
		}

		for _, tournamentID := range affectedTournaments {
			if err := s.recalculator.RefreshTournament(ctx, exec, tournamentID); err != nil {
				return err
			}
		}

		return s.audit.Record(ctx, exec, AuditEntry{
			ActorID:    actorID,
			Action:     models.AuditActionDelete,
			EntityType: models.AuditEntityPlayer,
			EntityID:   playerID,
			Details:    map[string]interface{}{"name": player.Name, "tournaments": affectedTournaments},
		})
	})
	if err != nil {
		return err
	}

	deleteObjectQuietly(ctx, s.uploader, player.AvatarKey, s.logger)
	for _, tournamentID := range affectedTournaments {
		s.live.ResultsUpdated(tournamentID)
	}
	s.logger.InfoContext(ctx, "player deleted",
		slog.String("player_id", playerID),
		slog.Int("tournaments_recalculated", len(affectedTournaments)),
	)
	return nil
}

func (s *playerService) ListPlayers(ctx context.Context, input ListPlayersInput) (*PlayerList, error) {
	page, limit := normalizePage(input.Page, input.Limit)

	players, total, err := s.playerRepo.List(ctx, repositories.ListPlayersFilter{
		Search: strings.TrimSpace(input.Search),
		Limit:  limit,
		Offset: (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	for i := range players {
		populatePlayerAvatarURL(&players[i], s.uploader)
	}

	return &PlayerList{Players: players, Page: models.NewPage(page, limit, total)}, nil
}

func (s *playerService) GetPlayerProfile(ctx context.Context, playerID string) (*models.PlayerProfile, error) {
	var (
		player  *models.Player
		stats   *models.PlayerStatistics
		history []models.TournamentHistoryItem
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.playerRepo.GetByID(gctx, playerID)
		if err != nil {
			return mapRepositoryError(err)
		}
		player = p
		return nil
	})
	g.Go(func() error {
		st, err := s.statsRepo.GetByPlayerID(gctx, playerID)
		if err != nil {
			if errors.Is(err, repositories.ErrStatisticsNotFound) {
				return nil
			}
			return fmt.Errorf("failed to load player statistics: %w", err)
		}
		stats = st
		return nil
	})
	g.Go(func() error {
		h, err := s.participationRepo.ListHistoryByPlayer(gctx, playerID)
		if err != nil {
			return fmt.Errorf("failed to load player history: %w", err)
		}
		history = h
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	populatePlayerAvatarURL(player, s.uploader)
	profile := &models.PlayerProfile{
		Player:     player,
		Statistics: models.PlayerStatistics{PlayerID: playerID},
		History:    history,
	}
	if stats != nil {
		profile.Statistics = *stats
	}
	if profile.History == nil {
		profile.History = []models.TournamentHistoryItem{}
	}
	return profile, nil
}

func (s *playerService) UploadPlayerAvatar(ctx context.Context, actorID, playerID string, file io.Reader, contentType string) (*models.Player, error) {
	player, err := s.playerRepo.GetByID(ctx, playerID)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	key, err := uploadImage(ctx, s.uploader, storage.FolderPlayerAvatars, playerID, file, contentType)
	if err != nil {
		return nil, err
	}

	if err := s.playerRepo.UpdateAvatarKey(ctx, playerID, &key); err != nil {
		deleteObjectQuietly(ctx, s.uploader, &key, s.logger)
		return nil, mapRepositoryError(err)
	}

	oldKey := player.AvatarKey
	player.AvatarKey = &key
	deleteObjectQuietly(ctx, s.uploader, oldKey, s.logger)
	populatePlayerAvatarURL(player, s.uploader)

	recordOutsideTx(ctx, s.audit, s.logger, AuditEntry{
		ActorID:    actorID,
		Action:     models.AuditActionUpdate,
		EntityType: models.AuditEntityPlayer,
		EntityID:   playerID,
		Details:    map[string]string{"avatar_key": key},
	})
	return player, nil
}

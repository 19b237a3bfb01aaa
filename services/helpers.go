package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"

	"github.com/Dosada05/poker-club/models"
	"github.com/Dosada05/poker-club/repositories"
	"github.com/Dosada05/poker-club/storage"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 1000
)

// LiveUpdater is notified after a tournament's results changed.
type LiveUpdater interface {
	ResultsUpdated(tournamentID string)
}

type nopLiveUpdater struct{}

func (nopLiveUpdater) ResultsUpdated(string) {}

func liveUpdaterOrNop(u LiveUpdater) LiveUpdater {
	if u == nil {
		return nopLiveUpdater{}
	}
	return u
}

// normalizePage приводит page/limit к допустимым значениям.
// page is capped so that (page-1)*limit never overflows int.
func normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	if page-1 > math.MaxInt/limit {
		page = math.MaxInt/limit + 1
	}
	return page, limit
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

// mapRepositoryError переводит ошибки репозиториев в ошибки сервисов.
func mapRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrPlayerNotFound):
		return ErrPlayerNotFound
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentInUse):
		return ErrTournamentInUse
	case errors.Is(err, repositories.ErrParticipationNotFound):
		return ErrParticipationNotFound
	case errors.Is(err, repositories.ErrParticipationExists):
		return ErrAlreadyRegistered
	case errors.Is(err, repositories.ErrParticipationInvalidRef):
		return ErrNotFound
	case errors.Is(err, repositories.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repositories.ErrUserEmailConflict):
		return ErrUserEmailConflict
	case errors.Is(err, storage.ErrStorageUnavailable):
		return ErrStorageUnavailable
	default:
		return err
	}
}

func populatePlayerAvatarURL(p *models.Player, uploader storage.FileUploader) {
	if p == nil || p.AvatarKey == nil || *p.AvatarKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*p.AvatarKey); url != "" {
		p.AvatarURL = &url
	}
}

func populateTournamentLogoURL(t *models.Tournament, uploader storage.FileUploader) {
	if t == nil || t.LogoKey == nil || *t.LogoKey == "" || uploader == nil {
		return
	}
	if url := uploader.GetPublicURL(*t.LogoKey); url != "" {
		t.LogoURL = &url
	}
}

// deleteObjectQuietly удаляет объект из хранилища, ошибки только логируются.
func deleteObjectQuietly(ctx context.Context, uploader storage.FileUploader, key *string, logger *slog.Logger) {
	if key == nil || *key == "" || uploader == nil {
		return
	}
	if err := uploader.Delete(ctx, *key); err != nil {
		logger.WarnContext(ctx, "failed to delete stored object", slog.String("key", *key), slog.Any("error", err))
	}
}

// uploadImage stores an image under folder/ownerID and returns its key.
func uploadImage(ctx context.Context, uploader storage.FileUploader, folder, ownerID string, file io.Reader, contentType string) (string, error) {
	ext, err := storage.ExtensionFromContentType(contentType)
	if err != nil {
		verr := newValidationError()
		verr.Add("file", err.Error())
		return "", verr
	}
	key := storage.ObjectKey(folder, ownerID, ext)
	if _, err := uploader.Upload(ctx, key, contentType, file); err != nil {
		return "", mapRepositoryError(err)
	}
	return key, nil
}

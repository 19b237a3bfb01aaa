package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/poker-club/repositories"
)

const healthCheckTimeout = 3 * time.Second

type HealthService interface {
	// Check returns ErrDatabaseUnavailable when the database does not answer.
	Check(ctx context.Context) error
	Status(ctx context.Context) HealthStatus
}

type HealthStatus struct {
	Healthy bool   `json:"healthy"`
	Error   string `json:"error,omitempty"`
}

type healthService struct {
	repo   repositories.HealthRepository
	logger *slog.Logger
}

func NewHealthService(repo repositories.HealthRepository, logger *slog.Logger) HealthService {
	return &healthService{repo: repo, logger: logger}
}

func (s *healthService) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := s.repo.Ping(ctx); err != nil {
		s.logger.WarnContext(ctx, "database health check failed", slog.Any("error", err))
		return fmt.Errorf("%w: %v", ErrDatabaseUnavailable, err)
	}
	return nil
}

func (s *healthService) Status(ctx context.Context) HealthStatus {
	if err := s.Check(ctx); err != nil {
		return HealthStatus{Healthy: false, Error: err.Error()}
	}
	return HealthStatus{Healthy: true}
}

package service

import (
	"context"
	"errors"
	"fmt"

	"smarthub/internal/domain"
	"smarthub/internal/repository"
	"smarthub/internal/store"

	"go.uber.org/zap"
)

// MaxTankList GET /tank 最多返回的条数
const MaxTankList = 999

// TankService 水箱 CRUD
type TankService struct {
	tanks  repository.TankRepository
	logger *zap.Logger
}

func NewTankService(tanks repository.TankRepository, logger *zap.Logger) *TankService {
	return &TankService{tanks: tanks, logger: logger}
}

// CreateTankRequest POST /tank 请求体
type CreateTankRequest struct {
	Location *string  `json:"location"`
	Lat      *float64 `json:"lat"`
	Long     *float64 `json:"long"`
}

func tankNotFound(id string) error {
	return &NotFoundError{Message: fmt.Sprintf("Tank of id: %s not found.", id)}
}

func (s *TankService) ListTanks(ctx context.Context) ([]*domain.Tank, error) {
	return s.tanks.List(ctx, MaxTankList)
}

func (s *TankService) GetTank(ctx context.Context, id string) (*domain.Tank, error) {
	if !store.IsObjectID(id) {
		return nil, tankNotFound(id)
	}
	tank, err := s.tanks.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, tankNotFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tank: %w", err)
	}
	return tank, nil
}

func (s *TankService) CreateTank(ctx context.Context, req CreateTankRequest) (*domain.Tank, error) {
	created, err := s.tanks.Create(ctx, &domain.Tank{
		Location: req.Location,
		Lat:      req.Lat,
		Long:     req.Long,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create tank: %w", err)
	}
	s.logger.Info("Tank created", zap.String("tank_id", created.ID))
	return created, nil
}

// UpdateTank sets only the fields present in patch.
func (s *TankService) UpdateTank(ctx context.Context, id string, patch domain.TankPatch) (*domain.Tank, error) {
	if !store.IsObjectID(id) {
		return nil, tankNotFound(id)
	}
	updated, err := s.tanks.Update(ctx, id, patch)
	if errors.Is(err, store.ErrNotFound) {
		return nil, tankNotFound(id)
	}
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *TankService) DeleteTank(ctx context.Context, id string) error {
	if !store.IsObjectID(id) {
		return tankNotFound(id)
	}
	err := s.tanks.Delete(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return tankNotFound(id)
	}
	if err != nil {
		return err
	}
	s.logger.Info("Tank deleted", zap.String("tank_id", id))
	return nil
}

package repository

import (
	"context"
	"fmt"

	"smarthub/internal/domain"
	"smarthub/internal/store"
)

type DocumentSampleRepository struct {
	coll store.Collection
}

func NewSampleRepository(coll store.Collection) *DocumentSampleRepository {
	return &DocumentSampleRepository{coll: coll}
}

var _ SampleRepository = (*DocumentSampleRepository)(nil)

func (r *DocumentSampleRepository) Insert(ctx context.Context, sample *domain.SensorSample) (*domain.SensorSample, error) {
	id, err := r.coll.Insert(ctx, sample)
	if err != nil {
		return nil, fmt.Errorf("failed to insert sample: %w", err)
	}
	stored := *sample
	stored.ID = id
	return &stored, nil
}

func (r *DocumentSampleRepository) Latest(ctx context.Context) (*domain.SensorSample, error) {
	var s domain.SensorSample
	if err := r.coll.Latest(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *DocumentSampleRepository) Recent(ctx context.Context, limit int) ([]*domain.SensorSample, error) {
	samples := []*domain.SensorSample{}
	if err := r.coll.Recent(ctx, limit, &samples); err != nil {
		return nil, fmt.Errorf("failed to list samples: %w", err)
	}
	return samples, nil
}

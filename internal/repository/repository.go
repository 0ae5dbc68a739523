package repository

import (
	"context"

	"smarthub/internal/domain"
	"smarthub/internal/store"
)

// 集合名称（与原 tank_man 数据库保持一致）
const (
	CollectionPreferences = "preferences"
	CollectionSamples     = "updates"
	CollectionProfiles    = "profile"
	CollectionTanks       = "tanks"
)

// PreferenceRepository 用户偏好单例
type PreferenceRepository interface {
	// Get returns store.ErrNotFound until the first upsert.
	Get(ctx context.Context) (*domain.UserPreference, error)
	// Upsert replaces the singleton and returns the stored record.
	Upsert(ctx context.Context, pref *domain.UserPreference) (*domain.UserPreference, error)
}

// SampleRepository 传感器采样（只追加）
type SampleRepository interface {
	Insert(ctx context.Context, sample *domain.SensorSample) (*domain.SensorSample, error)
	Latest(ctx context.Context) (*domain.SensorSample, error)
	// Recent returns up to limit samples, newest first.
	Recent(ctx context.Context, limit int) ([]*domain.SensorSample, error)
}

type ProfileRepository interface {
	Create(ctx context.Context, profile *domain.Profile) (*domain.Profile, error)
	Latest(ctx context.Context) (*domain.Profile, error)
	// PruneExcept deletes every profile but id.
	PruneExcept(ctx context.Context, id string) (int64, error)
}

type TankRepository interface {
	List(ctx context.Context, limit int) ([]*domain.Tank, error)
	Get(ctx context.Context, id string) (*domain.Tank, error)
	Create(ctx context.Context, tank *domain.Tank) (*domain.Tank, error)
	// Update returns store.ErrNotFound when no tank matches id.
	Update(ctx context.Context, id string, patch domain.TankPatch) (*domain.Tank, error)
	Delete(ctx context.Context, id string) error
}

// Repositories bundles every repository backed by one document store.
type Repositories struct {
	Preferences PreferenceRepository
	Samples     SampleRepository
	Profiles    ProfileRepository
	Tanks       TankRepository
}

func New(s store.Store) *Repositories {
	return &Repositories{
		Preferences: NewPreferenceRepository(s.Collection(CollectionPreferences)),
		Samples:     NewSampleRepository(s.Collection(CollectionSamples)),
		Profiles:    NewProfileRepository(s.Collection(CollectionProfiles)),
		Tanks:       NewTankRepository(s.Collection(CollectionTanks)),
	}
}

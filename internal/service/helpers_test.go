package service

import (
	"context"
	"sync"
	"time"

	"smarthub/internal/domain"
	"smarthub/internal/schedule"
	"smarthub/internal/store"
)

func ptr[T any](v T) *T { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// fakeSunset 固定返回日落时间并统计调用次数
type fakeSunset struct {
	mu    sync.Mutex
	at    schedule.TimeOfDay
	err   error
	calls int
}

func (f *fakeSunset) Sunset(ctx context.Context) (schedule.TimeOfDay, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.at, f.err
}

// fakeKV 内存 KV，可注入读写错误
type fakeKV struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
	setErr error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string]string{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) Get(ctx context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.data[key]
	if !ok {
		return "", store.ErrMiss
	}
	return v, nil
}

func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

// recordingPublisher 记录下发的执行器状态
type recordingPublisher struct {
	mu        sync.Mutex
	published []*domain.SensorSample
	err       error
}

func (p *recordingPublisher) PublishState(ctx context.Context, sample *domain.SensorSample) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.published = append(p.published, sample)
	return p.err
}

// failingSamples 写入总是失败的采样仓库
type failingSamples struct {
	err error
}

func (f failingSamples) Insert(ctx context.Context, s *domain.SensorSample) (*domain.SensorSample, error) {
	return nil, f.err
}

func (f failingSamples) Latest(ctx context.Context) (*domain.SensorSample, error) {
	return nil, f.err
}

func (f failingSamples) Recent(ctx context.Context, limit int) ([]*domain.SensorSample, error) {
	return nil, f.err
}

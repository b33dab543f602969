package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"gorm.io/gorm"

	"iesa-portal/backend/internal/model"
)

// ── Mock WorkspaceRepository ──

type mockWorkspaceRepo struct {
	workspaces map[string]*model.Workspace // userID → workspace
	failSave   bool
}

func newMockWorkspaceRepo() *mockWorkspaceRepo {
	return &mockWorkspaceRepo{workspaces: make(map[string]*model.Workspace)}
}

func (m *mockWorkspaceRepo) GetByUser(_ context.Context, userID string) (*model.Workspace, error) {
	if ws, ok := m.workspaces[userID]; ok {
		return ws, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkspaceRepo) Create(_ context.Context, ws *model.Workspace) error {
	if ws.WorkspaceID == "" {
		ws.WorkspaceID = "ws-" + ws.UserID
	}
	m.workspaces[ws.UserID] = ws
	return nil
}

func (m *mockWorkspaceRepo) Save(_ context.Context, ws *model.Workspace) error {
	if m.failSave {
		return errors.New("mock: save failed")
	}
	ws.Version++
	ws.UpdatedAt = time.Now()
	m.workspaces[ws.UserID] = ws
	return nil
}

// ── Mock SnapshotRepository ──

type mockSnapshotRepo struct {
	snapshots  []*model.Snapshot
	failCreate bool
}

func newMockSnapshotRepo() *mockSnapshotRepo {
	return &mockSnapshotRepo{}
}

func (m *mockSnapshotRepo) Create(_ context.Context, snapshot *model.Snapshot) error {
	if m.failCreate {
		return errors.New("mock: storage full")
	}
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

func (m *mockSnapshotRepo) ListByUser(_ context.Context, userID string) ([]model.Snapshot, error) {
	var result []model.Snapshot
	for _, s := range m.snapshots {
		if s.UserID == userID {
			result = append(result, *s)
		}
	}
	// 创建时间倒序；同刻按插入序倒序（与数据库索引序一致）
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (m *mockSnapshotRepo) GetByID(_ context.Context, userID, snapshotID string) (*model.Snapshot, error) {
	for _, s := range m.snapshots {
		if s.UserID == userID && s.SnapshotID == snapshotID {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSnapshotRepo) Delete(_ context.Context, userID, snapshotID string) error {
	for i, s := range m.snapshots {
		if s.UserID == userID && s.SnapshotID == snapshotID {
			m.snapshots = append(m.snapshots[:i], m.snapshots[i+1:]...)
			return nil
		}
	}
	return nil // 删除不存在的 ID 为 no-op
}

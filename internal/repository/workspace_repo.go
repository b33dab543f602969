package repository

import (
	"context"

	"gorm.io/gorm"

	"iesa-portal/backend/internal/model"
	pkgerrors "iesa-portal/backend/pkg/errors"
)

// WorkspaceRepository 成绩工作区数据访问接口
type WorkspaceRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.Workspace, error)
	Create(ctx context.Context, ws *model.Workspace) error
	Save(ctx context.Context, ws *model.Workspace) error
}

type workspaceRepo struct {
	db *gorm.DB
}

// NewWorkspaceRepo 创建 WorkspaceRepository 实例
func NewWorkspaceRepo(db *gorm.DB) WorkspaceRepository {
	return &workspaceRepo{db: db}
}

func (r *workspaceRepo) GetByUser(ctx context.Context, userID string) (*model.Workspace, error) {
	var ws model.Workspace
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&ws).Error
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

func (r *workspaceRepo) Create(ctx context.Context, ws *model.Workspace) error {
	return r.db.WithContext(ctx).Create(ws).Error
}

// Save 整体回写工作区（乐观锁：版本不匹配说明已被并发修改）
func (r *workspaceRepo) Save(ctx context.Context, ws *model.Workspace) error {
	oldVersion := ws.Version
	result := r.db.WithContext(ctx).
		Model(ws).
		Where("workspace_id = ? AND version = ?", ws.WorkspaceID, oldVersion).
		Updates(map[string]interface{}{
			"semesters":        ws.Semesters,
			"previous_cgpa":    ws.PreviousCGPA,
			"previous_credits": ws.PreviousCredits,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrWorkspaceConflict
	}
	ws.Version = oldVersion + 1
	return nil
}

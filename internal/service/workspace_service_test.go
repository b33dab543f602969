package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/repository"
)

// ── 测试辅助 ──

func f(v float64) *float64 { return &v }

func setupWorkspaceService() (WorkspaceService, *mockWorkspaceRepo, repository.OverrideStore) {
	wsRepo := newMockWorkspaceRepo()
	repo := &repository.Repository{
		Workspace: wsRepo,
		Snapshot:  newMockSnapshotRepo(),
	}
	overrides := repository.NewMemoryOverrideStore()
	svc := NewWorkspaceService(repo, overrides, zap.NewNop())
	return svc, wsRepo, overrides
}

// buildWorkspace 造一个「两学期三课程」的工作区，返回课程 ID
func buildWorkspace(t *testing.T, svc WorkspaceService, userID string) (semID1, semID2, c1, c2, c3 string) {
	t.Helper()
	ctx := context.Background()

	resp, err := svc.AddSemester(ctx, userID, &dto.CreateSemesterRequest{Name: "Year 1 First"})
	if err != nil {
		t.Fatalf("AddSemester 失败: %v", err)
	}
	semID1 = resp.Semesters[0].ID

	resp, err = svc.AddSemester(ctx, userID, &dto.CreateSemesterRequest{Name: "Year 1 Second"})
	if err != nil {
		t.Fatalf("AddSemester 失败: %v", err)
	}
	semID2 = resp.Semesters[1].ID

	resp, err = svc.AddCourse(ctx, userID, semID1, &dto.AddCourseRequest{Title: "Engineering Maths", Units: 3, Score: 70})
	if err != nil {
		t.Fatalf("AddCourse 失败: %v", err)
	}
	c1 = resp.Semesters[0].Courses[0].ID

	resp, err = svc.AddCourse(ctx, userID, semID1, &dto.AddCourseRequest{Title: "Thermodynamics", Units: 4, Score: 55})
	if err != nil {
		t.Fatalf("AddCourse 失败: %v", err)
	}
	c2 = resp.Semesters[0].Courses[1].ID

	resp, err = svc.AddCourse(ctx, userID, semID2, &dto.AddCourseRequest{Title: "Operations Research", Units: 2, Score: 68})
	if err != nil {
		t.Fatalf("AddCourse 失败: %v", err)
	}
	c3 = resp.Semesters[1].Courses[0].ID

	return semID1, semID2, c1, c2, c3
}

// ── Get 测试 ──

func TestWorkspaceService_Get_InitsEmptyWorkspace(t *testing.T) {
	svc, wsRepo, _ := setupWorkspaceService()

	resp, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get 应成功: %v", err)
	}
	if len(resp.Semesters) != 0 {
		t.Errorf("新工作区应为空，实际学期数=%d", len(resp.Semesters))
	}
	if resp.Cumulative.CGPA != 0 {
		t.Errorf("空工作区 CGPA 应为 0，实际=%v", resp.Cumulative.CGPA)
	}
	if _, ok := wsRepo.workspaces["user-1"]; !ok {
		t.Error("首次访问应自动创建工作区")
	}
}

// ── AddSemester 测试 ──

func TestWorkspaceService_AddSemester_DefaultName(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	ctx := context.Background()

	resp, err := svc.AddSemester(ctx, "user-1", &dto.CreateSemesterRequest{})
	if err != nil {
		t.Fatalf("AddSemester 失败: %v", err)
	}
	if resp.Semesters[0].Name != "Semester 1" {
		t.Errorf("期望默认名 Semester 1，实际=%s", resp.Semesters[0].Name)
	}

	resp, err = svc.AddSemester(ctx, "user-1", &dto.CreateSemesterRequest{})
	if err != nil {
		t.Fatalf("AddSemester 失败: %v", err)
	}
	if resp.Semesters[1].Name != "Semester 2" {
		t.Errorf("期望默认名 Semester 2，实际=%s", resp.Semesters[1].Name)
	}
}

// ── 派生值 测试 ──

func TestWorkspaceService_DerivedValues(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	buildWorkspace(t, svc, "user-1")

	resp, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get 失败: %v", err)
	}

	// 学期一: 3×4.0 + 4×2.0 = 20 / 7 = 2.86
	if resp.Semesters[0].GPA != 2.86 {
		t.Errorf("期望学期一 GPA=2.86，实际=%v", resp.Semesters[0].GPA)
	}
	// 学期二: 2×3.0 = 6 / 2 = 3.0
	if resp.Semesters[1].GPA != 3.0 {
		t.Errorf("期望学期二 GPA=3.0，实际=%v", resp.Semesters[1].GPA)
	}
	// 累计: 26 / 9 = 2.89
	if resp.Cumulative.CGPA != 2.89 {
		t.Errorf("期望 CGPA=2.89，实际=%v", resp.Cumulative.CGPA)
	}
	if resp.Cumulative.TotalUnits != 9 {
		t.Errorf("期望总学分=9，实际=%v", resp.Cumulative.TotalUnits)
	}
}

// ── UpdateCourse 测试 ──

func TestWorkspaceService_UpdateCourse_Partial(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	_, _, c1, _, _ := buildWorkspace(t, svc, "user-1")

	resp, err := svc.UpdateCourse(context.Background(), "user-1", c1, &dto.UpdateCourseRequest{Score: f(40)})
	if err != nil {
		t.Fatalf("UpdateCourse 失败: %v", err)
	}

	course := resp.Semesters[0].Courses[0]
	if course.Score != 40 {
		t.Errorf("期望 Score=40，实际=%v", course.Score)
	}
	if course.Title != "Engineering Maths" {
		t.Errorf("未更新字段不应改变，实际 Title=%s", course.Title)
	}
	if course.GradePoint != 0 {
		t.Errorf("40 分期望绩点 0，实际=%v", course.GradePoint)
	}
}

func TestWorkspaceService_UpdateCourse_NotFound(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	buildWorkspace(t, svc, "user-1")

	_, err := svc.UpdateCourse(context.Background(), "user-1", "ghost", &dto.UpdateCourseRequest{Score: f(90)})
	if err != ErrCourseNotFound {
		t.Errorf("期望 ErrCourseNotFound，实际=%v", err)
	}
}

// ── DuplicateSemester 测试 ──

func TestWorkspaceService_DuplicateSemester_NewIDs(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	semID1, _, c1, _, _ := buildWorkspace(t, svc, "user-1")

	resp, err := svc.DuplicateSemester(context.Background(), "user-1", semID1)
	if err != nil {
		t.Fatalf("DuplicateSemester 失败: %v", err)
	}

	if len(resp.Semesters) != 3 {
		t.Fatalf("期望 3 个学期，实际=%d", len(resp.Semesters))
	}
	dup := resp.Semesters[2]
	if dup.Name != "Year 1 First (copy)" {
		t.Errorf("期望复制名带 (copy) 后缀，实际=%s", dup.Name)
	}
	if dup.ID == semID1 {
		t.Error("复制学期应分配新 ID")
	}
	if len(dup.Courses) != 2 {
		t.Fatalf("期望复制 2 门课程，实际=%d", len(dup.Courses))
	}
	if dup.Courses[0].ID == c1 {
		t.Error("复制课程应分配新 ID")
	}
	if dup.Courses[0].Score != 70 {
		t.Errorf("复制课程分数应保留，实际=%v", dup.Courses[0].Score)
	}
}

// ── 删除与覆盖剪除 测试 ──

func TestWorkspaceService_DeleteCourse_PrunesOverride(t *testing.T) {
	svc, _, overrides := setupWorkspaceService()
	_, _, c1, c2, _ := buildWorkspace(t, svc, "user-1")
	ctx := context.Background()

	overrides.SetOverride(ctx, "user-1", c1, 95)
	overrides.SetOverride(ctx, "user-1", c2, 80)

	if _, err := svc.DeleteCourse(ctx, "user-1", c1); err != nil {
		t.Fatalf("DeleteCourse 失败: %v", err)
	}

	remaining, _ := overrides.GetOverrides(ctx, "user-1")
	if _, ok := remaining[c1]; ok {
		t.Error("被删课程的覆盖应同步剪除")
	}
	if _, ok := remaining[c2]; !ok {
		t.Error("其余覆盖不应受影响")
	}
}

func TestWorkspaceService_DeleteSemester_PrunesAllCourseOverrides(t *testing.T) {
	svc, _, overrides := setupWorkspaceService()
	semID1, _, c1, c2, c3 := buildWorkspace(t, svc, "user-1")
	ctx := context.Background()

	overrides.SetOverride(ctx, "user-1", c1, 95)
	overrides.SetOverride(ctx, "user-1", c2, 80)
	overrides.SetOverride(ctx, "user-1", c3, 75)

	resp, err := svc.DeleteSemester(ctx, "user-1", semID1)
	if err != nil {
		t.Fatalf("DeleteSemester 失败: %v", err)
	}
	if len(resp.Semesters) != 1 {
		t.Fatalf("期望剩 1 个学期，实际=%d", len(resp.Semesters))
	}

	remaining, _ := overrides.GetOverrides(ctx, "user-1")
	if len(remaining) != 1 {
		t.Errorf("期望只剩 1 条覆盖，实际=%d", len(remaining))
	}
	if _, ok := remaining[c3]; !ok {
		t.Error("未删学期的课程覆盖应保留")
	}
}

func TestWorkspaceService_DeleteSemester_NotFound(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	buildWorkspace(t, svc, "user-1")

	if _, err := svc.DeleteSemester(context.Background(), "user-1", "ghost"); err != ErrSemesterNotFound {
		t.Errorf("期望 ErrSemesterNotFound，实际=%v", err)
	}
}

// ── SetCarryForward 测试 ──

func TestWorkspaceService_SetCarryForward_Complete(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	buildWorkspace(t, svc, "user-1")

	resp, err := svc.SetCarryForward(context.Background(), "user-1", &dto.CarryForwardRequest{
		PreviousCGPA:    f(3.5),
		PreviousCredits: f(10),
	})
	if err != nil {
		t.Fatalf("SetCarryForward 失败: %v", err)
	}

	if !resp.CarryForwardApplied {
		t.Error("结转记录完整时 carry_forward_applied 应为 true")
	}
	// (26 + 35) / (9 + 10) = 61/19 = 3.21
	if resp.Cumulative.CGPA != 3.21 {
		t.Errorf("期望 CGPA=3.21，实际=%v", resp.Cumulative.CGPA)
	}
}

func TestWorkspaceService_SetCarryForward_HalfSpecifiedIgnored(t *testing.T) {
	svc, _, _ := setupWorkspaceService()
	buildWorkspace(t, svc, "user-1")
	ctx := context.Background()

	base, _ := svc.Get(ctx, "user-1")

	resp, err := svc.SetCarryForward(ctx, "user-1", &dto.CarryForwardRequest{PreviousCGPA: f(3.5)})
	if err != nil {
		t.Fatalf("SetCarryForward 失败: %v", err)
	}

	if resp.CarryForwardApplied {
		t.Error("半套结转记录不应参与计算")
	}
	if resp.Cumulative.CGPA != base.Cumulative.CGPA {
		t.Errorf("半套结转不应改变 CGPA: 期望=%v 实际=%v", base.Cumulative.CGPA, resp.Cumulative.CGPA)
	}
}

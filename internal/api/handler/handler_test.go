package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/service"
	pkgerrors "iesa-portal/backend/pkg/errors"
	"iesa-portal/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock WorkspaceService ──

type mockWorkspaceService struct {
	result *dto.WorkspaceResponse
	err    error
}

func (m *mockWorkspaceService) Get(_ context.Context, _ string) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) AddSemester(_ context.Context, _ string, _ *dto.CreateSemesterRequest) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) RenameSemester(_ context.Context, _, _ string, _ *dto.RenameSemesterRequest) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) DuplicateSemester(_ context.Context, _, _ string) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) DeleteSemester(_ context.Context, _, _ string) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) AddCourse(_ context.Context, _, _ string, _ *dto.AddCourseRequest) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) UpdateCourse(_ context.Context, _, _ string, _ *dto.UpdateCourseRequest) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) DeleteCourse(_ context.Context, _, _ string) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}
func (m *mockWorkspaceService) SetCarryForward(_ context.Context, _ string, _ *dto.CarryForwardRequest) (*dto.WorkspaceResponse, error) {
	return m.result, m.err
}

// ── Mock SimulationService ──

type mockSimulationService struct {
	result *dto.SimulationResponse
	err    error
}

func (m *mockSimulationService) Get(_ context.Context, _ string) (*dto.SimulationResponse, error) {
	return m.result, m.err
}
func (m *mockSimulationService) SetOverride(_ context.Context, _, _ string, _ float64) (*dto.SimulationResponse, error) {
	return m.result, m.err
}
func (m *mockSimulationService) RemoveOverride(_ context.Context, _, _ string) (*dto.SimulationResponse, error) {
	return m.result, m.err
}
func (m *mockSimulationService) ClearOverrides(_ context.Context, _ string) (*dto.SimulationResponse, error) {
	return m.result, m.err
}
func (m *mockSimulationService) ApplyPreset(_ context.Context, _ string, _ *dto.ApplyPresetRequest) (*dto.SimulationResponse, error) {
	return m.result, m.err
}

// ── Mock SnapshotService ──

type mockSnapshotService struct {
	saveResult    *dto.SaveSnapshotResponse
	saveWarning   string
	saveErr       error
	listResult    []dto.SnapshotResponse
	listErr       error
	restoreResult *dto.WorkspaceResponse
	restoreErr    error
	deleteErr     error
}

func (m *mockSnapshotService) Save(_ context.Context, _ string, _ *dto.SaveSnapshotRequest) (*dto.SaveSnapshotResponse, string, error) {
	return m.saveResult, m.saveWarning, m.saveErr
}
func (m *mockSnapshotService) List(_ context.Context, _ string) ([]dto.SnapshotResponse, error) {
	return m.listResult, m.listErr
}
func (m *mockSnapshotService) Restore(_ context.Context, _, _ string) (*dto.WorkspaceResponse, error) {
	return m.restoreResult, m.restoreErr
}
func (m *mockSnapshotService) Delete(_ context.Context, _, _ string) error {
	return m.deleteErr
}

// ── Mock ExportService ──

type mockExportService struct {
	csvData      []byte
	excelBuf     *bytes.Buffer
	filename     string
	exportErr    error
	importResult *dto.ImportResponse
	importErr    error
}

func (m *mockExportService) ExportCSV(_ context.Context, _ string) ([]byte, string, error) {
	return m.csvData, m.filename, m.exportErr
}
func (m *mockExportService) ExportExcel(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.excelBuf, m.filename, m.exportErr
}
func (m *mockExportService) ImportCSV(_ context.Context, _, _ string) (*dto.ImportResponse, error) {
	return m.importResult, m.importErr
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// newAuthedRouter 构造注入 user_id 的测试路由
func newAuthedRouter() *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", "test-user-id")
		c.Set("role", "student")
		c.Next()
	})
	return r
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// WorkspaceHandler Tests
// ═══════════════════════════════════════════════════════════

func TestWorkspaceHandler_GetWorkspace_Success(t *testing.T) {
	mock := &mockWorkspaceService{result: &dto.WorkspaceResponse{
		Semesters:  []dto.SemesterResponse{},
		Cumulative: dto.CumulativeResponse{CGPA: 2.89},
	}}
	h := NewWorkspaceHandler(mock)

	r := newAuthedRouter()
	r.GET("/workspace", h.GetWorkspace)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/workspace", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 0 {
		t.Errorf("expected code 0, got %d", resp.Code)
	}
}

func TestWorkspaceHandler_GetWorkspace_Unauthenticated(t *testing.T) {
	h := NewWorkspaceHandler(&mockWorkspaceService{})

	r := gin.New() // 不注入 user_id
	r.GET("/workspace", h.GetWorkspace)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/workspace", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestWorkspaceHandler_AddSemester_EmptyBody(t *testing.T) {
	mock := &mockWorkspaceService{result: &dto.WorkspaceResponse{}}
	h := NewWorkspaceHandler(mock)

	r := newAuthedRouter()
	r.POST("/workspace/semesters", h.AddSemester)

	// 名称可缺省，空请求体应当成功
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/workspace/semesters", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", w.Code)
	}
}

func TestWorkspaceHandler_RenameSemester_BadJSON(t *testing.T) {
	h := NewWorkspaceHandler(&mockWorkspaceService{})

	r := newAuthedRouter()
	r.PUT("/workspace/semesters/:id", h.RenameSemester)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/workspace/semesters/sem-1", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestWorkspaceHandler_AddCourse_Conflict(t *testing.T) {
	h := NewWorkspaceHandler(&mockWorkspaceService{err: pkgerrors.ErrWorkspaceConflict})

	r := newAuthedRouter()
	r.POST("/workspace/semesters/:id/courses", h.AddCourse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/workspace/semesters/sem-1/courses", jsonBody(dto.AddCourseRequest{
		Title: "Statics",
		Units: 3,
		Score: 65,
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestWorkspaceHandler_DeleteCourse_NotFound(t *testing.T) {
	h := NewWorkspaceHandler(&mockWorkspaceService{err: service.ErrCourseNotFound})

	r := newAuthedRouter()
	r.DELETE("/workspace/courses/:id", h.DeleteCourse)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/workspace/courses/missing", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SimulationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSimulationHandler_SetOverride_Success(t *testing.T) {
	mock := &mockSimulationService{result: &dto.SimulationResponse{
		Delta:     -1.33,
		Overrides: map[string]float64{"course-1": 40},
	}}
	h := NewSimulationHandler(mock)

	r := newAuthedRouter()
	r.PUT("/simulation/overrides/:courseId", h.SetOverride)

	score := 40.0
	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/simulation/overrides/course-1", jsonBody(dto.SetOverrideRequest{Score: &score}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestSimulationHandler_SetOverride_MissingScore(t *testing.T) {
	h := NewSimulationHandler(&mockSimulationService{})

	r := newAuthedRouter()
	r.PUT("/simulation/overrides/:courseId", h.SetOverride)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("PUT", "/simulation/overrides/course-1", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestSimulationHandler_ApplyPreset_InvalidKind(t *testing.T) {
	h := NewSimulationHandler(&mockSimulationService{})

	r := newAuthedRouter()
	r.POST("/simulation/presets", h.ApplyPreset)

	// oneof 校验在绑定阶段拦截
	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/simulation/presets", bytes.NewReader([]byte(`{"kind":"unknown"}`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// SnapshotHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSnapshotHandler_SaveSnapshot_WithWarning(t *testing.T) {
	mock := &mockSnapshotService{
		saveResult:  &dto.SaveSnapshotResponse{Snapshot: dto.SnapshotResponse{ID: "snap-1"}},
		saveWarning: service.WarnSnapshotNotPersisted,
	}
	h := NewSnapshotHandler(mock)

	r := newAuthedRouter()
	r.POST("/snapshots", h.SaveSnapshot)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/snapshots", nil)
	r.ServeHTTP(w, req)

	// 软失败：200 + warning，而非错误
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Warning != service.WarnSnapshotNotPersisted {
		t.Errorf("expected warning %q, got %q", service.WarnSnapshotNotPersisted, resp.Warning)
	}
}

func TestSnapshotHandler_RestoreSnapshot_NotFound(t *testing.T) {
	h := NewSnapshotHandler(&mockSnapshotService{restoreErr: service.ErrSnapshotNotFound})

	r := newAuthedRouter()
	r.POST("/snapshots/:id/restore", h.RestoreSnapshot)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/snapshots/stale/restore", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportCSV_Headers(t *testing.T) {
	mock := &mockExportService{
		csvData:  []byte("Semester,Course,Units,Score\n"),
		filename: "cgpa-workspace.csv",
	}
	h := NewExportHandler(mock)

	r := newAuthedRouter()
	r.GET("/export/csv", h.ExportCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/export/csv", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	disposition := w.Header().Get("Content-Disposition")
	if disposition != "attachment; filename*=UTF-8''cgpa-workspace.csv" {
		t.Errorf("unexpected Content-Disposition: %s", disposition)
	}
	if w.Body.String() != "Semester,Course,Units,Score\n" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestExportHandler_ImportCSV_JSONBody(t *testing.T) {
	mock := &mockExportService{importResult: &dto.ImportResponse{SemesterCount: 1, CourseCount: 2}}
	h := NewExportHandler(mock)

	r := newAuthedRouter()
	r.POST("/import/csv", h.ImportCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/import/csv", jsonBody(dto.ImportRequest{
		Content: "Semester,Course,Units,Score\nYear 1,Statics,3,65\n",
	}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestExportHandler_ImportCSV_NoRows(t *testing.T) {
	h := NewExportHandler(&mockExportService{importErr: service.ErrImportNoRows})

	r := newAuthedRouter()
	r.POST("/import/csv", h.ImportCSV)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/import/csv", jsonBody(dto.ImportRequest{Content: "Semester,Course,Units,Score\n"}))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

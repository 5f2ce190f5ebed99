package model

// Employee 员工
// 分配状态只能通过 Assign 修改，DaysWorked 始终等于已分配班次数
type Employee struct {
	BaseModel
	name string

	// 每天的班次偏好，下标即偏好等级（0 = 最想上）
	Preferences map[Day][]Shift `json:"preferences"`

	assigned []Slot
}

// NewEmployee 创建员工
func NewEmployee(name string) *Employee {
	return &Employee{
		BaseModel:   NewBaseModel(),
		name:        name,
		Preferences: make(map[Day][]Shift),
	}
}

// Name 返回员工姓名
func (e *Employee) Name() string {
	return e.name
}

// DaysWorked 返回已工作天数
func (e *Employee) DaysWorked() int {
	return len(e.assigned)
}

// AssignedShifts 返回已分配班次的副本
func (e *Employee) AssignedShifts() []Slot {
	out := make([]Slot, len(e.assigned))
	copy(out, e.assigned)
	return out
}

// CanWork 检查员工是否可以上某个班次
func (e *Employee) CanWork(slot Slot) bool {
	return e.DaysWorked() < MaxDaysPerWeek &&
		!e.HasShiftOnDay(slot.Day) &&
		!e.IsAssignedTo(slot)
}

// HasShiftOnDay 检查员工当天是否已有班次
func (e *Employee) HasShiftOnDay(day Day) bool {
	_, ok := e.ShiftOn(day)
	return ok
}

// IsAssignedTo 检查员工是否已分配到该班次
func (e *Employee) IsAssignedTo(slot Slot) bool {
	for _, s := range e.assigned {
		if s == slot {
			return true
		}
	}
	return false
}

// ShiftOn 返回员工当天的班次
func (e *Employee) ShiftOn(day Day) (Shift, bool) {
	for _, s := range e.assigned {
		if s.Day == day {
			return s.Shift, true
		}
	}
	return 0, false
}

// Assign 分配班次，调用方需事先检查 CanWork
func (e *Employee) Assign(slot Slot) {
	e.assigned = append(e.assigned, slot)
}

// Reset 清空分配状态
func (e *Employee) Reset() {
	e.assigned = nil
}

// PreferenceRank 返回班次在当天偏好中的等级
func (e *Employee) PreferenceRank(slot Slot) (int, bool) {
	for i, s := range e.Preferences[slot.Day] {
		if s == slot.Shift {
			return i, true
		}
	}
	return 0, false
}

// PreferenceDays 返回已填写偏好的天数
func (e *Employee) PreferenceDays() int {
	n := 0
	for _, d := range Days {
		if len(e.Preferences[d]) > 0 {
			n++
		}
	}
	return n
}

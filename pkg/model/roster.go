package model

import (
	"github.com/paiban/shiftweek/pkg/errors"
)

// Roster 排班名册
// 按插入顺序保存员工，该顺序是排序时的基准次序
type Roster struct {
	order  []*Employee
	byName map[string]*Employee
}

// NewRoster 创建空名册
func NewRoster() *Roster {
	return &Roster{byName: make(map[string]*Employee)}
}

// Add 添加员工，姓名必须唯一
func (r *Roster) Add(e *Employee) error {
	if _, exists := r.byName[e.Name()]; exists {
		return errors.New(errors.CodeAlreadyExists, "员工已存在: "+e.Name()).
			WithField("name", e.Name())
	}
	r.order = append(r.order, e)
	r.byName[e.Name()] = e
	return nil
}

// Get 按姓名查找员工
func (r *Roster) Get(name string) (*Employee, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Employees 按插入顺序返回员工列表
func (r *Roster) Employees() []*Employee {
	out := make([]*Employee, len(r.order))
	copy(out, r.order)
	return out
}

// Len 返回员工数
func (r *Roster) Len() int {
	return len(r.order)
}

// CountAssigned 统计某班次已分配人数
func (r *Roster) CountAssigned(slot Slot) int {
	n := 0
	for _, e := range r.order {
		if e.IsAssignedTo(slot) {
			n++
		}
	}
	return n
}

// AssignedTo 按名册顺序返回某班次的员工姓名
func (r *Roster) AssignedTo(slot Slot) []string {
	var names []string
	for _, e := range r.order {
		if e.IsAssignedTo(slot) {
			names = append(names, e.Name())
		}
	}
	return names
}

// TotalAssignments 返回全部已分配班次数
func (r *Roster) TotalAssignments() int {
	n := 0
	for _, e := range r.order {
		n += e.DaysWorked()
	}
	return n
}

// IsFresh 检查是否所有员工都尚未分配
func (r *Roster) IsFresh() bool {
	return r.TotalAssignments() == 0
}

// Reset 清空所有员工的分配
func (r *Roster) Reset() {
	for _, e := range r.order {
		e.Reset()
	}
}

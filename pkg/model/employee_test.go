package model

import (
	"testing"
)

func TestEmployee_CanWork(t *testing.T) {
	e := NewEmployee("Alice")
	e.Assign(Slot{Monday, Morning})

	tests := []struct {
		name     string
		slot     Slot
		expected bool
	}{
		{"同一班次", Slot{Monday, Morning}, false},
		{"同一天其他班次", Slot{Monday, Evening}, false},
		{"其他天", Slot{Tuesday, Morning}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := e.CanWork(tt.slot); result != tt.expected {
				t.Errorf("CanWork(%v) = %v, expected %v", tt.slot, result, tt.expected)
			}
		})
	}
}

func TestEmployee_CanWork_MaxDays(t *testing.T) {
	e := NewEmployee("Bob")
	for _, d := range Days[:MaxDaysPerWeek] {
		e.Assign(Slot{d, Afternoon})
	}

	if e.DaysWorked() != MaxDaysPerWeek {
		t.Fatalf("DaysWorked() = %d, expected %d", e.DaysWorked(), MaxDaysPerWeek)
	}
	if e.CanWork(Slot{Saturday, Morning}) {
		t.Error("已满5天的员工不应再可排班")
	}
}

func TestEmployee_DaysWorkedTracksAssignments(t *testing.T) {
	e := NewEmployee("Carol")
	e.Assign(Slot{Monday, Morning})
	e.Assign(Slot{Wednesday, Evening})

	if e.DaysWorked() != len(e.AssignedShifts()) {
		t.Errorf("DaysWorked() = %d, len(AssignedShifts()) = %d", e.DaysWorked(), len(e.AssignedShifts()))
	}

	// 返回的是副本
	shifts := e.AssignedShifts()
	shifts[0] = Slot{Sunday, Evening}
	if e.IsAssignedTo(Slot{Sunday, Evening}) {
		t.Error("AssignedShifts() should return a copy")
	}

	e.Reset()
	if e.DaysWorked() != 0 {
		t.Errorf("DaysWorked() after Reset = %d", e.DaysWorked())
	}
}

func TestEmployee_PreferenceRank(t *testing.T) {
	e := NewEmployee("Dave")
	e.Preferences[Monday] = []Shift{Evening, Morning, Afternoon}

	tests := []struct {
		slot     Slot
		rank     int
		expected bool
	}{
		{Slot{Monday, Evening}, 0, true},
		{Slot{Monday, Morning}, 1, true},
		{Slot{Monday, Afternoon}, 2, true},
		{Slot{Tuesday, Morning}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.slot.String(), func(t *testing.T) {
			rank, ok := e.PreferenceRank(tt.slot)
			if ok != tt.expected || (ok && rank != tt.rank) {
				t.Errorf("PreferenceRank(%v) = (%d, %v), expected (%d, %v)", tt.slot, rank, ok, tt.rank, tt.expected)
			}
		})
	}

	if e.PreferenceDays() != 1 {
		t.Errorf("PreferenceDays() = %d, expected 1", e.PreferenceDays())
	}
}

func TestEmployee_ShiftOn(t *testing.T) {
	e := NewEmployee("Eve")
	e.Assign(Slot{Thursday, Afternoon})

	s, ok := e.ShiftOn(Thursday)
	if !ok || s != Afternoon {
		t.Errorf("ShiftOn(Thursday) = (%v, %v)", s, ok)
	}
	if _, ok := e.ShiftOn(Friday); ok {
		t.Error("ShiftOn(Friday) should be empty")
	}
}

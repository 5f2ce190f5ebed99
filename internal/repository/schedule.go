package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/paiban/shiftweek/internal/database"
	"github.com/paiban/shiftweek/pkg/export"
	"github.com/paiban/shiftweek/pkg/scheduler/solver"
	"github.com/paiban/shiftweek/pkg/stats"
	"github.com/shopspring/decimal"
)

// schemaStatements 归档表结构
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS rota_runs (
		id            UUID PRIMARY KEY,
		seed          BIGINT NOT NULL,
		employees     INTEGER NOT NULL,
		filled_slots  INTEGER NOT NULL,
		total_slots   INTEGER NOT NULL,
		fill_rate     NUMERIC(5,1) NOT NULL,
		fully_staffed BOOLEAN NOT NULL,
		generated_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS rota_slots (
		run_id    UUID NOT NULL REFERENCES rota_runs(id) ON DELETE CASCADE,
		day       TEXT NOT NULL,
		shift     TEXT NOT NULL,
		position  SMALLINT NOT NULL,
		employees TEXT[] NOT NULL,
		PRIMARY KEY (run_id, day, shift)
	)`,
	`CREATE TABLE IF NOT EXISTS rota_employees (
		run_id      UUID NOT NULL REFERENCES rota_runs(id) ON DELETE CASCADE,
		employee_id UUID NOT NULL,
		name        TEXT NOT NULL,
		days_worked SMALLINT NOT NULL,
		top_choice  SMALLINT NOT NULL,
		preferred   SMALLINT NOT NULL,
		PRIMARY KEY (run_id, employee_id)
	)`,
}

// Run 一次排班的归档记录
type Run struct {
	ID           uuid.UUID       `json:"id"`
	Seed         int64           `json:"seed"`
	Employees    int             `json:"employees"`
	FilledSlots  int             `json:"filled_slots"`
	TotalSlots   int             `json:"total_slots"`
	FillRate     decimal.Decimal `json:"fill_rate"`
	FullyStaffed bool            `json:"fully_staffed"`
	GeneratedAt  time.Time       `json:"generated_at"`

	Staff []EmployeeRecord `json:"staff"`
}

// EmployeeRecord 员工在本次排班中的归档记录
type EmployeeRecord struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	DaysWorked int       `json:"days_worked"`
	TopChoice  int       `json:"top_choice"`
	Preferred  int       `json:"preferred"`
}

// SlotRecord 单个班次的归档记录
type SlotRecord struct {
	Day       string   `json:"day"`
	Shift     string   `json:"shift"`
	Position  int      `json:"position"` // 在一周中的顺序 0-20
	Employees []string `json:"employees"`
}

// NewRun 根据排班结果生成归档记录
func NewRun(result *solver.Result, summary *stats.Summary) *Run {
	staff := make([]EmployeeRecord, 0, len(summary.Employees))
	for _, e := range summary.Employees {
		staff = append(staff, EmployeeRecord{
			ID:         e.ID,
			Name:       e.Name,
			DaysWorked: e.DaysWorked,
			TopChoice:  e.TopChoice,
			Preferred:  e.Preferred,
		})
	}

	return &Run{
		ID:           result.RunID,
		Seed:         result.Seed,
		Employees:    len(summary.Employees),
		FilledSlots:  summary.FilledSlots,
		TotalSlots:   summary.TotalSlots,
		FillRate:     summary.FillRate,
		FullyStaffed: result.Success,
		GeneratedAt:  time.Now(),
		Staff:        staff,
	}
}

// NewSlotRecords 将导出行转为归档记录
func NewSlotRecords(rows []export.Row) []SlotRecord {
	records := make([]SlotRecord, 0, len(rows))
	for i, row := range rows {
		records = append(records, SlotRecord{
			Day:       row.Day.String(),
			Shift:     row.Shift.String(),
			Position:  i,
			Employees: row.Employees,
		})
	}
	return records
}

// ScheduleRepository 排班归档仓储，只写不读
type ScheduleRepository struct {
	db DB
}

// NewScheduleRepository 创建排班仓储
func NewScheduleRepository(db DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// EnsureSchema 创建归档表
func (r *ScheduleRepository) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("创建归档表失败: %w", err)
		}
	}
	return nil
}

// SaveRun 写入一次排班、参与员工及其21个班次
func (r *ScheduleRepository) SaveRun(ctx context.Context, run *Run, slots []SlotRecord) error {
	query := `
		INSERT INTO rota_runs (
			id, seed, employees, filled_slots, total_slots, fill_rate, fully_staffed, generated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID, run.Seed, run.Employees, run.FilledSlots, run.TotalSlots,
		run.FillRate, run.FullyStaffed, run.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("创建排班记录失败: %w", err)
	}

	for _, e := range run.Staff {
		if err := r.saveEmployee(ctx, run.ID, e); err != nil {
			return err
		}
	}

	for _, s := range slots {
		if err := r.saveSlot(ctx, run.ID, s); err != nil {
			return err
		}
	}

	return nil
}

func (r *ScheduleRepository) saveEmployee(ctx context.Context, runID uuid.UUID, e EmployeeRecord) error {
	query := `
		INSERT INTO rota_employees (run_id, employee_id, name, days_worked, top_choice, preferred)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	if _, err := r.db.ExecContext(ctx, query, runID, e.ID, e.Name, e.DaysWorked, e.TopChoice, e.Preferred); err != nil {
		return fmt.Errorf("创建员工记录失败 (%s): %w", e.Name, err)
	}
	return nil
}

func (r *ScheduleRepository) saveSlot(ctx context.Context, runID uuid.UUID, s SlotRecord) error {
	query := `
		INSERT INTO rota_slots (run_id, day, shift, position, employees)
		VALUES ($1, $2, $3, $4, $5)
	`

	employees := s.Employees
	if employees == nil {
		employees = []string{}
	}
	if _, err := r.db.ExecContext(ctx, query, runID, s.Day, s.Shift, s.Position, pq.Array(employees)); err != nil {
		return fmt.Errorf("创建班次记录失败 (%s %s): %w", s.Day, s.Shift, err)
	}
	return nil
}

// Archive 在一个事务中建表并写入排班
func Archive(ctx context.Context, db Transactor, run *Run, slots []SlotRecord) error {
	return db.Transaction(ctx, func(tx *database.Tx) error {
		repo := NewScheduleRepository(tx)
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		return repo.SaveRun(ctx, run, slots)
	})
}

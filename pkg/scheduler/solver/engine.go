// Package solver 提供排班求解器
package solver

import (
	"cmp"
	"context"
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/paiban/shiftweek/pkg/errors"
	"github.com/paiban/shiftweek/pkg/logger"
	"github.com/paiban/shiftweek/pkg/model"
	"github.com/paiban/shiftweek/pkg/validator"
)

const (
	passAssign     = "assign"
	passPreference = "preference"
	passFairFill   = "fair_fill"
	passResolve    = "resolve"
)

// Result 求解结果
type Result struct {
	RunID        uuid.UUID         `json:"run_id"`
	Seed         int64             `json:"seed"`
	Report       *validator.Report `json:"report"`
	Understaffed []model.Slot      `json:"unresolved,omitempty"` // 补班阶段无法补足的班次
	Statistics   *Statistics       `json:"statistics"`
	Duration     time.Duration     `json:"duration"`
	Success      bool              `json:"success"`
	Message      string            `json:"message,omitempty"`
}

// Statistics 各阶段分配统计
type Statistics struct {
	TotalAssignments      int     `json:"total_assignments"`
	PreferenceAssignments int     `json:"preference_assignments"`
	FairFillAssignments   int     `json:"fair_fill_assignments"`
	ResolverAssignments   int     `json:"resolver_assignments"`
	FilledSlots           int     `json:"filled_slots"`
	TotalSlots            int     `json:"total_slots"`
	FillRate              float64 `json:"fill_rate"`
}

// Engine 两阶段排班引擎
// 随机源必须显式注入，同一种子得到同样的排班
type Engine struct {
	rng       *rand.Rand
	seed      int64
	logger    *logger.SchedulerLogger
	validator *validator.Validator
	stats     Statistics
}

// Option 引擎选项
type Option func(*Engine)

// WithSeed 使用指定种子
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.seed = seed
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithLogger 使用指定日志器
func WithLogger(l *logger.SchedulerLogger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithReporter 设置人手不足通知的接收方
func WithReporter(r validator.Reporter) Option {
	return func(e *Engine) {
		e.validator = validator.NewValidator(r)
	}
}

// NewEngine 创建排班引擎，未指定种子时使用当前时间
func NewEngine(opts ...Option) *Engine {
	e := &Engine{}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		WithSeed(time.Now().UnixNano())(e)
	}
	if e.logger == nil {
		e.logger = logger.NewSchedulerLogger()
	}
	if e.validator == nil {
		e.validator = validator.NewValidator(validator.NewLogReporter(e.logger.Logger()))
	}
	return e
}

// Run 执行完整排班：偏好分配、补班、验证
func (e *Engine) Run(ctx context.Context, r *model.Roster) (*Result, error) {
	startTime := time.Now()

	if r.Len() == 0 {
		return nil, errors.New(errors.CodeInvalidInput, "没有可用员工")
	}
	if !r.IsFresh() {
		return nil, errors.New(errors.CodeRosterNotFresh, "名册已有分配，请先重置")
	}

	result := &Result{
		RunID: uuid.New(),
		Seed:  e.seed,
	}
	e.stats = Statistics{}
	e.logger.StartSchedule(result.RunID.String(), r.Len(), e.seed)

	if err := e.assignAll(ctx, r); err != nil {
		return nil, err
	}
	unresolved, err := e.resolveAll(ctx, r)
	if err != nil {
		return nil, err
	}
	result.Understaffed = unresolved

	result.Report = e.validator.Validate(r)
	result.Success = result.Report.OK
	result.Duration = time.Since(startTime)

	stats := e.stats
	stats.TotalAssignments = r.TotalAssignments()
	stats.TotalSlots = len(model.AllSlots())
	stats.FilledSlots = stats.TotalSlots - len(result.Report.Notices)
	stats.FillRate = float64(stats.FilledSlots) / float64(stats.TotalSlots) * 100
	result.Statistics = &stats

	e.logger.ScheduleComplete(result.RunID.String(), result.Duration, stats.FilledSlots, len(result.Report.Notices))

	if result.Success {
		result.Message = "所有班次人数充足"
	} else {
		result.Message = fmt.Sprintf("存在 %d 个人手不足的班次", len(result.Report.Notices))
	}

	return result, nil
}

// AssignShifts 第一阶段：按星期、班次顺序逐个分配
func (e *Engine) AssignShifts(r *model.Roster) {
	_ = e.assignAll(context.Background(), r)
}

// ResolveConflicts 第二阶段：补足人数不足的班次，返回仍无法补足的班次
func (e *Engine) ResolveConflicts(r *model.Roster) []model.Slot {
	unresolved, _ := e.resolveAll(context.Background(), r)
	return unresolved
}

func (e *Engine) assignAll(ctx context.Context, r *model.Roster) error {
	for _, slot := range model.AllSlots() {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.assignSlot(r, slot)
	}
	return nil
}

// assignSlot 分配单个班次
func (e *Engine) assignSlot(r *model.Roster, slot model.Slot) {
	employees := r.Employees()

	// 偏好阶段：按偏好等级排序，同级保持名册顺序
	type candidate struct {
		emp  *model.Employee
		rank int
	}
	var candidates []candidate
	for _, emp := range employees {
		if !emp.CanWork(slot) {
			continue
		}
		if rank, ok := emp.PreferenceRank(slot); ok {
			candidates = append(candidates, candidate{emp: emp, rank: rank})
		}
	}
	slices.SortStableFunc(candidates, func(a, b candidate) int {
		return cmp.Compare(a.rank, b.rank)
	})

	selected := make([]*model.Employee, 0, len(candidates)+model.MinStaffPerShift)
	source := make(map[string]string)
	for _, c := range candidates {
		if _, dup := source[c.emp.Name()]; dup {
			continue
		}
		selected = append(selected, c.emp)
		source[c.emp.Name()] = passPreference
	}

	// 公平补位：从工作天数最少的人中随机挑选
	for len(selected) < model.MinStaffPerShift {
		var pool []*model.Employee
		for _, emp := range employees {
			if _, taken := source[emp.Name()]; taken {
				continue
			}
			if emp.CanWork(slot) {
				pool = append(pool, emp)
			}
		}
		if len(pool) == 0 {
			break
		}
		chosen := e.pickLeastLoaded(pool)
		selected = append(selected, chosen)
		source[chosen.Name()] = passFairFill
	}

	// 提交：最多取前两人，提交时再次检查
	if len(selected) > model.MinStaffPerShift {
		selected = selected[:model.MinStaffPerShift]
	}
	var names []string
	for _, emp := range selected {
		if emp.DaysWorked() >= model.MaxDaysPerWeek || !emp.CanWork(slot) {
			continue
		}
		emp.Assign(slot)
		names = append(names, emp.Name())
		if source[emp.Name()] == passPreference {
			e.stats.PreferenceAssignments++
		} else {
			e.stats.FairFillAssignments++
		}
	}
	e.logger.SlotAssigned(passAssign, slot.String(), names)
}

func (e *Engine) resolveAll(ctx context.Context, r *model.Roster) ([]model.Slot, error) {
	var unresolved []model.Slot
	for _, slot := range model.AllSlots() {
		if err := ctx.Err(); err != nil {
			return unresolved, err
		}
		if !e.resolveSlot(r, slot) {
			unresolved = append(unresolved, slot)
		}
	}
	return unresolved, nil
}

// resolveSlot 补足单个班次，无候选人时返回 false
func (e *Engine) resolveSlot(r *model.Roster, slot model.Slot) bool {
	for r.CountAssigned(slot) < model.MinStaffPerShift {
		var candidates []*model.Employee
		for _, emp := range r.Employees() {
			if emp.DaysWorked() < model.MaxDaysPerWeek &&
				emp.CanWork(slot) &&
				!emp.HasShiftOnDay(slot.Day) {
				candidates = append(candidates, emp)
			}
		}

		if len(candidates) == 0 {
			e.logger.SlotUnderstaffed(slot.String(), r.CountAssigned(slot))
			return false
		}

		chosen := e.pickLeastLoaded(candidates)
		chosen.Assign(slot)
		e.stats.ResolverAssignments++
		e.logger.SlotAssigned(passResolve, slot.String(), []string{chosen.Name()})
	}
	return true
}

// pickLeastLoaded 先随机打乱再按工作天数稳定排序，工作天数相同的人随机胜出
func (e *Engine) pickLeastLoaded(pool []*model.Employee) *model.Employee {
	shuffled := slices.Clone(pool)
	e.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	slices.SortStableFunc(shuffled, func(a, b *model.Employee) int {
		return cmp.Compare(a.DaysWorked(), b.DaysWorked())
	})
	return shuffled[0]
}

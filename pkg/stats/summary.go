// Package stats 提供排班统计分析功能
package stats

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/paiban/shiftweek/pkg/model"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Summary 一次排班的统计摘要
type Summary struct {
	// 覆盖情况
	TotalSlots   int             `json:"total_slots"`
	FilledSlots  int             `json:"filled_slots"`  // 人数达标的班次
	FillRate     decimal.Decimal `json:"fill_rate"`     // 达标率 (%)
	MissingSeats int             `json:"missing_seats"` // 距离全部达标还差的人次

	// 偏好满足度
	TotalAssignments int             `json:"total_assignments"`
	TopChoice        int             `json:"top_choice"`      // 分到首选班次的人次
	Preferred        int             `json:"preferred"`       // 分到偏好列表内班次的人次
	TopChoiceRate    decimal.Decimal `json:"top_choice_rate"` // 首选满足率 (%)

	// 工作量公平性
	MinDays  int             `json:"min_days"`
	MaxDays  int             `json:"max_days"`
	Spread   int             `json:"spread"` // 最大与最小工作天数之差
	AvgDays  decimal.Decimal `json:"avg_days"`
	Variance decimal.Decimal `json:"variance"`
	Gini     decimal.Decimal `json:"gini"` // 工作天数基尼系数 (0=完全公平)

	Employees []EmployeeStat `json:"employees"`
}

// EmployeeStat 员工统计
type EmployeeStat struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	DaysWorked int       `json:"days_worked"`
	TopChoice  int       `json:"top_choice"`
	Preferred  int       `json:"preferred"`
}

// Analyze 统计名册当前的排班结果，员工按名册顺序排列
func Analyze(r *model.Roster) *Summary {
	s := &Summary{TotalSlots: len(model.AllSlots())}

	for _, slot := range model.AllSlots() {
		count := r.CountAssigned(slot)
		if count >= model.MinStaffPerShift {
			s.FilledSlots++
		} else {
			s.MissingSeats += model.MinStaffPerShift - count
		}
	}
	s.FillRate = percent(s.FilledSlots, s.TotalSlots)

	employees := r.Employees()
	days := make([]float64, 0, len(employees))
	for _, e := range employees {
		stat := EmployeeStat{ID: e.ID, Name: e.Name(), DaysWorked: e.DaysWorked()}
		for _, slot := range e.AssignedShifts() {
			rank, ok := e.PreferenceRank(slot)
			if !ok {
				continue
			}
			stat.Preferred++
			if rank == 0 {
				stat.TopChoice++
			}
		}
		s.TotalAssignments += stat.DaysWorked
		s.TopChoice += stat.TopChoice
		s.Preferred += stat.Preferred
		s.Employees = append(s.Employees, stat)
		days = append(days, float64(stat.DaysWorked))
	}
	s.TopChoiceRate = percent(s.TopChoice, s.TotalAssignments)

	if len(days) > 0 {
		maxDays, minDays := calculateRange(days)
		s.MaxDays, s.MinDays = int(maxDays), int(minDays)
		s.Spread = s.MaxDays - s.MinDays

		avg := calculateMean(days)
		s.AvgDays = decimal.NewFromFloat(avg).Round(2)
		s.Variance = decimal.NewFromFloat(calculateVariance(days, avg)).Round(3)
		s.Gini = decimal.NewFromFloat(calculateGini(days)).Round(3)
	}

	return s
}

// percent 返回保留1位小数的百分比，分母为0时返回0
func percent(part, total int) decimal.Decimal {
	if total == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(part)).
		Mul(hundred).
		Div(decimal.NewFromInt(int64(total))).
		Round(1)
}

// calculateMean 计算平均值
func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateVariance 计算方差
func calculateVariance(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return sumSquares / float64(len(values))
}

// calculateRange 计算极值
func calculateRange(values []float64) (max, min float64) {
	if len(values) == 0 {
		return 0, 0
	}
	max, min = values[0], values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
		if v < min {
			min = v
		}
	}
	return
}

// calculateGini 计算基尼系数
func calculateGini(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	sum := 0.0
	for _, v := range sorted {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	gini := 0.0
	for i, v := range sorted {
		gini += (2*float64(i+1) - float64(n) - 1) * v
	}

	gini = gini / (float64(n) * sum)
	return math.Max(0, math.Min(1, gini))
}

// Report 生成文字版统计报告
func (s *Summary) Report() string {
	var b strings.Builder

	b.WriteString("=== 排班统计 ===\n")
	fmt.Fprintf(&b, "  达标班次: %d/%d (%s%%)\n", s.FilledSlots, s.TotalSlots, s.FillRate.StringFixed(1))
	if s.MissingSeats > 0 {
		fmt.Fprintf(&b, "  缺少人次: %d\n", s.MissingSeats)
	}
	fmt.Fprintf(&b, "  首选满足: %d/%d (%s%%)\n", s.TopChoice, s.TotalAssignments, s.TopChoiceRate.StringFixed(1))
	fmt.Fprintf(&b, "  工作天数: 最少 %d，最多 %d，平均 %s\n", s.MinDays, s.MaxDays, s.AvgDays.StringFixed(2))

	for _, e := range s.Employees {
		fmt.Fprintf(&b, "  - %s: %d 天 (首选 %d)\n", e.Name, e.DaysWorked, e.TopChoice)
	}

	return b.String()
}

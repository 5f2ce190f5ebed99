// Package constraints 描述排班规则
package constraints

import (
	"strconv"
	"strings"

	"github.com/paiban/shiftweek/pkg/model"
)

// RuleParam 规则参数（固定值，不可配置）
type RuleParam struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // int, string, array
	Description string `json:"description"`
	Value       string `json:"value"`
}

// RuleDefinition 规则定义
type RuleDefinition struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"display_name"`
	Type        string      `json:"type"`  // hard 硬约束, soft 软约束
	Stage       string      `json:"stage"` // 生效阶段
	Description string      `json:"description"`
	Params      []RuleParam `json:"params,omitempty"`
}

// LibraryResponse 规则库响应
type LibraryResponse struct {
	Days    []model.Day      `json:"days"`
	Shifts  []model.Shift    `json:"shifts"`
	Library []RuleDefinition `json:"library"`
}

// GetLibrary 获取排班引擎使用的全部规则
func GetLibrary() []RuleDefinition {
	return []RuleDefinition{
		// 硬约束
		{
			Name:        "min_staff_per_shift",
			DisplayName: "每班最少人数",
			Type:        "hard",
			Stage:       "validate",
			Description: "每个班次至少需要的员工数，不足时报告人手不足，但排班仍然完成。",
			Params: []RuleParam{
				{Name: "min_staff", Type: "int", Description: "最少人数", Value: strconv.Itoa(model.MinStaffPerShift)},
			},
		},
		{
			Name:        "max_days_per_week",
			DisplayName: "每周最多工作天数",
			Type:        "hard",
			Stage:       "assign,resolve",
			Description: "员工每周最多工作的天数，分配和提交时都会检查。",
			Params: []RuleParam{
				{Name: "max_days", Type: "int", Description: "最多天数", Value: strconv.Itoa(model.MaxDaysPerWeek)},
			},
		},
		{
			Name:        "one_shift_per_day",
			DisplayName: "每天最多一个班次",
			Type:        "hard",
			Stage:       "assign,resolve",
			Description: "同一员工同一天只能排一个班次。",
		},
		{
			Name:        "commit_cap",
			DisplayName: "首轮每班提交上限",
			Type:        "hard",
			Stage:       "assign",
			Description: "首轮分配每个班次最多提交的人数，去重后截取。",
			Params: []RuleParam{
				{Name: "cap", Type: "int", Description: "提交上限", Value: strconv.Itoa(model.MinStaffPerShift)},
			},
		},

		// 软约束
		{
			Name:        "preference_rank",
			DisplayName: "班次偏好",
			Type:        "soft",
			Stage:       "assign",
			Description: "按员工当天的偏好等级排序，等级相同时保持名册顺序。",
			Params: []RuleParam{
				{Name: "preferences_per_day", Type: "int", Description: "每天偏好条目数", Value: strconv.Itoa(model.PreferenceCount)},
				{Name: "shifts", Type: "array", Description: "班次取值", Value: shiftNames()},
			},
		},
		{
			Name:        "fair_fill",
			DisplayName: "公平补位",
			Type:        "soft",
			Stage:       "assign,resolve",
			Description: "偏好人数不足时，从工作天数最少的员工中随机挑选，随机源可指定种子。",
		},
	}
}

// Response 返回完整的规则库响应
func Response() LibraryResponse {
	return LibraryResponse{
		Days:    model.Days,
		Shifts:  model.Shifts,
		Library: GetLibrary(),
	}
}

func shiftNames() string {
	names := make([]string, len(model.Shifts))
	for i, s := range model.Shifts {
		names[i] = s.String()
	}
	return strings.Join(names, ",")
}

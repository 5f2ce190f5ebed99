// Package importer 读取员工班次偏好
package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/paiban/shiftweek/pkg/errors"
	"github.com/paiban/shiftweek/pkg/logger"
	"github.com/paiban/shiftweek/pkg/model"
)

// RecommendedEmployees 每天3个班次各2人，至少需要6个不同的人
const RecommendedEmployees = model.ShiftsPerDay * model.MinStaffPerShift

// Result 导入结果
type Result struct {
	Roster   *model.Roster
	Warnings []string
}

// Format 偏好文件格式
type Format string

const (
	FormatText Format = "text"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// DetectFormat 根据扩展名判断格式
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV
	case ".xlsx":
		return FormatXLSX
	default:
		return FormatText
	}
}

// LoadFile 读取偏好文件，任何错误都不会返回部分名册
func LoadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.SourceNotFound(path, err)
	}
	defer f.Close()

	var result *Result
	switch DetectFormat(path) {
	case FormatCSV:
		result, err = ParseCSV(f)
	case FormatXLSX:
		result, err = ParseXLSX(f)
	default:
		result, err = ParseText(f)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().
		Str("path", path).
		Int("employees", result.Roster.Len()).
		Msg("偏好文件导入完成")

	return result, nil
}

// Record 一个员工的原始偏好，缺少的星期视为没有偏好
type Record struct {
	Name        string                 `json:"name"`
	Preferences map[model.Day][]string `json:"preferences"`
}

// FromRecords 按给定顺序校验并构建名册
func FromRecords(records []Record) (*Result, error) {
	roster := model.NewRoster()
	for i, rec := range records {
		name := strings.TrimSpace(rec.Name)
		emp := model.NewEmployee(name)
		for _, day := range model.Days {
			fields, ok := rec.Preferences[day]
			if !ok {
				continue
			}
			normalized := make([]string, len(fields))
			for j, f := range fields {
				normalized[j] = strings.ToLower(strings.TrimSpace(f))
			}
			prefs, err := parseDayPreferences(name, day, normalized)
			if err != nil {
				return nil, errors.As(err).WithField("index", i)
			}
			emp.Preferences[day] = prefs
		}
		if err := addEmployee(roster, emp); err != nil {
			return nil, errors.As(err).WithField("index", i)
		}
	}
	return finish(roster), nil
}

// parseDayPreferences 校验一天的偏好：恰好3个不重复的合法班次
func parseDayPreferences(employee string, day model.Day, fields []string) ([]model.Shift, error) {
	if len(fields) != model.PreferenceCount {
		return nil, errors.Format(employee, day.String(),
			fmt.Sprintf("需要 %d 个班次，实际 %d 个", model.PreferenceCount, len(fields)))
	}

	prefs := make([]model.Shift, 0, len(fields))
	seen := make(map[model.Shift]bool)
	for _, f := range fields {
		s, err := model.ParseShift(f)
		if err != nil {
			return nil, errors.Format(employee, day.String(), fmt.Sprintf("无效班次 '%s'", f)).WithCause(err)
		}
		if seen[s] {
			return nil, errors.Format(employee, day.String(), fmt.Sprintf("班次 '%s' 重复", f))
		}
		seen[s] = true
		prefs = append(prefs, s)
	}
	return prefs, nil
}

// addEmployee 添加员工，重名视为格式错误
func addEmployee(r *model.Roster, e *model.Employee) error {
	if strings.TrimSpace(e.Name()) == "" {
		return errors.Format("", "", "员工姓名不能为空")
	}
	if err := r.Add(e); err != nil {
		return errors.Format(e.Name(), "", "员工姓名重复").WithCause(err)
	}
	return nil
}

// finish 生成导入结果并检查人数
func finish(r *model.Roster) *Result {
	result := &Result{Roster: r}
	if r.Len() < RecommendedEmployees {
		msg := fmt.Sprintf("员工数 %d 少于建议的 %d 人，部分班次可能无法排满", r.Len(), RecommendedEmployees)
		result.Warnings = append(result.Warnings, msg)
		logger.Warn().
			Int("employees", r.Len()).
			Int("recommended", RecommendedEmployees).
			Msg("员工数少于建议人数")
	}
	return result
}

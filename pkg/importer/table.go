package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/paiban/shiftweek/pkg/errors"
	"github.com/paiban/shiftweek/pkg/model"
	"github.com/xuri/excelize/v2"
)

// tableHeader 表格格式的表头：姓名 + 周一至周日
func tableHeader() []string {
	header := []string{"name"}
	for _, d := range model.Days {
		header = append(header, strings.ToLower(d.String()))
	}
	return header
}

// ParseCSV 解析 CSV 格式，每个星期列为3个空格分隔的班次
func ParseCSV(rd io.Reader) (*Result, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFormat, "读取偏好 CSV 失败")
	}
	return parseRows(records)
}

// ParseXLSX 解析 Excel 工作簿的第一个工作表
func ParseXLSX(rd io.Reader) (*Result, error) {
	f, err := excelize.OpenReader(rd)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFormat, "打开偏好工作簿失败")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New(errors.CodeFormat, "工作簿没有工作表")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeFormat, "读取工作表失败")
	}
	return parseRows(rows)
}

// parseRows 解析表格行（第一行为表头）
func parseRows(rows [][]string) (*Result, error) {
	expected := tableHeader()
	if len(rows) == 0 {
		return nil, errors.New(errors.CodeFormat, "偏好表格为空")
	}
	if !validateHeader(rows[0], expected) {
		return nil, errors.New(errors.CodeFormat,
			fmt.Sprintf("表头不匹配，期望: %v，实际: %v", expected, rows[0]))
	}

	roster := model.NewRoster()
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		// Excel 会省略行尾空单元格
		for len(row) < len(expected) {
			row = append(row, "")
		}
		if len(row) > len(expected) {
			return nil, errors.New(errors.CodeFormat,
				fmt.Sprintf("第 %d 行: 期望 %d 列，实际 %d 列", i+2, len(expected), len(row)))
		}

		name := strings.TrimSpace(row[0])
		emp := model.NewEmployee(name)
		for j, day := range model.Days {
			prefs, err := parseDayPreferences(name, day, strings.Fields(strings.ToLower(row[j+1])))
			if err != nil {
				return nil, errors.As(err).WithField("row", i+2)
			}
			emp.Preferences[day] = prefs
		}

		if err := addEmployee(roster, emp); err != nil {
			return nil, err
		}
	}

	return finish(roster), nil
}

func validateHeader(header, expected []string) bool {
	if len(header) != len(expected) {
		return false
	}
	for i, h := range header {
		if !strings.EqualFold(strings.TrimSpace(h), expected[i]) {
			return false
		}
	}
	return true
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

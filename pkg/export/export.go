// Package export 输出最终排班表
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/paiban/shiftweek/pkg/model"
)

// Row 排班表中的一行：一个班次及其员工
type Row struct {
	Day       model.Day   `json:"day"`
	Shift     model.Shift `json:"shift"`
	Employees []string    `json:"employees"`
}

// Joined 返回逗号连接的员工姓名
func (r Row) Joined() string {
	return strings.Join(r.Employees, ", ")
}

// csvHeader 导出表头
var csvHeader = []string{"Day", "Shift", "Employees"}

// Rows 按固定顺序返回21行，员工按名册顺序排列
func Rows(r *model.Roster) []Row {
	slots := model.AllSlots()
	rows := make([]Row, 0, len(slots))
	for _, slot := range slots {
		names := r.AssignedTo(slot)
		if names == nil {
			names = []string{}
		}
		rows = append(rows, Row{Day: slot.Day, Shift: slot.Shift, Employees: names})
	}
	return rows
}

// WriteCSV 以 CSV 格式写出排班表
func WriteCSV(w io.Writer, r *model.Roster) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}
	for _, row := range Rows(r) {
		if err := writer.Write([]string{row.Day.String(), row.Shift.String(), row.Joined()}); err != nil {
			return fmt.Errorf("写入 %s %s 失败: %w", row.Day, row.Shift, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

package export

import (
	"fmt"
	"io"

	"github.com/paiban/shiftweek/pkg/model"
	"github.com/xuri/excelize/v2"
)

// SheetName 导出工作表名称
const SheetName = "Schedule"

// WriteXLSX 以 Excel 工作簿写出排班表
func WriteXLSX(w io.Writer, r *model.Roster) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("创建工作表失败: %w", err)
	}

	header := make([]interface{}, len(csvHeader))
	for i, h := range csvHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return fmt.Errorf("写入表头失败: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("创建样式失败: %w", err)
	}
	if err := f.SetRowStyle(SheetName, 1, 1, bold); err != nil {
		return fmt.Errorf("设置表头样式失败: %w", err)
	}

	for i, row := range Rows(r) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := []interface{}{row.Day.String(), row.Shift.String(), row.Joined()}
		if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
			return fmt.Errorf("写入 %s %s 失败: %w", row.Day, row.Shift, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "B", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "C", "C", 40); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("写出工作簿失败: %w", err)
	}
	return nil
}

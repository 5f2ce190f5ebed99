package importer

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/paiban/shiftweek/pkg/errors"
	"github.com/paiban/shiftweek/pkg/model"
	"github.com/xuri/excelize/v2"
)

// textInput 生成文本格式的偏好数据，override 可替换指定员工某天的行
func textInput(names []string, override func(name string, day model.Day) (string, bool)) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d\n", len(names))
	for _, n := range names {
		b.WriteString(n + "\n")
		for _, d := range model.Days {
			line := "morning afternoon evening"
			if override != nil {
				if l, ok := override(n, d); ok {
					line = l
				}
			}
			b.WriteString(line + "\n")
		}
	}
	return b.String()
}

var sixNames = []string{"Ann", "Ben", "Cat", "Dan", "Eli", "Fay"}

func TestParseText_Valid(t *testing.T) {
	input := textInput(sixNames, func(name string, d model.Day) (string, bool) {
		if name == "Ben" && d == model.Sunday {
			return "Evening  MORNING afternoon", true
		}
		return "", false
	})

	result, err := ParseText(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseText() error: %v", err)
	}
	if result.Roster.Len() != 6 {
		t.Fatalf("Len() = %d", result.Roster.Len())
	}
	if len(result.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", result.Warnings)
	}

	// 保持文件中的顺序
	for i, e := range result.Roster.Employees() {
		if e.Name() != sixNames[i] {
			t.Errorf("employee %d = %s, expected %s", i, e.Name(), sixNames[i])
		}
	}

	ben, _ := result.Roster.Get("Ben")
	got := ben.Preferences[model.Sunday]
	if len(got) != 3 || got[0] != model.Evening || got[1] != model.Morning || got[2] != model.Afternoon {
		t.Errorf("Ben Sunday = %v", got)
	}
	if ben.PreferenceDays() != 7 {
		t.Errorf("PreferenceDays() = %d", ben.PreferenceDays())
	}
}

func TestParseText_FormatErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			// 周二只有2个班次
			name: "周二条目不足",
			input: textInput(sixNames, func(name string, d model.Day) (string, bool) {
				return "morning evening", name == "Cat" && d == model.Tuesday
			}),
		},
		{
			name: "条目过多",
			input: textInput(sixNames, func(name string, d model.Day) (string, bool) {
				return "morning evening afternoon morning", name == "Ann" && d == model.Monday
			}),
		},
		{
			name: "未知班次",
			input: textInput(sixNames, func(name string, d model.Day) (string, bool) {
				return "morning night evening", name == "Fay" && d == model.Friday
			}),
		},
		{
			name: "班次重复",
			input: textInput(sixNames, func(name string, d model.Day) (string, bool) {
				return "morning morning evening", name == "Dan" && d == model.Saturday
			}),
		},
		{
			name:  "员工重名",
			input: textInput([]string{"Ann", "Ann"}, nil),
		},
		{
			name:  "员工数不是数字",
			input: "six\n",
		},
		{
			name:  "文件提前结束",
			input: "2\nAnn\nmorning afternoon evening\n",
		},
		{
			name:  "空文件",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseText(strings.NewReader(tt.input))
			if err == nil {
				t.Fatal("Expected format error")
			}
			if !errors.Is(err, errors.CodeFormat) {
				t.Errorf("Expected %s, got %s (%v)", errors.CodeFormat, errors.GetCode(err), err)
			}
			if result != nil {
				t.Error("No partial result should be returned")
			}
		})
	}
}

func TestParseText_TuesdayErrorNamesEmployeeAndDay(t *testing.T) {
	input := textInput(sixNames, func(name string, d model.Day) (string, bool) {
		return "morning evening", name == "Cat" && d == model.Tuesday
	})

	_, err := ParseText(strings.NewReader(input))
	appErr := errors.As(err)
	if appErr.Fields["employee"] != "Cat" || appErr.Fields["day"] != "Tuesday" {
		t.Errorf("Fields = %v", appErr.Fields)
	}
	// 第1行为人数，Cat 的姓名在第 1+2*8+1 = 18 行，周二在第20行
	if appErr.Fields["line"] != 20 {
		t.Errorf("line = %v, expected 20", appErr.Fields["line"])
	}
}

func TestParseText_FewEmployeesWarns(t *testing.T) {
	result, err := ParseText(strings.NewReader(textInput([]string{"Ann", "Ben", "Cat"}, nil)))
	if err != nil {
		t.Fatalf("ParseText() error: %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Expected 1 warning, got %v", result.Warnings)
	}
	if result.Roster.Len() != 3 {
		t.Errorf("Len() = %d", result.Roster.Len())
	}
}

func csvInput(rows ...string) string {
	return "name,monday,tuesday,wednesday,thursday,friday,saturday,sunday\n" + strings.Join(rows, "\n") + "\n"
}

func csvRow(name, prefs string) string {
	cells := []string{name}
	for range model.Days {
		cells = append(cells, prefs)
	}
	return strings.Join(cells, ",")
}

func TestParseCSV(t *testing.T) {
	input := csvInput(
		csvRow("Ann", "evening afternoon morning"),
		csvRow("Ben", "morning afternoon evening"),
	)

	result, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() error: %v", err)
	}
	ann, ok := result.Roster.Get("Ann")
	if !ok {
		t.Fatal("Ann not imported")
	}
	if ann.Preferences[model.Wednesday][0] != model.Evening {
		t.Errorf("Ann Wednesday = %v", ann.Preferences[model.Wednesday])
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Expected a staffing warning, got %v", result.Warnings)
	}
}

func TestParseCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"表头错误", "employee,mon\nAnn,morning afternoon evening\n"},
		{"空表格", ""},
		{"列数过多", csvInput(csvRow("Ann", "morning afternoon evening") + ",extra")},
		{"偏好不足", csvInput(csvRow("Ann", "morning afternoon"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCSV(strings.NewReader(tt.input))
			if !errors.Is(err, errors.CodeFormat) {
				t.Errorf("Expected %s, got %v", errors.CodeFormat, err)
			}
			if result != nil {
				t.Error("No partial result should be returned")
			}
		})
	}
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	header := []interface{}{"Name", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if err := f.SetSheetRow("Sheet1", "A1", &header); err != nil {
		t.Fatal(err)
	}
	for i, name := range sixNames {
		row := []interface{}{name}
		for range model.Days {
			row = append(row, "afternoon evening morning")
		}
		if err := f.SetSheetRow("Sheet1", fmt.Sprintf("A%d", i+2), &row); err != nil {
			t.Fatal(err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatal(err)
	}

	result, err := ParseXLSX(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("ParseXLSX() error: %v", err)
	}
	if result.Roster.Len() != 6 {
		t.Errorf("Len() = %d", result.Roster.Len())
	}
	fay, _ := result.Roster.Get("Fay")
	if fay.Preferences[model.Sunday][0] != model.Afternoon {
		t.Errorf("Fay Sunday = %v", fay.Preferences[model.Sunday])
	}
}

func TestParseXLSX_NotAWorkbook(t *testing.T) {
	_, err := ParseXLSX(strings.NewReader("not a zip"))
	if !errors.Is(err, errors.CodeFormat) {
		t.Errorf("Expected %s, got %v", errors.CodeFormat, err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "employees.txt")
	if err := os.WriteFile(txt, []byte(textInput(sixNames, nil)), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err := LoadFile(txt)
	if err != nil {
		t.Fatalf("LoadFile(txt) error: %v", err)
	}
	if result.Roster.Len() != 6 {
		t.Errorf("txt Len() = %d", result.Roster.Len())
	}

	csvPath := filepath.Join(dir, "employees.CSV")
	if err := os.WriteFile(csvPath, []byte(csvInput(csvRow("Ann", "morning afternoon evening"))), 0o644); err != nil {
		t.Fatal(err)
	}
	result, err = LoadFile(csvPath)
	if err != nil {
		t.Fatalf("LoadFile(csv) error: %v", err)
	}
	if result.Roster.Len() != 1 {
		t.Errorf("csv Len() = %d", result.Roster.Len())
	}
}

func TestLoadFile_Missing(t *testing.T) {
	result, err := LoadFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, errors.CodeSourceNotFound) {
		t.Errorf("Expected %s, got %v", errors.CodeSourceNotFound, err)
	}
	if result != nil {
		t.Error("result should be nil")
	}
}

func TestDetectFormat(t *testing.T) {
	tests := map[string]Format{
		"a.txt":       FormatText,
		"a":           FormatText,
		"a.csv":       FormatCSV,
		"dir/B.XLSX":  FormatXLSX,
		"prefs.table": FormatText,
	}
	for path, want := range tests {
		if got := DetectFormat(path); got != want {
			t.Errorf("DetectFormat(%s) = %s, expected %s", path, got, want)
		}
	}
}

func TestFromRecords(t *testing.T) {
	records := []Record{
		{Name: " Ann ", Preferences: map[model.Day][]string{
			model.Monday: {"Morning", "evening", "afternoon"},
		}},
		{Name: "Ben"},
	}

	result, err := FromRecords(records)
	if err != nil {
		t.Fatalf("FromRecords() error: %v", err)
	}
	ann, ok := result.Roster.Get("Ann")
	if !ok {
		t.Fatal("name should be trimmed")
	}
	if ann.PreferenceDays() != 1 || ann.Preferences[model.Monday][1] != model.Evening {
		t.Errorf("Ann preferences = %v", ann.Preferences)
	}
	ben, _ := result.Roster.Get("Ben")
	if ben.PreferenceDays() != 0 {
		t.Errorf("Ben should have no preferences")
	}
}

func TestFromRecords_Errors(t *testing.T) {
	tests := []struct {
		name    string
		records []Record
	}{
		{"空姓名", []Record{{Name: " "}}},
		{"重名", []Record{{Name: "Ann"}, {Name: "Ann"}}},
		{"周二条目不足", []Record{{Name: "Ann", Preferences: map[model.Day][]string{
			model.Tuesday: {"morning", "evening"},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := FromRecords(tt.records)
			if !errors.Is(err, errors.CodeFormat) {
				t.Errorf("Expected %s, got %v", errors.CodeFormat, err)
			}
			if result != nil {
				t.Error("No partial result should be returned")
			}
		})
	}
}

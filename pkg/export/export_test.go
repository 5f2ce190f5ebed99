package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paiban/shiftweek/pkg/model"
	"github.com/xuri/excelize/v2"
)

// sampleRoster Bob 先入名册，Alice 后入；两人都排周一早班
func sampleRoster(t *testing.T) *model.Roster {
	t.Helper()
	r := model.NewRoster()
	bob := model.NewEmployee("Bob")
	alice := model.NewEmployee("Alice")
	carol := model.NewEmployee("Carol")
	for _, e := range []*model.Employee{bob, alice, carol} {
		if err := r.Add(e); err != nil {
			t.Fatal(err)
		}
	}
	alice.Assign(model.Slot{Day: model.Monday, Shift: model.Morning})
	bob.Assign(model.Slot{Day: model.Monday, Shift: model.Morning})
	carol.Assign(model.Slot{Day: model.Sunday, Shift: model.Evening})
	return r
}

func TestRows(t *testing.T) {
	rows := Rows(sampleRoster(t))
	if len(rows) != 21 {
		t.Fatalf("len(rows) = %d", len(rows))
	}

	first := rows[0]
	if first.Day != model.Monday || first.Shift != model.Morning {
		t.Errorf("first row = %s %s", first.Day, first.Shift)
	}
	// 名册顺序，而非分配顺序
	if first.Joined() != "Bob, Alice" {
		t.Errorf("Joined() = %q", first.Joined())
	}

	last := rows[20]
	if last.Day != model.Sunday || last.Shift != model.Evening || last.Joined() != "Carol" {
		t.Errorf("last row = %+v", last)
	}
	if rows[1].Employees == nil || len(rows[1].Employees) != 0 {
		t.Errorf("empty slot should have an empty, non-nil list")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleRoster(t)); err != nil {
		t.Fatalf("WriteCSV() error: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 22 {
		t.Fatalf("Expected 22 lines, got %d", len(lines))
	}
	expected := []string{
		"Day,Shift,Employees",
		`Monday,morning,"Bob, Alice"`,
		"Monday,afternoon,",
	}
	for i, want := range expected {
		if lines[i] != want {
			t.Errorf("line %d = %q, expected %q", i, lines[i], want)
		}
	}
	if lines[21] != "Sunday,evening,Carol" {
		t.Errorf("last line = %q", lines[21])
	}
}

func TestWriteGrid(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGrid(&buf, sampleRoster(t)); err != nil {
		t.Fatalf("WriteGrid() error: %v", err)
	}
	out := buf.String()

	checks := []string{
		"Final Schedule:",
		"\nMonday:\nMorning   : Bob, Alice\nAfternoon : Unstaffed\nEvening   : Unstaffed\n",
		"\nSunday:\n",
		"Evening   : Carol\n",
	}
	for _, c := range checks {
		if !strings.Contains(out, c) {
			t.Errorf("grid missing %q:\n%s", c, out)
		}
	}
	if n := strings.Count(out, "Unstaffed"); n != 18 {
		t.Errorf("Unstaffed count = %d, expected 18", n)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleRoster(t)); err != nil {
		t.Fatalf("WriteXLSX() error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 22 {
		t.Fatalf("len(rows) = %d", len(rows))
	}
	if strings.Join(rows[0], "|") != "Day|Shift|Employees" {
		t.Errorf("header = %v", rows[0])
	}
	if strings.Join(rows[1], "|") != "Monday|morning|Bob, Alice" {
		t.Errorf("row 1 = %v", rows[1])
	}
}

package export

import (
	"bufio"
	"fmt"
	"io"

	"github.com/paiban/shiftweek/pkg/model"
)

// WriteGrid 输出便于阅读的排班表
func WriteGrid(w io.Writer, r *model.Roster) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "\nFinal Schedule:")

	for i, row := range Rows(r) {
		if i%model.ShiftsPerDay == 0 {
			fmt.Fprintf(bw, "\n%s:\n", row.Day)
		}
		workers := row.Joined()
		if workers == "" {
			workers = "Unstaffed"
		}
		fmt.Fprintf(bw, "%-10s: %s\n", row.Shift.Title(), workers)
	}

	return bw.Flush()
}

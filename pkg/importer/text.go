package importer

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paiban/shiftweek/pkg/errors"
	"github.com/paiban/shiftweek/pkg/model"
)

// ParseText 解析文本格式：
// 第一行为员工数；每个员工一行姓名，随后7行（周一至周日）各3个空格分隔的班次
func ParseText(rd io.Reader) (*Result, error) {
	lines := &lineReader{scanner: bufio.NewScanner(rd)}

	header, err := lines.next()
	if err != nil {
		return nil, err
	}
	count, convErr := strconv.Atoi(header)
	if convErr != nil || count < 0 {
		return nil, errors.New(errors.CodeFormat, fmt.Sprintf("第 %d 行应为员工数: %q", lines.num, header))
	}

	roster := model.NewRoster()
	for i := 0; i < count; i++ {
		name, err := lines.next()
		if err != nil {
			return nil, err
		}
		emp := model.NewEmployee(name)

		for _, day := range model.Days {
			line, err := lines.next()
			if err != nil {
				return nil, err
			}
			prefs, err := parseDayPreferences(name, day, strings.Fields(strings.ToLower(line)))
			if err != nil {
				return nil, errors.As(err).WithField("line", lines.num)
			}
			emp.Preferences[day] = prefs
		}

		if err := addEmployee(roster, emp); err != nil {
			return nil, err
		}
	}

	return finish(roster), nil
}

// lineReader 逐行读取并记录行号
type lineReader struct {
	scanner *bufio.Scanner
	num     int
}

func (l *lineReader) next() (string, error) {
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", errors.Wrap(err, errors.CodeFormat, "读取偏好数据失败")
		}
		return "", errors.New(errors.CodeFormat, fmt.Sprintf("第 %d 行后文件提前结束", l.num))
	}
	l.num++
	return strings.TrimSpace(l.scanner.Text()), nil
}

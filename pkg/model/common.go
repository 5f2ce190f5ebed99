// Package model 定义排班引擎的核心数据模型
package model

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	MinStaffPerShift = 2 // 每个班次最少人数
	MaxDaysPerWeek   = 5 // 每人每周最多工作天数
	ShiftsPerDay     = 3 // 每天班次数
	PreferenceCount  = 3 // 每天偏好条目数
)

// Day 星期
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// Days 固定的一周顺序（周一至周日）
var Days = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayNames = [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

// String 返回星期名称
func (d Day) String() string {
	if !d.Valid() {
		return fmt.Sprintf("Day(%d)", int(d))
	}
	return dayNames[d]
}

// Valid 检查是否在固定的7天之内
func (d Day) Valid() bool {
	return d >= Monday && d <= Sunday
}

// ParseDay 解析星期名称（不区分大小写）
func ParseDay(s string) (Day, error) {
	s = strings.TrimSpace(s)
	for i, name := range dayNames {
		if strings.EqualFold(name, s) {
			return Day(i), nil
		}
	}
	return 0, fmt.Errorf("未知的星期: %q", s)
}

// MarshalText 实现 encoding.TextMarshaler
func (d Day) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("无效的星期: %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (d *Day) UnmarshalText(text []byte) error {
	parsed, err := ParseDay(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Shift 班次
type Shift int

const (
	Morning Shift = iota
	Afternoon
	Evening
)

// Shifts 固定的班次顺序
var Shifts = []Shift{Morning, Afternoon, Evening}

var shiftNames = [...]string{"morning", "afternoon", "evening"}

// String 返回班次标识
func (s Shift) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Shift(%d)", int(s))
	}
	return shiftNames[s]
}

// Title 返回首字母大写的班次名称
func (s Shift) Title() string {
	name := s.String()
	return strings.ToUpper(name[:1]) + name[1:]
}

// Valid 检查是否在固定的3个班次之内
func (s Shift) Valid() bool {
	return s >= Morning && s <= Evening
}

// ParseShift 解析班次标识（不区分大小写）
func ParseShift(s string) (Shift, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range shiftNames {
		if name == s {
			return Shift(i), nil
		}
	}
	return 0, fmt.Errorf("未知的班次: %q", s)
}

// MarshalText 实现 encoding.TextMarshaler
func (s Shift) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("无效的班次: %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler
func (s *Shift) UnmarshalText(text []byte) error {
	parsed, err := ParseShift(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Slot 一个 (星期, 班次) 组合
type Slot struct {
	Day   Day   `json:"day"`
	Shift Shift `json:"shift"`
}

// String 返回 "Monday morning" 形式
func (s Slot) String() string {
	return s.Day.String() + " " + s.Shift.String()
}

// Valid 检查星期和班次是否都合法
func (s Slot) Valid() bool {
	return s.Day.Valid() && s.Shift.Valid()
}

// AllSlots 按星期优先的顺序返回一周的21个班次
func AllSlots() []Slot {
	slots := make([]Slot, 0, len(Days)*len(Shifts))
	for _, d := range Days {
		for _, s := range Shifts {
			slots = append(slots, Slot{Day: d, Shift: s})
		}
	}
	return slots
}

// BaseModel 基础模型
// ID 在创建时生成，统计、API 输出和归档都用它标识员工，姓名只用于展示和导入去重
type BaseModel struct {
	ID uuid.UUID `json:"id" db:"id"`
}

// NewBaseModel 创建新的基础模型
func NewBaseModel() BaseModel {
	return BaseModel{ID: uuid.New()}
}

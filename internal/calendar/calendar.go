package calendar

import (
	"encoding/json"
	"errors"
	"sort"
	"time"
)

var (
	ErrInvalidWindow   = errors.New("invalid time window")
	ErrInvalidDuration = errors.New("duration must be positive")
	ErrInvalidInterval = errors.New("interval must be positive")
)

// Дефолты для нового календаря.
const (
	DefaultDurationMinutes = 60
	DefaultIntervalMinutes = 30
)

// TimeWindow — дневное окно в минутах от полуночи (например, 540–600 это 09:00–10:00).
// Инвариант: Start < End. Окна могут пересекаться, дедупликация не выполняется.
type TimeWindow struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Valid проверяет инвариант окна.
func (w TimeWindow) Valid() bool {
	return w.Start >= 0 && w.End <= 24*60 && w.Start < w.End
}

// Calendar — календарь доступности поста: набор дат × список дневных окон.
// Оси независимы: каждая дата предлагает каждое окно. Пустые даты или пустые
// окна — валидное состояние «без расписания, договоритесь в переписке».
//
// Значение передаётся по значению; все четыре поля всегда заполнены
// (см. New), чтобы потребителям не приходилось проверять на nil.
type Calendar struct {
	AvailableDates  []time.Time  `json:"availableDates"`
	TimeWindows     []TimeWindow `json:"timeWindows"`
	DurationMinutes int          `json:"durationMinutes"`
	IntervalMinutes int          `json:"intervalMinutes"`
}

// New возвращает пустой календарь с дефолтными длительностью и интервалом.
func New() Calendar {
	return Calendar{
		AvailableDates:  []time.Time{},
		TimeWindows:     []TimeWindow{},
		DurationMinutes: DefaultDurationMinutes,
		IntervalMinutes: DefaultIntervalMinutes,
	}
}

// Day нормализует момент времени к календарному дню (полночь UTC).
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// SameDay сравнивает два момента по календарному дню.
func SameDay(a, b time.Time) bool {
	return Day(a).Equal(Day(b))
}

// Clone возвращает глубокую копию календаря.
func (c Calendar) Clone() Calendar {
	out := c
	out.AvailableDates = append([]time.Time{}, c.AvailableDates...)
	out.TimeWindows = append([]TimeWindow{}, c.TimeWindows...)
	return out
}

// Equal — структурное равенство (не по ссылке).
func (c Calendar) Equal(other Calendar) bool {
	if c.DurationMinutes != other.DurationMinutes || c.IntervalMinutes != other.IntervalMinutes {
		return false
	}
	if len(c.AvailableDates) != len(other.AvailableDates) || len(c.TimeWindows) != len(other.TimeWindows) {
		return false
	}
	for i := range c.AvailableDates {
		if !c.AvailableDates[i].Equal(other.AvailableDates[i]) {
			return false
		}
	}
	for i := range c.TimeWindows {
		if c.TimeWindows[i] != other.TimeWindows[i] {
			return false
		}
	}
	return true
}

// Unscheduled сообщает, что календарь не задаёт расписания.
// Все потребляющие сценарии обязаны трактовать это как валидное состояние.
func (c Calendar) Unscheduled() bool {
	return len(c.AvailableDates) == 0 || len(c.TimeWindows) == 0
}

// HasDate проверяет членство дня в AvailableDates (сравнение по дню).
func (c Calendar) HasDate(t time.Time) bool {
	for _, d := range c.AvailableDates {
		if SameDay(d, t) {
			return true
		}
	}
	return false
}

// Normalize приводит календарь к каноническому виду: даты нормализованы к
// полуночи UTC, дедуплицированы и отсортированы по возрастанию; дефолты
// подставлены вместо нулевых длительности/интервала. Окна не трогаем:
// их порядок авторский и значимый для выдачи слотов.
func (c Calendar) Normalize() Calendar {
	out := c.Clone()

	seen := make(map[time.Time]struct{}, len(out.AvailableDates))
	days := make([]time.Time, 0, len(out.AvailableDates))
	for _, d := range out.AvailableDates {
		day := Day(d)
		if _, ok := seen[day]; ok {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	out.AvailableDates = days

	if out.DurationMinutes <= 0 {
		out.DurationMinutes = DefaultDurationMinutes
	}
	if out.IntervalMinutes <= 0 {
		out.IntervalMinutes = DefaultIntervalMinutes
	}
	return out
}

// FromJSON разбирает календарь из JSON и нормализует его.
// Пустой вход трактуется как отсутствие календаря.
func FromJSON(raw []byte) (Calendar, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return New(), nil
	}
	var c Calendar
	if err := json.Unmarshal(raw, &c); err != nil {
		return Calendar{}, err
	}
	if c.AvailableDates == nil {
		c.AvailableDates = []time.Time{}
	}
	if c.TimeWindows == nil {
		c.TimeWindows = []TimeWindow{}
	}
	return c.Normalize(), nil
}

// ToJSON сериализует календарь для хранения.
func (c Calendar) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

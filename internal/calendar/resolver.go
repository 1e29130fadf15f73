package calendar

import "time"

// Slot — материализованная запись: конкретный день из AvailableDates,
// скомбинированный с одним дневным окном.
type Slot struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	// Вычисляемые флаги резолвера, не хранятся.
	IsPast      bool `json:"isPast"`
	IsBooked    bool `json:"isBooked"`
	IsAvailable bool `json:"isAvailable"`
}

// BookedFunc отвечает, занято ли начало слота. Источник занятости инжектится
// (в проде — активные заявки по посту), резолвер остаётся чистой функцией.
type BookedFunc func(start time.Time) bool

// NeverBooked — дефолтная заглушка: бронь нигде не числится.
func NeverBooked(time.Time) bool { return false }

// Resolve материализует слоты календаря на указанную дату.
//
// Если date не совпадает по дню ни с одной датой календаря, возвращается
// пустой список — это не ошибка. Порядок слотов повторяет порядок окон.
// Результат детерминирован по (cal, date, now, booked).
func Resolve(cal Calendar, date time.Time, now time.Time, booked BookedFunc) []Slot {
	if booked == nil {
		booked = NeverBooked
	}
	if !cal.HasDate(date) {
		return []Slot{}
	}

	day := Day(date)
	slots := make([]Slot, 0, len(cal.TimeWindows))
	for _, w := range cal.TimeWindows {
		if !w.Valid() {
			continue
		}
		s := Slot{
			Start: day.Add(time.Duration(w.Start) * time.Minute),
			End:   day.Add(time.Duration(w.End) * time.Minute),
		}
		// Прошедшим считается слот, начало которого не позже now.
		s.IsPast = !s.Start.After(now)
		s.IsBooked = booked(s.Start)
		s.IsAvailable = !s.IsPast && !s.IsBooked
		slots = append(slots, s)
	}
	return slots
}

// SelectableDates возвращает даты календаря для выбора: по возрастанию,
// без дублей, прошедшие дни исключены целиком (сегодня остаётся доступен).
func SelectableDates(cal Calendar, now time.Time) []time.Time {
	today := Day(now)
	norm := cal.Normalize()

	dates := make([]time.Time, 0, len(norm.AvailableDates))
	for _, d := range norm.AvailableDates {
		if d.Before(today) {
			continue
		}
		dates = append(dates, d)
	}
	return dates
}

// Refresh пересчитывает флаги уже материализованного слота на момент now.
// Используется пикером при подтверждении, чтобы не отдать протухший слот.
func (s Slot) Refresh(now time.Time, booked BookedFunc) Slot {
	if booked == nil {
		booked = NeverBooked
	}
	s.IsPast = !s.Start.After(now)
	s.IsBooked = booked(s.Start)
	s.IsAvailable = !s.IsPast && !s.IsBooked
	return s
}

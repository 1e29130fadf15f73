package calendar

import (
	"sort"
	"time"
)

// Editor собирает календарь доступности при создании/редактировании поста.
//
// Редактор никогда не блокирует прогресс формы: пустой календарь — легитимное
// состояние («договоримся в переписке»), поэтому валидация «а добавил ли
// пользователь что-то полезное» живёт в Warnings и носит рекомендательный
// характер. Жёстко отклоняется
// только перевёрнутое окно.
type Editor struct {
	cal      Calendar
	onChange func(Calendar)
}

// NewEditor создаёт редактор с пустым календарём и дефолтами.
// onChange (опционально) получает полный пересобранный календарь после
// каждой успешной мутации; владелец формы сам решает, когда персистить.
func NewEditor(onChange func(Calendar)) *Editor {
	return &Editor{cal: New(), onChange: onChange}
}

// Seed загружает существующий календарь для редактирования.
// Берётся защитная копия: отмена редактирования не должна трогать
// сохранённое значение.
func (e *Editor) Seed(cal Calendar) {
	e.cal = cal.Normalize()
}

// Value возвращает текущее значение целиком (копию, все поля заполнены).
func (e *Editor) Value() Calendar {
	return e.cal.Clone()
}

func (e *Editor) emit() {
	if e.onChange != nil {
		e.onChange(e.Value())
	}
}

// AddDate добавляет календарный день. Дубли по дню игнорируются,
// список держится отсортированным по возрастанию.
func (e *Editor) AddDate(t time.Time) {
	day := Day(t)
	if e.cal.HasDate(day) {
		return
	}
	e.cal.AvailableDates = append(e.cal.AvailableDates, day)
	sort.Slice(e.cal.AvailableDates, func(i, j int) bool {
		return e.cal.AvailableDates[i].Before(e.cal.AvailableDates[j])
	})
	e.emit()
}

// RemoveDate убирает день, если он есть.
func (e *Editor) RemoveDate(t time.Time) {
	day := Day(t)
	for i, d := range e.cal.AvailableDates {
		if d.Equal(day) {
			e.cal.AvailableDates = append(e.cal.AvailableDates[:i], e.cal.AvailableDates[i+1:]...)
			e.emit()
			return
		}
	}
}

// AddWindow добавляет дневное окно (минуты от полуночи).
// Окна могут пересекаться; дедупликации нет — порядок авторский.
func (e *Editor) AddWindow(start, end int) error {
	w := TimeWindow{Start: start, End: end}
	if !w.Valid() {
		return ErrInvalidWindow
	}
	e.cal.TimeWindows = append(e.cal.TimeWindows, w)
	e.emit()
	return nil
}

// RemoveWindow убирает окно по индексу.
func (e *Editor) RemoveWindow(i int) {
	if i < 0 || i >= len(e.cal.TimeWindows) {
		return
	}
	e.cal.TimeWindows = append(e.cal.TimeWindows[:i], e.cal.TimeWindows[i+1:]...)
	e.emit()
}

// SetDuration задаёт номинальную длительность активности (информационное поле).
func (e *Editor) SetDuration(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidDuration
	}
	e.cal.DurationMinutes = minutes
	e.emit()
	return nil
}

// SetInterval задаёт номинальный шаг между началами (информационное поле).
func (e *Editor) SetInterval(minutes int) error {
	if minutes <= 0 {
		return ErrInvalidInterval
	}
	e.cal.IntervalMinutes = minutes
	e.emit()
	return nil
}

// Warnings — рекомендательные замечания для UI. Никогда не препятствуют
// отправке формы.
func (e *Editor) Warnings() []string {
	var warns []string
	if len(e.cal.AvailableDates) == 0 {
		warns = append(warns, "no dates selected: claimants will arrange timing via messages")
	}
	if len(e.cal.TimeWindows) == 0 {
		warns = append(warns, "no time windows added: claimants will arrange timing via messages")
	}
	return warns
}

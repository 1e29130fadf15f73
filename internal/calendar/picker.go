package calendar

import (
	"errors"
	"time"
)

// Состояния пикера слотов.
type PickerState int

const (
	// PickerNoOptions — терминальное состояние «запись невозможна,
	// договоритесь в переписке». Входим сразу, если календарь пуст.
	PickerNoOptions PickerState = iota
	// PickerNoDateSelected — стартовое состояние: показываем список дат.
	PickerNoDateSelected
	// PickerDateSelected — дата выбрана, показываем слоты.
	PickerDateSelected
	// PickerSlotSelected — слот выбран, подтверждение доступно.
	PickerSlotSelected
)

var (
	ErrNoOptions       = errors.New("calendar offers no bookable options")
	ErrSlotOutOfRange  = errors.New("slot index out of range")
	ErrSlotPast        = errors.New("slot is in the past")
	ErrSlotBooked      = errors.New("slot is already booked")
	ErrNothingSelected = errors.New("no slot selected")
	ErrSlotStale       = errors.New("slot is no longer available, reselect")
)

// Picker — двухшаговый протокол выбора (дата → слот → подтверждение).
//
// Пикер владеет только локальным состоянием выбора; заявку/отклик он не
// создаёт — подтверждённый слот отдаётся колбэку вызывающей стороны,
// которая и дергает нужную операцию (claim swap / claim item / pledge slot).
type Picker struct {
	cal    Calendar
	clock  func() time.Time
	booked BookedFunc

	state PickerState
	date  time.Time
	slots []Slot
	pick  int // индекс выбранного слота в slots; -1, если не выбран
}

// NewPicker создаёт пикер. clock == nil означает time.Now,
// booked == nil — занятость нигде не числится.
func NewPicker(cal Calendar, clock func() time.Time, booked BookedFunc) *Picker {
	if clock == nil {
		clock = time.Now
	}
	if booked == nil {
		booked = NeverBooked
	}
	p := &Picker{
		cal:    cal.Normalize(),
		clock:  clock,
		booked: booked,
		pick:   -1,
	}
	if p.cal.Unscheduled() {
		p.state = PickerNoOptions
	} else {
		p.state = PickerNoDateSelected
	}
	return p
}

func (p *Picker) State() PickerState { return p.state }

// Dates — выбираемые даты: по возрастанию, прошедшие исключены целиком.
func (p *Picker) Dates() []time.Time {
	if p.state == PickerNoOptions {
		return []time.Time{}
	}
	return SelectableDates(p.cal, p.clock())
}

// Slots — материализованные слоты выбранной даты (пусто, если дата не выбрана).
// Недоступные слоты остаются в списке: UI рендерит их задизейбленными
// с причиной (прошёл / занят).
func (p *Picker) Slots() []Slot {
	return append([]Slot{}, p.slots...)
}

// SelectDate переводит пикер в PickerDateSelected и резолвит слоты даты.
// Повторный выбор другой даты легален и сбрасывает выбранный слот.
// Дата вне календаря — не ошибка: слотов просто не будет.
func (p *Picker) SelectDate(d time.Time) error {
	if p.state == PickerNoOptions {
		return ErrNoOptions
	}
	p.date = Day(d)
	p.slots = Resolve(p.cal, p.date, p.clock(), p.booked)
	p.pick = -1
	p.state = PickerDateSelected
	return nil
}

// SelectSlot выбирает слот по индексу из Slots. Недоступный слот
// отклоняется с причиной.
func (p *Picker) SelectSlot(i int) error {
	if p.state != PickerDateSelected && p.state != PickerSlotSelected {
		return ErrNothingSelected
	}
	if i < 0 || i >= len(p.slots) {
		return ErrSlotOutOfRange
	}
	s := p.slots[i].Refresh(p.clock(), p.booked)
	if !s.IsAvailable {
		if s.IsPast {
			return ErrSlotPast
		}
		return ErrSlotBooked
	}
	p.slots[i] = s
	p.pick = i
	p.state = PickerSlotSelected
	return nil
}

// Selected возвращает выбранный слот, если он есть.
func (p *Picker) Selected() (Slot, bool) {
	if p.state != PickerSlotSelected || p.pick < 0 {
		return Slot{}, false
	}
	return p.slots[p.pick], true
}

// Confirm подтверждает выбор и отдаёт слот колбэку done.
//
// Без выбранного слота подтверждение — no-op с ошибкой, колбэк не зовётся.
// Доступность перепроверяется на момент подтверждения: слот, протухший пока
// пикер был открыт, не уходит вызывающей стороне — пикер возвращается к
// выбору слота с ErrSlotStale.
func (p *Picker) Confirm(done func(Slot)) error {
	if p.state != PickerSlotSelected || p.pick < 0 {
		return ErrNothingSelected
	}
	s := p.slots[p.pick].Refresh(p.clock(), p.booked)
	if !s.IsAvailable {
		p.slots = Resolve(p.cal, p.date, p.clock(), p.booked)
		p.pick = -1
		p.state = PickerDateSelected
		return ErrSlotStale
	}
	if done != nil {
		done(s)
	}
	p.reset()
	return nil
}

// Cancel доступен из любого состояния: сбрасывает локальный выбор,
// побочных эффектов нет.
func (p *Picker) Cancel() {
	p.reset()
}

func (p *Picker) reset() {
	p.date = time.Time{}
	p.slots = nil
	p.pick = -1
	if p.cal.Unscheduled() {
		p.state = PickerNoOptions
	} else {
		p.state = PickerNoDateSelected
	}
}

package geo

import (
	"context"
	"sync"
	"time"
)

// Debouncer откладывает вызов на период тишины и явно отменяет
// предыдущий запланированный или уже выполняющийся вызов при приходе
// нового. Каждому вызову выдаётся свой контекст, производный от base.
//
// Это debounce-with-cancellation, не поллинг: быстрый набор адреса в
// форме порождает ровно один живой запрос к геокодеру.
type Debouncer struct {
	delay time.Duration

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

func NewDebouncer(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Do планирует fn после периода тишины. Предыдущий незавершённый вызов
// отменяется: его таймер останавливается, его контекст закрывается.
func (d *Debouncer) Do(base context.Context, fn func(ctx context.Context)) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	if d.cancel != nil {
		d.cancel()
	}

	ctx, cancel := context.WithCancel(base)
	d.cancel = cancel

	d.timer = time.AfterFunc(d.delay, func() {
		defer cancel()
		if ctx.Err() != nil {
			return
		}
		fn(ctx)
	})
}

// Stop отменяет всё запланированное. Вызывается при teardown формы.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
}

// DebouncedGeocoder связывает Debouncer и Geocoder: на каждый ввод адреса
// планируется один отложенный запрос, результат уходит в колбэк.
type DebouncedGeocoder struct {
	geocoder *Geocoder
	debounce *Debouncer
}

func NewDebouncedGeocoder(g *Geocoder, delay time.Duration) *DebouncedGeocoder {
	return &DebouncedGeocoder{geocoder: g, debounce: NewDebouncer(delay)}
}

// Lookup планирует геокодирование address; done получает результат или
// ошибку. Отменённые (перебитые более новым вводом) запросы колбэк не зовут.
func (dg *DebouncedGeocoder) Lookup(ctx context.Context, address string, done func(*Coordinates, error)) {
	dg.debounce.Do(ctx, func(ctx context.Context) {
		coords, err := dg.geocoder.Geocode(ctx, address)
		if ctx.Err() != nil {
			return
		}
		done(coords, err)
	})
}

// Stop останавливает отложенные запросы.
func (dg *DebouncedGeocoder) Stop() {
	dg.debounce.Stop()
}

// AddressResolver геокодирует адреса постов с дебаунсом по ключу (ID поста):
// быстрые последовательные правки адреса одного поста дают один живой запрос,
// посты друг другу запросы не перебивают.
type AddressResolver struct {
	geocoder *Geocoder
	delay    time.Duration

	mu      sync.Mutex
	pending map[string]*DebouncedGeocoder
}

func NewAddressResolver(g *Geocoder, delay time.Duration) *AddressResolver {
	return &AddressResolver{
		geocoder: g,
		delay:    delay,
		pending:  make(map[string]*DebouncedGeocoder),
	}
}

// Resolve планирует геокодирование address по ключу key; done получает
// результат. Более новый Resolve с тем же ключом отменяет предыдущий.
func (r *AddressResolver) Resolve(key, address string, done func(*Coordinates, error)) {
	r.mu.Lock()
	dg, ok := r.pending[key]
	if !ok {
		dg = NewDebouncedGeocoder(r.geocoder, r.delay)
		r.pending[key] = dg
	}
	r.mu.Unlock()

	dg.Lookup(context.Background(), address, done)
}

// Stop останавливает все отложенные запросы по всем ключам.
func (r *AddressResolver) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, dg := range r.pending {
		dg.Stop()
	}
	r.pending = make(map[string]*DebouncedGeocoder)
}

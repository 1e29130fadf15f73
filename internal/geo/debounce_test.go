package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestDebouncer_OnlyLastCallFires(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var calls int32
	var last atomic.Value

	for _, addr := range []string{"Т", "Тв", "Тверская"} {
		addr := addr
		d.Do(context.Background(), func(ctx context.Context) {
			atomic.AddInt32(&calls, 1)
			last.Store(addr)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}
	if got := last.Load(); got != "Тверская" {
		t.Fatalf("fired for %v, want last input", got)
	}
}

func TestDebouncer_CancelsRunningCall(t *testing.T) {
	d := NewDebouncer(10 * time.Millisecond)
	defer d.Stop()

	started := make(chan struct{})
	var firstCancelled atomic.Bool

	d.Do(context.Background(), func(ctx context.Context) {
		close(started)
		select {
		case <-ctx.Done():
			firstCancelled.Store(true)
		case <-time.After(time.Second):
		}
	})

	<-started
	// Новый ввод перебивает уже выполняющийся вызов.
	done := make(chan struct{})
	d.Do(context.Background(), func(ctx context.Context) {
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("second call never fired")
	}
	if !firstCancelled.Load() {
		t.Fatalf("first call context not cancelled")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var calls int32
	d.Do(context.Background(), func(context.Context) {
		atomic.AddInt32(&calls, 1)
	})
	d.Stop()

	time.Sleep(80 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Fatalf("calls after Stop = %d, want 0", got)
	}
}

func TestDebouncedGeocoder_SingleRequestForRapidTyping(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(`[{"lat":"55.75","lon":"37.61"}]`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, time.Second, zerolog.Nop())
	dg := NewDebouncedGeocoder(g, 30*time.Millisecond)
	defer dg.Stop()

	var mu sync.Mutex
	var results []*Coordinates

	// Быстрый набор адреса: несколько Lookup подряд.
	for _, addr := range []string{"Тверс", "Тверск", "Тверская 1"} {
		dg.Lookup(context.Background(), addr, func(c *Coordinates, err error) {
			if err != nil {
				t.Errorf("lookup: %v", err)
				return
			}
			mu.Lock()
			results = append(results, c)
			mu.Unlock()
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Fatalf("geocoder requests = %d, want 1", got)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(results) != 1 {
		t.Fatalf("callbacks = %d, want 1", len(results))
	}
	if results[0].Lat != 55.75 || results[0].Lng != 37.61 {
		t.Fatalf("coords = %+v", results[0])
	}
}

func TestAddressResolver_RapidEditsSameKeyCollapse(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(`[{"lat":"55.75","lon":"37.61"}]`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, time.Second, zerolog.Nop())
	r := NewAddressResolver(g, 30*time.Millisecond)
	defer r.Stop()

	var calls int32
	for _, addr := range []string{"Тверс", "Тверск", "Тверская 1"} {
		r.Resolve("post-1", addr, func(c *Coordinates, err error) {
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			atomic.AddInt32(&calls, 1)
		})
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(200 * time.Millisecond)

	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Fatalf("geocoder requests = %d, want 1", got)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("callbacks = %d, want 1", got)
	}
}

func TestAddressResolver_KeysDoNotCancelEachOther(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(`[{"lat":"55.75","lon":"37.61"}]`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, time.Second, zerolog.Nop())
	r := NewAddressResolver(g, 20*time.Millisecond)
	defer r.Stop()

	var calls int32
	done := func(c *Coordinates, err error) {
		if err != nil {
			t.Errorf("resolve: %v", err)
			return
		}
		atomic.AddInt32(&calls, 1)
	}

	// Два разных поста правят адреса почти одновременно.
	r.Resolve("post-1", "Тверская 1", done)
	r.Resolve("post-2", "Арбат 10", done)

	time.Sleep(200 * time.Millisecond)

	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Fatalf("geocoder requests = %d, want 2", got)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("callbacks = %d, want 2", got)
	}
}

func TestAddressResolver_StopCancelsPending(t *testing.T) {
	var requests int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		_, _ = w.Write([]byte(`[{"lat":"55.75","lon":"37.61"}]`))
	}))
	defer srv.Close()

	g := NewGeocoder(srv.URL, time.Second, zerolog.Nop())
	r := NewAddressResolver(g, 20*time.Millisecond)

	r.Resolve("post-1", "Тверская 1", func(*Coordinates, error) {
		t.Errorf("callback after Stop")
	})
	r.Stop()

	time.Sleep(100 * time.Millisecond)

	if got := atomic.LoadInt32(&requests); got != 0 {
		t.Fatalf("geocoder requests after Stop = %d, want 0", got)
	}
}

package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

var (
	ErrEmptyAddress = errors.New("address is empty")
	ErrNoResults    = errors.New("no geocoding results")
)

// Coordinates — результат геокодирования адреса.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Geocoder — клиент Nominatim-совместимого search endpoint.
type Geocoder struct {
	baseURL string
	client  *http.Client
	log     zerolog.Logger
}

func NewGeocoder(baseURL string, timeout time.Duration, log zerolog.Logger) *Geocoder {
	return &Geocoder{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

// ответ Nominatim: lat/lon приходят строками.
type nominatimHit struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode переводит адрес в координаты. Отмена через ctx.
func (g *Geocoder) Geocode(ctx context.Context, address string) (*Coordinates, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}

	q := url.Values{}
	q.Set("q", address)
	q.Set("format", "json")
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build geocode request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	var hits []nominatimHit
	if err := json.NewDecoder(resp.Body).Decode(&hits); err != nil {
		return nil, fmt.Errorf("decode geocode response: %w", err)
	}
	if len(hits) == 0 {
		return nil, ErrNoResults
	}

	lat, err := strconv.ParseFloat(hits[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat: %w", err)
	}
	lng, err := strconv.ParseFloat(hits[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon: %w", err)
	}

	g.log.Debug().Str("address", address).Float64("lat", lat).Float64("lng", lng).Msg("geocoded")
	return &Coordinates{Lat: lat, Lng: lng}, nil
}

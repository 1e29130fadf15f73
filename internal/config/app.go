package config

// AppConfig — настройки HTTP-сервера и внешнего геокодера.
type AppConfig struct {
	HTTPAddr string

	// Базовый URL геокодера (Nominatim-совместимый search endpoint).
	GeocoderBaseURL string
	// Тишина перед запросом геокодера, миллисекунды.
	GeocodeDebounceMS int
	// Таймаут запроса к геокодеру, секунды.
	GeocodeTimeoutSec int
}

func LoadAppConfig() *AppConfig {
	return &AppConfig{
		HTTPAddr:          getEnv("HTTP_ADDR", ":8080"),
		GeocoderBaseURL:   getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org/search"),
		GeocodeDebounceMS: getEnvInt("GEOCODE_DEBOUNCE_MS", 400),
		GeocodeTimeoutSec: getEnvInt("GEOCODE_TIMEOUT_SEC", 5),
	}
}

// Package weather looks up current conditions for the host's approximate
// location: one request to geolocate the public IP, one to fetch the
// current weather for those coordinates.
package weather

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"codeberg.org/skarn/hwmon/internal/errors"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	defaultGeoURL      = "http://ip-api.com/json/"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast?latitude=%.4f&longitude=%.4f&current_weather=true&temperature_unit=fahrenheit"

	requestTimeout = 10 * time.Second
)

// Info is one current-weather observation.
type Info struct {
	TemperatureF float64
	Description  string
	Icon         string
}

type Client struct {
	HTTPClient  *http.Client
	GeoURL      string
	ForecastURL string // fmt template taking latitude, longitude
}

func NewClient() *Client {
	return &Client{
		HTTPClient:  &http.Client{Timeout: requestTimeout},
		GeoURL:      defaultGeoURL,
		ForecastURL: defaultForecastURL,
	}
}

type geoResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type forecastResponse struct {
	CurrentWeather struct {
		Temperature float64 `json:"temperature"`
		WeatherCode int     `json:"weathercode"`
	} `json:"current_weather"`
}

// Fetch performs the two-hop lookup.
func (c *Client) Fetch(ctx context.Context) (*Info, error) {
	errFactory := errors.New()

	var geo geoResponse
	if err := c.getJSON(ctx, c.GeoURL, &geo); err != nil {
		return nil, errFactory.Wrap(ErrGeoLookupFailed, err)
	}

	var forecast forecastResponse
	url := fmt.Sprintf(c.ForecastURL, geo.Lat, geo.Lon)
	if err := c.getJSON(ctx, url, &forecast); err != nil {
		return nil, errFactory.Wrap(ErrForecastFailed, err)
	}

	description, icon := describeCode(forecast.CurrentWeather.WeatherCode)

	return &Info{
		TemperatureF: forecast.CurrentWeather.Temperature,
		Description:  description,
		Icon:         icon,
	}, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	errFactory := errors.New()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errFactory.WithData(ErrBadResponse, resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// describeCode maps a WMO weather interpretation code to a short label and
// status icon.
func describeCode(code int) (string, string) {
	switch {
	case code == 0:
		return "Clear", "☀"
	case code >= 1 && code <= 3:
		return "Partly cloudy", "⛅"
	case code == 45 || code == 48:
		return "Foggy", "\U0001f32b"
	case code == 51 || code == 53 || code == 55:
		return "Drizzle", "\U0001f327"
	case code == 61 || code == 63 || code == 65:
		return "Rain", "\U0001f327"
	case code == 71 || code == 73 || code == 75 || code == 77:
		return "Snow", "❄"
	case code >= 80 && code <= 82:
		return "Showers", "\U0001f327"
	case code == 85 || code == 86:
		return "Snow showers", "\U0001f328"
	case code == 95 || code == 96 || code == 99:
		return "Thunderstorm", "⛈"
	default:
		return "Unknown", "☁"
	}
}

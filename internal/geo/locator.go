package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// AcquireTimeout bounds a single location lookup.
const AcquireTimeout = 15 * time.Second

var ErrUnavailable = errors.New("location unavailable")

// Locator resolves the current position of the user making a request.
type Locator interface {
	Locate(ctx context.Context) (Coordinate, error)
}

// Fixed is a coordinate already reported by the client.
type Fixed Coordinate

func (f Fixed) Locate(ctx context.Context) (Coordinate, error) {
	return Coordinate(f), nil
}

// Acquire asks the locator once. A nil result means the distance filter should be disabled.
func Acquire(ctx context.Context, l Locator) (*Coordinate, error) {
	if l == nil {
		return nil, ErrUnavailable
	}
	cctx, cancel := context.WithTimeout(ctx, AcquireTimeout)
	defer cancel()

	c, err := l.Locate(cctx)
	if err != nil {
		return nil, err
	}
	if !Valid(c) {
		return nil, ErrUnavailable
	}
	return &c, nil
}

// Valid reports whether c is a finite coordinate within the usual lat/lng bounds.
func Valid(c Coordinate) bool {
	return c.Latitude >= -90 && c.Latitude <= 90 && c.Longitude >= -180 && c.Longitude <= 180
}

// IPLocator looks up an approximate position for a client IP through an ipapi style JSON endpoint.
type IPLocator struct {
	BaseURL string
	IP      string
	Client  *http.Client
}

type ipapiResp struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Error     bool    `json:"error"`
	Reason    string  `json:"reason"`
}

func NewIPLocator(baseURL, ip string) *IPLocator {
	if baseURL == "" {
		baseURL = "https://ipapi.co"
	}
	return &IPLocator{
		BaseURL: strings.TrimRight(baseURL, "/"),
		IP:      ip,
		Client:  &http.Client{Timeout: AcquireTimeout},
	}
}

func (l *IPLocator) Locate(ctx context.Context) (Coordinate, error) {
	if l.IP == "" {
		return Coordinate{}, ErrUnavailable
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/%s/json/", l.BaseURL, l.IP), nil)
	if err != nil {
		return Coordinate{}, err
	}
	resp, err := l.Client.Do(req)
	if err != nil {
		return Coordinate{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinate{}, fmt.Errorf("ip lookup: status %d", resp.StatusCode)
	}
	var out ipapiResp
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return Coordinate{}, err
	}
	if out.Error {
		return Coordinate{}, fmt.Errorf("ip lookup: %s", out.Reason)
	}
	if out.Latitude == 0 && out.Longitude == 0 {
		return Coordinate{}, ErrUnavailable
	}
	return Coordinate{Latitude: out.Latitude, Longitude: out.Longitude}, nil
}

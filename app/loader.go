package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"
)

// ErrInvalidPlace is returned for empty place identifiers and for identifiers
// that would point the provider URL at another host
var ErrInvalidPlace = errors.New("invalid place identifier")

// ReloadScheduledError is returned while a failed place waits for its
// scheduled reload
type ReloadScheduledError struct {
	Until time.Time
}

func (e *ReloadScheduledError) Error() string {
	return fmt.Sprintf("reload scheduled at %s", e.Until.UTC().Format(time.RFC3339))
}

// StatusView is what the widget shell shows for one place
type StatusView struct {
	Place            string `json:"place"`
	CacheKey         string `json:"cacheKey"`
	Status           Status `json:"status"`
	LastReloaded     int64  `json:"lastReloaded"`
	LastReloadedText string `json:"lastReloadedText"`
	NextReload       int64  `json:"nextReload,omitempty"`
	LoadingError     bool   `json:"loadingError"`
}

// Loader fetches weather data for places and keeps their reload state
type Loader struct {
	fetcher       *Fetcher
	store         StateStore
	localizer     *Localizer
	providerURL   string
	providerHost  string
	format        Format
	activeTimeout int

	group singleflight.Group
	now   func() time.Time
}

// NewLoader creates a loader from the configuration
func NewLoader(cfg Config, fetcher *Fetcher, store StateStore) (*Loader, error) {
	format, err := ParseFormat(cfg.Format)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(strings.ReplaceAll(cfg.ProviderURL, "{place}", ""))
	if err != nil {
		return nil, fmt.Errorf("parsing provider url: %w", err)
	}

	return &Loader{
		fetcher:       fetcher,
		store:         store,
		localizer:     NewLocalizer(cfg.Locale),
		providerURL:   cfg.ProviderURL,
		providerHost:  base.Host,
		format:        format,
		activeTimeout: cfg.InTrayActiveTimeoutSec,
		now:           time.Now,
	}, nil
}

// Format returns the format the provider is fetched in
func (l *Loader) Format() Format {
	return l.format
}

// Load fetches the weather data for place. Concurrent loads of the same place
// share one request. A failed fetch schedules the next reload ReloadDelay
// later and until then Load returns a *ReloadScheduledError without fetching.
// A body that fails validation leaves the reload state untouched. Load returns
// ctx.Err() as soon as ctx is done; the shared request carries on for the
// other callers and still records its outcome.
func (l *Loader) Load(ctx context.Context, place string) (string, error) {
	if strings.TrimSpace(place) == "" {
		return "", ErrInvalidPlace
	}

	key := GenerateCacheKey(place)
	ch := l.group.DoChan(key, func() (any, error) {
		// The first caller going away must not fail the others
		return l.load(context.WithoutCancel(ctx), place, key)
	})

	select {
	case res := <-ch:
		if res.Shared {
			logger.Debug("load shared with in-flight request", "place", place)
		}
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		logger.Debug("caller gone before load finished", "place", place, "error", ctx.Err())
		return "", ctx.Err()
	}
}

func (l *Loader) load(ctx context.Context, place, key string) (string, error) {
	state, _, err := l.store.Get(ctx, key)
	if err != nil {
		return "", fmt.Errorf("reading reload state: %w", err)
	}

	if now := l.now(); !state.ReloadAllowed(now) {
		return "", &ReloadScheduledError{Until: time.UnixMilli(state.NextReload)}
	}

	target, err := l.placeURL(place)
	if err != nil {
		return "", err
	}

	body, fetchErr := l.fetcher.Fetch(ctx, l.format, target)
	switch {
	case fetchErr == nil:
		state.MarkReloaded(l.now())
		logger.Info("weather data loaded", "place", place, "bytes", len(body))
	case errors.Is(fetchErr, ErrInvalidBody):
		logger.Warn("weather data rejected", "place", place, "error", fetchErr)
		return "", fetchErr
	default:
		state.NextReload = state.ScheduleDataReload(l.now())
		reloadsScheduled.Inc()
		logger.Warn("weather data load failed",
			"place", place,
			"error", fetchErr,
			"nextReload", time.UnixMilli(state.NextReload).UTC(),
		)
	}

	if err := l.store.Set(ctx, key, state); err != nil {
		logger.Error("saving reload state failed", "place", place, "key", key, "error", err)
	}

	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}

func (l *Loader) placeURL(place string) (string, error) {
	u, err := url.Parse(strings.ReplaceAll(l.providerURL, "{place}", place))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPlace, err)
	}
	if u.Host != l.providerHost {
		return "", fmt.Errorf("%w: host %q", ErrInvalidPlace, u.Host)
	}
	return u.String(), nil
}

// Snapshot reports the widget status of place without fetching anything
func (l *Loader) Snapshot(ctx context.Context, place string) (StatusView, error) {
	if strings.TrimSpace(place) == "" {
		return StatusView{}, ErrInvalidPlace
	}

	key := GenerateCacheKey(place)
	state, _, err := l.store.Get(ctx, key)
	if err != nil {
		return StatusView{}, fmt.Errorf("reading reload state: %w", err)
	}

	now := l.now()
	return StatusView{
		Place:            place,
		CacheKey:         key,
		Status:           PlasmoidStatus(state.LastReloaded, l.activeTimeout, now),
		LastReloaded:     state.LastReloaded,
		LastReloadedText: l.localizer.LastReloadedText(ReloadedAgoMs(state.LastReloaded, now)),
		NextReload:       state.NextReload,
		LoadingError:     state.LoadingError,
	}, nil
}

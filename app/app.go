package app

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"
)

var (
	initOnce sync.Once
	initErr  error
	config   Config
	loader   *Loader
)

// Init loads the configuration and builds the logger, state store and loader.
// It runs once per process, later calls return the first result.
func Init() error {
	initOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			initErr = err
			return
		}
		SetLogger(NewLogger(os.Stderr, cfg.LogLevel, cfg.Debug))

		store, err := NewStateStore(cfg)
		if err != nil {
			initErr = err
			return
		}

		l, err := NewLoader(cfg, NewFetcher(cfg.LoadingTimeout), store)
		if err != nil {
			initErr = err
			return
		}

		config = cfg
		loader = l
		logger.Info("loader ready", "format", l.Format(), "places", len(cfg.Places))
	})
	return initErr
}

// Port returns the configured listen port
func Port() string {
	return config.Port
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'")
}

// HandleIndex renders the status of every configured place
func HandleIndex(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)

	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	views := make([]StatusView, 0, len(config.Places))
	for _, place := range config.Places {
		view, err := loader.Snapshot(r.Context(), place)
		if err != nil {
			logger.Error("reading status failed", "place", place, "error", err)
			http.Error(w, "Failed to read status", http.StatusInternalServerError)
			return
		}
		views = append(views, view)
	}

	renderPage(w, views)
}

// HandleWeatherAPI serves the provider response for ?place=
func HandleWeatherAPI(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	body, err := loader.Load(r.Context(), r.URL.Query().Get("place"))
	if err != nil {
		writeLoadError(w, err)
		return
	}

	w.Header().Set("Content-Type", loader.Format().ContentType())
	w.Header().Set("Cache-Control", "no-store")
	w.Write([]byte(body))
}

// HandleStatusAPI serves the widget status for ?place= as JSON
func HandleStatusAPI(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)

	view, err := loader.Snapshot(r.Context(), r.URL.Query().Get("place"))
	if err != nil {
		writeLoadError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(view); err != nil {
		logger.Error("encoding status failed", "error", err)
	}
}

func writeLoadError(w http.ResponseWriter, err error) {
	var scheduled *ReloadScheduledError
	switch {
	case errors.Is(err, ErrInvalidPlace):
		http.Error(w, "Invalid place", http.StatusBadRequest)
	case errors.As(err, &scheduled):
		retry := time.Until(scheduled.Until).Round(time.Second)
		if retry < time.Second {
			retry = time.Second
		}
		w.Header().Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
		http.Error(w, "Reload scheduled", http.StatusServiceUnavailable)
	default:
		logger.Error("loading weather data failed", "error", err)
		http.Error(w, "Failed to load weather data", http.StatusBadGateway)
	}
}

var pageTemplate = template.Must(template.New("index").Parse(htmlTemplate))

func renderPage(w http.ResponseWriter, views []StatusView) {
	data := map[string]interface{}{
		"Places":     views,
		"PlaceCount": len(views),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		logger.Error("template execution failed", "error", err)
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Weather loader</title>
    <style>
        body {
            margin: 0 auto;
            max-width: 48rem;
            padding: 1rem;
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
        }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 0.4rem; border-bottom: 1px solid #ddd; }
        .active { color: #1b7f3b; }
        .passive { color: #888; }
        .error { color: #b3261e; }
    </style>
</head>
<body>
    <h1>Weather loader</h1>
    {{if .PlaceCount}}
    <table>
        <tr><th>Place</th><th>Status</th><th>Last updated</th><th>Key</th></tr>
        {{range .Places}}
        <tr>
            <td><a href="/api/weather?place={{.Place}}">{{.Place}}</a></td>
            <td class="{{.Status}}">{{.Status}}{{if .LoadingError}} <span class="error">(error)</span>{{end}}</td>
            <td>{{.LastReloadedText}}</td>
            <td><code>{{.CacheKey}}</code></td>
        </tr>
        {{end}}
    </table>
    {{else}}
    <p>No places configured. Set WEATHER_PLACES.</p>
    {{end}}
</body>
</html>`

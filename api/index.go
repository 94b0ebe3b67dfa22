package handler

import (
	"net/http"

	"github.com/JosephSalisbury/weatherloader/app"
)

// Handler is the Vercel serverless function entry point
func Handler(w http.ResponseWriter, r *http.Request) {
	if err := app.Init(); err != nil {
		http.Error(w, "Server misconfigured", http.StatusInternalServerError)
		return
	}

	// Route to appropriate handler based on path
	switch r.URL.Path {
	case "/api/weather":
		app.HandleWeatherAPI(w, r)
	case "/api/status":
		app.HandleStatusAPI(w, r)
	default:
		app.HandleIndex(w, r)
	}
}

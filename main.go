package main

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/JosephSalisbury/weatherloader/app"
)

func main() {
	if err := app.Init(); err != nil {
		log.Fatalf("init: %v", err)
	}

	http.HandleFunc("/", app.HandleIndex)
	http.HandleFunc("/api/weather", app.HandleWeatherAPI)
	http.HandleFunc("/api/status", app.HandleStatusAPI)
	http.Handle("/metrics", promhttp.Handler())

	port := app.Port()
	log.Printf("Server starting on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatal(err)
	}
}

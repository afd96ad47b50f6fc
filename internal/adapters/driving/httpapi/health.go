package httpapi

import "net/http"

const isoMillis = "2006-01-02T15:04:05.000Z07:00"

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Region    string `json:"region"`
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: a.now().UTC().Format(isoMillis),
		Region:    a.region,
	})
}

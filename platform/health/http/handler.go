package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Check - проверка одной зависимости (postgres, mongo, redis)
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

type response struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components,omitempty"`
}

// Handler возвращает HTTP handler для health check endpoint.
// 200 {"status":"ok"} если все проверки прошли (или их нет),
// 503 {"status":"not ready"} с ошибкой по каждой упавшей зависимости.
func Handler(timeout time.Duration, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		resp := response{Status: "ok"}
		code := http.StatusOK
		if len(checks) > 0 {
			resp.Components = make(map[string]string, len(checks))
		}
		for _, c := range checks {
			if err := c.Ping(ctx); err != nil {
				resp.Components[c.Name] = err.Error()
				resp.Status = "not ready"
				code = http.StatusServiceUnavailable
				continue
			}
			resp.Components[c.Name] = "ok"
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

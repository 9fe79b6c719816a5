package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/pochi-app/pochi-web/internal/database"
)

type HealthResponse struct {
	Status   string            `json:"status"`
	Upstream string            `json:"upstream"`
	Services map[string]string `json:"services"`
}

// HealthCheck reports gateway liveness plus a best-effort look at the
// backend and the data stores. Optional stores read "disabled" rather than
// dragging the status down.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ok"
	services := map[string]string{}

	upstreamStatus := "ok"
	if h, err := backend.Health(ctx); err != nil {
		upstreamStatus = "unreachable"
		status = "degraded"
	} else if h.Status != "" {
		upstreamStatus = h.Status
	}

	if database.RedisClient == nil {
		services["redis"] = "down"
		status = "degraded"
	} else if err := database.RedisClient.Ping(ctx).Err(); err != nil {
		services["redis"] = "down"
		status = "degraded"
	} else {
		services["redis"] = "ok"
	}

	if database.Client == nil {
		services["mongodb"] = "disabled"
	} else if err := database.Client.Ping(ctx, nil); err != nil {
		services["mongodb"] = "down"
	} else {
		services["mongodb"] = "ok"
	}

	if database.PostgresDB == nil {
		services["postgres"] = "disabled"
	} else if err := database.PostgresDB.PingContext(ctx); err != nil {
		services["postgres"] = "down"
	} else {
		services["postgres"] = "ok"
	}

	if shareService.Enabled() {
		services["cloudinary"] = "ok"
	} else {
		services["cloudinary"] = "disabled"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{Status: status, Upstream: upstreamStatus, Services: services})
}

package api

import (
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"

	"vatwatch/internal/common"
	"vatwatch/internal/models/entities"
	"vatwatch/internal/pipeline"
)

// HealthCheckHandler handles GET /healthCheck. The service is "down" when
// postgres is unreachable and "degraded" when polling or flushing is failing
// while the API itself still works.
func HealthCheckHandler(db *sqlx.DB, cache common.CacheInterface, poller *pipeline.Poller, writer *pipeline.BatchWriter, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		services := make(map[string]entities.ServiceStatus)

		pgStatus := "ok"
		pgDetails := "Postgres Connected"
		if err := db.Ping(); err != nil {
			pgStatus = "down"
			pgDetails = err.Error()
		}
		services["postgres"] = entities.ServiceStatus{
			Status:  pgStatus,
			Details: pgDetails,
		}

		cacheStatus := "ok"
		cacheDetails := "Cache responding"
		probe := "health:probe:" + time.Now().Format("150405")
		cache.Set(probe, "ok", time.Second)
		if _, found := cache.Get(probe); !found {
			cacheStatus = "degraded"
			cacheDetails = "Cache round-trip failed"
		}
		services["cache"] = entities.ServiceStatus{
			Status:  cacheStatus,
			Details: cacheDetails,
		}

		pollStatus := "ok"
		pollDetails := "Last poll succeeded"
		if !poller.LastPollOK() {
			pollStatus = "degraded"
			pollDetails = "Last upstream poll failed"
		}
		services["poller"] = entities.ServiceStatus{
			Status:  pollStatus,
			Details: pollDetails,
		}

		flushStatus := "ok"
		flushDetails := "Last flush succeeded"
		if ok, reason := writer.Healthy(); !ok {
			flushStatus = "degraded"
			flushDetails = reason
		}
		services["writer"] = entities.ServiceStatus{
			Status:  flushStatus,
			Details: flushDetails,
		}

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status == "degraded" && overallStatus == "ok" {
				overallStatus = "degraded"
			}
			if svc.Status == "down" {
				overallStatus = "down"
				break
			}
		}

		code := http.StatusOK
		if overallStatus == "down" {
			code = http.StatusServiceUnavailable
		}

		respondJSON(w, code, entities.HealthCheckResponse{
			Status:   overallStatus,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
			Services: services,
		})
	}
}

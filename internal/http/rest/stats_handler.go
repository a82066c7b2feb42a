package rest

import (
	"context"
	"net/http"

	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util"
	"github.com/gitgud/citywatch/util/tracing"
	"github.com/gitgud/citywatch/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) StatsRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodGet, "/", api.handle(api.GetStats))

	return mux
}

func (api *API) GetStatsRepo(ctx context.Context) (model.Stats, error) {
	var stats model.Stats
	err := api.DB.QueryRow(ctx, `
		SELECT submitted, in_progress, confirmed, resolved
		FROM metadata_stats WHERE id = 1
	`).Scan(&stats.Submitted, &stats.InProgress, &stats.Confirmed, &stats.Resolved)
	return stats, err
}

func (api *API) GetStats(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	stats, err := api.GetStatsRepo(r.Context())
	if err != nil {
		return api.respondWithError(err, "failed to get stats", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "Stats retrieved successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       stats,
	}
}

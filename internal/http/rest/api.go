package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gitgud/citywatch/config"
	"github.com/gitgud/citywatch/internal/cascade"
	"github.com/gitgud/citywatch/internal/checksum"
	"github.com/gitgud/citywatch/internal/db"
	"github.com/gitgud/citywatch/internal/vote"
	"github.com/gitgud/citywatch/util"
	"github.com/gitgud/citywatch/util/tracing"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const (
	defaultIdleTimeout    = time.Minute
	defaultReadTimeout    = 5 * time.Second
	defaultWriteTimeout   = 10 * time.Second
	defaultShutdownPeriod = 30 * time.Second
)

type ServerResponse struct {
	Status     string      `json:"status"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Data       interface{} `json:"data,omitempty"`
	Err        error       `json:"-"`
}

type Handler func(w http.ResponseWriter, r *http.Request) *ServerResponse

// handle adapts a Handler, logging failed responses through the API's
// logger before writing the JSON envelope.
func (api *API) handle(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := h(w, r)
		if resp.Err != nil {
			api.Logger.Error(resp.Message,
				zap.String("status", resp.Status),
				zap.Error(resp.Err),
			)
		}
		respByte, err := json.Marshal(resp)
		if err != nil {
			api.Logger.Error("unable to marshal server response", zap.Error(err))
			http.Error(w, "unable to marshal server response", http.StatusInternalServerError)
			return
		}
		writeJSONResponse(w, respByte, resp.StatusCode)
	})
}

func writeJSONResponse(w http.ResponseWriter, body []byte, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func (api *API) respondWithError(err error, message, status string, tc *tracing.Context) *ServerResponse {
	resp := &ServerResponse{
		Status:     status,
		Message:    message,
		StatusCode: util.StatusCode(status),
		Err:        err,
	}
	if tc != nil {
		api.Logger.Debug("request failed",
			zap.String("request_id", tc.RequestID),
			zap.String("request_source", tc.RequestSource),
		)
	}
	return resp
}

type API struct {
	Server    *http.Server
	Config    *config.Config
	Logger    *zap.Logger
	Database  *db.DB
	DB        *pgxpool.Pool
	Votes     *vote.Aggregator
	Checksums *checksum.PgChecksums
	Events    cascade.Publisher
}

func (api *API) Serve() error {
	api.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", api.Config.Port),
		IdleTimeout:  defaultIdleTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
		Handler:      api.setUpServerHandler(),
	}
	api.Logger.Info("listening", zap.String("addr", api.Server.Addr))
	return api.Server.ListenAndServe()
}

func (api *API) setUpServerHandler() http.Handler {
	mux := chi.NewRouter()
	mux.Use(RequestTracing)

	mux.Get("/",
		func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("CityWatch API"))
		},
	)

	mux.Mount("/reports", api.ReportRoutes())
	mux.Mount("/comments", api.CommentRoutes())
	mux.Mount("/users", api.UserRoutes())
	mux.Mount("/checksums", api.ChecksumRoutes())
	mux.Mount("/stats", api.StatsRoutes())

	return mux
}

func (a *API) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownPeriod)
	defer cancel()

	return a.Server.Shutdown(ctx)
}

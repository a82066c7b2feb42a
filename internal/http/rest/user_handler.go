package rest

import (
	"errors"
	"net/http"

	"github.com/gitgud/citywatch/internal/cascade"
	"github.com/gitgud/citywatch/internal/model"
	"github.com/gitgud/citywatch/util"
	"github.com/gitgud/citywatch/util/tracing"
	"github.com/gitgud/citywatch/util/values"
	"github.com/go-chi/chi/v5"
)

func (api *API) UserRoutes() chi.Router {
	mux := chi.NewRouter()

	mux.Method(http.MethodPost, "/", api.handle(api.CreateUser))
	mux.Method(http.MethodGet, "/{userID}", api.handle(api.GetUser))
	mux.Method(http.MethodPut, "/{userID}", api.handle(api.UpdateUser))
	mux.Method(http.MethodDelete, "/{userID}", api.handle(api.DeleteUser))

	return mux
}

func (api *API) CreateUser(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	var req struct {
		Name  string `json:"name" validate:"required"`
		Phone string `json:"phone"`
		Email string `json:"email" validate:"required,email"`
	}
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if err := util.ValidateStruct(req); err != nil {
		return api.respondWithError(err, "validation failed", values.BadRequestBody, &tc)
	}

	user := model.User{
		ID:    util.GenerateUUID(),
		Name:  req.Name,
		Phone: req.Phone,
		Email: req.Email,
	}
	user, err := api.CreateUserRepo(r.Context(), user)
	if err != nil {
		return api.respondWithError(err, "failed to create user", values.Error, &tc)
	}

	api.Events.Publish(cascade.Event{
		Kind:       cascade.Created,
		Collection: cascade.CollectionUsers,
		After:      &cascade.Image{ID: user.ID},
	})

	return &ServerResponse{
		Message:    "User created successfully",
		Status:     values.Created,
		StatusCode: util.StatusCode(values.Created),
		Data:       user,
	}
}

func (api *API) GetUser(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.StringToUUID(chi.URLParam(r, "userID"))
	if err != nil {
		return api.respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	user, err := api.GetUserByIDRepo(r.Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		return api.respondWithError(err, "user not found", values.NotFound, &tc)
	}
	if err != nil {
		return api.respondWithError(err, "failed to fetch user", values.Error, &tc)
	}

	return &ServerResponse{
		Message:    "User fetched successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
		Data:       user,
	}
}

// UpdateUser writes a profile. Downstream caches embed user names, so a
// profile write bumps the global users version via the cascade.
func (api *API) UpdateUser(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.StringToUUID(chi.URLParam(r, "userID"))
	if err != nil {
		return api.respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	var req model.UpdateUserRequest
	if decodeErr := util.DecodeJSONBody(&tc, r.Body, &req); decodeErr != nil {
		return api.respondWithError(decodeErr, "unable to decode request", values.BadRequestBody, &tc)
	}
	if req.Email != nil {
		if err := util.ValidEmail(*req.Email); err != nil {
			return api.respondWithError(err, "invalid email address", values.BadRequestBody, &tc)
		}
	}

	err = api.UpdateUserRepo(r.Context(), userID, req)
	if errors.Is(err, ErrUserNotFound) {
		return api.respondWithError(err, "user not found", values.NotFound, &tc)
	}
	if err != nil {
		return api.respondWithError(err, "failed to update user", values.Error, &tc)
	}

	api.Events.Publish(cascade.Event{
		Kind:       cascade.Updated,
		Collection: cascade.CollectionUsers,
		Before:     &cascade.Image{ID: userID},
		After:      &cascade.Image{ID: userID},
	})

	return &ServerResponse{
		Message:    "User updated successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}

func (api *API) DeleteUser(_ http.ResponseWriter, r *http.Request) *ServerResponse {
	tc := r.Context().Value(values.ContextTracingKey).(tracing.Context)

	userID, err := util.StringToUUID(chi.URLParam(r, "userID"))
	if err != nil {
		return api.respondWithError(err, "invalid user ID", values.BadRequestBody, &tc)
	}

	err = api.DeleteUserRepo(r.Context(), userID)
	if errors.Is(err, ErrUserNotFound) {
		return api.respondWithError(err, "user not found", values.NotFound, &tc)
	}
	if err != nil {
		return api.respondWithError(err, "failed to delete user", values.Error, &tc)
	}

	api.Events.Publish(cascade.Event{
		Kind:       cascade.Deleted,
		Collection: cascade.CollectionUsers,
		Before:     &cascade.Image{ID: userID},
	})

	return &ServerResponse{
		Message:    "User deleted successfully",
		Status:     values.Success,
		StatusCode: util.StatusCode(values.Success),
	}
}

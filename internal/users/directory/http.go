// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package directory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhngo/uservault/internal/platform/middleware"
	requestutil "github.com/minhngo/uservault/internal/platform/request"
	"github.com/minhngo/uservault/internal/platform/respond"
	"github.com/minhngo/uservault/internal/platform/validate"
	"github.com/minhngo/uservault/internal/users/auth"
	"github.com/minhngo/uservault/pkg/pagination"
)

// # Definitions & Constructors

// Handler implements the user directory HTTP endpoints.
//
// Every route requires a valid bearer token; the directory is never exposed
// to anonymous callers.
type Handler struct {
	directoryService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{directoryService: service}
}

// Routes returns a [chi.Router] configured with directory routes.
//
// # Endpoints
//   - POST   /                     : Creates an account.
//   - GET    /                     : Lists accounts (paginated).
//   - GET    /count                : Total account count.
//   - GET    /stats/email-domains  : Email domain distribution.
//   - GET    /{userID}             : Single account.
//   - PATCH  /{userID}             : Partial update.
//   - DELETE /{userID}             : Permanent removal.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/", handler.create)
	router.Get("/", handler.list)
	router.Get("/count", handler.count)
	router.Get("/stats/email-domains", handler.emailDomains)

	router.Route("/{userID}", func(r chi.Router) {
		r.Get("/", handler.get)
		r.Patch("/", handler.update)
		r.Delete("/", handler.remove)
	})

	return router
}

// # Request Payloads

type createRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Image    string `json:"image,omitempty"`
}

type updateRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Image    *string `json:"image"`
}

/*
Create provisions a new account via the directory.

POST /api/v1/users

Response:
  - 201: User: Created account
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email already in use
*/
func (handler *Handler) create(writer http.ResponseWriter, request *http.Request) {
	var input createRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(auth.FieldUsername, input.Username).
		Required(auth.FieldEmail, input.Email).
		Email(auth.FieldEmail, input.Email).
		Required(auth.FieldPassword, input.Password).
		Password(auth.FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.directoryService.Create(request.Context(), CreateInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Image:    input.Image,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

/*
List returns a page of accounts.

GET /api/v1/users?page=N&limit=M

Response:
  - 200: PaginatedEnvelope: Accounts and metadata
*/
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.directoryService.List(request.Context(), params)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, total))
}

/*
Count returns the total number of accounts.

GET /api/v1/users/count

Response:
  - 200: {count}: Total accounts
*/
func (handler *Handler) count(writer http.ResponseWriter, request *http.Request) {
	total, err := handler.directoryService.Count(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]int{"count": total})
}

/*
EmailDomains returns the email domain distribution.

GET /api/v1/users/stats/email-domains

Response:
  - 200: DomainStats: Per-domain counts and percentages, largest first
*/
func (handler *Handler) emailDomains(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.directoryService.EmailDomainStats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

/*
Get returns a single account.

GET /api/v1/users/{userID}

Response:
  - 200: User: Hydrated account
  - 404: ErrNotFound: Unknown ID
*/
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	user, err := handler.directoryService.Get(request.Context(), requestutil.Param(request, "userID"))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Update applies a partial modification to an account.

PATCH /api/v1/users/{userID}

Response:
  - 200: User: Updated account
  - 400: ErrInvalidJSON: Bad input
  - 404: ErrNotFound: Unknown ID
  - 409: ErrConflict: New email already in use
*/
func (handler *Handler) update(writer http.ResponseWriter, request *http.Request) {
	var input updateRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	if input.Email != nil {
		validator.Email(auth.FieldEmail, *input.Email)
	}
	if input.Password != nil {
		validator.Password(auth.FieldPassword, *input.Password)
	}
	if input.Username != nil {
		validator.Required(auth.FieldUsername, *input.Username)
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.directoryService.Update(request.Context(), requestutil.Param(request, "userID"), UpdateInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Image:    input.Image,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
Remove permanently deletes an account.

DELETE /api/v1/users/{userID}

Response:
  - 204: No Content: Account removed
  - 404: ErrNotFound: Unknown ID
*/
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	if err := handler.directoryService.Delete(request.Context(), requestutil.Param(request, "userID")); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}

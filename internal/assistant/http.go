// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package assistant

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhngo/uservault/internal/platform/middleware"
	requestutil "github.com/minhngo/uservault/internal/platform/request"
	"github.com/minhngo/uservault/internal/platform/respond"
	"github.com/minhngo/uservault/internal/platform/validate"
)

// Handler implements the chat HTTP endpoint.
type Handler struct {
	assistantService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{assistantService: service}
}

// Routes returns a [chi.Router] with the chat routes.
//
// # Endpoints
//   - POST /message : One chat round trip with the assistant.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/message", handler.message)

	return router
}

type messageRequest struct {
	Message string `json:"message"`
}

/*
Message performs one chat round trip.

POST /api/v1/chat/message

Request:
  - Body: messageRequest (Message)

Response:
  - 200: {response}: Assistant reply
  - 400: ErrInvalidJSON: Missing message
  - 503: ErrServiceUnavailable: Upstream model failure
*/
func (handler *Handler) message(writer http.ResponseWriter, request *http.Request) {
	var input messageRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("message", input.Message)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	reply, err := handler.assistantService.Chat(request.Context(), input.Message)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{"response": reply})
}

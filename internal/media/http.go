// Copyright (c) 2026 UserVault. All rights reserved.
// Author: minh.ngo.sg@gmail.com

package media

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/minhngo/uservault/internal/platform/middleware"
	requestutil "github.com/minhngo/uservault/internal/platform/request"
	"github.com/minhngo/uservault/internal/platform/respond"
	"github.com/minhngo/uservault/internal/platform/validate"
)

// Handler implements the media HTTP endpoints.
type Handler struct {
	mediaService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{mediaService: service}
}

// Routes returns a [chi.Router] with the media routes.
//
// # Endpoints
//   - POST /avatar-uploads : Issues a presigned avatar upload slot.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireAuth)

	router.Post("/avatar-uploads", handler.createAvatarUpload)

	return router
}

type avatarUploadRequest struct {
	ContentType string `json:"content_type"`
}

/*
CreateAvatarUpload issues a presigned avatar upload slot.

POST /api/v1/media/avatar-uploads

Request:
  - Body: avatarUploadRequest (ContentType)

Response:
  - 201: Upload: Presigned PUT URL, public URL, key, expiry
  - 400: ErrInvalidJSON: Missing or unsupported content type
*/
func (handler *Handler) createAvatarUpload(writer http.ResponseWriter, request *http.Request) {
	var input avatarUploadRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("content_type", input.ContentType)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	upload, err := handler.mediaService.NewAvatarUpload(request.Context(), input.ContentType)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, upload)
}

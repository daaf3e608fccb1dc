package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/sakif/matchboard/internal/model"
	"github.com/sakif/matchboard/internal/service"
)

// multipartMemory is how much of a multipart body is kept in RAM; the rest
// spills to temp files that are removed when the request ends.
const multipartMemory = 1 << 20

// ProfileHandler serves POST /upload and GET /users.
type ProfileHandler struct {
	svc            *service.ProfileService
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewProfileHandler creates a ProfileHandler. maxUploadBytes caps the whole
// request body of an upload.
func NewProfileHandler(svc *service.ProfileService, maxUploadBytes int64, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{svc: svc, maxUploadBytes: maxUploadBytes, logger: logger}
}

// UploadResponse is the body of a successful upload.
type UploadResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

// HandleUpload creates a profile from a multipart form.
//
// HTTP: POST /upload
//
// FIELDS: name, email (required), bio, gender (optional), image (optional file).
//
// RESPONSES:
//
//	201 {"message":"Profile created successfully","user":{...}}
//	200 {"message":"User already exists","user":{...stored row...}}
//	400 missing name/email or unreadable form
//	413 body larger than the upload limit
//	500 image or database failure
func (h *ProfileHandler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadBytes {
		writeTooLarge(w)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	// A urlencoded body is accepted too; ParseForm has already run by the
	// time ErrNotMultipart comes back.
	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		if isTooLarge(err) {
			writeTooLarge(w)
			return
		}
		h.logger.Warn("unreadable upload form", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "request body must be a multipart form",
		})
		return
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}

	in := service.UploadInput{
		Name:   r.FormValue("name"),
		Email:  r.FormValue("email"),
		Bio:    r.FormValue("bio"),
		Gender: r.FormValue("gender"),
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		in.Image = &service.ImageUpload{Filename: header.Filename, Body: file}
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no image
	default:
		h.logger.Warn("unreadable image part", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "image could not be read",
		})
		return
	}

	res, err := h.svc.Upload(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	if !res.Created {
		writeJSON(w, http.StatusOK, UploadResponse{Message: "User already exists", User: res.User})
		return
	}
	writeJSON(w, http.StatusCreated, UploadResponse{Message: "Profile created successfully", User: res.User})
}

// HandleListUsers returns the profiles shown to the requester.
//
// HTTP: GET /users?email=<requester>
//
// The email parameter is required unless the server lists everyone. A
// requester that is not stored is a 500, not an empty list.
func (h *ProfileHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

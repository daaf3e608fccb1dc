package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"

	"github.com/sakif/matchboard/internal/service"
)

// maxLikeBody caps POST /like bodies; two emails never need more.
const maxLikeBody = 64 << 10

// LikeHandler serves POST /like and GET /likes/count.
type LikeHandler struct {
	svc    *service.LikeService
	logger *slog.Logger
}

// NewLikeHandler creates a LikeHandler.
func NewLikeHandler(svc *service.LikeService, logger *slog.Logger) *LikeHandler {
	return &LikeHandler{svc: svc, logger: logger}
}

// LikeRequest is the body of POST /like.
type LikeRequest struct {
	LikerEmail string `json:"liker_email"`
	LikedEmail string `json:"liked_email"`
}

// LikeCountResponse is the body of GET /likes/count.
type LikeCountResponse struct {
	Email string `json:"email"`
	Count int64  `json:"count"`
}

// HandleLike records that liker_email liked liked_email.
//
// HTTP: POST /like
//
// The body may be JSON, urlencoded or multipart. Every call appends a row,
// even when the same pair was already stored.
func (h *LikeHandler) HandleLike(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxLikeBody)

	req, err := decodeLikeRequest(r)
	if err != nil {
		if isTooLarge(err) {
			writeTooLarge(w)
			return
		}
		h.logger.Warn("invalid like body", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "Invalid request body",
		})
		return
	}

	if _, err := h.svc.Like(r.Context(), req.LikerEmail, req.LikedEmail); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Like saved successfully!"})
}

func decodeLikeRequest(r *http.Request) (LikeRequest, error) {
	var req LikeRequest

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
		return req, nil
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return req, err
	}
	if r.MultipartForm != nil {
		defer r.MultipartForm.RemoveAll()
	}
	req.LikerEmail = r.FormValue("liker_email")
	req.LikedEmail = r.FormValue("liked_email")
	return req, nil
}

// HandleLikeCount returns how many likes a user has received.
//
// HTTP: GET /likes/count?email=<user>
func (h *LikeHandler) HandleLikeCount(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")

	n, err := h.svc.CountReceived(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LikeCountResponse{Email: email, Count: n})
}

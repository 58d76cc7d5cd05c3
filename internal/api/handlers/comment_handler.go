package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/services"
)

// CommentHandler handles HTTP requests for the comments of a post.
type CommentHandler struct {
	service services.CommentServiceProvider
}

// NewCommentHandler creates a new CommentHandler.
func NewCommentHandler(service services.CommentServiceProvider) *CommentHandler {
	return &CommentHandler{service: service}
}

// CommentPayload defines the structure for comment create and update requests.
type CommentPayload struct {
	Comment string `json:"comment"`
}

// GetAll lists the comments of a post, newest first.
func (h *CommentHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	comments, err := h.service.GetCommentsForPost(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, r, err, "failed to load comments", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// Create adds a comment by the authenticated user.
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var payload CommentPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, r, err)
		return
	}

	comment, err := h.service.CreateComment(r.Context(), user, chi.URLParam(r, "postId"), payload.Comment)
	if err != nil {
		writeError(w, r, err, "failed to create comment", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "comment created", "comment": comment})
}

// Update replaces the text of a comment.
func (h *CommentHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var payload CommentPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, r, err)
		return
	}

	_, err := h.service.UpdateComment(r.Context(), user, chi.URLParam(r, "postId"), chi.URLParam(r, "commentId"), payload.Comment)
	if err != nil {
		writeError(w, r, err, "failed to update comment", nil)
		return
	}
	writeMessage(w, http.StatusOK, "comment updated")
}

// Delete removes a comment.
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	if err := h.service.DeleteComment(r.Context(), user, chi.URLParam(r, "postId"), chi.URLParam(r, "commentId")); err != nil {
		writeError(w, r, err, "failed to delete comment", nil)
		return
	}
	writeMessage(w, http.StatusOK, "comment deleted")
}

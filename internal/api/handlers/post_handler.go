package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/rs/zerolog/hlog"
)

// PostHandler handles HTTP requests for posts.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// PostPayload defines the structure for create and update requests.
type PostPayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

var updatePostStatus = statusOverrides{
	services.CodeValidation: http.StatusPreconditionFailed,
}

// GetAll lists every post, newest first.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetAllPosts(r.Context())
	if err != nil {
		writeError(w, r, err, "failed to load posts", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

// Get returns a single post.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.service.GetPostByID(r.Context(), chi.URLParam(r, "postId"))
	if err != nil {
		writeError(w, r, err, "failed to load post", nil)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"post": post})
}

// Create stores a new post owned by the authenticated user.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var payload PostPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, r, err)
		return
	}

	post, err := h.service.CreatePost(r.Context(), user, payload.Title, payload.Content)
	if err != nil {
		writeError(w, r, err, "failed to create post", nil)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "post created", "post": post})
}

// Update replaces a post's title and content.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "postId")

	var payload PostPayload
	if err := decodeJSON(w, r, &payload); err != nil {
		badRequest(w, r, err)
		return
	}

	if _, err := h.service.UpdatePost(r.Context(), user, id, payload.Title, payload.Content); err != nil {
		writeError(w, r, err, "failed to update post", updatePostStatus)
		return
	}

	hlog.FromRequest(r).Info().Str("post_id", id).Str("user_id", user.ID).Msg("Post updated")
	writeMessage(w, http.StatusOK, "post updated")
}

// Delete removes a post and its comments.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := chi.URLParam(r, "postId")

	if err := h.service.DeletePost(r.Context(), user, id); err != nil {
		writeError(w, r, err, "failed to delete post", nil)
		return
	}

	hlog.FromRequest(r).Info().Str("post_id", id).Str("user_id", user.ID).Msg("Post deleted")
	writeMessage(w, http.StatusOK, "post deleted")
}

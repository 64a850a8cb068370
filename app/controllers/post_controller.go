package controllers

import (
	"errors"
	"net/http"

	apperrors "volunvibe/app/errors"
	"volunvibe/app/models"
	"volunvibe/app/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// PostController handles HTTP requests for volunteer posts
type PostController struct {
	postService *services.PostService
	logger      *zap.Logger
}

// NewPostController creates a new PostController
func NewPostController(postService *services.PostService, logger *zap.Logger) *PostController {
	return &PostController{postService: postService, logger: logger}
}

// Index handles listing all posts, narrowed by ?search= on the title
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Top handles listing the posts closest to their deadline
func (pc *PostController) Top(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.TopPosts(r.Context())
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Show handles displaying a single post. A missing post renders as null.
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	post, err := pc.postService.GetPost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, post)
}

// Create handles creating a new post
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var post models.Post
	if err := decodeJSON(w, r, &post); err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	result, err := pc.postService.CreatePost(r.Context(), &post)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// ByOrganizer handles listing the caller's own posts
func (pc *PostController) ByOrganizer(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	posts, err := pc.postService.ListPostsByOrganizer(r.Context(), caller, mux.Vars(r)["email"])
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, posts)
}

// Update handles overwriting the fields of a post
func (pc *PostController) Update(w http.ResponseWriter, r *http.Request) {
	caller, err := callerEmail(r)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}

	body, err := readBody(w, r)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	patch, err := models.DecodePostPatch(body)
	if err != nil {
		if errors.Is(err, models.ErrEmptyPatch) {
			sendError(w, r, pc.logger, apperrors.InvalidInput("nothing to update", nil))
			return
		}
		sendError(w, r, pc.logger, apperrors.InvalidInput("invalid JSON", err))
		return
	}

	result, err := pc.postService.UpdatePost(r.Context(), caller, mux.Vars(r)["id"], patch)
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

// Delete handles deleting a post
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	result, err := pc.postService.DeletePost(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		sendError(w, r, pc.logger, err)
		return
	}
	sendJSON(w, http.StatusOK, result)
}

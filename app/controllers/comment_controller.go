package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"quill/app/models"
	"quill/app/services"
)

// CommentController handles HTTP requests for comments
type CommentController struct {
	posts          *PostController
	postService    *services.PostService
	commentService *services.CommentService
}

// NewCommentController creates a new CommentController. Failed HTML
// submissions are re-rendered through the post page of posts.
func NewCommentController(posts *PostController) *CommentController {
	return &CommentController{
		posts:          posts,
		postService:    posts.postService,
		commentService: posts.commentService,
	}
}

// commentInput is the writable part of a comment.
type commentInput struct {
	Content string `json:"content"`
	Author  string `json:"author"`
	Email   string `json:"email"`
}

// Index lists the comments of a post, newest first
func (cc *CommentController) Index(w http.ResponseWriter, r *http.Request) {
	postID, ok := intVar(r, "id")
	if !ok {
		cc.posts.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	comments, err := cc.commentService.ListCommentsNewestFirst(r.Context(), postID)
	if err != nil {
		cc.posts.fail(w, r, err, "Post")
		return
	}
	cc.posts.sendJSON(w, http.StatusOK, map[string]interface{}{"comments": comments})
}

// Create handles submitting a comment to a post
func (cc *CommentController) Create(w http.ResponseWriter, r *http.Request) {
	postID, ok := intVar(r, "id")
	if !ok {
		cc.posts.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	var in commentInput
	if isAPI(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			cc.posts.sendError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			cc.posts.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
			return
		}
		in = commentInput{
			Content: r.FormValue("content"),
			Author:  r.FormValue("author"),
			Email:   r.FormValue("email"),
		}
	}

	draft := cc.commentService.NewDraft()
	draft.Content, draft.Author, draft.Email = in.Content, in.Author, in.Email

	comment, err := cc.commentService.CreateComment(r.Context(), postID, draft)
	if err != nil {
		if verrs, ok := models.AsValidationErrors(err); ok && !isAPI(r) {
			cc.rerender(w, r, postID, draft, verrs.Fields())
			return
		}
		cc.posts.fail(w, r, err, "Post")
		return
	}

	if isAPI(r) {
		cc.posts.sendJSON(w, http.StatusCreated, comment)
		return
	}
	http.Redirect(w, r, "/blog/"+strconv.Itoa(postID), http.StatusSeeOther)
}

// rerender shows the post page again with the rejected comment in its form.
func (cc *CommentController) rerender(w http.ResponseWriter, r *http.Request, postID int, draft *models.Comment, errs map[string]string) {
	post, err := cc.postService.GetPostWithComments(r.Context(), postID)
	if err != nil {
		cc.posts.fail(w, r, err, "Post")
		return
	}
	// The draft was attached to a transient copy of the post.
	draft.Post = nil
	cc.posts.renderShow(w, r, post, pageParam(r), draft, errs, http.StatusUnprocessableEntity)
}

// Delete removes one comment from a post
func (cc *CommentController) Delete(w http.ResponseWriter, r *http.Request) {
	postID, ok := intVar(r, "id")
	if !ok {
		cc.posts.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}
	commentID, ok := intVar(r, "commentId")
	if !ok {
		cc.posts.sendError(w, r, "Invalid comment ID", http.StatusBadRequest)
		return
	}

	post, err := cc.postService.GetPostWithComments(r.Context(), postID)
	if err != nil {
		cc.posts.fail(w, r, err, "Post")
		return
	}
	if err := cc.postService.RemoveComment(r.Context(), post, commentID); err != nil {
		cc.posts.fail(w, r, err, "Comment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

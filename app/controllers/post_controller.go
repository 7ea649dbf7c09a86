package controllers

import (
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"

	"quill/app/models"
	"quill/app/pagination"
	"quill/app/services"
)

// PostController handles HTTP requests for blog posts
type PostController struct {
	base
	postService    *services.PostService
	commentService *services.CommentService
}

// NewPostController creates a new PostController
func NewPostController(posts *services.PostService, comments *services.CommentService, templates map[string]*template.Template) *PostController {
	return &PostController{
		base:           base{templates: templates},
		postService:    posts,
		commentService: comments,
	}
}

// postInput is the writable part of a post.
type postInput struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Author      string `json:"author"`
	Email       string `json:"email"`
}

func (in postInput) apply(p *models.Post) {
	p.Title = in.Title
	p.Content = in.Content
	p.Description = in.Description
	p.Author = in.Author
	p.Email = in.Email
}

type indexView struct {
	Posts pagination.Page[*models.Post]
	Pager pager
}

type showView struct {
	Post     *models.Post
	Comments pagination.Page[*models.Comment]
	Pager    pager
	Form     *models.Comment
	Errors   map[string]string
}

type newView struct {
	Form   *models.Post
	Errors map[string]string
}

// postResponse is the API shape of a single post.
type postResponse struct {
	Post     *models.Post                     `json:"post"`
	Comments pagination.Page[*models.Comment] `json:"comments"`
}

// Index handles listing all posts
func (pc *PostController) Index(w http.ResponseWriter, r *http.Request) {
	posts, err := pc.postService.ListPosts(r.Context(), pageParam(r))
	if err != nil {
		pc.fail(w, r, err, "Posts")
		return
	}

	if isAPI(r) {
		pc.sendJSON(w, http.StatusOK, posts)
		return
	}
	pc.render(w, r, "index", http.StatusOK, indexView{
		Posts: posts,
		Pager: pager{Page: posts, BaseURL: "/blog"},
	})
}

// Show handles displaying a single post with one page of its comments
func (pc *PostController) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	post, err := pc.postService.GetPostWithComments(r.Context(), id)
	if err != nil {
		pc.fail(w, r, err, "Post")
		return
	}
	pc.renderShow(w, r, post, pageParam(r), pc.commentService.NewDraft(), nil, http.StatusOK)
}

// renderShow answers with the post page, or its JSON form for API requests.
func (pc *PostController) renderShow(w http.ResponseWriter, r *http.Request, post *models.Post, page int, form *models.Comment, errs map[string]string, status int) {
	comments, err := pc.commentService.ListComments(r.Context(), post, page)
	if err != nil {
		pc.fail(w, r, err, "Comments")
		return
	}

	if isAPI(r) {
		// Comments travel in the page, not on the post.
		bare := *post
		bare.Comments = nil
		pc.sendJSON(w, status, postResponse{Post: &bare, Comments: comments})
		return
	}
	pc.render(w, r, "show", status, showView{
		Post:     post,
		Comments: comments,
		Pager:    pager{Page: comments, BaseURL: "/blog/" + strconv.Itoa(post.ID)},
		Form:     form,
		Errors:   errs,
	})
}

// New displays the form for creating a new post
func (pc *PostController) New(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, "new", http.StatusOK, newView{Form: pc.postService.NewDraft()})
}

// Create handles creating a new post from a form or a JSON body
func (pc *PostController) Create(w http.ResponseWriter, r *http.Request) {
	var in postInput
	if isAPI(r) {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			pc.sendError(w, r, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			pc.sendError(w, r, "Failed to parse form: "+err.Error(), http.StatusBadRequest)
			return
		}
		in = postInput{
			Title:       r.FormValue("title"),
			Content:     r.FormValue("content"),
			Description: r.FormValue("description"),
			Author:      r.FormValue("author"),
			Email:       r.FormValue("email"),
		}
	}

	draft := pc.postService.NewDraft()
	in.apply(draft)

	post, err := pc.postService.CreatePost(r.Context(), draft)
	if err != nil {
		if verrs, ok := models.AsValidationErrors(err); ok && !isAPI(r) {
			pc.render(w, r, "new", http.StatusUnprocessableEntity, newView{Form: draft, Errors: verrs.Fields()})
			return
		}
		pc.fail(w, r, err, "Post")
		return
	}

	if isAPI(r) {
		w.Header().Set("Location", "/api/posts/"+strconv.Itoa(post.ID))
		pc.sendJSON(w, http.StatusCreated, post)
		return
	}
	http.Redirect(w, r, "/blog", http.StatusSeeOther)
}

// Delete handles deleting a post and its comments
func (pc *PostController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := intVar(r, "id")
	if !ok {
		pc.sendError(w, r, "Invalid post ID", http.StatusBadRequest)
		return
	}

	if err := pc.postService.DeletePost(r.Context(), id); err != nil {
		pc.fail(w, r, err, "Post")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/anonto42/blogi/backend/internal/middleware"
	"github.com/anonto42/blogi/backend/internal/models"
	"github.com/anonto42/blogi/backend/internal/services"
	"github.com/labstack/echo/v4"
)

const (
	defaultLimit = 10
	imageField   = "image"
)

// PostHandler handles HTTP requests related to posts
type PostHandler struct {
	posts *services.PostService
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers the post routes. Reads are public, writes
// run behind requireAuth.
func (h *PostHandler) RegisterPostRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.GET("/posts", h.GetPosts)
	g.GET("/posts/search", h.SearchPosts)
	g.GET("/posts/:id", h.GetPost)

	g.POST("/posts", h.CreatePost, requireAuth)
	g.PUT("/posts/:id", h.UpdatePost, requireAuth)
	g.DELETE("/posts/:id", h.DeletePost, requireAuth)
}

// CreatePost creates a new post from a multipart form
func (h *PostHandler) CreatePost(c echo.Context) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return apperrors.Unauthenticated("Not authenticated")
	}

	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	image, err := readImage(c)
	if err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), req.Title, req.Content, image, identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// GetPosts lists posts newest first
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	posts, err := h.posts.List(c.Request().Context(), page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// SearchPosts lists posts whose title or content contains ?query=
func (h *PostHandler) SearchPosts(c echo.Context) error {
	var req models.SearchPostsRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	page, err := parsePage(c)
	if err != nil {
		return err
	}

	posts, err := h.posts.Search(c.Request().Context(), req.Query, page)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := postID(c)
	if err != nil {
		return err
	}

	post, err := h.posts.GetByID(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// UpdatePost applies the form fields that are present to an existing post
func (h *PostHandler) UpdatePost(c echo.Context) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return apperrors.Unauthenticated("Not authenticated")
	}
	id, err := postID(c)
	if err != nil {
		return err
	}

	if _, err := c.FormParams(); err != nil {
		return apperrors.Validation("Invalid form data")
	}
	params := c.Request().PostForm

	var upd models.PostUpdate
	if v, ok := params["title"]; ok && len(v) > 0 {
		upd.Title = &v[0]
	}
	if v, ok := params["content"]; ok && len(v) > 0 {
		upd.Content = &v[0]
	}
	if upd.Image, err = readImage(c); err != nil {
		return err
	}

	post, err := h.posts.Update(c.Request().Context(), id, upd, identity)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// DeletePost deletes a post
func (h *PostHandler) DeletePost(c echo.Context) error {
	identity, ok := middleware.CurrentIdentity(c)
	if !ok {
		return apperrors.Unauthenticated("Not authenticated")
	}
	id, err := postID(c)
	if err != nil {
		return err
	}

	if err := h.posts.Delete(c.Request().Context(), id, identity); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// readImage returns the uploaded image bytes, or nil when no file part was sent.
func readImage(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, apperrors.Validation("Invalid image upload")
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.Internal("failed to open upload", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.Internal("failed to read upload", err)
	}
	return data, nil
}

// parsePage reads skip (or offset) and limit from the query string.
func parsePage(c echo.Context) (models.Page, error) {
	page := models.Page{Offset: 0, Limit: defaultLimit}

	offset := c.QueryParam("skip")
	if offset == "" {
		offset = c.QueryParam("offset")
	}
	if offset != "" {
		n, err := strconv.Atoi(offset)
		if err != nil {
			return page, apperrors.Validation("skip must be an integer")
		}
		page.Offset = n
	}
	if limit := c.QueryParam("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return page, apperrors.Validation("limit must be an integer")
		}
		page.Limit = n
	}
	return page, nil
}

func postID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, apperrors.Validation("Invalid post ID")
	}
	return uint(id), nil
}

package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/anonto42/blogi/backend/internal/apperrors"
	"github.com/anonto42/blogi/backend/internal/auth"
	"github.com/anonto42/blogi/backend/internal/codec"
	"github.com/anonto42/blogi/backend/internal/models"
	"github.com/anonto42/blogi/backend/internal/repositories"
	"github.com/anonto42/blogi/backend/internal/validators"
	"github.com/go-playground/validator/v10"
)

const postNotFound = "Post not found"

// ImageSaver publishes uploaded images to a static location.
type ImageSaver interface {
	Save(postID uint, data []byte) (string, error)
}

// PostService handles business logic for blog posts
type PostService struct {
	posts    repositories.PostRepository
	users    repositories.UserRepository
	guard    *auth.Guard
	codec    *codec.Codec
	images   ImageSaver
	log      codec.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewPostService creates a new PostService. images and log may be nil.
func NewPostService(
	posts repositories.PostRepository,
	users repositories.UserRepository,
	guard *auth.Guard,
	c *codec.Codec,
	images ImageSaver,
	log codec.Logger,
) *PostService {
	return &PostService{
		posts:    posts,
		users:    users,
		guard:    guard,
		codec:    c,
		images:   images,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

// Create stores a new post owned by author. image is nil when no file
// was attached.
func (s *PostService) Create(ctx context.Context, title, content string, image []byte, author *auth.Identity) (*codec.PostRecord, error) {
	if author == nil {
		return nil, apperrors.Unauthenticated("Not authenticated")
	}
	if err := requireText("title", title); err != nil {
		return nil, err
	}
	if err := requireText("content", content); err != nil {
		return nil, err
	}

	now := s.timestamp()
	post := &models.Post{
		Title:     title,
		Content:   content,
		Image:     image,
		CreatedAt: now,
		UpdatedAt: now,
		AuthorID:  author.ID,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, apperrors.Internal("failed to create post", err)
	}
	s.publishImage(post)

	rec := s.codec.ToTransport(post, author.Out())
	return &rec, nil
}

// List returns a page of posts, newest first.
func (s *PostService) List(ctx context.Context, page models.Page) ([]codec.PostRecord, error) {
	if err := s.checkPage(page); err != nil {
		return nil, err
	}
	posts, err := s.posts.ListPosts(ctx, page.Offset, page.Limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list posts", err)
	}
	return s.records(ctx, posts), nil
}

// Search returns a page of posts whose title or content contains query,
// ignoring case, newest first.
func (s *PostService) Search(ctx context.Context, query string, page models.Page) ([]codec.PostRecord, error) {
	if query == "" {
		return nil, apperrors.Validation("query is required")
	}
	if err := s.checkPage(page); err != nil {
		return nil, err
	}
	posts, err := s.posts.SearchPosts(ctx, query, page.Offset, page.Limit)
	if err != nil {
		return nil, apperrors.Internal("failed to search posts", err)
	}
	return s.records(ctx, posts), nil
}

// GetByID returns a single post.
func (s *PostService) GetByID(ctx context.Context, id uint) (*codec.PostRecord, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	rec := s.codec.ToTransport(post, s.author(ctx, post.AuthorID))
	return &rec, nil
}

// Update applies the provided fields of upd to a post owned by requester.
// updated_at is refreshed even when no field changes.
func (s *PostService) Update(ctx context.Context, id uint, upd models.PostUpdate, requester *auth.Identity) (*codec.PostRecord, error) {
	post, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.AuthorizeOwnership(requester, post.AuthorID, "update"); err != nil {
		return nil, err
	}

	if upd.Title != nil {
		if err := requireText("title", *upd.Title); err != nil {
			return nil, err
		}
		post.Title = *upd.Title
	}
	if upd.Content != nil {
		if err := requireText("content", *upd.Content); err != nil {
			return nil, err
		}
		post.Content = *upd.Content
	}
	if upd.Image != nil {
		post.Image = upd.Image
	}

	updated := s.timestamp()
	if updated.Before(post.UpdatedAt) {
		updated = post.UpdatedAt
	}
	if updated.Before(post.CreatedAt) {
		updated = post.CreatedAt
	}
	post.UpdatedAt = updated

	if err := s.posts.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.NotFound(postNotFound)
		}
		return nil, apperrors.Internal("failed to update post", err)
	}
	if upd.Image != nil {
		s.publishImage(post)
	}

	rec := s.codec.ToTransport(post, requester.Out())
	return &rec, nil
}

// Delete permanently removes a post owned by requester.
func (s *PostService) Delete(ctx context.Context, id uint, requester *auth.Identity) error {
	post, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.guard.AuthorizeOwnership(requester, post.AuthorID, "delete"); err != nil {
		return err
	}
	if err := s.posts.DeletePost(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return apperrors.NotFound(postNotFound)
		}
		return apperrors.Internal("failed to delete post", err)
	}
	return nil
}

func (s *PostService) find(ctx context.Context, id uint) (*models.Post, error) {
	post, err := s.posts.GetPostByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound(postNotFound)
	}
	if err != nil {
		return nil, apperrors.Internal("failed to load post", err)
	}
	return post, nil
}

// records encodes posts. Resolved authors are reused within the page; a
// failed lookup leaves only that record's author null and is retried for
// the next record.
func (s *PostService) records(ctx context.Context, posts []models.Post) []codec.PostRecord {
	authors := make(map[uint]*models.UserOut)
	out := make([]codec.PostRecord, 0, len(posts))
	for i := range posts {
		post := &posts[i]
		author, ok := authors[post.AuthorID]
		if !ok {
			if author = s.author(ctx, post.AuthorID); author != nil {
				authors[post.AuthorID] = author
			}
		}
		out = append(out, s.codec.ToTransport(post, author))
	}
	return out
}

func (s *PostService) author(ctx context.Context, id uint) *models.UserOut {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) && s.log != nil {
			s.log.Warnf("post service: author %d lookup failed: %v", id, err)
		}
		return nil
	}
	return user.Out()
}

func (s *PostService) publishImage(post *models.Post) {
	if s.images == nil || len(post.Image) == 0 {
		return
	}
	if _, err := s.images.Save(post.ID, post.Image); err != nil && s.log != nil {
		s.log.Warnf("post service: failed to store image for post %d: %v", post.ID, err)
	}
}

func (s *PostService) checkPage(page models.Page) error {
	if err := s.validate.Struct(page); err != nil {
		return apperrors.Validation(validators.Describe(err).Error())
	}
	return nil
}

// timestamp truncates to the precision both post stores keep.
func (s *PostService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func requireText(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperrors.Validation(field + " is required")
	}
	return nil
}

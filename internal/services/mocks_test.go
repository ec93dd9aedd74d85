package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/anonto42/blogi/backend/internal/models"
	"github.com/anonto42/blogi/backend/internal/repositories"
)

type mockUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
	// failIDs makes GetUserByID fail for these ids with a non-NotFound error.
	failIDs map[uint]error
	// flakyIDs makes GetUserByID fail the given number of times before succeeding.
	flakyIDs map[uint]int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:    make(map[uint]*models.User),
		nextID:   1,
		failIDs:  make(map[uint]error),
		flakyIDs: make(map[uint]int),
	}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repositories.ErrDuplicate
		}
	}
	user.ID = m.nextID
	m.nextID++
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id uint) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err, ok := m.failIDs[id]; ok {
		return nil, err
	}
	if n := m.flakyIDs[id]; n > 0 {
		m.flakyIDs[id] = n - 1
		return nil, errors.New("connection reset")
	}
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockUserRepo) GetUserByUsername(_ context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

type mockPostRepo struct {
	mu     sync.Mutex
	posts  map[uint]*models.Post
	nextID uint
}

func newMockPostRepo() *mockPostRepo {
	return &mockPostRepo{posts: make(map[uint]*models.Post), nextID: 1}
}

func (m *mockPostRepo) CreatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	post.ID = m.nextID
	m.nextID++
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *mockPostRepo) GetPostByID(_ context.Context, id uint) (*models.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPostRepo) ListPosts(ctx context.Context, offset, limit int) ([]models.Post, error) {
	return m.filter(func(*models.Post) bool { return true }, offset, limit), nil
}

func (m *mockPostRepo) SearchPosts(ctx context.Context, query string, offset, limit int) ([]models.Post, error) {
	q := strings.ToLower(query)
	return m.filter(func(p *models.Post) bool {
		return strings.Contains(strings.ToLower(p.Title), q) || strings.Contains(strings.ToLower(p.Content), q)
	}, offset, limit), nil
}

func (m *mockPostRepo) filter(keep func(*models.Post) bool, offset, limit int) []models.Post {
	m.mu.Lock()
	defer m.mu.Unlock()
	var posts []models.Post
	for _, p := range m.posts {
		if keep(p) {
			posts = append(posts, *p)
		}
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if offset >= len(posts) {
		return []models.Post{}
	}
	end := offset + limit
	if end > len(posts) {
		end = len(posts)
	}
	return posts[offset:end]
}

func (m *mockPostRepo) UpdatePost(_ context.Context, post *models.Post) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[post.ID]; !ok {
		return repositories.ErrNotFound
	}
	cp := *post
	m.posts[post.ID] = &cp
	return nil
}

func (m *mockPostRepo) DeletePost(_ context.Context, id uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.posts, id)
	return nil
}

type savedImage struct {
	postID uint
	data   []byte
}

type mockImageSaver struct {
	saved []savedImage
	err   error
}

func (m *mockImageSaver) Save(postID uint, data []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.saved = append(m.saved, savedImage{postID: postID, data: data})
	return "/uploads/test", nil
}

type mockLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *mockLogger) Warnf(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, format)
}

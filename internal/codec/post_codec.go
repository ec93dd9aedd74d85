package codec

import (
	"encoding/base64"
	"strings"
	"time"

	"github.com/anonto42/blogi/backend/internal/models"
)

// Logger is the subset of echo.Logger the codec writes to.
type Logger interface {
	Warnf(format string, args ...interface{})
}

// PostRecord is the outward representation of a post. The raw image never
// leaves the server; Image is always null and ImageData carries base64.
type PostRecord struct {
	ID        uint            `json:"id"`
	Title     string          `json:"title"`
	Content   string          `json:"content"`
	Image     *string         `json:"image"`
	ImageData *string         `json:"image_data"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	AuthorID  uint            `json:"author_id"`
	Author    *models.UserOut `json:"author"`
}

// Codec converts stored posts into PostRecords.
type Codec struct {
	log    Logger
	encode func([]byte) (string, error)
}

// New creates a Codec that reports encoding failures to log.
func New(log Logger) *Codec {
	return &Codec{log: log, encode: encodeBase64}
}

// EncodeImage returns the standard padded base64 form of b. A nil image is
// nil, an empty image is the empty string, and a failed encoding is logged
// and reported as nil.
func (c *Codec) EncodeImage(b []byte) *string {
	if b == nil {
		return nil
	}
	s, err := c.encode(b)
	if err != nil {
		if c.log != nil {
			c.log.Warnf("codec: failed to encode image (%d bytes): %v", len(b), err)
		}
		return nil
	}
	return &s
}

// ToTransport builds the record for post. author may be nil when it could
// not be resolved.
func (c *Codec) ToTransport(post *models.Post, author *models.UserOut) PostRecord {
	return PostRecord{
		ID:        post.ID,
		Title:     post.Title,
		Content:   post.Content,
		Image:     nil,
		ImageData: c.EncodeImage(post.Image),
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		AuthorID:  post.AuthorID,
		Author:    author,
	}
}

// DecodeImage reverses EncodeImage. No request path needs it; clients decode.
func DecodeImage(s *string) ([]byte, error) {
	if s == nil {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(*s)
}

func encodeBase64(b []byte) (string, error) {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(b)))
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	if _, err := enc.Write(b); err != nil {
		return "", err
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

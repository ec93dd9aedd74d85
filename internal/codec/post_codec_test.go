package codec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"testing"
	"time"

	"github.com/anonto42/blogi/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Warnf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

var base64Alphabet = regexp.MustCompile(`^[A-Za-z0-9+/]*={0,2}$`)

func TestEncodeImage(t *testing.T) {
	c := New(nil)

	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, c.EncodeImage(nil))
	})

	t.Run("empty is empty string", func(t *testing.T) {
		got := c.EncodeImage([]byte{})
		require.NotNil(t, got)
		assert.Equal(t, "", *got)
	})

	t.Run("known vectors", func(t *testing.T) {
		cases := map[string]string{
			"f":      "Zg==",
			"fo":     "Zm8=",
			"foo":    "Zm9v",
			"foobar": "Zm9vYmFy",
		}
		for in, want := range cases {
			got := c.EncodeImage([]byte(in))
			require.NotNil(t, got)
			assert.Equal(t, want, *got, in)
		}
	})

	t.Run("binary round trip", func(t *testing.T) {
		rng := rand.New(rand.NewSource(1))
		for n := 0; n < 64; n++ {
			b := make([]byte, n)
			rng.Read(b)

			enc := c.EncodeImage(b)
			require.NotNil(t, enc)
			assert.Len(t, *enc, (n+2)/3*4)
			assert.Regexp(t, base64Alphabet, *enc)

			dec, err := DecodeImage(enc)
			require.NoError(t, err)
			assert.True(t, bytes.Equal(b, dec), "length %d", n)
		}
	})
}

func TestEncodeImageFailureDegradesToNil(t *testing.T) {
	log := &recordingLogger{}
	c := New(log)
	c.encode = func([]byte) (string, error) { return "", errors.New("short write") }

	assert.Nil(t, c.EncodeImage([]byte{1, 2, 3}))
	require.Len(t, log.lines, 1)
	assert.Contains(t, log.lines[0], "short write")
}

func TestToTransport(t *testing.T) {
	c := New(nil)
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	post := &models.Post{
		ID:        7,
		Title:     "T",
		Content:   "C",
		Image:     []byte("png"),
		CreatedAt: created,
		UpdatedAt: created.Add(time.Minute),
		AuthorID:  3,
	}

	rec := c.ToTransport(post, &models.UserOut{ID: 3, Username: "alice"})

	assert.Equal(t, uint(7), rec.ID)
	assert.Equal(t, "T", rec.Title)
	assert.Equal(t, "C", rec.Content)
	assert.Nil(t, rec.Image)
	require.NotNil(t, rec.ImageData)
	assert.Equal(t, "cG5n", *rec.ImageData)
	assert.Equal(t, created, rec.CreatedAt)
	assert.Equal(t, uint(3), rec.AuthorID)
	assert.Equal(t, "alice", rec.Author.Username)
}

func TestToTransportWithoutAuthorOrImage(t *testing.T) {
	rec := New(nil).ToTransport(&models.Post{ID: 1, Title: "T", Content: "C", AuthorID: 9}, nil)

	assert.Nil(t, rec.ImageData)
	assert.Nil(t, rec.Author)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.Contains(t, fields, "image")
	assert.Nil(t, fields["image"])
	assert.Nil(t, fields["image_data"])
	assert.Nil(t, fields["author"])
}

func TestPostModelNeverSerializesImage(t *testing.T) {
	raw, err := json.Marshal(models.Post{ID: 1, Image: []byte("secret")})
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "c2VjcmV0")
	assert.NotContains(t, string(raw), `"image"`)
}

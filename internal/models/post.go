package models

import (
	"time"
)

// Post is a blog post. It is stored in PostgreSQL through gorm, or in MongoDB
// when the document post store is selected.
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey" bson:"_id"`
	Title     string    `json:"title" gorm:"index;not null" bson:"title"`
	Content   string    `json:"content" gorm:"type:text;not null" bson:"content"`
	Image     []byte    `json:"-" gorm:"type:bytea" bson:"image"` // raw image, never serialized
	CreatedAt time.Time `json:"created_at" gorm:"index" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null" bson:"author_id"`

	// Authors owning posts cannot be deleted.
	Author *User `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" bson:"-"`
}

// PostUpdate carries the optional fields of an update. Nil means "keep";
// a non-nil Image, even empty, replaces the stored image.
type PostUpdate struct {
	Title   *string
	Content *string
	Image   []byte
}

// Page is an offset/limit window over an ordered result set.
type Page struct {
	Offset int `validate:"min=0"`
	Limit  int `validate:"min=1,max=100"`
}

type CreatePostRequest struct {
	Title   string `form:"title" validate:"required"`
	Content string `form:"content" validate:"required"`
}

type SearchPostsRequest struct {
	Query string `query:"query" validate:"required,min=1"`
}

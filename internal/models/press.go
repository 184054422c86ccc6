package models

import "time"

// PressKind distinguishes the media types in the press section.
type PressKind string

const (
	PressKindPhoto   PressKind = "photo"
	PressKindVideo   PressKind = "video"
	PressKindArticle PressKind = "article"
)

// PressItem is a media entry (photo, video or article) shown on the site.
// Either URL points at an external resource or AssetPath references an
// uploaded file served through storage.
type PressItem struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Kind        PressKind  `db:"kind" json:"kind"`
	URL         string     `db:"url" json:"url,omitempty"`
	AssetPath   string     `db:"asset_path" json:"-"`
	AssetURL    string     `db:"asset_url" json:"asset_url,omitempty"`
	PublishedAt *time.Time `db:"published_at" json:"published_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

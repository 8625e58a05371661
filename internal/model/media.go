package model

// MediaType is derived from the MIME type at save time.
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaFile  MediaType = "file"
)

// ProjectMedia is the local-only metadata for a file copied into a
// project's sandbox directory. ID equals the destination path, which is
// unique by construction.
type ProjectMedia struct {
	ID        string    `json:"id"`
	ProjectID int64     `json:"project_id"`
	URI       string    `json:"uri"`
	Type      MediaType `json:"type"`
	Name      string    `json:"name"`
	CreatedAt string    `json:"created_at"`
}

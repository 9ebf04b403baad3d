package blob

import "context"

// Kind selects how the object store treats the uploaded bytes.
type Kind string

const (
	// KindAuto lets the store classify the object from its content type.
	KindAuto Kind = "auto"
	// KindRaw stores the bytes untouched, with no media transformation.
	KindRaw Kind = "raw"
)

// KindFor picks the storage classification for a content type. PDFs go raw
// so the store never tries to treat them as image or video media.
func KindFor(contentType string) Kind {
	if contentType == "application/pdf" {
		return KindRaw
	}
	return KindAuto
}

// UploadOptions carries the per-object storage hints.
type UploadOptions struct {
	Kind        Kind
	Folder      string // key prefix, e.g. "uploads" or "chat_uploads"
	ContentType string
}

// Store is the narrow boundary to the durable object store. Upload pushes
// the file at localPath and returns its public URL.
type Store interface {
	Upload(ctx context.Context, localPath string, opts UploadOptions) (string, error)
}

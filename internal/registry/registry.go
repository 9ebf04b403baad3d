package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a folder id was never created.
	ErrNotFound = errors.New("folder not found")
	// ErrExpired is returned when a folder exists but its retention has passed.
	ErrExpired = errors.New("folder expired")
)

// DefaultTitle is used when the uploader does not name the folder.
const DefaultTitle = "My Folder"

// File describes one uploaded file inside a folder.
type File struct {
	URL         string `json:"url"`
	ContentType string `json:"type"`
	Title       string `json:"title"`
}

// Folder is a named, expiring collection of uploaded files addressable
// by an opaque id.
type Folder struct {
	ID       string
	Title    string
	ExpireAt time.Time
	Files    []File
}

// Registry keeps folder records in memory for the lifetime of the process.
// Expiry is evaluated lazily at resolve time; there is no background sweep
// and nothing survives a restart.
type Registry struct {
	mu      sync.RWMutex
	folders map[string]*Folder
	now     func() time.Time
}

// New creates an empty registry using the wall clock.
func New() *Registry {
	return NewWithClock(time.Now)
}

// NewWithClock creates an empty registry with an injectable clock.
func NewWithClock(now func() time.Time) *Registry {
	return &Registry{
		folders: make(map[string]*Folder),
		now:     now,
	}
}

// RetentionDays maps the user-facing duration selector to a number of days.
// Unrecognized values default to 7.
func RetentionDays(selector string) int {
	switch selector {
	case "1 Day":
		return 1
	case "3 Days":
		return 3
	default:
		return 7
	}
}

// Create allocates a new empty folder and returns its id. The folder is not
// reachable by anyone until the caller hands out a link, so files can be
// appended without readers ever observing a partial list.
func (r *Registry) Create(title string, days int) string {
	if title == "" {
		title = DefaultTitle
	}
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()
	r.folders[id] = &Folder{
		ID:       id,
		Title:    title,
		ExpireAt: r.now().Add(time.Duration(days) * 24 * time.Hour),
	}
	return id
}

// AppendFile adds a file descriptor to the end of the folder's file list.
func (r *Registry) AppendFile(id string, f File) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	folder, ok := r.folders[id]
	if !ok {
		return ErrNotFound
	}
	folder.Files = append(folder.Files, f)
	return nil
}

// Resolve looks up a folder by id. It returns ErrNotFound for unknown ids
// and ErrExpired once the retention instant has passed. The returned folder
// is a snapshot safe to read without further locking.
func (r *Registry) Resolve(id string) (*Folder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	folder, ok := r.folders[id]
	if !ok {
		return nil, ErrNotFound
	}
	if r.now().After(folder.ExpireAt) {
		return nil, ErrExpired
	}

	snapshot := *folder
	snapshot.Files = append([]File(nil), folder.Files...)
	return &snapshot, nil
}

// Discard removes a folder that was allocated but never published, typically
// after a failed upload batch. Discarding an unknown id is a no-op.
func (r *Registry) Discard(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.folders, id)
}

package chat

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/op/go-logging"

	"github.com/sharedeck/sharedeck/internal/blob"
	"github.com/sharedeck/sharedeck/internal/relay"
	"github.com/sharedeck/sharedeck/internal/upload"
)

// Message is the payload relayed after a successful chat file upload.
type Message struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Room    string `json:"room"`
	Self    bool   `json:"self,omitempty"`
}

// Uploader pushes chat attachments to the blob store and relays the
// resulting URL to the sender's room.
type Uploader struct {
	store  blob.Store
	stager *upload.Stager
	relay  *relay.Relay
	log    *logging.Logger
}

// NewUploader wires the chat upload path.
func NewUploader(store blob.Store, stager *upload.Stager, r *relay.Relay, log *logging.Logger) *Uploader {
	return &Uploader{
		store:  store,
		stager: stager,
		relay:  r,
		log:    log,
	}
}

// SendFile stages the attachment, uploads it and relays a typed message to
// every other member of the room, plus a self-marked echo to the sender.
// On failure nothing is relayed and the error is returned to the caller.
func (u *Uploader) SendFile(ctx context.Context, sender relay.Conn, room, name, mimeType string, data []byte) error {
	path, err := u.stager.Stage(name, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", upload.ErrUploadFailed, err)
	}
	defer u.stager.Release(path)

	url, err := u.store.Upload(ctx, path, blob.UploadOptions{
		Kind:        blob.KindFor(mimeType),
		Folder:      "chat_uploads",
		ContentType: mimeType,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", upload.ErrUploadFailed, err)
	}

	msg := Message{
		Type:    classify(mimeType),
		Message: url,
		Room:    room,
	}
	u.relay.Broadcast(sender.ID(), room, "receive_message", msg)

	echo := msg
	echo.Self = true
	if err := sender.Emit("receive_message", echo); err != nil {
		// Sender may already be gone; the peers got their copy.
		u.log.Debugf("Echo to %s failed: %v", sender.ID(), err)
	}
	return nil
}

func classify(mimeType string) string {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return "image"
	case strings.HasPrefix(mimeType, "video/"):
		return "video"
	default:
		return "file"
	}
}

package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/op/go-logging"

	"github.com/sharedeck/sharedeck/internal/blob"
	"github.com/sharedeck/sharedeck/internal/registry"
)

var (
	// ErrEmptyBatch is returned when a batch contains no files.
	ErrEmptyBatch = errors.New("no files in batch")
	// ErrUploadFailed wraps any storage failure inside a batch or chat send.
	ErrUploadFailed = errors.New("upload failed")
)

// BatchFile is one incoming file in an upload batch.
type BatchFile struct {
	Name        string
	ContentType string
	Data        io.Reader
}

// Orchestrator drives upload batches through the blob store and publishes
// the resulting folder in the link registry.
type Orchestrator struct {
	store    blob.Store
	registry *registry.Registry
	stager   *Stager
	baseURL  string
	log      *logging.Logger
}

// NewOrchestrator wires the orchestrator to its collaborators. baseURL is
// the externally visible address links are built from.
func NewOrchestrator(store blob.Store, reg *registry.Registry, stager *Stager, baseURL string, log *logging.Logger) *Orchestrator {
	return &Orchestrator{
		store:    store,
		registry: reg,
		stager:   stager,
		baseURL:  strings.TrimRight(baseURL, "/"),
		log:      log,
	}
}

// SubmitBatch uploads every file in input order and returns the shareable
// link. The folder only becomes reachable through the returned link, so
// readers never observe a partial file list. On the first failure the batch
// aborts, the folder is discarded and no link is returned.
func (o *Orchestrator) SubmitBatch(ctx context.Context, title, retention string, files []BatchFile) (string, error) {
	if len(files) == 0 {
		return "", ErrEmptyBatch
	}

	days := registry.RetentionDays(retention)
	folderID := o.registry.Create(title, days)
	o.log.Infof("Created folder %s (%d files, %d day retention)", folderID, len(files), days)

	for _, f := range files {
		desc, err := o.push(ctx, f, "uploads")
		if err != nil {
			o.registry.Discard(folderID)
			o.log.Errorf("Batch %s aborted at %s: %v", folderID, f.Name, err)
			return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
		if err := o.registry.AppendFile(folderID, desc); err != nil {
			return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
		}
	}

	return o.baseURL + "/file/" + folderID, nil
}

// push stages one file locally, uploads it and always releases the staged
// copy.
func (o *Orchestrator) push(ctx context.Context, f BatchFile, folder string) (registry.File, error) {
	path, err := o.stager.Stage(f.Name, f.Data)
	if err != nil {
		return registry.File{}, err
	}
	defer o.stager.Release(path)

	url, err := o.store.Upload(ctx, path, blob.UploadOptions{
		Kind:        blob.KindFor(f.ContentType),
		Folder:      folder,
		ContentType: f.ContentType,
	})
	if err != nil {
		return registry.File{}, err
	}

	return registry.File{
		URL:         url,
		ContentType: f.ContentType,
		Title:       f.Name,
	}, nil
}

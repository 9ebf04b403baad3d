package main

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/op/go-logging"

	"github.com/sharedeck/sharedeck/internal/registry"
	"github.com/sharedeck/sharedeck/internal/upload"
	"github.com/sharedeck/sharedeck/internal/view"
)

// maxBatchFiles caps one upload request.
const maxBatchFiles = 50

// API exposes the link-share HTTP endpoints.
type API struct {
	uploads  *upload.Orchestrator
	registry *registry.Registry
	log      *logging.Logger
}

func NewAPI(uploads *upload.Orchestrator, reg *registry.Registry, log *logging.Logger) *API {
	return &API{
		uploads:  uploads,
		registry: reg,
		log:      log,
	}
}

func (a *API) RegisterRoutes(router *gin.Engine) {
	router.POST("/upload", a.uploadBatch)
	router.GET("/file/:id", a.viewFolder)
}

func (a *API) uploadBatch(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}

	headers := form.File["files"]
	if len(headers) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
		return
	}
	if len(headers) > maxBatchFiles {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Too many files"})
		return
	}

	files := make([]upload.BatchFile, 0, len(headers))
	opened := make([]multipart.File, 0, len(headers))
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			a.log.Errorf("Failed to open multipart file %s: %v", h.Filename, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
			return
		}
		opened = append(opened, f)
		files = append(files, upload.BatchFile{
			Name:        h.Filename,
			ContentType: h.Header.Get("Content-Type"),
			Data:        f,
		})
	}

	link, err := a.uploads.SubmitBatch(c.Request.Context(), c.PostForm("title"), c.PostForm("duration"), files)
	if err != nil {
		if errors.Is(err, upload.ErrEmptyBatch) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No files uploaded"})
			return
		}
		a.log.Errorf("Upload failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"link": link})
}

func (a *API) viewFolder(c *gin.Context) {
	folder, err := a.registry.Resolve(c.Param("id"))
	switch {
	case errors.Is(err, registry.ErrNotFound):
		c.String(http.StatusNotFound, "Link not found")
	case errors.Is(err, registry.ErrExpired):
		c.String(http.StatusGone, "Link expired")
	case err != nil:
		c.String(http.StatusInternalServerError, "Internal error")
	default:
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.Status(http.StatusOK)
		if err := view.Render(c.Writer, folder); err != nil {
			a.log.Errorf("Failed to render folder %s: %v", folder.ID, err)
		}
	}
}

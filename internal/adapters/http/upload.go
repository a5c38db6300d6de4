package http

import (
	"errors"
	"net/http"

	"github.com/dkeye/WatchParty/internal/adapters/upload"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// MediaPrefix is where uploaded files are served.
	MediaPrefix = "/media"
	// multipart framing on top of the file itself
	formOverhead = 1 << 20
)

type uploadHandler struct {
	store   *upload.Store
	maxSize int64
}

func (h *uploadHandler) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxSize+formOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing file"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable file"})
		return
	}
	defer f.Close()

	stored, err := h.store.Save(f)
	switch {
	case errors.Is(err, upload.ErrTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "file too large"})
	case errors.Is(err, upload.ErrEmpty):
		c.JSON(http.StatusBadRequest, gin.H{"error": "empty file"})
	case err != nil:
		log.Error().Err(err).Str("module", "adapters.http").Msg("upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "upload failed"})
	default:
		c.JSON(http.StatusOK, stored)
	}
}

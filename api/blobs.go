package api

import (
	"net/http"

	"github.com/Domenick1991/travelstore/internal/storage"
	"github.com/gin-gonic/gin"
)

type BlobHandler struct {
	store storage.BlobStore
}

func NewBlobHandler(store storage.BlobStore) *BlobHandler {
	return &BlobHandler{store: store}
}

func (h *BlobHandler) Register(router *gin.RouterGroup) {
	router.GET("/*path", h.download)
}

func (h *BlobHandler) download(c *gin.Context) {
	p, err := storage.CleanPath(c.Param("path"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body, contentType, err := h.store.Open(c.Request.Context(), p)
	if err != nil {
		respondError(c, err)
		return
	}
	defer body.Close()

	c.Header("Cache-Control", "public, max-age=86400")
	c.DataFromReader(http.StatusOK, -1, contentType, body, nil)
}

package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/Domenick1991/travelstore/internal/service/catalog"
	"github.com/gin-gonic/gin"
)

const maxImageBytes = 10 << 20

type PackageHandler struct {
	service catalog.CatalogUseCase
}

type packageForm struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Price       string `form:"price" json:"price"`
}

func NewPackageHandler(service catalog.CatalogUseCase) *PackageHandler {
	return &PackageHandler{service: service}
}

func (h *PackageHandler) RegisterPublic(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/:id", h.get)
}

func (h *PackageHandler) RegisterAdmin(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.PUT("/:id", h.update)
	router.DELETE("/:id", h.delete)
}

func (h *PackageHandler) list(c *gin.Context) {
	packages, err := h.service.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, packages)
}

func (h *PackageHandler) get(c *gin.Context) {
	pkg, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *PackageHandler) create(c *gin.Context) {
	input, err := bindPackage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pkg, err := h.service.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pkg)
}

func (h *PackageHandler) update(c *gin.Context) {
	input, err := bindPackage(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	pkg, err := h.service.Update(c.Request.Context(), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pkg)
}

func (h *PackageHandler) delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// bindPackage reads the package fields from a form or JSON body and the
// optional "image" file of a multipart upload.
func bindPackage(c *gin.Context) (catalog.PackageInput, error) {
	var form packageForm
	if err := c.ShouldBind(&form); err != nil {
		return catalog.PackageInput{}, err
	}
	input := catalog.PackageInput{
		Title:       form.Title,
		Description: form.Description,
		Price:       form.Price,
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		return input, nil
	}
	header, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return input, nil
	}
	if err != nil {
		return catalog.PackageInput{}, fmt.Errorf("read image: %w", err)
	}
	img, err := readImage(header)
	if err != nil {
		return catalog.PackageInput{}, err
	}
	input.Image = img
	return input, nil
}

func readImage(header *multipart.FileHeader) (*catalog.Image, error) {
	if header.Size > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", maxImageBytes)
	}
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &catalog.Image{Data: data, ContentType: contentType}, nil
}

package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/Domenick1991/travelstore/internal/domain"
	"github.com/Domenick1991/travelstore/internal/repository"
	"github.com/Domenick1991/travelstore/internal/service/catalog"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func multipartPackage(t *testing.T, fields map[string]string, image []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if image != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="beach.png"`)
		h.Set("Content-Type", "image/png")
		part, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest("POST", "/packages", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPackageHandler_create_Multipart(t *testing.T) {
	mockService := &MockCatalogUseCase{}
	handler := NewPackageHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartPackage(t, map[string]string{
		"title":       "Cusco",
		"description": "Four days",
		"price":       "450",
	}, []byte("\x89PNG fake"))

	created := &domain.TravelPackage{ID: "p1", Title: "Cusco", Price: "450", ImageURL: "http://x/blobs/images/1"}
	mockService.On("Create", mock.Anything, mock.MatchedBy(func(in catalog.PackageInput) bool {
		return in.Title == "Cusco" && in.Description == "Four days" && in.Price == "450" &&
			in.Image != nil && in.Image.ContentType == "image/png" && string(in.Image.Data) == "\x89PNG fake"
	})).Return(created, nil)

	handler.create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp domain.TravelPackage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "p1", resp.ID)
	mockService.AssertExpectations(t)
}

func TestPackageHandler_create_ValidationError(t *testing.T) {
	mockService := &MockCatalogUseCase{}
	handler := NewPackageHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = multipartPackage(t, map[string]string{"price": "10"}, nil)

	mockService.On("Create", mock.Anything, mock.MatchedBy(func(in catalog.PackageInput) bool {
		return in.Image == nil
	})).Return(nil, domain.NewValidationError("title", "title is required"))

	handler.create(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.JSONEq(t, `{"error":"title is required"}`, w.Body.String())
}

func TestPackageHandler_update_JSON(t *testing.T) {
	mockService := &MockCatalogUseCase{}
	handler := NewPackageHandler(mockService)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = jsonRequest("PUT", "/packages/p1", gin.H{"title": "Cusco", "price": "500"})
	c.Params = gin.Params{{Key: "id", Value: "p1"}}

	input := catalog.PackageInput{Title: "Cusco", Price: "500"}
	mockService.On("Update", mock.Anything, "p1", input).Return(&domain.TravelPackage{ID: "p1", Title: "Cusco", Price: "500"}, nil)

	handler.update(c)

	assert.Equal(t, http.StatusOK, w.Code)
	mockService.AssertExpectations(t)
}

func TestRouter_PackagesPublicReadAdminWrite(t *testing.T) {
	router, ts := newTestRouter()
	ts.catalog.On("List", mock.Anything).Return([]domain.TravelPackage{{ID: "p1"}}, nil)
	ts.catalog.On("Get", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
	ts.catalog.On("Delete", mock.Anything, "p1").Return(nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/packages", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/api/v1/packages/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("DELETE", "/api/v1/packages/p1", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req := httptest.NewRequest("DELETE", "/api/v1/packages/p1", nil)
	req.Header.Set("Authorization", "Bearer admin-token")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

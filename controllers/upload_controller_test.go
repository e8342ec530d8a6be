package controllers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/services"
)

func TestUploadEvidence(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	customer := createUser(t, db, "auth0|customer", "customer")

	mockS3 := services.NewMockS3Service()
	mockS3.SetAsMockForTesting()

	router := setupTestRouter()
	router.POST("/uploads/evidence",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		UploadEvidence,
	)

	w, response := doMultipartRequest(t, router, http.MethodPost, "/uploads/evidence",
		nil, "file", "unboxing.mp4", []byte("fake video bytes"))

	assert.Equal(t, http.StatusCreated, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["is_video"])

	s3Key := data["s3_key"].(string)
	assert.True(t, strings.HasPrefix(s3Key, "evidence/"))
	assert.True(t, mockS3.FileExists(s3Key))
}

func TestUploadEvidence_InvalidFormat(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	customer := createUser(t, db, "auth0|customer", "customer")

	router := setupTestRouter()
	router.POST("/uploads/evidence",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		UploadEvidence,
	)

	w, response := doMultipartRequest(t, router, http.MethodPost, "/uploads/evidence",
		nil, "file", "evidence.gif", []byte("fake bytes"))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_FILE_FORMAT", errorCode(t, response))
}

func TestUploadEvidence_StorageUnavailable(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	customer := createUser(t, db, "auth0|customer", "customer")

	router := setupTestRouter()
	router.POST("/uploads/evidence",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		UploadEvidence,
	)

	w, response := doMultipartRequest(t, router, http.MethodPost, "/uploads/evidence",
		nil, "file", "seam.jpg", []byte("fake image bytes"))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "STORAGE_UNAVAILABLE", errorCode(t, response))
}

package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/middleware"
)

func TestAdminUpdateSetting_CreateThenReplace(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	admin := createUser(t, db, "auth0|admin", "admin")

	router := setupTestRouter()
	router.PUT("/admin/settings/:type",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminUpdateSetting,
	)
	router.GET("/admin/settings/:type",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminGetSetting,
	)

	w, response := doJSONRequest(t, router, http.MethodPut, "/admin/settings/gst",
		map[string]interface{}{"value": map[string]interface{}{"rate": 0.12}})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	value := data["value"].(map[string]interface{})
	assert.Equal(t, 0.12, value["rate"])

	// A second update replaces the singleton rather than adding a row
	w, response = doJSONRequest(t, router, http.MethodPut, "/admin/settings/gst",
		map[string]interface{}{"value": map[string]interface{}{"rate": 0.05}})
	assert.Equal(t, http.StatusOK, w.Code)

	w, response = doJSONRequest(t, router, http.MethodGet, "/admin/settings/gst", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = response["data"].(map[string]interface{})
	value = data["value"].(map[string]interface{})
	assert.Equal(t, 0.05, value["rate"])
}

func TestAdminGetSetting_Unconfigured(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	admin := createUser(t, db, "auth0|admin", "admin")

	router := setupTestRouter()
	router.GET("/admin/settings/:type",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminGetSetting,
	)

	w, response := doJSONRequest(t, router, http.MethodGet, "/admin/settings/branding", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "SETTING_NOT_FOUND", errorCode(t, response))
}

func TestAdminGetSetting_UnknownType(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	admin := createUser(t, db, "auth0|admin", "admin")

	router := setupTestRouter()
	router.GET("/admin/settings/:type",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminGetSetting,
	)

	w, response := doJSONRequest(t, router, http.MethodGet, "/admin/settings/themes", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", errorCode(t, response))
}

package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amorlias/bharatbazaar-api/config"
	"github.com/amorlias/bharatbazaar-api/middleware"
	"github.com/amorlias/bharatbazaar-api/models"
)

func TestListProducts_ExcludesInactive(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	createProduct(t, db, "SKU-ACTIVE", 10, 500)
	inactive := createProduct(t, db, "SKU-INACTIVE", 10, 500)
	db.Model(inactive).Update("is_active", false)

	router := setupTestRouter()
	router.GET("/products", ListProducts)

	w, response := doJSONRequest(t, router, http.MethodGet, "/products", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	product := data[0].(map[string]interface{})
	assert.Equal(t, "SKU-ACTIVE", product["sku"])
}

func TestListProducts_FilterByCategory(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	category := models.Category{Name: "Sarees"}
	assert.NoError(t, db.Create(&category).Error)

	inCategory := createProduct(t, db, "SKU-SAREE", 10, 500)
	db.Model(inCategory).Update("category_id", category.ID)
	createProduct(t, db, "SKU-OTHER", 10, 500)

	router := setupTestRouter()
	router.GET("/products", ListProducts)

	w, response := doJSONRequest(t, router, http.MethodGet, "/products?category_id="+itoa(category.ID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	product := data[0].(map[string]interface{})
	assert.Equal(t, "SKU-SAREE", product["sku"])
}

func TestGetProductAvailabilityEndpoint(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createUser(t, db, "auth0|customer", "customer")
	product := createProduct(t, db, "SKU-001", 10, 500)
	createOrder(t, db, customer, product, 3, "cod")

	router := setupTestRouter()
	router.GET("/products/:id/availability", GetProductAvailability)

	w, response := doJSONRequest(t, router, http.MethodGet,
		"/products/"+itoa(product.ID)+"/availability", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(10), data["total"])
	assert.Equal(t, float64(3), data["blocked"])
	assert.Equal(t, float64(7), data["available"])
	assert.Equal(t, "in_stock", data["status"])
}

func TestGetProductAvailabilityEndpoint_NotFound(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	router := setupTestRouter()
	router.GET("/products/:id/availability", GetProductAvailability)

	w, response := doJSONRequest(t, router, http.MethodGet, "/products/999/availability", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, response))
}

func TestAdminCreateProduct(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	admin := createUser(t, db, "auth0|admin", "admin")

	router := setupTestRouter()
	router.POST("/admin/products",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminCreateProduct,
	)

	body := map[string]interface{}{
		"name":          "Banarasi Silk Saree",
		"sku":           "SAREE-BAN-01",
		"stock_qty":     12,
		"cost_price":    1800,
		"selling_price": 2999,
	}
	w, response := doJSONRequest(t, router, http.MethodPost, "/admin/products", body)

	assert.Equal(t, http.StatusCreated, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "SAREE-BAN-01", data["sku"])
	assert.Equal(t, true, data["is_active"])
	assert.Equal(t, float64(5), data["low_stock_threshold"], "threshold defaults when omitted")

	// Duplicate SKU is rejected
	w, response = doJSONRequest(t, router, http.MethodPost, "/admin/products", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "SKU_EXISTS", errorCode(t, response))
}

func TestAdminUpdateProduct_StockAndDeactivation(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	admin := createUser(t, db, "auth0|admin", "admin")
	product := createProduct(t, db, "SKU-001", 10, 500)

	router := setupTestRouter()
	router.PUT("/admin/products/:id",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminUpdateProduct,
	)

	w, response := doJSONRequest(t, router, http.MethodPut,
		"/admin/products/"+itoa(product.ID),
		map[string]interface{}{"stock_qty": 25, "is_active": false})

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(25), data["stock_qty"])
	assert.Equal(t, false, data["is_active"])

	// Negative stock is rejected
	w, response = doJSONRequest(t, router, http.MethodPut,
		"/admin/products/"+itoa(product.ID),
		map[string]interface{}{"stock_qty": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, response))
}

func TestAdminDeactivateProduct(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	admin := createUser(t, db, "auth0|admin", "admin")
	product := createProduct(t, db, "SKU-001", 10, 500)

	router := setupTestRouter()
	router.DELETE("/admin/products/:id",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminDeactivateProduct,
	)

	w, response := doJSONRequest(t, router, http.MethodDelete,
		"/admin/products/"+itoa(product.ID), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, response["success"].(bool))

	// The row survives as inactive, never hard-deleted
	var reloaded models.Product
	assert.NoError(t, db.First(&reloaded, product.ID).Error)
	assert.False(t, reloaded.IsActive)
}

func TestAdminCreateCategory_Duplicate(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	admin := createUser(t, db, "auth0|admin", "admin")

	router := setupTestRouter()
	router.POST("/admin/categories",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminCreateCategory,
	)

	w, _ := doJSONRequest(t, router, http.MethodPost, "/admin/categories",
		map[string]interface{}{"name": "Sarees"})
	assert.Equal(t, http.StatusCreated, w.Code)

	w, response := doJSONRequest(t, router, http.MethodPost, "/admin/categories",
		map[string]interface{}{"name": "Sarees"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "CATEGORY_EXISTS", errorCode(t, response))
}

func TestAdminInventoryReportEndpoint(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	admin := createUser(t, db, "auth0|admin", "admin")
	customer := createUser(t, db, "auth0|customer", "customer")
	product := createProduct(t, db, "SKU-001", 10, 500)
	createOrder(t, db, customer, product, 4, "cod")

	router := setupTestRouter()
	router.GET("/admin/inventory/report",
		mockAuthMiddleware(admin.Auth0ID, "admin", "mock-token"),
		middleware.RequireAdmin(),
		AdminInventoryReport,
	)

	w, response := doJSONRequest(t, router, http.MethodGet, "/admin/inventory/report", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].(map[string]interface{})

	products := data["products"].([]interface{})
	assert.Len(t, products, 1)
	row := products[0].(map[string]interface{})
	assert.Equal(t, float64(4), row["blocked_qty"])
	assert.Equal(t, float64(6), row["available_qty"])

	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, float64(1), summary["total_products"])
}

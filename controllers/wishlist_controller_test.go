package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amorlias/bharatbazaar-api/config"
)

func TestAddToWishlist(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createUser(t, db, "auth0|customer", "customer")
	product := createProduct(t, db, "SKU-001", 10, 500)

	router := setupTestRouter()
	router.POST("/wishlist",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		AddToWishlist,
	)

	w, response := doJSONRequest(t, router, http.MethodPost, "/wishlist",
		map[string]interface{}{"product_id": product.ID})

	assert.Equal(t, http.StatusCreated, w.Code)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(product.ID), data["product_id"])

	// Saving the same product twice is a conflict
	w, response = doJSONRequest(t, router, http.MethodPost, "/wishlist",
		map[string]interface{}{"product_id": product.ID})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "ALREADY_IN_WISHLIST", errorCode(t, response))
}

func TestAddToWishlist_UnknownProduct(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	customer := createUser(t, db, "auth0|customer", "customer")

	router := setupTestRouter()
	router.POST("/wishlist",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		AddToWishlist,
	)

	w, response := doJSONRequest(t, router, http.MethodPost, "/wishlist",
		map[string]interface{}{"product_id": 999})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorCode(t, response))
}

func TestListWishlist_OnlyOwnItems(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createUser(t, db, "auth0|customer", "customer")
	other := createUser(t, db, "auth0|other", "customer")
	product1 := createProduct(t, db, "SKU-001", 10, 500)
	product2 := createProduct(t, db, "SKU-002", 10, 700)

	router := setupTestRouter()
	router.POST("/wishlist",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		AddToWishlist,
	)
	router.GET("/wishlist",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		ListWishlist,
	)

	otherRouter := setupTestRouter()
	otherRouter.POST("/wishlist",
		mockAuthMiddleware(other.Auth0ID, "customer", "mock-token"),
		AddToWishlist,
	)

	doJSONRequest(t, router, http.MethodPost, "/wishlist",
		map[string]interface{}{"product_id": product1.ID})
	doJSONRequest(t, otherRouter, http.MethodPost, "/wishlist",
		map[string]interface{}{"product_id": product2.ID})

	w, response := doJSONRequest(t, router, http.MethodGet, "/wishlist", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	data := response["data"].([]interface{})
	assert.Len(t, data, 1)
	item := data[0].(map[string]interface{})
	assert.Equal(t, float64(product1.ID), item["product_id"])
}

func TestRemoveFromWishlist(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createUser(t, db, "auth0|customer", "customer")
	product := createProduct(t, db, "SKU-001", 10, 500)

	router := setupTestRouter()
	router.POST("/wishlist",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		AddToWishlist,
	)
	router.DELETE("/wishlist/:productId",
		mockAuthMiddleware(customer.Auth0ID, "customer", "mock-token"),
		RemoveFromWishlist,
	)

	doJSONRequest(t, router, http.MethodPost, "/wishlist",
		map[string]interface{}{"product_id": product.ID})

	w, response := doJSONRequest(t, router, http.MethodDelete,
		"/wishlist/"+itoa(product.ID), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, response["success"].(bool))

	// Removing again reports it missing
	w, response = doJSONRequest(t, router, http.MethodDelete,
		"/wishlist/"+itoa(product.ID), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_IN_WISHLIST", errorCode(t, response))
}

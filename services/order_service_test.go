package services

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/amorlias/bharatbazaar-api/models"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	// A single connection keeps the in-memory database shared between
	// transactions and serializes concurrent writers.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.Notification{},
		&models.Return{},
		&models.OrderCancellation{},
		&models.Setting{},
	); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	// Collaborators are opt-in per test
	SetCourierService(nil)
	SetRefundService(nil)
	SetNotificationPublisher(nil)

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, auth0ID, role string) *models.User {
	user := &models.User{
		Auth0ID: auth0ID,
		Name:    "Test User",
		Email:   auth0ID + "@example.com",
		Role:    role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

func createTestProduct(t *testing.T, db *gorm.DB, sku string, stock int, price float64) *models.Product {
	product := &models.Product{
		Name:              "Product " + sku,
		SKU:               sku,
		StockQty:          stock,
		LowStockThreshold: 5,
		CostPrice:         price / 2,
		SellingPrice:      price,
		IsActive:          true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("Failed to create test product: %v", err)
	}
	return product
}

func testAddress() models.ShippingAddress {
	return models.ShippingAddress{
		Name:    "Asha Verma",
		Phone:   "9876543210",
		Line1:   "14 MG Road",
		City:    "Pune",
		State:   "Maharashtra",
		Pincode: "411001",
	}
}

func placeTestOrder(t *testing.T, db *gorm.DB, user *models.User, product *models.Product, qty int, paymentMethod string) *models.Order {
	order, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: qty}},
		ShippingAddress: testAddress(),
		PaymentMethod:   paymentMethod,
	})
	if err != nil {
		t.Fatalf("Failed to place test order: %v", err)
	}
	return order
}

func TestCreateOrder_Success(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 10, 500)

	order, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "BB-"))
	assert.Equal(t, 1500.0, order.Subtotal)
	assert.Equal(t, 0.0, order.GSTAmount)
	assert.Equal(t, 1500.0, order.GrandTotal)
	assert.Len(t, order.Items, 1)
	assert.Equal(t, 500.0, order.Items[0].UnitPrice)
	assert.Nil(t, order.DeliveredAt)

	// An order-placed notification is persisted for the customer
	var notifs []models.Notification
	db.Where("user_id = ? AND type = ?", user.ID, models.NotificationOrderPlaced).Find(&notifs)
	assert.Len(t, notifs, 1)
	assert.Equal(t, order.ID, *notifs[0].OrderID)
}

func TestCreateOrder_GSTDefaultRate(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 10, 1000)

	order, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "prepaid",
		ApplyGST:        true,
	})

	assert.NoError(t, err)
	assert.Equal(t, 1000.0, order.Subtotal)
	assert.InDelta(t, 180.0, order.GSTAmount, 0.001)
	assert.InDelta(t, 1180.0, order.GrandTotal, 0.001)
}

func TestCreateOrder_GSTConfiguredRate(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 10, 1000)

	setting := models.Setting{Type: models.SettingGST, Value: models.JSONMap{"rate": 0.05}}
	assert.NoError(t, db.Create(&setting).Error)

	order, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "prepaid",
		ApplyGST:        true,
	})

	assert.NoError(t, err)
	assert.InDelta(t, 100.0, order.GSTAmount, 0.001)
	assert.InDelta(t, 2100.0, order.GrandTotal, 0.001)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 2, 500)

	_, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 3}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available)

	// Nothing was committed
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateOrder_BlockedStockReducesAvailability(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")
	other := createTestUser(t, db, "auth0|other", "customer")
	product := createTestProduct(t, db, "SKU-001", 5, 500)

	// An open pending order blocks 4 of the 5 units
	placeTestOrder(t, db, other, product, 4, "cod")

	_, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 2}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Available)
}

func TestCreateOrder_DuplicateProductLinesShareAvailability(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 5, 500)

	// Two lines for the same product draw from one pool: 3+3 against
	// stock 5 must fail even though each line alone would fit.
	_, err := CreateOrder(db, user, CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: product.ID, Quantity: 3},
			{ProductID: product.ID, Quantity: 3},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})

	var stockErr *InsufficientStockError
	assert.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 3, stockErr.Requested)
	assert.Equal(t, 2, stockErr.Available, "second line sees what the first left")

	// Nothing was committed, so nothing is blocked
	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)

	availability, err := ProductAvailability(db, product.ID)
	assert.NoError(t, err)
	assert.Equal(t, 0, availability.Blocked)

	// Within stock the same duplicate-line order goes through
	order, err := CreateOrder(db, user, CreateOrderInput{
		Items: []CreateOrderItemInput{
			{ProductID: product.ID, Quantity: 2},
			{ProductID: product.ID, Quantity: 2},
		},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})
	assert.NoError(t, err)
	assert.Len(t, order.Items, 2)

	availability, err = ProductAvailability(db, product.ID)
	assert.NoError(t, err)
	assert.Equal(t, 4, availability.Blocked)
	assert.Equal(t, 1, availability.Available)
}

func TestCreateOrder_InactiveProduct(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 10, 500)
	db.Model(product).Update("is_active", false)

	_, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})

	var validationErr *ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestCreateOrder_ProductNotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	user := createTestUser(t, db, "auth0|customer", "customer")

	_, err := CreateOrder(db, user, CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: 999, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	})

	var notFoundErr *NotFoundError
	assert.True(t, errors.As(err, &notFoundErr))
	assert.Equal(t, "product", notFoundErr.Resource)
}

func TestCreateOrder_ConcurrentLastUnit(t *testing.T) {
	db := setupServiceTestDB(t)
	user1 := createTestUser(t, db, "auth0|racer1", "customer")
	user2 := createTestUser(t, db, "auth0|racer2", "customer")
	product := createTestProduct(t, db, "SKU-001", 1, 500)

	input := CreateOrderInput{
		Items:           []CreateOrderItemInput{{ProductID: product.ID, Quantity: 1}},
		ShippingAddress: testAddress(),
		PaymentMethod:   "cod",
	}

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i, u := range []*models.User{user1, user2} {
		wg.Add(1)
		go func(idx int, user *models.User) {
			defer wg.Done()
			_, results[idx] = CreateOrder(db, user, input)
		}(i, u)
	}
	wg.Wait()

	// Exactly one checkout claims the last unit
	successes := 0
	stockErrors := 0
	for _, err := range results {
		if err == nil {
			successes++
			continue
		}
		var stockErr *InsufficientStockError
		if errors.As(err, &stockErr) {
			stockErrors++
		}
	}
	assert.Equal(t, 1, successes)
	assert.Equal(t, 1, stockErrors)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTransitionStatus(t *testing.T) {
	tests := []struct {
		name       string
		from       string
		to         string
		wantErr    string // "", "conflict", "validation"
		wantStatus string
	}{
		{name: "pending to processing", from: "pending", to: "processing", wantStatus: "processing"},
		{name: "processing to shipped", from: "processing", to: "shipped", wantStatus: "shipped"},
		{name: "shipped to delivered", from: "shipped", to: "delivered", wantStatus: "delivered"},
		{name: "skip to delivered", from: "pending", to: "delivered", wantStatus: "delivered"},
		{name: "backward move rejected", from: "shipped", to: "processing", wantErr: "conflict"},
		{name: "replay is a no-op", from: "processing", to: "processing", wantStatus: "processing"},
		{name: "cancelled is terminal", from: "cancelled", to: "processing", wantErr: "conflict"},
		{name: "returned is terminal", from: "returned", to: "delivered", wantErr: "conflict"},
		{name: "cancel goes through cancellation", from: "pending", to: "cancelled", wantErr: "conflict"},
		{name: "unknown status", from: "pending", to: "misplaced", wantErr: "validation"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := setupServiceTestDB(t)
			admin := createTestUser(t, db, "auth0|admin", "admin")
			customer := createTestUser(t, db, "auth0|customer", "customer")
			product := createTestProduct(t, db, "SKU-001", 10, 500)

			order := placeTestOrder(t, db, customer, product, 1, "cod")
			db.Model(order).Update("status", tt.from)

			updated, err := TransitionStatus(db, order.ID, tt.to, admin)

			switch tt.wantErr {
			case "conflict":
				var conflictErr *StateConflictError
				assert.True(t, errors.As(err, &conflictErr), "expected StateConflictError, got %v", err)

				var reloaded models.Order
				db.First(&reloaded, order.ID)
				assert.Equal(t, tt.from, reloaded.Status, "status must be unchanged")
			case "validation":
				var validationErr *ValidationError
				assert.True(t, errors.As(err, &validationErr), "expected ValidationError, got %v", err)
			default:
				assert.NoError(t, err)
				assert.Equal(t, tt.wantStatus, updated.Status)
			}
		})
	}
}

func TestTransitionStatus_DeliveredStampsAnchor(t *testing.T) {
	db := setupServiceTestDB(t)
	admin := createTestUser(t, db, "auth0|admin", "admin")
	customer := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 10, 500)
	order := placeTestOrder(t, db, customer, product, 1, "cod")

	updated, err := TransitionStatus(db, order.ID, models.OrderStatusDelivered, admin)

	assert.NoError(t, err)
	assert.NotNil(t, updated.DeliveredAt)

	var reloaded models.Order
	db.First(&reloaded, order.ID)
	assert.NotNil(t, reloaded.DeliveredAt)
}

func TestTransitionStatus_ReplayEmitsNoNotification(t *testing.T) {
	db := setupServiceTestDB(t)
	admin := createTestUser(t, db, "auth0|admin", "admin")
	customer := createTestUser(t, db, "auth0|customer", "customer")
	product := createTestProduct(t, db, "SKU-001", 10, 500)
	order := placeTestOrder(t, db, customer, product, 1, "cod")

	_, err := TransitionStatus(db, order.ID, models.OrderStatusProcessing, admin)
	assert.NoError(t, err)
	_, err = TransitionStatus(db, order.ID, models.OrderStatusProcessing, admin)
	assert.NoError(t, err)

	var count int64
	db.Model(&models.Notification{}).
		Where("type = ?", models.NotificationOrderStatus).
		Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestTransitionStatus_OrderNotFound(t *testing.T) {
	db := setupServiceTestDB(t)
	admin := createTestUser(t, db, "auth0|admin", "admin")

	_, err := TransitionStatus(db, 999, models.OrderStatusProcessing, admin)

	var notFoundErr *NotFoundError
	assert.True(t, errors.As(err, &notFoundErr))
}

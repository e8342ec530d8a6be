package services

import (
	"errors"

	"gorm.io/gorm"

	"github.com/amorlias/bharatbazaar-api/models"
)

// Stock statuses derived from total and available quantities
const (
	StockStatusOutOfStock  = "out_of_stock"
	StockStatusLowStock    = "low_stock"
	StockStatusReservedLow = "reserved_low"
	StockStatusInStock     = "in_stock"
)

// Availability is the derived inventory view for one product. Blocked
// quantity is recomputed from open orders on every read; nothing is
// denormalized, so it can never drift from order state.
type Availability struct {
	ProductID uint   `json:"product_id"`
	Total     int    `json:"total"`
	Blocked   int    `json:"blocked"`
	Available int    `json:"available"`
	Status    string `json:"status"`
}

// InventoryReportRow is one product's line in the admin inventory report
type InventoryReportRow struct {
	ProductID         uint    `json:"product_id"`
	ProductName       string  `json:"product_name"`
	SKU               string  `json:"sku"`
	CategoryName      string  `json:"category_name"`
	TotalStock        int     `json:"total_stock"`
	BlockedQty        int     `json:"blocked_qty"`
	AvailableQty      int     `json:"available_qty"`
	LowStockThreshold int     `json:"low_stock_threshold"`
	StockStatus       string  `json:"stock_status"`
	SellingPrice      float64 `json:"selling_price"`
	CostPrice         float64 `json:"cost_price"`
	StockValue        float64 `json:"stock_value"`
	AvailableValue    float64 `json:"available_value"`
}

// InventoryReportSummary aggregates the report rows
type InventoryReportSummary struct {
	TotalProducts       int     `json:"total_products"`
	TotalStockValue     float64 `json:"total_stock_value"`
	TotalAvailableValue float64 `json:"total_available_value"`
	TotalBlockedValue   float64 `json:"total_blocked_value"`
	OutOfStockCount     int     `json:"out_of_stock_count"`
	LowStockCount       int     `json:"low_stock_count"`
	InStockCount        int     `json:"in_stock_count"`
}

// InventoryReport is the full admin inventory status report
type InventoryReport struct {
	Products []InventoryReportRow   `json:"products"`
	Summary  InventoryReportSummary `json:"summary"`
}

// blockedQuantity sums the quantity of a product held by orders that are
// still pending or processing. Must run inside the caller's transaction
// when the result feeds a stock commit.
func blockedQuantity(tx *gorm.DB, productID uint) (int, error) {
	var blocked int64
	err := tx.Model(&models.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ?", productID).
		Where("orders.status IN ?", []string{models.OrderStatusPending, models.OrderStatusProcessing}).
		Where("orders.deleted_at IS NULL").
		Scan(&blocked).Error
	if err != nil {
		return 0, err
	}
	return int(blocked), nil
}

// stockStatus derives the reporting status by priority: a product with no
// stock at all is out_of_stock regardless of reservations.
func stockStatus(total, available, threshold int) string {
	switch {
	case total <= 0:
		return StockStatusOutOfStock
	case total <= threshold:
		return StockStatusLowStock
	case available <= threshold:
		return StockStatusReservedLow
	default:
		return StockStatusInStock
	}
}

// ProductAvailability computes the availability view for one product.
func ProductAvailability(db *gorm.DB, productID uint) (*Availability, error) {
	var result *Availability
	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &NotFoundError{Resource: "product", Message: "Product not found"}
			}
			return err
		}

		blocked, err := blockedQuantity(tx, product.ID)
		if err != nil {
			return err
		}

		available := product.StockQty - blocked
		if available < 0 {
			available = 0
		}

		result = &Availability{
			ProductID: product.ID,
			Total:     product.StockQty,
			Blocked:   blocked,
			Available: available,
			Status:    stockStatus(product.StockQty, available, product.LowStockThreshold),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// BuildInventoryReport computes the availability view for every active
// product plus summary totals. Runs in a single transaction so the report
// is a consistent snapshot.
func BuildInventoryReport(db *gorm.DB) (*InventoryReport, error) {
	report := &InventoryReport{Products: []InventoryReportRow{}}

	err := db.Transaction(func(tx *gorm.DB) error {
		var products []models.Product
		if err := tx.Preload("Category").Where("is_active = ?", true).Order("name ASC").Find(&products).Error; err != nil {
			return err
		}

		for _, product := range products {
			blocked, err := blockedQuantity(tx, product.ID)
			if err != nil {
				return err
			}

			available := product.StockQty - blocked
			if available < 0 {
				available = 0
			}

			categoryName := "Uncategorized"
			if product.Category != nil {
				categoryName = product.Category.Name
			}

			status := stockStatus(product.StockQty, available, product.LowStockThreshold)
			row := InventoryReportRow{
				ProductID:         product.ID,
				ProductName:       product.Name,
				SKU:               product.SKU,
				CategoryName:      categoryName,
				TotalStock:        product.StockQty,
				BlockedQty:        blocked,
				AvailableQty:      available,
				LowStockThreshold: product.LowStockThreshold,
				StockStatus:       status,
				SellingPrice:      product.SellingPrice,
				CostPrice:         product.CostPrice,
				StockValue:        float64(product.StockQty) * product.CostPrice,
				AvailableValue:    float64(available) * product.CostPrice,
			}
			report.Products = append(report.Products, row)

			report.Summary.TotalStockValue += row.StockValue
			report.Summary.TotalAvailableValue += row.AvailableValue
			switch status {
			case StockStatusOutOfStock:
				report.Summary.OutOfStockCount++
			case StockStatusLowStock, StockStatusReservedLow:
				report.Summary.LowStockCount++
			default:
				report.Summary.InStockCount++
			}
		}

		report.Summary.TotalProducts = len(report.Products)
		report.Summary.TotalBlockedValue = report.Summary.TotalStockValue - report.Summary.TotalAvailableValue
		return nil
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

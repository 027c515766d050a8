package domain

import "github.com/shopspring/decimal"

// DashboardStats are the figures on the back-office landing page.
type DashboardStats struct {
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalOrders        int64           `json:"total_orders"`
	Customers          int64           `json:"customers"`
	ActiveProducts     int64           `json:"active_products"`
	OutOfStockProducts int64           `json:"out_of_stock_products"`
}

// SalesTotals is the event-fed part of DashboardStats.
type SalesTotals struct {
	Revenue   decimal.Decimal
	Orders    int64
	Customers int64
}

// ProductCounts is the database-fed part of DashboardStats.
type ProductCounts struct {
	Active     int64
	OutOfStock int64
}

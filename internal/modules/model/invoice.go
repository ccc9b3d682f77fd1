package model

type Invoice struct {
	ID             int    `json:"id"`
	ServiceRequest int    `json:"service_request"`
	TotalCost      string `json:"total_cost"`
	Paid           bool   `json:"paid"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}

type Product struct {
	ID            int    `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku,omitempty"`
	Category      string `json:"category"`
	Brand         string `json:"brand,omitempty"`
	PartNumber    string `json:"part_number,omitempty"`
	UnitPrice     string `json:"unit_price"`
	CostPrice     string `json:"cost_price,omitempty"`
	UnitOfMeasure string `json:"unit_of_measure,omitempty"`
	IsActive      bool   `json:"is_active"`
}

type InventoryItem struct {
	ID             int  `json:"id"`
	Product        int  `json:"product"`
	Site           int  `json:"site,omitempty"`
	Quantity       int  `json:"quantity"`
	ReorderLevel   int  `json:"reorder_level,omitempty"`
	RestrictedEdit bool `json:"restricted_edit"`
}

type Promotion struct {
	ID              int    `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	DiscountPercent string `json:"discount_percent,omitempty"`
	DiscountAmount  string `json:"discount_amount,omitempty"`
}

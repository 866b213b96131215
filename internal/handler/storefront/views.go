package storefront

import (
	"fmt"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

// formatFils renders an amount of fils as a customer-facing KWD string,
// e.g. 12500 becomes "12.500 KD".
func formatFils(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%03d KD", sign, amount/1000, amount%1000)
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	b := id.Bytes
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

type productView struct {
	ID              string `json:"id"`
	SKU             string `json:"sku"`
	Slug            string `json:"slug"`
	Name            string `json:"name"`
	Brand           string `json:"brand,omitempty"`
	PriceFils       int64  `json:"price_fils"`
	Price           string `json:"price"`
	SalePriceFils   int64  `json:"sale_price_fils,omitempty"`
	SalePrice       string `json:"sale_price,omitempty"`
	DiscountPercent int64  `json:"discount_percent,omitempty"`
	IsFeatured      bool   `json:"is_featured"`
	StockStatus     string `json:"stock_status"`
}

func newProductView(p *domain.Product, status domain.StockStatus) productView {
	v := productView{
		ID:          uuidString(p.ID),
		SKU:         p.SKU,
		Slug:        p.Slug,
		Name:        p.Name,
		Brand:       p.Brand,
		PriceFils:   p.PriceFils,
		Price:       formatFils(p.PriceFils),
		IsFeatured:  p.IsFeatured,
		StockStatus: string(status),
	}
	if p.IsOnSale() {
		v.SalePriceFils = p.SalePriceFils.Int64
		v.SalePrice = formatFils(p.SalePriceFils.Int64)
		v.DiscountPercent = p.DiscountPercent()
	}
	return v
}

type productDetailView struct {
	productView
	Description string `json:"description,omitempty"`
	InStock     int32  `json:"in_stock"`
}

func newProductDetailView(d *domain.ProductDetail) productDetailView {
	v := productDetailView{
		productView: newProductView(&d.Product, d.StockStatus),
		Description: d.Product.Description,
	}
	if d.Inventory != nil {
		v.InStock = d.Inventory.Quantity
	}
	return v
}

type cartLineView struct {
	ItemID        string `json:"item_id"`
	Product       productView `json:"product"`
	Quantity      int32  `json:"quantity"`
	UnitPriceFils int64  `json:"unit_price_fils"`
	UnitPrice     string `json:"unit_price"`
	LineTotalFils int64  `json:"line_total_fils"`
	LineTotal     string `json:"line_total"`
}

type cartView struct {
	Lines        []cartLineView `json:"lines"`
	ItemCount    int32          `json:"item_count"`
	SubtotalFils int64          `json:"subtotal_fils"`
	Subtotal     string         `json:"subtotal"`
}

func newCartView(summary *domain.CartSummary) cartView {
	view := cartView{
		Lines:        make([]cartLineView, 0, len(summary.Lines)),
		ItemCount:    summary.ItemCount,
		SubtotalFils: summary.SubtotalFils,
		Subtotal:     formatFils(summary.SubtotalFils),
	}
	for _, line := range summary.Lines {
		view.Lines = append(view.Lines, cartLineView{
			ItemID:        uuidString(line.Item.ID),
			Product:       newProductView(&line.Product, line.StockStatus),
			Quantity:      line.Item.Quantity,
			UnitPriceFils: line.UnitPriceFils,
			UnitPrice:     formatFils(line.UnitPriceFils),
			LineTotalFils: line.LineTotalFils,
			LineTotal:     formatFils(line.LineTotalFils),
		})
	}
	return view
}

type orderItemView struct {
	ProductName    string `json:"product_name"`
	ProductSKU     string `json:"product_sku"`
	Quantity       int32  `json:"quantity"`
	UnitPriceFils  int64  `json:"unit_price_fils"`
	UnitPrice      string `json:"unit_price"`
	TotalPriceFils int64  `json:"total_price_fils"`
	TotalPrice     string `json:"total_price"`
}

type orderView struct {
	ID            string `json:"id"`
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	SubtotalFils  int64  `json:"subtotal_fils"`
	ShippingFils  int64  `json:"shipping_fils"`
	TotalFils     int64  `json:"total_fils"`
	Total         string `json:"total"`
	Currency      string `json:"currency"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func newOrderView(o *domain.Order) orderView {
	v := orderView{
		ID:            uuidString(o.ID),
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		SubtotalFils:  o.SubtotalFils,
		ShippingFils:  o.ShippingFils,
		TotalFils:     o.TotalFils,
		Total:         formatFils(o.TotalFils),
		Currency:      o.Currency,
	}
	if o.CreatedAt.Valid {
		v.CreatedAt = o.CreatedAt.Time.UTC().Format("2006-01-02T15:04:05Z")
	}
	return v
}

type orderDetailView struct {
	orderView
	ShippingName    string          `json:"shipping_name"`
	ShippingPhone   string          `json:"shipping_phone"`
	ShippingLine1   string          `json:"shipping_line1"`
	ShippingLine2   string          `json:"shipping_line2,omitempty"`
	ShippingCity    string          `json:"shipping_city"`
	ShippingCountry string          `json:"shipping_country"`
	Notes           string          `json:"notes,omitempty"`
	Items           []orderItemView `json:"items"`
}

func newOrderDetailView(d *domain.OrderDetail) orderDetailView {
	view := orderDetailView{
		orderView:       newOrderView(&d.Order),
		ShippingName:    d.Order.ShippingName,
		ShippingPhone:   d.Order.ShippingPhone,
		ShippingLine1:   d.Order.ShippingLine1,
		ShippingCity:    d.Order.ShippingCity,
		ShippingCountry: d.Order.ShippingCountry,
		Items:           make([]orderItemView, 0, len(d.Items)),
	}
	if d.Order.ShippingLine2.Valid {
		view.ShippingLine2 = d.Order.ShippingLine2.String
	}
	if d.Order.Notes.Valid {
		view.Notes = d.Order.Notes.String
	}
	for _, item := range d.Items {
		view.Items = append(view.Items, orderItemView{
			ProductName:    item.ProductName,
			ProductSKU:     item.ProductSKU,
			Quantity:       item.Quantity,
			UnitPriceFils:  item.UnitPriceFils,
			UnitPrice:      formatFils(item.UnitPriceFils),
			TotalPriceFils: item.TotalPriceFils,
			TotalPrice:     formatFils(item.TotalPriceFils),
		})
	}
	return view
}

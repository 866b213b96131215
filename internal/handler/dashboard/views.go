package dashboard

import (
	"fmt"

	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

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

type orderRowView struct {
	ID            string `json:"id"`
	OrderNumber   string `json:"order_number"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	TotalFils     int64  `json:"total_fils"`
	Total         string `json:"total"`
	ShippingName  string `json:"shipping_name"`
	CustomerEmail string `json:"customer_email"`
	CreatedAt     string `json:"created_at,omitempty"`
}

func newOrderRowView(o *domain.Order) orderRowView {
	v := orderRowView{
		ID:            uuidString(o.ID),
		OrderNumber:   o.OrderNumber,
		Status:        string(o.Status),
		PaymentStatus: string(o.PaymentStatus),
		TotalFils:     o.TotalFils,
		Total:         formatFils(o.TotalFils),
		ShippingName:  o.ShippingName,
		CustomerEmail: o.CustomerEmail,
	}
	if o.CreatedAt.Valid {
		v.CreatedAt = o.CreatedAt.Time.UTC().Format("2006-01-02T15:04:05Z")
	}
	return v
}

type paymentView struct {
	ID           string `json:"id"`
	IntentID     string `json:"intent_id"`
	ChargeID     string `json:"charge_id,omitempty"`
	AmountFils   int64  `json:"amount_fils"`
	Amount       string `json:"amount"`
	State        string `json:"state"`
	ErrorMessage string `json:"error_message,omitempty"`
	PaidAt       string `json:"paid_at,omitempty"`
}

func newPaymentView(p *domain.Payment) paymentView {
	v := paymentView{
		ID:         uuidString(p.ID),
		IntentID:   p.ProviderIntentID,
		AmountFils: p.AmountFils,
		Amount:     formatFils(p.AmountFils),
		State:      string(p.State),
	}
	if p.ProviderChargeID.Valid {
		v.ChargeID = p.ProviderChargeID.String
	}
	if p.ErrorMessage.Valid {
		v.ErrorMessage = p.ErrorMessage.String
	}
	if p.PaidAt.Valid {
		v.PaidAt = p.PaidAt.Time.UTC().Format("2006-01-02T15:04:05Z")
	}
	return v
}

type inventoryRowView struct {
	ProductID         string `json:"product_id"`
	ProductName       string `json:"product_name"`
	ProductSKU        string `json:"product_sku"`
	Quantity          int32  `json:"quantity"`
	LowStockThreshold int32  `json:"low_stock_threshold"`
	Status            string `json:"status"`
}

func newInventoryRowView(level *domain.InventoryLevel) inventoryRowView {
	return inventoryRowView{
		ProductID:         uuidString(level.Item.ProductID),
		ProductName:       level.ProductName,
		ProductSKU:        level.ProductSKU,
		Quantity:          level.Item.Quantity,
		LowStockThreshold: level.Item.LowStockThreshold,
		Status:            string(level.Status),
	}
}

package email

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/gulfemperor/storefront/internal/domain"
)

// Service composes and sends the store's transactional emails. Sends are
// best-effort: callers log failures and continue, an undelivered receipt
// must never fail an order transition.
type Service struct {
	sender      Sender
	logger      *slog.Logger
	fromAddress string
	fromName    string
	storeName   string
}

// NewService creates a new email service.
func NewService(sender Sender, logger *slog.Logger, fromAddress, fromName, storeName string) *Service {
	return &Service{
		sender:      sender,
		logger:      logger,
		fromAddress: fromAddress,
		fromName:    fromName,
		storeName:   storeName,
	}
}

// SendOrderConfirmation emails the customer after their payment succeeds.
func (s *Service) SendOrderConfirmation(ctx context.Context, to string, order *domain.Order, items []domain.OrderItem) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Thank you for your order at %s.\n\n", s.storeName)
	fmt.Fprintf(&b, "Order %s has been confirmed and is being prepared.\n\n", order.OrderNumber)
	b.WriteString("Items:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  %dx %s (%s) - %s\n",
			item.Quantity, item.ProductName, item.ProductSKU, formatFils(item.TotalPriceFils))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Subtotal: %s\n", formatFils(order.SubtotalFils))
	fmt.Fprintf(&b, "Shipping: %s\n", formatFils(order.ShippingFils))
	fmt.Fprintf(&b, "Total:    %s\n", formatFils(order.TotalFils))

	return s.send(ctx, to,
		fmt.Sprintf("Order %s confirmed", order.OrderNumber), b.String())
}

// SendPaymentFailed emails the customer after a declined payment so they
// can retry with another card.
func (s *Service) SendPaymentFailed(ctx context.Context, to string, order *domain.Order, reason string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Payment for order %s at %s could not be completed.\n\n",
		order.OrderNumber, s.storeName)
	if reason != "" {
		fmt.Fprintf(&b, "Reason: %s\n\n", reason)
	}
	b.WriteString("No charge was made. Please try again with a different payment method.\n")

	return s.send(ctx, to,
		fmt.Sprintf("Payment failed for order %s", order.OrderNumber), b.String())
}

// SendRefundConfirmation emails the customer after a refund is processed.
func (s *Service) SendRefundConfirmation(ctx context.Context, to string, order *domain.Order) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Your payment of %s for order %s at %s has been refunded.\n\n",
		formatFils(order.TotalFils), order.OrderNumber, s.storeName)
	b.WriteString("Refunds typically appear on your statement within 5-10 business days.\n")

	return s.send(ctx, to,
		fmt.Sprintf("Refund processed for order %s", order.OrderNumber), b.String())
}

func (s *Service) send(ctx context.Context, to, subject, body string) error {
	if to == "" {
		return ErrInvalidToAddress
	}

	msg := &Email{
		To:       []string{to},
		From:     fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress),
		Subject:  subject,
		TextBody: body,
	}

	if _, err := s.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send %q: %w", subject, err)
	}

	s.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// formatFils renders an amount in fils as Kuwaiti dinars. KWD carries
// three decimal places.
func formatFils(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%03d KD", sign, amount/1000, amount%1000)
}

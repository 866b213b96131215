package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gulfemperor/storefront/internal/billing"
	"github.com/gulfemperor/storefront/internal/domain"
	"github.com/gulfemperor/storefront/internal/telemetry"
	"github.com/jackc/pgx/v5/pgtype"
)

// CheckoutConfig carries the store-level pricing knobs applied at checkout.
type CheckoutConfig struct {
	StoreName        string
	Currency         string
	ShippingFlatFils int64
}

type checkoutService struct {
	store    Store
	carts    domain.CartService
	billing  billing.Provider
	validate *validator.Validate
	logger   *slog.Logger
	config   CheckoutConfig
}

// NewCheckoutService creates the checkout orchestrator.
func NewCheckoutService(store Store, carts domain.CartService, provider billing.Provider, logger *slog.Logger, config CheckoutConfig) domain.CheckoutService {
	return &checkoutService{
		store:    store,
		carts:    carts,
		billing:  provider,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
		config:   config,
	}
}

// Checkout converts the shopper's cart into a pending order.
//
// The gateway payment intent is created before the database transaction
// opens: a failed intent leaves no order artifacts behind, and a failed
// transaction cancels the intent best-effort. The order, item snapshots
// and pending payment row are committed atomically with the cart clear.
func (s *checkoutService) Checkout(ctx context.Context, identity domain.CartIdentity, req domain.CheckoutRequest) (*domain.CheckoutResult, error) {
	const op = "checkout.checkout"

	if telemetry.Business != nil {
		telemetry.Business.CheckoutStarted.Inc()
	}

	if err := s.validateRequest(op, req); err != nil {
		s.trackFailure("validation")
		return nil, err
	}

	summary, err := s.carts.GetCartSummary(ctx, identity)
	if err != nil {
		return nil, err
	}
	if summary.IsEmpty() {
		s.trackFailure("empty_cart")
		return nil, domain.ErrCartEmpty
	}

	// Re-check live stock for every line before touching the gateway.
	if err := s.checkStock(ctx, summary); err != nil {
		s.trackFailure("stock")
		return nil, err
	}

	email, err := s.resolveEmail(ctx, identity, req)
	if err != nil {
		return nil, err
	}

	order := s.buildOrder(identity, req, summary, email)

	gatewayStart := time.Now()
	intent, err := s.billing.CreatePaymentIntent(ctx, billing.CreatePaymentIntentParams{
		AmountMinor:  order.TotalFils,
		Currency:     order.Currency,
		Description:  fmt.Sprintf("%s order %s", s.config.StoreName, order.OrderNumber),
		ReceiptEmail: email,
		Metadata: map[string]string{
			"order_number": order.OrderNumber,
		},
		IdempotencyKey: "checkout-" + order.OrderNumber,
	})
	observeGatewayLatency("create_payment_intent", gatewayStart)
	if err != nil {
		s.trackFailure("gateway")
		return nil, domain.WrapError(err, domain.EPAYMENT, op, "Payment could not be initiated")
	}

	err = s.store.WithTx(ctx, func(tx Store) error {
		if err := tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		for _, line := range summary.Lines {
			item := domain.OrderItem{
				OrderID:        order.ID,
				ProductID:      line.Product.ID,
				ProductName:    line.Product.Name,
				ProductSKU:     line.Product.SKU,
				Quantity:       line.Item.Quantity,
				UnitPriceFils:  line.UnitPriceFils,
				TotalPriceFils: line.LineTotalFils,
			}
			if err := tx.InsertOrderItem(ctx, &item); err != nil {
				return err
			}
		}

		payment := domain.Payment{
			OrderID:          order.ID,
			ProviderIntentID: intent.ID,
			AmountFils:       order.TotalFils,
			Currency:         order.Currency,
			State:            domain.PaymentStatePending,
			Metadata: map[string]string{
				"order_number": order.OrderNumber,
			},
		}
		if err := tx.InsertPayment(ctx, &payment); err != nil {
			return err
		}

		return tx.ClearCart(ctx, summary.Cart.ID)
	})
	if err != nil {
		s.trackFailure("persistence")
		s.cancelIntent(ctx, intent.ID)
		return nil, err
	}

	if telemetry.Business != nil {
		telemetry.Business.CheckoutCompleted.Inc()
		telemetry.Business.OrdersCreated.Inc()
		telemetry.Business.OrderValue.Observe(float64(order.TotalFils))
		telemetry.Business.OrderItemCount.Observe(float64(len(summary.Lines)))
	}

	s.logger.Info("checkout completed",
		"order_number", order.OrderNumber,
		"order_id", order.ID,
		"total_fils", order.TotalFils,
		"payment_intent", intent.ID,
	)

	return &domain.CheckoutResult{
		Order:        *order,
		ClientSecret: intent.ClientSecret,
	}, nil
}

func (s *checkoutService) validateRequest(op string, req domain.CheckoutRequest) error {
	err := s.validate.Struct(req)
	if err == nil {
		return nil
	}

	var invalid validator.ValidationErrors
	if errors.As(err, &invalid) {
		var ve error
		for _, fieldErr := range invalid {
			ve = domain.AddFieldError(ve, fieldErr.Field(), validationMessage(fieldErr))
		}
		return ve
	}
	return domain.Invalid(op, "Invalid checkout request")
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return fmt.Sprintf("Must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters", fe.Param())
	case "len":
		return fmt.Sprintf("Must be exactly %s characters", fe.Param())
	default:
		return "Invalid value"
	}
}

func (s *checkoutService) checkStock(ctx context.Context, summary *domain.CartSummary) error {
	var shortages []domain.StockShortage
	for _, line := range summary.Lines {
		inv, err := s.store.GetInventoryByProductID(ctx, line.Product.ID)
		if errors.Is(err, domain.ErrInventoryNotFound) {
			shortages = append(shortages, domain.StockShortage{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				Requested:   line.Item.Quantity,
			})
			continue
		}
		if err != nil {
			return err
		}
		if inv.Quantity < line.Item.Quantity {
			shortages = append(shortages, domain.StockShortage{
				ProductID:   line.Product.ID,
				ProductName: line.Product.Name,
				Requested:   line.Item.Quantity,
				Available:   inv.Quantity,
			})
		}
	}

	if len(shortages) > 0 {
		return &domain.ErrStockShortage{Shortages: shortages}
	}
	return nil
}

// resolveEmail picks the confirmation address: explicit request email wins,
// authenticated shoppers fall back to their account email, guests must
// provide one.
func (s *checkoutService) resolveEmail(ctx context.Context, identity domain.CartIdentity, req domain.CheckoutRequest) (string, error) {
	if req.Email != "" {
		return req.Email, nil
	}
	if identity.IsAuthenticated() {
		user, err := s.store.GetUserByID(ctx, identity.UserID)
		if err != nil {
			return "", err
		}
		return user.Email, nil
	}
	return "", domain.NewValidationError("checkout.checkout", "email", "Email is required for guest checkout")
}

func (s *checkoutService) buildOrder(identity domain.CartIdentity, req domain.CheckoutRequest, summary *domain.CartSummary, email string) *domain.Order {
	order := &domain.Order{
		UserID:          identity.UserID,
		CustomerEmail:   email,
		OrderNumber:     domain.GenerateOrderNumber(time.Now().UTC()),
		Status:          domain.OrderStatusPending,
		PaymentStatus:   domain.PaymentStatusPending,
		SubtotalFils:    summary.SubtotalFils,
		ShippingFils:    s.config.ShippingFlatFils,
		TotalFils:       summary.SubtotalFils + s.config.ShippingFlatFils,
		Currency:        s.config.Currency,
		ShippingName:    req.FullName,
		ShippingPhone:   req.Phone,
		ShippingLine1:   req.Line1,
		ShippingCity:    req.City,
		ShippingCountry: strings.ToUpper(req.Country),
	}
	if req.Line2 != "" {
		order.ShippingLine2 = pgtype.Text{String: req.Line2, Valid: true}
	}
	if req.Notes != "" {
		order.Notes = pgtype.Text{String: req.Notes, Valid: true}
	}
	return order
}

func observeGatewayLatency(operation string, start time.Time) {
	if telemetry.Business != nil {
		telemetry.Business.StripeAPILatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

func (s *checkoutService) cancelIntent(ctx context.Context, intentID string) {
	start := time.Now()
	err := s.billing.CancelPaymentIntent(ctx, intentID)
	observeGatewayLatency("cancel_payment_intent", start)
	if err != nil {
		// The intent will expire unconfirmed; reconciliation catches it.
		s.logger.Error("failed to cancel payment intent after checkout failure",
			"payment_intent", intentID,
			"error", err,
		)
	}
}

func (s *checkoutService) trackFailure(reason string) {
	if telemetry.Business != nil {
		telemetry.Business.CheckoutFailed.WithLabelValues(reason).Inc()
	}
}

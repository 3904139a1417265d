// Package checkout prices carts and records them as paid orders.
package checkout

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	"github.com/xenking/storefront/internal/docstore"
	"github.com/xenking/storefront/internal/schema"
)

// Creator persists a validated entity.
type Creator interface {
	Create(ctx context.Context, entity schema.Entity) (docstore.ID, error)
}

// Request is a checkout submission. Prices are taken as given.
type Request struct {
	Items []schema.OrderItemInput
	Email string
	Notes *string
}

// Result describes a recorded order.
type Result struct {
	OrderID string
	Status  schema.OrderStatus
	Total   float64
	Quote   Quote
}

// Service records checkouts.
type Service struct {
	orders Creator

	placed metric.Int64Counter
	totals metric.Float64Histogram
}

// Option configures a Service.
type Option func(*options)

type options struct {
	meterProvider metric.MeterProvider
}

// WithMeterProvider sets the provider for checkout metrics.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(o *options) {
		o.meterProvider = mp
	}
}

// NewService creates a checkout Service writing orders through orders.
func NewService(orders Creator, opts ...Option) (*Service, error) {
	o := options{meterProvider: otel.GetMeterProvider()}
	for _, opt := range opts {
		opt(&o)
	}
	meter := o.meterProvider.Meter("github.com/xenking/storefront/internal/domain/checkout")

	placed, err := meter.Int64Counter("checkout.orders",
		metric.WithDescription("Orders recorded by checkout"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create orders counter")
	}
	totals, err := meter.Float64Histogram("checkout.order.total",
		metric.WithDescription("Order totals including tax"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create totals histogram")
	}

	return &Service{orders: orders, placed: placed, totals: totals}, nil
}

// Checkout validates the items, prices them and stores a paid order. No
// catalog lookup or stock change takes place.
func (s *Service) Checkout(ctx context.Context, req Request) (*Result, error) {
	items := make([]schema.OrderItem, 0, len(req.Items))
	for _, in := range req.Items {
		it, err := schema.NewOrderItem(in)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	q := Price(items)
	order, err := schema.NewOrder(schema.OrderInput{
		Items:    items,
		Subtotal: q.Subtotal.InexactFloat64(),
		Tax:      q.Tax.InexactFloat64(),
		Total:    q.Total.InexactFloat64(),
		Email:    req.Email,
		Status:   schema.Ptr(schema.StatusPaid),
		Notes:    req.Notes,
	})
	if err != nil {
		return nil, err
	}

	id, err := s.orders.Create(ctx, order)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}

	s.placed.Add(ctx, 1)
	s.totals.Record(ctx, order.Total)
	zctx.From(ctx).Debug("Order recorded",
		zap.String("order_id", id.String()),
		zap.Int("items", len(items)),
		zap.Stringer("total", q.Total),
	)

	return &Result{
		OrderID: id.String(),
		Status:  order.Status,
		Total:   order.Total,
		Quote:   q,
	}, nil
}

package schema

// OrderStatus is the lifecycle state recorded on an order.
type OrderStatus string

const (
	StatusPaid    OrderStatus = "paid"
	StatusFailed  OrderStatus = "failed"
	StatusPending OrderStatus = "pending"
)

const (
	DefaultQuantity = 1
	DefaultStatus   = StatusPaid
)

// OrderItem is a cart line embedded in an order. ProductID is not checked
// against the catalog.
type OrderItem struct {
	ProductID string  `bson:"product_id"`
	Title     string  `bson:"title"`
	Price     float64 `bson:"price" validate:"finite,gte=0"`
	Quantity  int     `bson:"quantity" validate:"gte=1"`
	Thumbnail *string `bson:"thumbnail" validate:"omitempty,http_url"`
}

// OrderItemInput is the partial form of an OrderItem.
type OrderItemInput struct {
	ProductID string
	Title     string
	Price     float64
	Quantity  *int
	Thumbnail *string
}

// NewOrderItem fills the default quantity and validates the item.
func NewOrderItem(in OrderItemInput) (OrderItem, error) {
	it := OrderItem{
		ProductID: in.ProductID,
		Title:     in.Title,
		Price:     in.Price,
		Quantity:  valueOr(in.Quantity, DefaultQuantity),
		Thumbnail: in.Thumbnail,
	}
	if err := ValidateStruct(it); err != nil {
		return OrderItem{}, err
	}
	return it, nil
}

// Order is a placed order as stored in the "order" collection. Subtotal, Tax
// and Total are derived by the checkout engine.
type Order struct {
	Items    []OrderItem `bson:"items" validate:"dive"`
	Subtotal float64     `bson:"subtotal" validate:"finite,gte=0"`
	Tax      float64     `bson:"tax" validate:"finite,gte=0"`
	Total    float64     `bson:"total" validate:"finite,gte=0"`
	Email    string      `bson:"email"`
	Status   OrderStatus `bson:"status" validate:"oneof=paid failed pending"`
	Notes    *string     `bson:"notes"`
}

// OrderInput is the partial form of an Order.
type OrderInput struct {
	Items    []OrderItem
	Subtotal float64
	Tax      float64
	Total    float64
	Email    string
	Status   *OrderStatus
	Notes    *string
}

// NewOrder fills the default status and validates the order.
func NewOrder(in OrderInput) (Order, error) {
	o := Order{
		Items:    orEmpty(in.Items),
		Subtotal: in.Subtotal,
		Tax:      in.Tax,
		Total:    in.Total,
		Email:    in.Email,
		Status:   valueOr(in.Status, DefaultStatus),
		Notes:    in.Notes,
	}
	if err := Validate(o); err != nil {
		return Order{}, err
	}
	return o, nil
}

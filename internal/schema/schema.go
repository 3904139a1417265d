// Package schema defines the document models persisted by the storefront and
// the validation rules applied to them before they reach the document store.
package schema

// Collection is the key of a logical document collection.
type Collection string

// Collection keys, one per entity variant.
const (
	ProductCollection Collection = "product"
	OrderCollection   Collection = "order"
	UserCollection    Collection = "user"
)

// Entity is implemented by every persisted model. The set is closed.
type Entity interface {
	entity()
}

func (Product) entity() {}
func (Order) entity()   {}
func (User) entity()    {}

// CollectionOf returns the collection key the entity is stored under.
func CollectionOf(e Entity) Collection {
	switch e.(type) {
	case Product, *Product:
		return ProductCollection
	case Order, *Order:
		return OrderCollection
	case User, *User:
		return UserCollection
	default:
		panic("schema: unknown entity type")
	}
}

// Ptr returns a pointer to v. Handy for optional constructor inputs.
func Ptr[T any](v T) *T {
	return &v
}

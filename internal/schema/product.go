package schema

// Product defaults applied when the corresponding input is nil.
const (
	DefaultInStock   = true
	DefaultInventory = 10
	DefaultFeatured  = false
	DefaultRating    = 4.6
)

// Product is a catalog item as stored in the "product" collection.
type Product struct {
	Title       string            `bson:"title" validate:"required"`
	Description *string           `bson:"description"`
	Price       float64           `bson:"price" validate:"finite,gte=0"`
	Category    string            `bson:"category" validate:"required"`
	Images      []string          `bson:"images" validate:"dive,http_url"`
	Thumbnail   *string           `bson:"thumbnail" validate:"omitempty,http_url"`
	Tags        []string          `bson:"tags"`
	Specs       map[string]string `bson:"specs"`
	InStock     bool              `bson:"in_stock"`
	Inventory   int               `bson:"inventory" validate:"gte=0"`
	Featured    bool              `bson:"featured"`
	Rating      float64           `bson:"rating" validate:"gte=0,lte=5"`
}

// ProductInput is the partial form of a Product. Nil pointers take the
// field default.
type ProductInput struct {
	Title       string
	Description *string
	Price       float64
	Category    string
	Images      []string
	Thumbnail   *string
	Tags        []string
	Specs       map[string]string
	InStock     *bool
	Inventory   *int
	Featured    *bool
	Rating      *float64
}

// NewProduct fills defaults and validates the result.
func NewProduct(in ProductInput) (Product, error) {
	p := Product{
		Title:       in.Title,
		Description: in.Description,
		Price:       in.Price,
		Category:    in.Category,
		Images:      orEmpty(in.Images),
		Thumbnail:   in.Thumbnail,
		Tags:        orEmpty(in.Tags),
		Specs:       in.Specs,
		InStock:     valueOr(in.InStock, DefaultInStock),
		Inventory:   valueOr(in.Inventory, DefaultInventory),
		Featured:    valueOr(in.Featured, DefaultFeatured),
		Rating:      valueOr(in.Rating, DefaultRating),
	}
	if p.Specs == nil {
		p.Specs = map[string]string{}
	}
	if err := Validate(p); err != nil {
		return Product{}, err
	}
	return p, nil
}

func valueOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

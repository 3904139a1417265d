package importer

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/schema"
)

// decodeProduct parses one product object. Unknown keys are ignored; absent
// optional keys keep the schema defaults.
func decodeProduct(data []byte) (schema.ProductInput, error) {
	var (
		in       schema.ProductInput
		hasPrice bool
	)
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "title":
			in.Title, err = d.Str()
		case "description":
			in.Description, err = optStr(d)
		case "price":
			hasPrice = true
			in.Price, err = d.Float64()
		case "category":
			in.Category, err = d.Str()
		case "images":
			in.Images, err = strs(d)
		case "thumbnail":
			in.Thumbnail, err = optStr(d)
		case "tags":
			in.Tags, err = strs(d)
		case "specs":
			in.Specs = map[string]string{}
			err = d.Obj(func(d *jx.Decoder, k string) error {
				v, err := d.Str()
				in.Specs[k] = v
				return err
			})
		case "in_stock":
			var v bool
			v, err = d.Bool()
			in.InStock = &v
		case "inventory":
			var v int
			v, err = d.Int()
			in.Inventory = &v
		case "featured":
			var v bool
			v, err = d.Bool()
			in.Featured = &v
		case "rating":
			var v float64
			v, err = d.Float64()
			in.Rating = &v
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return schema.ProductInput{}, err
	}
	if !hasPrice {
		return schema.ProductInput{}, errors.New("price is required")
	}
	return in, nil
}

func optStr(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func strs(d *jx.Decoder) ([]string, error) {
	out := []string{}
	err := d.Arr(func(d *jx.Decoder) error {
		s, err := d.Str()
		out = append(out, s)
		return err
	})
	return out, err
}

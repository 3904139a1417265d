package handler

import (
	"fmt"
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront/internal/domain/checkout"
	"github.com/xenking/storefront/internal/schema"
)

// Checkout prices the submitted cart and records a paid order.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, errors.Errorf("%w: %s", errBadRequest, err))
		return
	}

	req, err := decodeCheckoutRequest(body)
	if err != nil {
		writeError(w, r, err)
		return
	}

	res, err := h.checkout.Checkout(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(r.Context(), w, http.StatusOK, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("order_id", func(e *jx.Encoder) { e.Str(res.OrderID) })
			e.Field("status", func(e *jx.Encoder) { e.Str(string(res.Status)) })
			e.Field("total", func(e *jx.Encoder) { e.Float64(res.Total) })
		})
	})
}

// decodeCheckoutRequest parses {items, email, notes?}. Syntax errors wrap
// errBadRequest; absent required fields are reported as a
// *schema.ValidationError.
func decodeCheckoutRequest(data []byte) (checkout.Request, error) {
	var (
		req     checkout.Request
		missing []schema.Violation
		seen    = map[string]bool{}
	)

	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		seen[key] = true
		switch key {
		case "items":
			return d.Arr(func(d *jx.Decoder) error {
				it, miss, err := decodeOrderItem(d, len(req.Items))
				if err != nil {
					return err
				}
				missing = append(missing, miss...)
				req.Items = append(req.Items, it)
				return nil
			})
		case "email":
			s, err := d.Str()
			if err != nil {
				return err
			}
			req.Email = s
			return nil
		case "notes":
			s, err := decodeOptStr(d)
			if err != nil {
				return err
			}
			req.Notes = s
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return checkout.Request{}, errors.Errorf("%w: %s", errBadRequest, err)
	}

	for _, field := range []string{"items", "email"} {
		if !seen[field] {
			missing = append(missing, schema.Violation{Field: field, Constraint: "required", Kind: "missing"})
		}
	}
	if len(missing) > 0 {
		return checkout.Request{}, &schema.ValidationError{Entity: "checkout", Violations: missing}
	}
	return req, nil
}

func decodeOrderItem(d *jx.Decoder, idx int) (schema.OrderItemInput, []schema.Violation, error) {
	var (
		it   schema.OrderItemInput
		seen = map[string]bool{}
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		seen[key] = true
		var err error
		switch key {
		case "product_id":
			it.ProductID, err = d.Str()
		case "title":
			it.Title, err = d.Str()
		case "price":
			it.Price, err = d.Float64()
		case "quantity":
			var q int
			q, err = d.Int()
			it.Quantity = &q
		case "thumbnail":
			it.Thumbnail, err = decodeOptStr(d)
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return it, nil, err
	}

	var missing []schema.Violation
	for _, field := range []string{"product_id", "title", "price"} {
		if !seen[field] {
			missing = append(missing, schema.Violation{
				Field:      fmt.Sprintf("items[%d].%s", idx, field),
				Constraint: "required",
				Kind:       "missing",
			})
		}
	}
	return it, missing, nil
}

func decodeOptStr(d *jx.Decoder) (*string, error) {
	if d.Next() == jx.Null {
		return nil, d.Null()
	}
	s, err := d.Str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

package ai

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"strconv"
	"strings"

	"go-inventory-agent/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Actions the assistant may request.
const (
	ActionCreatePO   = "create_po"
	ActionDraftEmail = "draft_email"
)

var (
	fencedJSON  = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	fencedBlock = regexp.MustCompile("(?s)```(json)?\\s*(.*?)\\s*```")

	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Directive is the structured part of a reply: either a chart or an action.
type Directive struct {
	Chart  *Chart  `json:"chart,omitempty"`
	Action *Action `json:"action,omitempty"`
}

type Chart struct {
	Type  string             `json:"type" validate:"required,oneof=pie bar line"`
	Data  map[string]float64 `json:"data" validate:"required,min=1"`
	Title string             `json:"title"`
}

type Action struct {
	Type  string          `json:"type" validate:"eq=action"`
	Name  string          `json:"action" validate:"required,oneof=create_po draft_email"`
	Data  json.RawMessage `json:"data" validate:"required"`
	PO    *CreatePO       `json:"-"`
	Email *DraftEmail     `json:"-"`
}

// CreatePO is the payload of a create_po action. SupplierName may be a
// placeholder when the model could not tell who to order from.
type CreatePO struct {
	SupplierName string   `json:"supplier_name"`
	Items        []POItem `json:"items" validate:"required,min=1,dive"`
}

type POItem struct {
	ProductID ProductRef      `json:"product_id"`
	Name      string          `json:"name" validate:"required"`
	Quantity  decimal.Decimal `json:"quantity"`
	Price     decimal.Decimal `json:"price"`
}

type DraftEmail struct {
	Recipient string `json:"recipient" validate:"required"`
	Subject   string `json:"subject" validate:"required"`
	Body      string `json:"body" validate:"required"`
}

var errBadItem = errors.New("item quantity must be a positive whole number and price non-negative")

func (p CreatePO) check() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	for _, it := range p.Items {
		if !it.Quantity.IsInteger() || !it.Quantity.IsPositive() || it.Price.IsNegative() {
			return errBadItem
		}
	}
	return nil
}

// LineItems converts the payload into purchase order lines priced quantity x price.
func (p CreatePO) LineItems() models.LineItems {
	items := make(models.LineItems, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, models.LineItem{
			ProductID: it.ProductID.ID(),
			Name:      strings.TrimSpace(it.Name),
			Quantity:  int(it.Quantity.IntPart()),
			UnitPrice: it.Price,
			Total:     it.Price.Mul(it.Quantity),
		})
	}
	return items
}

// ProductRef accepts a product id written as a number or a numeric string.
// Anything else decodes as "no product".
type ProductRef struct{ id *uint }

func (r ProductRef) ID() *uint { return r.id }

func (r *ProductRef) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(b)), `"`)
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil || n == 0 {
		r.id = nil
		return nil
	}
	id := uint(n)
	r.id = &id
	return nil
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	if r.id == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatUint(uint64(*r.id), 10)), nil
}

// ParseDirective looks for the first fenced json block in reply. A block that
// does not match the chart or action schema is ignored.
func ParseDirective(reply string) (*Directive, bool) {
	m := fencedJSON.FindStringSubmatch(reply)
	if m == nil {
		return nil, false
	}
	raw := []byte(m[1])

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, false
	}

	if head.Type == "action" {
		a, err := parseAction(raw)
		if err != nil {
			return nil, false
		}
		return &Directive{Action: a}, true
	}

	var c Chart
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, false
	}
	if err := validate.Struct(c); err != nil {
		return nil, false
	}
	return &Directive{Chart: &c}, true
}

func parseAction(raw []byte) (*Action, error) {
	var a Action
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, err
	}
	if err := validate.Struct(a); err != nil {
		return nil, err
	}
	switch a.Name {
	case ActionCreatePO:
		var po CreatePO
		if err := json.Unmarshal(a.Data, &po); err != nil {
			return nil, err
		}
		if err := po.check(); err != nil {
			return nil, err
		}
		a.PO = &po
	case ActionDraftEmail:
		var e DraftEmail
		if err := json.Unmarshal(a.Data, &e); err != nil {
			return nil, err
		}
		if err := validate.Struct(e); err != nil {
			return nil, err
		}
		a.Email = &e
	}
	return &a, nil
}

// StripDirective removes every fenced block so the reply reads as prose.
func StripDirective(reply string) string {
	return strings.TrimSpace(fencedBlock.ReplaceAllString(reply, ""))
}

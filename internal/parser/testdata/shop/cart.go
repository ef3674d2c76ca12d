package shop

import (
	"context"
	"io"
)

// MaxItems caps the size of a cart.
const MaxItems = 50

const (
	// StatusOpen marks a cart that still accepts items.
	StatusOpen = "open"
	statusGone = "gone"
)

// ErrFull is returned when a cart reaches MaxItems.
var ErrFull = io.ErrShortBuffer

// Cart holds items for one customer.
type Cart struct {
	// Owner is the customer id.
	Owner string
	Items []Item // line items
	total int
}

// Item is a single line in a cart.
type Item struct {
	SKU, Name string
	Qty       int
}

type ledger struct{}

// Add appends an item to the cart.
func (c *Cart) Add(ctx context.Context, item Item, qty int) error {
	return nil
}

// Each calls fn for every item.
func (c Cart) Each(fn func(Item) bool) {}

func (c *Cart) recalc() {}

func (l ledger) Post() {}

// NewCart creates an empty cart.
func NewCart(owner string, opts ...Option) (*Cart, error) {
	return &Cart{Owner: owner}, nil
}

// Option configures a Cart.
type Option func(*Cart)

// Set is a generic collection.
type Set[T comparable] struct {
	items map[T]struct{}
}

// Has reports membership.
func (s *Set[T]) Has(v T) bool {
	_, ok := s.items[v]
	return ok
}

func helper() {}

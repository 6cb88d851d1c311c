package domain

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrInvalidLineItem = errors.New("invalid line item")

type LineItem struct {
	Plan     Plan `json:"product"`
	Quantity int  `json:"quantity"`
}

func (li LineItem) Subtotal() Money {
	return li.Plan.Price.Times(li.Quantity)
}

// Cart is an ordered set of line items, unique by plan id.
// A line item never holds a quantity below 1; such updates remove it instead.
// The zero value is an empty cart ready to use.
type Cart struct {
	items []LineItem
}

func NewCart(items ...LineItem) (*Cart, error) {
	c := &Cart{}
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, fmt.Errorf("%w: plan %d has quantity %d", ErrInvalidLineItem, item.Plan.ID, item.Quantity)
		}
		if c.indexOf(item.Plan.ID) >= 0 {
			return nil, fmt.Errorf("%w: plan %d appears twice", ErrInvalidLineItem, item.Plan.ID)
		}
		c.items = append(c.items, item)
	}
	return c, nil
}

// AddItem increments the quantity of an existing line by one or appends a new line.
func (c *Cart) AddItem(plan Plan) {
	if i := c.indexOf(plan.ID); i >= 0 {
		c.items[i].Quantity++
		return
	}
	c.items = append(c.items, LineItem{Plan: plan, Quantity: 1})
}

// RemoveItem is a no-op when the plan is not in the cart.
func (c *Cart) RemoveItem(planID int64) {
	i := c.indexOf(planID)
	if i < 0 {
		return
	}
	c.items = append(c.items[:i], c.items[i+1:]...)
}

// UpdateQuantity removes the line when quantity <= 0 and never inserts a missing plan.
func (c *Cart) UpdateQuantity(planID int64, quantity int) {
	if quantity <= 0 {
		c.RemoveItem(planID)
		return
	}
	if i := c.indexOf(planID); i >= 0 {
		c.items[i].Quantity = quantity
	}
}

func (c *Cart) Total() Money {
	total := ZeroMoney()
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy; mutating it does not affect the cart.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Cart) Contains(planID int64) bool {
	return c.indexOf(planID) >= 0
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) Clear() {
	c.items = nil
}

func (c *Cart) Clone() *Cart {
	return &Cart{items: c.Items()}
}

func (c *Cart) indexOf(planID int64) int {
	for i := range c.items {
		if c.items[i].Plan.ID == planID {
			return i
		}
	}
	return -1
}

func (c Cart) MarshalJSON() ([]byte, error) {
	if c.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.items)
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	restored, err := NewCart(items...)
	if err != nil {
		return err
	}
	*c = *restored
	return nil
}

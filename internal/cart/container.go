package cart

import (
	"sync"

	"github.com/shopspring/decimal"
)

// Change identifies which slice of cart state a mutation touched.
type Change int

const (
	ChangeItems Change = iota + 1
	ChangeVendor
)

// Container owns the authoritative state of one user's cart: the line items
// and the kantin they belong to. All mutations go through its methods and
// are applied in call order; observers are notified synchronously after each
// one. Containers are plain values handed to their consumers, so tests can
// run any number of independent instances.
type Container struct {
	mu      sync.Mutex
	items   []LineItem
	vendor  *VendorDescriptor
	nextSub int
	subs    map[int]func(Change)
}

// NewContainer returns an empty cart container.
func NewContainer() *Container {
	return &Container{
		subs: map[int]func(Change){},
	}
}

// Subscribe registers an observer invoked after every mutation. The returned
// function removes the observer; calling it more than once is harmless.
func (c *Container) Subscribe(fn func(Change)) (unsubscribe func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// AddItem merges one unit of the given item into the cart. A line already
// holding the same (item, kantin) pair gains a unit; otherwise a new line is
// appended with quantity 1. Any quantity on the input is ignored: every call
// contributes exactly one unit.
func (c *Container) AddItem(item LineItem) {
	c.mu.Lock()
	merged := false
	for i := range c.items {
		if c.items[i].ID == item.ID && c.items[i].KantinID == item.KantinID {
			c.items[i].Quantity++
			merged = true
			break
		}
	}
	if !merged {
		item.Quantity = 1
		c.items = append(c.items, item)
	}
	c.notifyLocked(ChangeItems)
	c.mu.Unlock()
}

// RemoveItem deletes every line whose item id matches. Under the
// single-vendor invariant at most one line can match.
func (c *Container) RemoveItem(itemID uint) {
	c.mu.Lock()
	kept := c.items[:0]
	for _, line := range c.items {
		if line.ID != itemID {
			kept = append(kept, line)
		}
	}
	c.items = kept
	c.notifyLocked(ChangeItems)
	c.mu.Unlock()
}

// UpdateQuantity sets the line's quantity to exactly newQuantity. A value
// below 1 removes the line instead: the cart never holds a zero-quantity row.
func (c *Container) UpdateQuantity(itemID uint, newQuantity int) {
	if newQuantity < 1 {
		c.RemoveItem(itemID)
		return
	}
	c.mu.Lock()
	for i := range c.items {
		if c.items[i].ID == itemID {
			c.items[i].Quantity = newQuantity
		}
	}
	c.notifyLocked(ChangeItems)
	c.mu.Unlock()
}

// ClearCart empties the line items. The vendor descriptor is kept: clearing
// a cart does not forget which kantin the user was browsing.
func (c *Container) ClearCart() {
	c.mu.Lock()
	c.items = nil
	c.notifyLocked(ChangeItems)
	c.mu.Unlock()
}

// SetVendor stores the given descriptor as the current kantin, normalized.
// A nil descriptor clears it. SetVendor alone never touches the items; use
// SwitchVendor when navigating between kantins.
func (c *Container) SetVendor(desc *VendorDescriptor) {
	c.mu.Lock()
	if desc == nil {
		c.vendor = nil
	} else {
		normalized := desc.normalize()
		c.vendor = &normalized
	}
	c.notifyLocked(ChangeVendor)
	c.mu.Unlock()
}

// ClearVendor forgets the current kantin.
func (c *Container) ClearVendor() {
	c.SetVendor(nil)
}

// SwitchVendor is the single enforcement point of the one-kantin-per-cart
// rule: moving to a different kantin discards the current items first, then
// stores the new descriptor. Switching to the same kantin only refreshes the
// descriptor fields and leaves the items alone.
func (c *Container) SwitchVendor(desc VendorDescriptor) {
	c.mu.Lock()
	if c.vendor != nil && c.vendor.ID != desc.ID {
		c.items = nil
		c.notifyLocked(ChangeItems)
	}
	normalized := desc.normalize()
	c.vendor = &normalized
	c.notifyLocked(ChangeVendor)
	c.mu.Unlock()
}

// IsCartFromVendor reports whether the current kantin matches the given id.
func (c *Container) IsCartFromVendor(kantinID uint) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vendor != nil && c.vendor.ID == kantinID
}

// Total sums price times quantity over all lines. Prices arrive as float
// IDR, so the arithmetic runs through decimals rather than accumulating
// float error.
func (c *Container) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, line := range c.items {
		price := decimal.NewFromFloat(line.Price)
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
	}
	return total
}

// ItemCount sums the quantities over all lines.
func (c *Container) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, line := range c.items {
		count += line.Quantity
	}
	return count
}

// Items returns a copy of the line items in insertion order.
func (c *Container) Items() []LineItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Vendor returns a copy of the current descriptor, or nil when no kantin is
// selected.
func (c *Container) Vendor() *VendorDescriptor {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.vendor == nil {
		return nil
	}
	out := *c.vendor
	return &out
}

// restore overwrites the state wholesale during rehydration. It does not
// notify observers: the persistence bridge must not re-save what it just
// loaded.
func (c *Container) restore(items []LineItem, vendor *VendorDescriptor) {
	c.mu.Lock()
	c.items = items
	c.vendor = vendor
	c.mu.Unlock()
}

// notifyLocked runs the observers while the mutation lock is held, keeping
// notification order identical to mutation order. Observers must not call
// back into mutating methods; the persistence bridge only records dirty
// flags and arms a timer.
func (c *Container) notifyLocked(change Change) {
	for _, fn := range c.subs {
		fn(change)
	}
}

package stencil

// Cloner lets a target type control how MapList copies the prototype for
// each item.
//
// Without it every item starts from a shallow copy of the prototype, so
// slices, maps and pointers set on the prototype are shared by all items.
// Implement Clone to give each item its own copies:
//
//	func (o Order) Clone() Order {
//	    items := make([]Item, len(o.Items))
//	    copy(items, o.Items)
//	    return Order{ID: o.ID, Items: items}
//	}
type Cloner[T any] interface {
	Clone() T
}

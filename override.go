package stencil

// Collectable bypasses the reflective walk in Collect.
//
// When a value implements Collectable, Collect calls its Collect method
// instead of reading fields through its schema. Use it for types whose bag
// form is not a field-by-field copy, such as values that were reshaped by a
// hand-written nested mapper on the way in.
type Collectable interface {
	// Collect returns the bag form of the receiver.
	Collect() (*Bag, error)
}

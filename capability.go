package stencil

// Built-in validator identifiers.
// Use these in struct tags: `stencil.validate:"required"`
const (
	// ValidatorRequired rejects nil, empty strings, empty bags and empty sequences.
	ValidatorRequired = "required"

	// ValidatorTrim accepts everything and trims surrounding whitespace from strings.
	ValidatorTrim = "trim"

	// ValidatorSHA256 accepts strings and byte slices and commits their hex SHA-256 digest.
	// Use for fingerprinting, NOT for passwords.
	ValidatorSHA256 = "sha256"

	// ValidatorBcrypt accepts non-empty strings and commits their bcrypt hash.
	ValidatorBcrypt = "bcrypt"
)

// MaskType represents a known data format with masking rules.
// Use these constants in struct tags: `stencil.mask:"email"`
type MaskType string

const (
	MaskEmail MaskType = "email" // alice@example.com -> a***@example.com
	MaskPhone MaskType = "phone" // +1 (555) 123-4567 -> ***-***-4567
	MaskCard  MaskType = "card"  // 4111 1111 1111 1111 -> ************1111
	MaskName  MaskType = "name"  // John Smith -> J*** S****
	MaskUUID  MaskType = "uuid"  // 550e8400-e29b-41d4-a716-446655440000 -> 550e8400-****-****-****-************
)

// validMaskTypes contains all valid mask types for metadata validation.
var validMaskTypes = map[MaskType]bool{
	MaskEmail: true,
	MaskPhone: true,
	MaskCard:  true,
	MaskName:  true,
	MaskUUID:  true,
}

// IsValidMaskType returns true if the type is a known mask type.
func IsValidMaskType(mt MaskType) bool {
	return validMaskTypes[mt]
}

// IsBuiltinValidator returns true if ref names a built-in validator.
func IsBuiltinValidator(ref string) bool {
	_, ok := builtinValidators[ref]
	return ok
}

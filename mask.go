package stencil

import (
	"strings"
	"unicode"
)

// Masker hides most of a sensitive string while keeping it recognisable.
type Masker interface {
	// Mask applies masking to the value.
	Mask(value string) string
}

// MaskerFunc adapts a function to the Masker interface.
type MaskerFunc func(value string) string

// Mask implements Masker.
func (f MaskerFunc) Mask(value string) string { return f(value) }

// EmailMasker keeps the first character of the local part and the full domain.
func EmailMasker() Masker {
	return MaskerFunc(func(value string) string {
		at := strings.LastIndex(value, "@")
		if at < 1 {
			return stars(value)
		}
		return value[:1] + "***" + value[at:]
	})
}

// PhoneMasker keeps the last four digits.
func PhoneMasker() Masker {
	return MaskerFunc(func(value string) string {
		digits := digitsOf(value)
		if len(digits) < 4 {
			return stars(value)
		}
		last4 := digits[len(digits)-4:]
		if len(digits) >= 10 {
			return "***-***-" + last4
		}
		return "***-" + last4
	})
}

// CardMasker keeps the last four digits and drops any grouping.
func CardMasker() Masker {
	return MaskerFunc(func(value string) string {
		digits := digitsOf(value)
		if len(digits) < 4 {
			return stars(value)
		}
		return strings.Repeat("*", len(digits)-4) + digits[len(digits)-4:]
	})
}

// NameMasker keeps the first letter of every word.
func NameMasker() Masker {
	return MaskerFunc(func(value string) string {
		words := strings.Fields(value)
		for i, word := range words {
			runes := []rune(word)
			words[i] = string(runes[0]) + strings.Repeat("*", len(runes)-1)
		}
		return strings.Join(words, " ")
	})
}

// UUIDMasker keeps the first group of a canonical UUID.
func UUIDMasker() Masker {
	return MaskerFunc(func(value string) string {
		parts := strings.Split(value, "-")
		if len(parts) != 5 {
			return stars(value)
		}
		return parts[0] + "-****-****-****-************"
	})
}

func stars(value string) string {
	return strings.Repeat("*", len([]rune(value)))
}

func digitsOf(s string) string {
	var sb strings.Builder
	for _, r := range s {
		if unicode.IsDigit(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// builtinMaskers is the masker registry used by Collect.
var builtinMaskers = map[MaskType]Masker{
	MaskEmail: EmailMasker(),
	MaskPhone: PhoneMasker(),
	MaskCard:  CardMasker(),
	MaskName:  NameMasker(),
	MaskUUID:  UUIDMasker(),
}

// Package sanitizer provides input normalization for workshop data.
//
// All normalization functions are idempotent - applying them multiple times
// produces the same result. Functions handle invalid input gracefully,
// typically by returning empty strings rather than errors.
//
// Normalization includes:
//   - Phone numbers: E.164 format (+[country][number])
//   - Customer names and notes: collapsed whitespace, trimmed
//   - License plates: uppercase, digits and letters only
package sanitizer

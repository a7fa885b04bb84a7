// Package sanitizer normalizes pipeline output before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result.
// They never reject input; validation decides what is acceptable.
//
// Normalization includes:
//   - Class names: trim, collapse inner whitespace
//   - Registrations: uppercase, no whitespace, nil when empty
//   - Regions: trim, uppercase
package sanitizer

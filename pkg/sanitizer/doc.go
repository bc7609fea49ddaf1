// Package sanitizer normalizes free-text and email input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result.
// Invalid input is never rejected here; validation is the caller's concern.
//
//   - Text (names, locations, titles): trim and collapse inner whitespace.
//   - Emails: trim and lowercase, so lookups by email match regardless of casing.
package sanitizer

// Package rules holds the declarative validation rules of every dialog and the
// pure functions that evaluate them. Supported kinds: required, minLength,
// maxLength, pattern, email and url.
package rules

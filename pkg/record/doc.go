// Package record is the boundary to the record store that dialogs save into.
// A record is a flat key/value document; whether save creates or updates is
// decided solely by the presence of an "id" key.
package record

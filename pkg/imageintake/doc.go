// Package imageintake validates user-selected images, tracks their previews
// and compresses them adaptively before they are stored.
package imageintake

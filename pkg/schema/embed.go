package schema

import (
	"embed"
	"io/fs"
)

//go:embed forms/*
var embeddedForms embed.FS

// EmbeddedFS returns the bundled content type definitions (project,
// testimonial, service, team member, blog post).
func EmbeddedFS() fs.FS {
	sub, err := fs.Sub(embeddedForms, "forms")
	if err != nil {
		// The embed directive guarantees the subpath exists.
		panic(err)
	}
	return sub
}

// Defaults loads the embedded definitions.
func Defaults() (*Store, error) {
	return LoadFS(EmbeddedFS())
}

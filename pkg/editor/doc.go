// Package editor manages the lifecycle of rich-text widgets. Widgets are
// expensive to build, so one handle per dialog field is pooled, cleared on
// close and reused on the next open. Content is sanitised with bluemonday on
// the way in and out.
package editor

// Package dom models the small slice of document behaviour the modal
// subsystem relies on: scoped node lookup, replacement, focus and the modal
// show/hide primitive. Tree is an in-memory implementation used by tests and
// headless drivers; UI layers supply their own Document/Presenter.
package dom

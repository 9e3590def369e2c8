// Package modal orchestrates add/edit dialogs for every content type. It ties
// together the dialog state store, the rule registry and validator, the
// rich-text editor pool and the image intake pipeline, and hands extracted
// records to a record.Store.
//
// A typical flow:
//
//	o := modal.New(modal.WithTree(tree), modal.WithStore(store))
//	_ = o.Register(form)
//	_, _ = o.Open(ctx, "project", nil)
//	_ = o.Input("project", "title", "Harbour Tower")
//	_, _ = o.Blur("project", "title")
//	outcome, err := o.Save(ctx, "project")
package modal

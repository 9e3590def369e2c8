package modal

import (
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/confirm"
	"github.com/goliatone/go-formmodal/pkg/debounce"
	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/editor"
	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/notify"
	"github.com/goliatone/go-formmodal/pkg/record"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// DefaultDebounce is the quiet period before input-triggered validation.
const DefaultDebounce = 300 * time.Millisecond

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithDocument sets the document fields are resolved in.
func WithDocument(doc dom.Document) Option {
	return func(o *Orchestrator) {
		o.doc = doc
	}
}

// WithPresenter sets the modal show/hide primitive.
func WithPresenter(presenter dom.Presenter) Option {
	return func(o *Orchestrator) {
		o.presenter = presenter
	}
}

// WithTree uses one in-memory tree as both document and presenter.
func WithTree(tree *dom.Tree) Option {
	return func(o *Orchestrator) {
		if tree != nil {
			o.doc = tree
			o.presenter = tree
		}
	}
}

// WithStore sets the record store saves are handed to.
func WithStore(store record.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithNotifier sets where user-facing messages go.
func WithNotifier(n notify.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithDurations sets notification display times.
func WithDurations(d notify.Durations) Option {
	return func(o *Orchestrator) {
		o.durations = d
	}
}

// WithConfirmer sets who approves discarding unsaved changes.
func WithConfirmer(c confirm.Confirmer) Option {
	return func(o *Orchestrator) {
		o.confirmer = c
	}
}

// WithLogger sets the logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		o.log = logger
	}
}

// WithDebounce sets the quiet period for input validation.
func WithDebounce(wait time.Duration) Option {
	return func(o *Orchestrator) {
		if wait >= 0 {
			o.wait = wait
		}
	}
}

// WithClock drives debounce timers from clock.
func WithClock(clock debounce.Clock) Option {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithEditorFactory sets how rich-text widgets are built.
func WithEditorFactory(factory editor.Factory) Option {
	return func(o *Orchestrator) {
		o.editorFactory = factory
	}
}

// WithEditorOptions sets the options every widget is built with.
func WithEditorOptions(opts editor.Options) Option {
	return func(o *Orchestrator) {
		o.editorOptions = opts
	}
}

// WithObjectURLs sets the preview URL minter.
func WithObjectURLs(urls imageintake.ObjectURLs) Option {
	return func(o *Orchestrator) {
		o.urls = urls
	}
}

// WithCompressor replaces the image compressor.
func WithCompressor(c *imageintake.Compressor) Option {
	return func(o *Orchestrator) {
		o.compressor = c
	}
}

// WithImageLimits sets what the image pipeline accepts.
func WithImageLimits(limits imageintake.Limits) Option {
	return func(o *Orchestrator) {
		o.limits = limits
	}
}

// WithWidgets sets the registry deciding which fields are rich text or
// image backed.
func WithWidgets(registry *widgets.Registry) Option {
	return func(o *Orchestrator) {
		o.widgets = registry
	}
}

package formmodal

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/config"
	"github.com/goliatone/go-formmodal/pkg/confirm"
	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/modal"
	"github.com/goliatone/go-formmodal/pkg/notify"
	"github.com/goliatone/go-formmodal/pkg/record"
	"github.com/goliatone/go-formmodal/pkg/schema"
)

// Form aliases schema.Form for callers that only import the root package.
type Form = schema.Form

// Record aliases record.Record.
type Record = record.Record

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module for callers that wire every collaborator themselves.
func NewOrchestrator(options ...modal.Option) *modal.Orchestrator {
	return modal.New(options...)
}

// Runtime is an orchestrator wired from a config.Config together with the
// collaborators it was built with.
type Runtime struct {
	*modal.Orchestrator

	Config      config.Config
	Definitions *schema.Store
	Tree        *dom.Tree
	Store       record.Store
	Logger      *zap.Logger

	closers []func() error
}

// Option customises New.
type Option func(*setup)

type setup struct {
	logger    *zap.Logger
	notifier  notify.Notifier
	confirmer confirm.Confirmer
	tree      *dom.Tree
	store     record.Store
	forms     *schema.Store
	extra     []modal.Option
}

// WithLogger overrides the logger built from the config.
func WithLogger(logger *zap.Logger) Option {
	return func(s *setup) {
		s.logger = logger
	}
}

// WithNotifier sends notifications to n instead of the log.
func WithNotifier(n notify.Notifier) Option {
	return func(s *setup) {
		s.notifier = n
	}
}

// WithConfirmer sets who approves discarding unsaved changes.
func WithConfirmer(c confirm.Confirmer) Option {
	return func(s *setup) {
		s.confirmer = c
	}
}

// WithTree mounts dialogs into tree instead of a fresh one.
func WithTree(tree *dom.Tree) Option {
	return func(s *setup) {
		s.tree = tree
	}
}

// WithStore bypasses the configured store driver.
func WithStore(store record.Store) Option {
	return func(s *setup) {
		s.store = store
	}
}

// WithForms replaces the form definitions that would be loaded.
func WithForms(forms *schema.Store) Option {
	return func(s *setup) {
		s.forms = forms
	}
}

// WithModalOptions appends orchestrator options applied after the config.
func WithModalOptions(options ...modal.Option) Option {
	return func(s *setup) {
		s.extra = append(s.extra, options...)
	}
}

// New builds a Runtime: loads the bundled forms (and cfg.FormsDir), opens the
// configured record store, mounts every dialog into a headless tree and
// registers it with an orchestrator tuned by cfg.
func New(ctx context.Context, cfg config.Config, options ...Option) (*Runtime, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &setup{}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}

	rt := &Runtime{Config: cfg, Tree: s.tree, Store: s.store, Definitions: s.forms, Logger: s.logger}
	if rt.Logger == nil {
		logger, err := cfg.Logger()
		if err != nil {
			return nil, err
		}
		rt.Logger = logger
	}
	if rt.Definitions == nil {
		forms, err := LoadForms(ctx, cfg.FormsDir)
		if err != nil {
			return nil, err
		}
		rt.Definitions = forms
	}
	if rt.Tree == nil {
		rt.Tree = dom.NewTree()
	}
	if rt.Store == nil {
		store, closer, err := OpenStore(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		rt.Store = store
		if closer != nil {
			rt.closers = append(rt.closers, closer)
		}
	}

	notifier := s.notifier
	if notifier == nil {
		notifier = notify.NewLogger(rt.Logger)
	}
	compressor := imageintake.NewCompressor(
		imageintake.WithTarget(cfg.Compression.Target),
		imageintake.WithTiers(cfg.Compression.Tiers),
		imageintake.WithNotifier(notifier),
		imageintake.WithDurations(cfg.Notify),
		imageintake.WithLogger(rt.Logger),
	)

	modal.ScaffoldAll(rt.Tree, rt.Definitions)
	modalOpts := []modal.Option{
		modal.WithTree(rt.Tree),
		modal.WithStore(rt.Store),
		modal.WithLogger(rt.Logger),
		modal.WithNotifier(notifier),
		modal.WithDurations(cfg.Notify),
		modal.WithDebounce(cfg.Debounce),
		modal.WithImageLimits(cfg.Images),
		modal.WithCompressor(compressor),
	}
	if s.confirmer != nil {
		modalOpts = append(modalOpts, modal.WithConfirmer(s.confirmer))
	}
	rt.Orchestrator = modal.New(append(modalOpts, s.extra...)...)
	if err := rt.RegisterAll(rt.Definitions); err != nil {
		_ = rt.Shutdown()
		return nil, fmt.Errorf("formmodal: register forms: %w", err)
	}

	rt.Logger.Debug("runtime ready",
		zap.Int("forms", len(rt.Definitions.Forms())),
		zap.String("store", cfg.Store.Driver))
	return rt, nil
}

// OpenStore opens the record store selected by cfg. The returned closer is nil
// for stores that hold no resources.
func OpenStore(ctx context.Context, cfg config.Store) (record.Store, func() error, error) {
	switch cfg.Driver {
	case "", config.DriverMemory:
		return record.NewMemoryStore(), nil, nil
	case config.DriverSQLite:
		store, err := record.OpenSQLite(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("formmodal: unknown store driver %q", cfg.Driver)
	}
}

// Shutdown releases the store opened by New.
func (r *Runtime) Shutdown() error {
	var errs []error
	for _, closer := range r.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

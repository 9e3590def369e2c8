package modal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-formmodal/pkg/confirm"
	"github.com/goliatone/go-formmodal/pkg/debounce"
	"github.com/goliatone/go-formmodal/pkg/dialog"
	"github.com/goliatone/go-formmodal/pkg/dom"
	"github.com/goliatone/go-formmodal/pkg/editor"
	"github.com/goliatone/go-formmodal/pkg/elementcache"
	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/notify"
	"github.com/goliatone/go-formmodal/pkg/record"
	"github.com/goliatone/go-formmodal/pkg/rules"
	"github.com/goliatone/go-formmodal/pkg/schema"
	"github.com/goliatone/go-formmodal/pkg/validation"
	"github.com/goliatone/go-formmodal/pkg/widgets"
)

// Orchestrator drives every add/edit dialog: open, populate, validate, save,
// cancel and close. All operations are serialised behind one mutex, so
// callers may forward events from any goroutine. Debounced validation
// re-enters through the same mutex and does nothing once its dialog closed.
// Save releases the mutex while images compress.
type Orchestrator struct {
	mu sync.Mutex

	doc           dom.Document
	presenter     dom.Presenter
	store         record.Store
	notifier      notify.Notifier
	durations     notify.Durations
	confirmer     confirm.Confirmer
	log           *zap.Logger
	wait          time.Duration
	clock         debounce.Clock
	editorFactory editor.Factory
	editorOptions editor.Options
	urls          imageintake.ObjectURLs
	compressor    *imageintake.Compressor
	limits        imageintake.Limits
	widgets       *widgets.Registry

	rules     *rules.Registry
	cache     *elementcache.Cache
	validator *validation.Validator
	trigger   *validation.Trigger
	scheduler *debounce.Scheduler
	dialogs   *dialog.Store
	editors   *editor.Manager
	previews  *imageintake.Previews

	forms  map[string]registration
	saving map[string]bool
}

type registration struct {
	form   schema.Form
	layout map[string]string
}

func (r registration) widget(field string) string {
	if widget, ok := r.layout[field]; ok {
		return widget
	}
	return widgets.WidgetText
}

// fieldText feeds the validator values that live outside field nodes: the
// plain text of rich-text editors and the preview of image fields. It is only
// called while o.mu is held.
type fieldText struct {
	o *Orchestrator
}

func (t fieldText) PlainText(key string) (string, bool) {
	if text, ok := t.o.editors.PlainText(key); ok {
		return text, true
	}
	dialogID, name, ok := strings.Cut(key, elementcache.Separator)
	if !ok {
		return "", false
	}
	reg, ok := t.o.forms[dialogID]
	if !ok || reg.widget(name) != widgets.WidgetImage {
		return "", false
	}
	owned := t.o.previews.Owned(key)
	if len(owned) == 0 {
		return "", true
	}
	latest := owned[len(owned)-1]
	if latest.ObjectURL != "" {
		return latest.ObjectURL, true
	}
	return latest.Source.Name, true
}

// New constructs an Orchestrator applying any provided options. Missing
// collaborators default to in-memory implementations: a dom.Tree, a memory
// record store, discarded notifications and a confirmer that declines.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		wait:      DefaultDebounce,
		durations: notify.DefaultDurations(),
		limits:    imageintake.DefaultLimits(),
		forms:     make(map[string]registration),
		saving:    make(map[string]bool),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.doc == nil || o.presenter == nil {
		tree := dom.NewTree()
		if o.doc == nil {
			o.doc = tree
		}
		if o.presenter == nil {
			o.presenter = tree
		}
	}
	if o.store == nil {
		o.store = record.NewMemoryStore()
	}
	if o.notifier == nil {
		o.notifier = notify.Nop{}
	}
	if o.confirmer == nil {
		o.confirmer = confirm.Always(false)
	}
	if o.widgets == nil {
		o.widgets = widgets.NewRegistry()
	}
	if o.urls == nil {
		o.urls = imageintake.NewMemoryURLs()
	}
	if o.compressor == nil {
		o.compressor = imageintake.NewCompressor(
			imageintake.WithNotifier(o.notifier),
			imageintake.WithDurations(o.durations),
			imageintake.WithLogger(o.log),
		)
	}

	var schedulerOpts []debounce.Option
	if o.clock != nil {
		schedulerOpts = append(schedulerOpts, debounce.WithClock(o.clock))
	}
	o.scheduler = debounce.New(schedulerOpts...)

	editorOpts := []editor.Option{
		editor.WithNotifier(o.notifier),
		editor.WithDurations(o.durations),
		editor.WithLogger(o.log),
	}
	if o.editorFactory != nil {
		editorOpts = append(editorOpts, editor.WithFactory(o.editorFactory))
	}
	o.editors = editor.NewManager(o.doc, editorOpts...)

	o.rules = rules.NewRegistry()
	o.cache = elementcache.New(o.doc)
	o.validator = validation.New(o.rules, o.cache,
		validation.WithLogger(o.log),
		validation.WithTextSource(fieldText{o: o}),
	)
	o.trigger = validation.NewTrigger()
	o.dialogs = dialog.NewStore()
	o.previews = imageintake.NewPreviews(o.urls)
	o.log = o.log.Named("modal")
}

// Register makes a dialog available. Registering an id again replaces its
// rules and layout.
func (o *Orchestrator) Register(form schema.Form) error {
	if form.ID == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownDialog)
	}
	if err := o.rules.RegisterForm(form); err != nil {
		return err
	}
	o.validator.Bind(form)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.forms[form.ID] = registration{form: form, layout: o.widgets.Layout(form)}
	return nil
}

// RegisterAll registers every form of store.
func (o *Orchestrator) RegisterAll(store *schema.Store) error {
	for _, form := range store.Forms() {
		if err := o.Register(form); err != nil {
			return err
		}
	}
	return nil
}

// Forms lists registered dialogs sorted by id.
func (o *Orchestrator) Forms() []schema.Form {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]schema.Form, 0, len(o.forms))
	for _, reg := range o.forms {
		out = append(out, reg.form)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Form returns the registered definition of dialogID.
func (o *Orchestrator) Form(dialogID string) (schema.Form, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	reg, ok := o.forms[dialogID]
	return reg.form, ok
}

// State returns the live state of an open dialog.
func (o *Orchestrator) State(dialogID string) (dialog.State, bool) {
	return o.dialogs.Get(dialogID)
}

// Open shows dialogID. A nil data opens it in add mode with every field
// reset; otherwise it opens in edit mode populated from data. The dialog is
// clean after population.
func (o *Orchestrator) Open(ctx context.Context, dialogID string, data map[string]any) (dialog.State, error) {
	if err := ctx.Err(); err != nil {
		return dialog.State{}, err
	}
	o.mu.Lock()
	defer o.mu.Unlock()

	reg, ok := o.forms[dialogID]
	if !ok {
		return dialog.State{}, fmt.Errorf("%w: %s", ErrUnknownDialog, dialogID)
	}
	mode := dialog.ModeAdd
	if data != nil {
		mode = dialog.ModeEdit
	}
	if _, err := o.dialogs.Open(dialogID, mode, data); err != nil {
		return dialog.State{}, err
	}

	if err := o.resetLocked(reg); err != nil {
		o.abortOpenLocked(dialogID)
		return dialog.State{}, err
	}
	if mode == dialog.ModeEdit {
		o.populateLocked(reg, data)
	}
	if save, ok := o.cache.Get(dialogID, validation.SaveSelector); ok {
		save.SetDisabled(false)
	}
	if err := o.presenter.Show(dialogID); err != nil {
		o.abortOpenLocked(dialogID)
		return dialog.State{}, fmt.Errorf("modal: show %s: %w", dialogID, err)
	}
	if err := o.dialogs.MarkClean(dialogID); err != nil {
		return dialog.State{}, err
	}

	o.log.Debug("dialog opened", zap.String("dialog", dialogID), zap.String("mode", string(mode)))
	state, _ := o.dialogs.Get(dialogID)
	return state, nil
}

// OpenByID loads a record from the store and opens dialogID in edit mode.
func (o *Orchestrator) OpenByID(ctx context.Context, dialogID string, id any) (dialog.State, error) {
	reg, ok := o.registration(dialogID)
	if !ok {
		return dialog.State{}, fmt.Errorf("%w: %s", ErrUnknownDialog, dialogID)
	}
	data, found, err := o.store.GetByID(ctx, reg.form.TypeTag, id)
	if err != nil {
		return dialog.State{}, fmt.Errorf("modal: load %s/%v: %w", reg.form.TypeTag, id, err)
	}
	if !found {
		return dialog.State{}, fmt.Errorf("%w: %s/%v", ErrRecordNotFound, reg.form.TypeTag, id)
	}
	return o.Open(ctx, dialogID, data)
}

// Close hides dialogID. A dirty dialog closed without force asks the
// confirmer first; when declined the dialog stays open and Close returns
// false. Closing cancels the dialog's pending validation timers, clears its
// cached nodes and editors, and revokes its preview URLs.
func (o *Orchestrator) Close(ctx context.Context, dialogID string, force bool) (bool, error) {
	state, ok := o.dialogs.Get(dialogID)
	if !ok {
		return false, fmt.Errorf("%w: %s", dialog.ErrNotOpen, dialogID)
	}

	if state.Dirty && !force {
		title := dialogID
		if reg, ok := o.registration(dialogID); ok && reg.form.Title != "" {
			title = reg.form.Title
		}
		approved, err := o.confirmer.Confirm(ctx, confirm.Prompt{
			Title:   title,
			Message: "You have unsaved changes. Discard them?",
			Confirm: "Discard",
			Cancel:  "Keep editing",
		})
		if err != nil {
			return false, fmt.Errorf("modal: confirm close %s: %w", dialogID, err)
		}
		if !approved {
			return false, nil
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if !o.dialogs.IsOpen(dialogID) {
		return false, fmt.Errorf("%w: %s", dialog.ErrNotOpen, dialogID)
	}
	o.closeLocked(dialogID)
	return true, nil
}

// OpenDialogs lists open dialog ids.
func (o *Orchestrator) OpenDialogs() []string {
	return o.dialogs.OpenIDs()
}

// PendingValidations reports armed debounce timers of dialogID.
func (o *Orchestrator) PendingValidations(dialogID string) int {
	return o.scheduler.Pending(elementcache.ScopePrefix(dialogID))
}

// Previews returns the live image previews of dialogID.
func (o *Orchestrator) Previews(dialogID string) []imageintake.Entry {
	return o.previews.Live(elementcache.ScopePrefix(dialogID))
}

func (o *Orchestrator) registration(dialogID string) (registration, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	reg, ok := o.forms[dialogID]
	return reg, ok
}

func (o *Orchestrator) closeLocked(dialogID string) {
	prefix := elementcache.ScopePrefix(dialogID)
	if err := o.presenter.Hide(dialogID); err != nil {
		o.log.Warn("hide dialog failed", zap.String("dialog", dialogID), zap.Error(err))
	}
	timers := o.scheduler.CancelAll(prefix)
	o.trigger.Reset(prefix)
	o.validator.ClearErrors(dialogID)
	editors := o.editors.ReleaseScope(prefix)
	previews := o.previews.ClearScope(prefix)
	nodes := o.cache.Clear(prefix)
	if err := o.dialogs.Close(dialogID); err != nil && !errors.Is(err, dialog.ErrNotOpen) {
		o.log.Warn("close dialog state failed", zap.String("dialog", dialogID), zap.Error(err))
	}
	o.log.Debug("dialog closed",
		zap.String("dialog", dialogID),
		zap.Int("timers", timers),
		zap.Int("editors", editors),
		zap.Int("previews", previews),
		zap.Int("nodes", nodes))
}

func (o *Orchestrator) abortOpenLocked(dialogID string) {
	prefix := elementcache.ScopePrefix(dialogID)
	o.editors.ReleaseScope(prefix)
	o.previews.ClearScope(prefix)
	o.cache.Clear(prefix)
	_ = o.dialogs.Close(dialogID)
}

func (o *Orchestrator) requireOpenLocked(dialogID string) (registration, error) {
	reg, ok := o.forms[dialogID]
	if !ok {
		return registration{}, fmt.Errorf("%w: %s", ErrUnknownDialog, dialogID)
	}
	if !o.dialogs.IsOpen(dialogID) {
		return registration{}, fmt.Errorf("%w: %s", dialog.ErrNotOpen, dialogID)
	}
	return reg, nil
}

func (o *Orchestrator) fieldLocked(reg registration, name string) (schema.Field, error) {
	field, ok := reg.form.Field(name)
	if !ok {
		return schema.Field{}, fmt.Errorf("%w: %s.%s", ErrUnknownField, reg.form.ID, name)
	}
	return field, nil
}

func (o *Orchestrator) nodeLocked(dialogID string, field schema.Field) (*dom.Node, bool) {
	return o.cache.Get(dialogID, field.QuerySelector())
}

func (o *Orchestrator) notify(message string, level notify.Level) {
	o.notifier.Notify(message, level, o.durations.For(level))
}

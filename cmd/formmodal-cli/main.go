package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formmodal"
	"github.com/goliatone/go-formmodal/pkg/config"
	"github.com/goliatone/go-formmodal/pkg/confirm"
	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/notify"
	"github.com/goliatone/go-formmodal/pkg/schema"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// app carries the persistent flags shared by every command.
type app struct {
	configPath string
	formsDir   string
	dsn        string
	verbose    bool
	yes        bool
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "formmodal-cli",
		Short: "Drive content dialogs headlessly",
		Long: `formmodal-cli opens the add/edit dialogs for each content type without a
browser: it validates records against the dialog rules, saves them to a
SQLite store and runs the image compression pipeline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file (FORMMODAL_* env vars also apply)")
	flags.StringVar(&a.formsDir, "forms", "", "directory with extra form definitions")
	flags.StringVar(&a.dsn, "dsn", "", "SQLite DSN; selects the sqlite store")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log debug output to stderr")
	flags.BoolVarP(&a.yes, "yes", "y", false, "answer yes to every confirmation")

	root.AddCommand(
		newDialogsCommand(a),
		newValidateCommand(a),
		newSaveCommand(a),
		newCompressCommand(a),
	)
	return root
}

func (a *app) loadConfig() (config.Config, error) {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if a.formsDir != "" {
		cfg.FormsDir = a.formsDir
	}
	if a.dsn != "" {
		cfg.Store = config.Store{Driver: config.DriverSQLite, DSN: a.dsn}
	}
	return cfg, cfg.Validate()
}

func (a *app) logger() *zap.Logger {
	if !a.verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func (a *app) confirmerFor() confirm.Confirmer {
	if a.yes {
		return confirm.Always(true)
	}
	return confirm.NewSurvey()
}

// notifier prints notifications as "[level] message" lines.
func notifier(w io.Writer) notify.Notifier {
	return notify.Func(func(message string, level notify.Level, _ time.Duration) {
		fmt.Fprintf(w, "[%s] %s\n", level, message)
	})
}

func (a *app) runtime(ctx context.Context, cmd *cobra.Command) (*formmodal.Runtime, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	return formmodal.New(ctx, cfg,
		formmodal.WithLogger(a.logger()),
		formmodal.WithNotifier(notifier(cmd.ErrOrStderr())),
		formmodal.WithConfirmer(a.confirmerFor()),
	)
}

// readRecord loads a YAML or JSON record. An empty path yields nil, which
// opens dialogs in add mode.
func readRecord(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read record: %w", err)
	}
	data := map[string]any{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse record %s: %w", path, err)
	}
	return data, nil
}

// applySets replays "field=value" assignments as user edits so they mark the
// dialog dirty and go through the same routing as interactive input.
func applySets(ctx context.Context, rt *formmodal.Runtime, dialogID string, sets []string) error {
	form, ok := rt.Form(dialogID)
	if !ok {
		return fmt.Errorf("unknown dialog %q", dialogID)
	}
	for _, set := range sets {
		name, value, found := strings.Cut(set, "=")
		if !found {
			return fmt.Errorf("invalid --set %q, want field=value", set)
		}
		field, ok := form.Field(strings.TrimSpace(name))
		if !ok {
			return fmt.Errorf("dialog %s has no field %q", dialogID, name)
		}

		var err error
		switch field.Kind {
		case schema.KindRichText:
			err = rt.EditContent(dialogID, field.Name, value)
		case schema.KindCheckbox:
			checked, perr := strconv.ParseBool(value)
			if perr != nil {
				return fmt.Errorf("--set %s: %w", field.Name, perr)
			}
			_, err = rt.SetChecked(dialogID, field.Name, checked)
		case schema.KindImage:
			data, rerr := os.ReadFile(value)
			if rerr != nil {
				return fmt.Errorf("--set %s: %w", field.Name, rerr)
			}
			_, err = rt.SelectImage(ctx, dialogID, field.Name, imageintake.NewFile(filepath.Base(value), data))
		default:
			if err = rt.Input(dialogID, field.Name, value); err == nil {
				_, err = rt.Blur(dialogID, field.Name)
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

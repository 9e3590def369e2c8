package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-formmodal/pkg/imageintake"
	"github.com/goliatone/go-formmodal/pkg/modal"
	"github.com/goliatone/go-formmodal/pkg/record"
	"github.com/goliatone/go-formmodal/pkg/validation"
)

func newDialogsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "dialogs",
		Short: "List the available dialogs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.runtime(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			defer rt.Shutdown()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tTYPE\tTITLE\tFIELDS\tREQUIRED")
			for _, form := range rt.Forms() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\n", form.ID, form.TypeTag, form.Title, len(form.Fields), form.RequiredCount())
			}
			return w.Flush()
		},
	}
}

func newValidateCommand(a *app) *cobra.Command {
	var (
		dataPath string
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "validate <dialog>",
		Short: "Validate a record against a dialog's rules",
		Long: `Open the dialog populated from --data (or empty, in add mode), apply any
--set edits and run full validation. Exits non-zero when the form is invalid.

Examples:
  formmodal-cli validate testimonial --data testimonial.yaml
  formmodal-cli validate project --set title=Tower --set status=active`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dialogID := args[0]
			rt, err := a.runtime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Shutdown()

			data, err := readRecord(dataPath)
			if err != nil {
				return err
			}
			if _, err := rt.Open(ctx, dialogID, data); err != nil {
				return err
			}
			defer rt.Close(ctx, dialogID, true)

			if err := applySets(ctx, rt, dialogID, sets); err != nil {
				return err
			}
			result, err := rt.Validate(dialogID)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), dialogID, result)
			if !result.IsValid {
				return fmt.Errorf("%s has %d validation errors", dialogID, result.ErrorCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON record to populate the dialog with")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value edit applied after population (repeatable)")
	return cmd
}

func newSaveCommand(a *app) *cobra.Command {
	var (
		dataPath string
		sets     []string
	)
	cmd := &cobra.Command{
		Use:   "save <dialog>",
		Short: "Validate and save a record",
		Long: `Open the dialog, apply edits and save it. Records carrying an id are
updated, others are created. When validation fails you are asked whether to
discard the edits (use --yes to discard without asking).

Examples:
  formmodal-cli save project --dsn file:content.db --data project.yaml
  formmodal-cli save teamMember --dsn file:content.db --set name=Ada --set role=CTO --set photo=ada.png`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dialogID := args[0]
			rt, err := a.runtime(ctx, cmd)
			if err != nil {
				return err
			}
			defer rt.Shutdown()

			data, err := readRecord(dataPath)
			if err != nil {
				return err
			}
			if _, err := rt.Open(ctx, dialogID, data); err != nil {
				return err
			}
			if err := applySets(ctx, rt, dialogID, sets); err != nil {
				_, _ = rt.Close(ctx, dialogID, true)
				return err
			}

			out := cmd.OutOrStdout()
			outcome, err := rt.Save(ctx, dialogID)
			if err != nil {
				_, _ = rt.Close(ctx, dialogID, true)
				return err
			}
			if outcome.Status == modal.StatusInvalid {
				printResult(out, dialogID, outcome.Validation)
				closed, err := rt.Close(ctx, dialogID, false)
				if err != nil {
					return err
				}
				if !closed {
					fmt.Fprintln(out, "edits kept, nothing saved")
				}
				return fmt.Errorf("%s was not saved", dialogID)
			}

			printSaved(out, outcome)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON record to populate the dialog with")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "field=value edit; image fields take a file path (repeatable)")
	return cmd
}

func newCompressCommand(a *app) *cobra.Command {
	var (
		outDir string
		target string
	)
	cmd := &cobra.Command{
		Use:   "compress <image>...",
		Short: "Validate and compress images the way dialogs do on save",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			if target != "" {
				bytes, err := humanize.ParseBytes(target)
				if err != nil {
					return fmt.Errorf("--target: %w", err)
				}
				cfg.Compression.Target = int64(bytes)
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			compressor := imageintake.NewCompressor(
				imageintake.WithTarget(cfg.Compression.Target),
				imageintake.WithTiers(cfg.Compression.Tiers),
				imageintake.WithNotifier(notifier(cmd.ErrOrStderr())),
				imageintake.WithDurations(cfg.Notify),
				imageintake.WithLogger(a.logger()),
			)

			failed := 0
			for _, path := range args {
				raw, err := os.ReadFile(path)
				if err != nil {
					return err
				}
				file := imageintake.NewFile(filepath.Base(path), raw)
				if err := imageintake.Validate(file, cfg.Images); err != nil {
					fmt.Fprintf(out, "%s: rejected: %v\n", file.Name, err)
					failed++
					continue
				}

				outcome := compressor.Compress(ctx, file)
				dest := filepath.Join(outDir, outcome.File.Name)
				if err := os.WriteFile(dest, outcome.File.Data, 0o644); err != nil {
					return err
				}
				printCompression(out, outcome, dest)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d images rejected", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", ".", "directory compressed files are written to")
	cmd.Flags().StringVar(&target, "target", "", "target size such as 1MiB (defaults to the config)")
	return cmd
}

func printResult(w io.Writer, dialogID string, result validation.Result) {
	if result.IsValid {
		fmt.Fprintf(w, "%s is valid\n", dialogID)
		return
	}
	fmt.Fprintf(w, "%s has %d errors:\n", dialogID, result.ErrorCount)
	for _, fieldErr := range result.Errors {
		fmt.Fprintf(w, "  %s: %s\n", fieldErr.Field, fieldErr.Message)
	}
}

func printSaved(w io.Writer, outcome modal.Outcome) {
	verb := "updated"
	if outcome.Created {
		verb = "created"
	}
	id, _ := record.ID(outcome.Record)
	fmt.Fprintf(w, "%s id=%s\n", verb, record.Key(id))
	for _, compressed := range outcome.Compression {
		printCompression(w, compressed, "")
	}
}

func printCompression(w io.Writer, outcome imageintake.Outcome, dest string) {
	name := outcome.Original.Name
	switch {
	case outcome.Err != nil:
		fmt.Fprintf(w, "%s: kept original (%v)\n", name, outcome.Err)
	case outcome.Skipped:
		fmt.Fprintf(w, "%s: %s, already small enough\n", name, humanize.IBytes(uint64(outcome.Original.Size)))
	default:
		fmt.Fprintf(w, "%s: %s -> %s (%.0f%% smaller)\n", name,
			humanize.IBytes(uint64(outcome.Original.Size)),
			humanize.IBytes(uint64(outcome.File.Size)),
			outcome.Reduction()*100)
	}
	if dest != "" {
		fmt.Fprintf(w, "  wrote %s\n", dest)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/bcapi"
	"github.com/businesscomms/bcctl/internal/samples"
)

func (a *app) newGetCmd(noun string, get func(*bcapi.Client, context.Context, string) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "get NAME",
		Short: "Show one " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			res, err := get(c, cmd.Context(), args[0])
			if err != nil {
				return err
			}

			return a.printObject(res)
		},
	}
}

// getAny adapts a typed getter, usually a method expression such as
// (*bcapi.Client).GetBrand, for newGetCmd.
func getAny[T any](get func(*bcapi.Client, context.Context, string) (*T, error)) func(*bcapi.Client, context.Context, string) (any, error) {
	return func(c *bcapi.Client, ctx context.Context, name string) (any, error) {
		return get(c, ctx, name)
	}
}

// newPatchCmd builds "<noun> patch NAME --mask PATHS --body FILE". The body
// is YAML (or JSON) holding only the fields named by the mask.
func newPatchCmd[T any](a *app, noun string, patch func(*bcapi.Client, context.Context, bcapi.PatchRequest[T]) (*T, error)) *cobra.Command {
	var (
		mask     string
		bodyPath string
	)

	cmd := &cobra.Command{
		Use:   "patch NAME",
		Short: "Update fields of a " + noun,
		Long: "Send a partial " + noun + " and a field mask. Only the masked fields change;\n" +
			"a masked field missing from the body is cleared by the service.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fm, err := bcapi.ParseFieldMask(mask)
			if err != nil {
				return err
			}

			data, err := readBody(cmd.InOrStdin(), bodyPath)
			if err != nil {
				return err
			}

			var partial T
			if err := samples.DecodeYAML(data, &partial); err != nil {
				return err
			}

			c, err := a.client(cmd.Context())
			if err != nil {
				return err
			}

			res, err := patch(c, cmd.Context(), bcapi.PatchRequest[T]{
				Name:       args[0],
				Resource:   partial,
				UpdateMask: fm,
			})
			if err != nil {
				return err
			}

			return a.printObject(res)
		},
	}

	cmd.Flags().StringVar(&mask, "mask", "", "comma-separated field paths to update (required)")
	cmd.Flags().StringVar(&bodyPath, "body", "-", "YAML or JSON file with the new values, - for stdin")
	_ = cmd.MarkFlagRequired("mask")

	return cmd
}

// newDeleteCmd deletes one resource with del, usually a method expression
// such as (*bcapi.Client).DeleteBrand, and drops it from the ledger if a
// walkthrough had recorded it. A name from another family is rejected.
func (a *app) newDeleteCmd(noun string, del func(*bcapi.Client, context.Context, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a " + noun,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			c, err := a.client(ctx)
			if err != nil {
				return err
			}

			if err := del(c, ctx, args[0]); err != nil {
				return err
			}

			a.forgetQuietly(ctx, args[0])
			a.statusf("Deleted %s\n", args[0])

			return nil
		},
	}
}

func (a *app) forgetQuietly(ctx context.Context, name string) {
	l, err := a.openLedger(ctx)
	if err != nil {
		a.logger.Warn("opening ledger failed", slog.String("error", err.Error()))

		return
	}
	defer l.Close()

	if err := l.Forget(ctx, name); err != nil {
		a.logger.Warn("forgetting resource failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

// readBody reads path, or in when path is "-".
func readBody(in io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("reading body from stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading body: %w", err)
	}

	return data, nil
}

// sampleFlags are shared by every "<family> sample" command.
type sampleFlags struct {
	noDelete bool
	noLedger bool
}

func (f *sampleFlags) bind(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.noDelete, "no-delete", false, "keep the created resource (recorded for bcctl cleanup)")
	cmd.Flags().BoolVar(&f.noLedger, "no-ledger", false, "do not record created resources")
}

// runSample runs one walkthrough with a console on stdout and the ledger as
// recorder, then summarizes the report.
func (a *app) runSample(ctx context.Context, f *sampleFlags, opts samples.Options,
	walk func(*samples.Runner) (*samples.Report, error),
) error {
	api, err := a.client(ctx)
	if err != nil {
		return err
	}

	opts.Delay = a.cfg.SampleDelay
	opts.NoDelete = f.noDelete
	opts.Logger = a.logger

	if !f.noLedger {
		l, err := a.openLedger(ctx)
		if err != nil {
			return err
		}
		defer l.Close()

		opts.Recorder = l
	}

	rep, err := walk(samples.NewRunner(api, a.newConsole(), opts))
	a.summarize(rep)

	if errors.Is(err, samples.ErrUsage) {
		return usageError(err)
	}

	return err
}

func usageError(err error) error {
	return fmt.Errorf("%w (see --help)", err)
}

func (a *app) summarize(rep *samples.Report) {
	if rep == nil || rep.Name == "" {
		return
	}

	failed := len(rep.Failures())

	switch {
	case rep.Deleted:
		a.statusf("%s walkthrough finished: %s created and deleted, %d of %d steps failed\n",
			rep.Kind, rep.Name, failed, len(rep.Steps))
	default:
		a.statusf("%s walkthrough finished: %s kept, %d of %d steps failed\n",
			rep.Kind, rep.Name, failed, len(rep.Steps))
	}
}

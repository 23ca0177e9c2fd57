// Package samples runs the guided walkthroughs: scripted create, get,
// update, list, and delete sequences against each resource family, with a
// visible pause between calls. Each walkthrough reports what happened step
// by step instead of printing from callbacks.
package samples

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// Values the walkthroughs send.
const (
	BrandDisplayName        = "Test Brand"
	UpdatedBrandDisplayName = "An Updated Test Brand"
	UpdatedAgentDisplayName = "Newly Edited Agent Test"
	UpdatedAgentLogoURL     = "https://developers.google.com/business-communications/images/logo-guidelines/do-logo-alt.png"
	UpdatedWelcomeMessage   = "The updated welcome message!"

	// GoogleplexPlaceID is the place the location walkthrough registers.
	GoogleplexPlaceID = "ChIJj61dQgK6j4AR4GeTYWZsKWw"

	// PlaceholderAgent is the agent the location walkthrough re-points its
	// location at when no replacement agent is given. The update fails
	// until a real agent name is supplied.
	PlaceholderAgent = "brands/BRAND_ID/agents/AGENT_ID"

	// DefaultDelay is the pause between calls.
	DefaultDelay = 3 * time.Second
)

// ErrUsage is returned when a walkthrough argument has the wrong shape.
var ErrUsage = errors.New("samples: usage")

// CheckBrandArg validates the agent walkthrough's brand argument.
func CheckBrandArg(brandName string) error {
	if _, err := bcapi.ParseBrandName(brandName); err != nil {
		return fmt.Errorf("%w: <BRAND_NAME>: %w", ErrUsage, err)
	}

	return nil
}

// CheckAgentArg validates the location walkthrough's agent argument.
func CheckAgentArg(agentName string) error {
	if _, err := bcapi.ParseAgentName(agentName); err != nil {
		return fmt.Errorf("%w: <AGENT_NAME>: %w", ErrUsage, err)
	}

	return nil
}

// Console is where walkthroughs show progress.
type Console interface {
	// Header announces the next step.
	Header(title string)
	// Object shows a resource or list the service returned.
	Object(v any)
	// Pause waits d, showing progress while it does. It returns early with
	// ctx's error when ctx is done.
	Pause(ctx context.Context, d time.Duration) error
}

// Recorder remembers resources a walkthrough created so they can be cleaned
// up later when the walkthrough does not delete them itself.
type Recorder interface {
	Record(ctx context.Context, name string) error
	Forget(ctx context.Context, name string) error
}

// Options tune a Runner. The zero value is usable.
type Options struct {
	// Delay between calls. Zero disables pausing.
	Delay time.Duration
	// NoDelete skips the final delete so the created resource survives.
	NoDelete bool
	// Recorder is told about created and deleted resources. Optional.
	Recorder Recorder
	// PlaceID for the location walkthrough. Empty means GoogleplexPlaceID.
	PlaceID string
	// NewAgent is the agent the location walkthrough's update points the
	// location at. Empty means PlaceholderAgent.
	NewAgent string
	// Rand drives the agent template's random phone number and domain.
	// Nil means a randomly seeded source.
	Rand   *rand.Rand
	Logger *slog.Logger
}

// Step is one call of a walkthrough.
type Step struct {
	Title string
	Err   error
}

// Report is the outcome of a walkthrough. Steps lists every call that was
// made, in order, failed or not.
type Report struct {
	Kind    bcapi.Kind
	Name    string // created resource, empty if creation failed
	Deleted bool
	Steps   []Step
}

// Failures returns the steps that failed.
func (r *Report) Failures() []Step {
	var out []Step

	for _, s := range r.Steps {
		if s.Err != nil {
			out = append(out, s)
		}
	}

	return out
}

// Runner executes walkthroughs against one API client.
type Runner struct {
	api     *bcapi.Client
	console Console
	opts    Options
	logger  *slog.Logger
	rng     *rand.Rand
}

// NewRunner creates a Runner. api must already be authorized.
func NewRunner(api *bcapi.Client, console Console, opts Options) *Runner {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())) //nolint:gosec // demo data, not secrets
	}

	if opts.PlaceID == "" {
		opts.PlaceID = GoogleplexPlaceID
	}

	if opts.NewAgent == "" {
		opts.NewAgent = PlaceholderAgent
	}

	return &Runner{api: api, console: console, opts: opts, logger: logger, rng: rng}
}

// step announces title, runs call, and shows its result. A failure is
// logged and recorded on rep; the caller decides whether it is fatal.
func (r *Runner) step(rep *Report, title string, call func() (any, error)) error {
	r.console.Header(title)

	result, err := call()
	rep.Steps = append(rep.Steps, Step{Title: title, Err: err})

	if err != nil {
		r.logger.Error("walkthrough step failed",
			slog.String("step", title),
			slog.String("error", err.Error()),
		)

		return err
	}

	r.console.Object(result)

	return nil
}

func (r *Runner) pause(ctx context.Context) error {
	if r.opts.Delay <= 0 {
		return ctx.Err()
	}

	if err := r.console.Pause(ctx, r.opts.Delay); err != nil {
		return fmt.Errorf("samples: interrupted: %w", err)
	}

	return nil
}

func (r *Runner) record(ctx context.Context, name string) {
	if r.opts.Recorder == nil {
		return
	}

	if err := r.opts.Recorder.Record(ctx, name); err != nil {
		r.logger.Warn("recording created resource failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

func (r *Runner) forget(ctx context.Context, name string) {
	if r.opts.Recorder == nil {
		return
	}

	if err := r.opts.Recorder.Forget(ctx, name); err != nil {
		r.logger.Warn("forgetting deleted resource failed",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
	}
}

// finish runs the optional delete step.
func (r *Runner) finish(ctx context.Context, rep *Report, title string, del func() error) error {
	if r.opts.NoDelete {
		return nil
	}

	if err := r.pause(ctx); err != nil {
		return err
	}

	err := r.step(rep, title, func() (any, error) {
		if err := del(); err != nil {
			return nil, err
		}

		return map[string]string{"deleted": rep.Name}, nil
	})
	if err == nil {
		rep.Deleted = true
		r.forget(ctx, rep.Name)
	}

	return nil
}

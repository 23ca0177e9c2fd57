package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/businesscomms/bcctl/internal/bcapi"
)

// progressTick is how often a dot is printed while a walkthrough pauses.
const progressTick = 500 * time.Millisecond

// writeObject prints v as indented JSON or, by default, as YAML. Values go
// through their JSON form first so YAML keys match the API's field names.
func writeObject(w io.Writer, v any, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		return enc.Encode(v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	return enc.Close()
}

func (a *app) printObject(v any) error {
	return writeObject(a.stdout, v, a.flags.json)
}

// console shows walkthrough progress on stdout.
type console struct {
	out    io.Writer
	json   bool
	dots   bool
	tick   time.Duration
	logger *slog.Logger
}

func (a *app) newConsole() *console {
	return &console{
		out:    a.stdout,
		json:   a.flags.json,
		dots:   isTerminal(a.stdout),
		tick:   progressTick,
		logger: a.logger,
	}
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *console) Header(title string) {
	fmt.Fprintf(c.out, "================== %s: ==================\n", title)
}

func (c *console) Object(v any) {
	if err := writeObject(c.out, v, c.json); err != nil {
		c.logger.Warn("printing result failed", slog.String("error", err.Error()))
	}
}

// Pause waits d. On a terminal it prints a dot every tick and ends the line
// when done.
func (c *console) Pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	var tick <-chan time.Time

	if c.dots {
		ticker := time.NewTicker(c.tick)
		defer ticker.Stop()
		defer fmt.Fprintln(c.out)

		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-tick:
			fmt.Fprint(c.out, ".")
		}
	}
}

// renderTable writes rows under headers.
func renderTable(w io.Writer, headers []string, rows [][]string) error {
	table := tablewriter.NewWriter(w)

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}

	table.Header(header...)

	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Errorf("rendering table: %w", err)
		}
	}

	return table.Render()
}

func (a *app) printBrands(brands []bcapi.Brand) error {
	if a.flags.json {
		return a.printObject(brands)
	}

	rows := make([][]string, 0, len(brands))
	for _, b := range brands {
		rows = append(rows, []string{b.Name, b.DisplayName})
	}

	return renderTable(a.stdout, []string{"NAME", "DISPLAY NAME"}, rows)
}

func (a *app) printAgents(agents []bcapi.Agent) error {
	if a.flags.json {
		return a.printObject(agents)
	}

	rows := make([][]string, 0, len(agents))
	for _, ag := range agents {
		locale := ""
		if ag.BusinessMessagesAgent != nil {
			locale = ag.BusinessMessagesAgent.DefaultLocale
		}

		rows = append(rows, []string{ag.Name, ag.DisplayName, locale})
	}

	return renderTable(a.stdout, []string{"NAME", "DISPLAY NAME", "LOCALE"}, rows)
}

func (a *app) printLocations(locations []bcapi.Location) error {
	if a.flags.json {
		return a.printObject(locations)
	}

	rows := make([][]string, 0, len(locations))
	for _, l := range locations {
		rows = append(rows, []string{l.Name, l.PlaceID, l.Agent})
	}

	return renderTable(a.stdout, []string{"NAME", "PLACE ID", "AGENT"}, rows)
}

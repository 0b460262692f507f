package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"midiroll/config"
	"midiroll/debug"
	"midiroll/midiparser"
	"midiroll/theme"
)

var errUsage = errors.New("usage")

type command struct {
	name   string // "dump" or "info"
	input  string
	output string
}

func main() {
	os.Exit(exitCode(os.Args[1:]))
}

// exitCode runs the command and returns the process status. Deferred
// cleanup runs before main exits.
func exitCode(args []string) int {
	if os.Getenv(config.EnvDebug) != "" {
		if err := debug.Enable(); err != nil {
			fmt.Fprintf(os.Stderr, "debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	cmd, err := parseArgs(args)
	if err != nil {
		usage()
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := cfg.ApplyEnv(".env"); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if err := run(cmd, cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage() {
	fmt.Println("MIDI file inspector")
	fmt.Println("")
	fmt.Println("Usage:")
	fmt.Println("  midiparse <file.mid> [-o out.json]  - Dump the parsed document as JSON")
	fmt.Println("  midiparse info <file.mid>           - Print a summary")
}

func parseArgs(args []string) (command, error) {
	if len(args) == 0 {
		return command{}, errUsage
	}

	if args[0] == "info" {
		if len(args) != 2 {
			return command{}, errUsage
		}
		return command{name: "info", input: args[1]}, nil
	}

	cmd := command{name: "dump"}
	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-o":
			if i+1 >= len(args) || cmd.output != "" {
				return command{}, errUsage
			}
			i++
			cmd.output = args[i]
		case strings.HasPrefix(args[i], "-"):
			return command{}, fmt.Errorf("%w: unknown flag %s", errUsage, args[i])
		case cmd.input == "":
			cmd.input = args[i]
		default:
			return command{}, errUsage
		}
	}
	if cmd.input == "" {
		return command{}, errUsage
	}
	return cmd, nil
}

func run(cmd command, cfg *config.Config, w io.Writer) error {
	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	doc, err := midiparser.Load(cmd.input, opts)
	if err != nil {
		return err
	}

	if cmd.name == "info" {
		palette, err := theme.LoadOrDefault(cfg.UI.Palette)
		if err != nil {
			return fmt.Errorf("load palette: %w", err)
		}
		fmt.Fprintln(w, summary(doc, cmd.input, theme.New(palette)))
		return nil
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if cmd.output == "" {
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if err := os.WriteFile(cmd.output, data, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(w, "Wrote %s (%d notes, %d events, %.2fs)\n", cmd.output, len(doc.Notes), len(doc.Schedule), doc.Duration)
	return nil
}

func summary(doc *midiparser.Document, path string, th *theme.Theme) string {
	title := lipgloss.NewStyle().Foreground(th.Accent()).Bold(true)
	label := lipgloss.NewStyle().Foreground(th.Muted()).Width(16)
	value := lipgloss.NewStyle().Foreground(th.FG())
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Muted()).
		Padding(0, 1)

	row := func(name string, v any) string {
		return label.Render(name) + value.Render(fmt.Sprint(v))
	}

	tempo := "120.00 bpm"
	if len(doc.TempoChanges) > 0 {
		tempo = fmt.Sprintf("%.2f bpm", doc.TempoChanges[0].BPM)
		if len(doc.TempoChanges) > 1 {
			tempo += fmt.Sprintf(" (%d changes)", len(doc.TempoChanges))
		}
	}

	lines := []string{
		title.Render(path),
		row("format", doc.Format),
		row("tracks", doc.Tracks),
		row("ticks per beat", doc.TicksPerQuarter),
		row("tempo", tempo),
		row("duration", fmt.Sprintf("%.3fs", doc.Duration)),
		row("notes", len(doc.Notes)),
		row("events", len(doc.Schedule)),
		row("sustain", len(doc.Pedals.Sustain)),
	}
	if len(doc.TimeSignatures) > 0 {
		ts := doc.TimeSignatures[0]
		lines = append(lines, row("meter", fmt.Sprintf("%d/%d", ts.Numerator, ts.Denominator)))
	}
	if len(doc.KeySignatures) > 0 {
		lines = append(lines, row("key", doc.KeySignatures[0].Key))
	}

	return box.Render(strings.Join(lines, "\n"))
}

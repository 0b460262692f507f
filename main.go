package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"midiroll/config"
	"midiroll/debug"
	"midiroll/midiparser"
	"midiroll/theme"
	"midiroll/tui"
)

func main() {
	os.Exit(start(os.Args[1:]))
}

// start opens the inspector and returns the process status, so deferred
// cleanup runs before main exits.
func start(args []string) int {
	if len(args) != 1 {
		fmt.Println("Usage: midiroll <file.mid>")
		return 2
	}
	path := args[0]

	if os.Getenv(config.EnvDebug) != "" {
		if err := debug.Enable(); err != nil {
			fmt.Printf("Warning: debug log: %v\n", err)
		}
		defer debug.Disable()
	}

	// Load config, then let .env and the environment override it
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	if err := cfg.ApplyEnv(".env"); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	opts, err := cfg.Options()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}

	// Load theme
	palette, err := theme.LoadOrDefault(cfg.UI.Palette)
	if err != nil {
		fmt.Printf("Error: load palette: %v\n", err)
		return 1
	}
	th := theme.New(palette)

	doc, err := midiparser.Load(path, opts)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	debug.Log("main", "opened", "path", path, "filter", opts.FilterNotes)

	// Create and run TUI
	m := tui.NewModel(doc, path, th, cfg.UI.TimeWindow, opts.FilterNotes)
	p := tea.NewProgram(m, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v\n", err)
		return 1
	}
	return 0
}

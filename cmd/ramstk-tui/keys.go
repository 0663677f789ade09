package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Method   key.Binding
	Chaining key.Binding
	Goals    key.Binding
	Allocate key.Binding
	Similar  key.Binding
	RollUp   key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter", "right", "l"),
		key.WithHelp("enter", "open child"),
	),
	Back: key.NewBinding(
		key.WithKeys("backspace", "left", "h"),
		key.WithHelp("←/h", "parent"),
	),
	Method: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "cycle method"),
	),
	Chaining: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "toggle chaining"),
	),
	Goals: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "goals"),
	),
	Allocate: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "allocate"),
	),
	Similar: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "similar item"),
	),
	RollUp: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "roll up changes"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Allocate, k.Method, k.Chaining, k.Enter, k.Back, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter, k.Back},
		{k.Goals, k.Allocate, k.Method, k.Chaining},
		{k.Similar, k.RollUp, k.Quit},
	}
}

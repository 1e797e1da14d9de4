// Package command is the registry of user-invokable commands and the menu
// locations they appear in. Commands run against an origin.Host.
package command

import (
	"errors"
	"fmt"
	"sort"

	"github.com/chazu/rapidorigin/pkg/origin"
)

// Status is what a command reports back to the host.
type Status int

const (
	// StatusFinished means the command ran to completion, successfully or not.
	StatusFinished Status = iota
	// StatusCancelled means the command did not run.
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusFinished:
		return "finished"
	case StatusCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Menu locations.
const (
	MenuView        = "view"
	MenuMeshContext = "edit-mesh-context"
)

var (
	ErrUnknownCommand   = errors.New("command: unknown command")
	ErrDuplicateCommand = errors.New("command: already registered")
)

// Outcome is the result of running a command.
type Outcome struct {
	Status Status        `json:"status"`
	Result origin.Result `json:"result"`
}

// Command is a named operation with an availability check.
type Command struct {
	ID          string
	Label       string
	Description string
	// Poll reports whether the command can run against h. Nil means always.
	Poll    func(h origin.Host) bool
	Execute func(h origin.Host) Outcome
}

// Registry maps command IDs to commands and menu locations to entries.
type Registry struct {
	commands map[string]*Command
	menus    map[string][]*Command
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]*Command),
		menus:    make(map[string][]*Command),
	}
}

// Register adds cmd and appends it to each of the given menus.
func (r *Registry) Register(cmd *Command, menus ...string) error {
	if cmd.ID == "" || cmd.Execute == nil {
		return fmt.Errorf("command: %q needs an ID and an Execute func", cmd.Label)
	}
	if _, ok := r.commands[cmd.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, cmd.ID)
	}
	r.commands[cmd.ID] = cmd
	for _, m := range menus {
		r.menus[m] = append(r.menus[m], cmd)
	}
	return nil
}

// Unregister removes the command and every menu entry pointing at it.
func (r *Registry) Unregister(id string) error {
	if _, ok := r.commands[id]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	delete(r.commands, id)
	for loc, entries := range r.menus {
		kept := entries[:0]
		for _, c := range entries {
			if c.ID != id {
				kept = append(kept, c)
			}
		}
		if len(kept) == 0 {
			delete(r.menus, loc)
			continue
		}
		r.menus[loc] = kept
	}
	return nil
}

// Lookup returns the command with the given ID, or nil.
func (r *Registry) Lookup(id string) *Command {
	return r.commands[id]
}

// Menu returns the commands listed under a menu location.
func (r *Registry) Menu(location string) []*Command {
	return append([]*Command(nil), r.menus[location]...)
}

// Locations returns every menu location with at least one entry, sorted.
func (r *Registry) Locations() []string {
	locs := make([]string, 0, len(r.menus))
	for l := range r.menus {
		locs = append(locs, l)
	}
	sort.Strings(locs)
	return locs
}

// Run polls and executes a command. A failed poll is not an error; it
// yields StatusCancelled.
func (r *Registry) Run(id string, h origin.Host) (Outcome, error) {
	cmd := r.commands[id]
	if cmd == nil {
		return Outcome{Status: StatusCancelled}, fmt.Errorf("%w: %s", ErrUnknownCommand, id)
	}
	if cmd.Poll != nil && !cmd.Poll(h) {
		return Outcome{Status: StatusCancelled}, nil
	}
	return cmd.Execute(h), nil
}

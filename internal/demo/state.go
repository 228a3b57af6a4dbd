// Package demo is a small application built on a composite siphon: a
// countdown that ticks on its own and a user list fetched from a backend on
// demand. Each feature lives in its own delegate and shares one State.
package demo

import (
	"fmt"
	"strings"
	"time"
)

// User is a backend record.
type User struct {
	Name string
}

// State is shared by every delegate.
type State struct {
	Elapsed         time.Duration
	GetUsersEnabled bool
	Users           []User
}

// InitialState is the state the app starts in.
func InitialState() State {
	return State{GetUsersEnabled: true}
}

func (s State) String() string {
	names := make([]string, len(s.Users))
	for i, u := range s.Users {
		names[i] = u.Name
	}
	button := "enabled"
	if !s.GetUsersEnabled {
		button = "disabled"
	}
	return fmt.Sprintf("elapsed=%s get-users=%s users=[%s]", s.Elapsed, button, strings.Join(names, " "))
}

// Event is a user interaction.
type Event int

const (
	ClickGetUsers Event = iota
	Reset
)

func (e Event) String() string {
	switch e {
	case ClickGetUsers:
		return "ClickGetUsers"
	case Reset:
		return "Reset"
	default:
		return fmt.Sprintf("Event(%d)", int(e))
	}
}

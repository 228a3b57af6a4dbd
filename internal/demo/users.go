package demo

import (
	"context"

	"github.com/on-the-ground/siphon_go/siphon"
	"github.com/on-the-ground/siphon_go/siphon/stream"
	"go.uber.org/zap"
)

type usersChange interface{ isUsersChange() }

type clickGetUsers struct{}

type usersLoaded struct{ users []User }

type usersFailed struct{ err error }

func (clickGetUsers) isUsersChange() {}
func (usersLoaded) isUsersChange()   {}
func (usersFailed) isUsersChange()   {}

type usersAction interface{ isUsersAction() }

type getUsers struct{}

func (getUsers) isUsersAction() {}

// Users fetches the user list when the button is clicked. The button stays
// disabled while a fetch is in flight.
type Users struct {
	backend Backend
	logger  *zap.Logger
}

// NewUsers fetches from backend.
func NewUsers(backend Backend, logger *zap.Logger) *Users {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Users{backend: backend, logger: logger}
}

func (d *Users) Register(c *siphon.Composite[State]) {
	siphon.RegisterDelegate(c, func(dg *siphon.Delegate[State, usersChange, usersAction]) {
		siphon.On(dg, func(s State, _ clickGetUsers) siphon.Effect[State, usersAction] {
			if !s.GetUsersEnabled {
				return dg.Only(s)
			}
			s.GetUsersEnabled = false
			return dg.With(s, getUsers{})
		})
		siphon.On(dg, func(s State, c usersLoaded) siphon.Effect[State, usersAction] {
			s.Users = c.users
			s.GetUsersEnabled = true
			return dg.Only(s)
		})
		siphon.On(dg, func(s State, _ usersFailed) siphon.Effect[State, usersAction] {
			s.GetUsersEnabled = true
			return dg.Only(s)
		})
		siphon.Perform(dg.Actions(), d.getUsers)
	})
}

func (d *Users) getUsers(ctx context.Context, _ getUsers) <-chan usersChange {
	return stream.Generate(ctx, func(ctx context.Context, yield func(usersChange) bool) {
		users, err := d.backend.GetUsers(ctx)
		if err != nil {
			if ctx.Err() == nil {
				d.logger.Warn("get users failed", zap.Error(err))
			}
			yield(usersFailed{err: err})
			return
		}
		yield(usersLoaded{users: users})
	})
}

func (d *Users) OnEvent(_ context.Context, c *siphon.Composite[State], e Event) (bool, error) {
	if e != ClickGetUsers {
		return false, nil
	}
	return true, c.Change(clickGetUsers{})
}

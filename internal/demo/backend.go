package demo

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	memdb "github.com/hashicorp/go-memdb"
)

const (
	userTable = "user"
	userIndex = "id"
)

// DefaultNames seeds the directory.
var DefaultNames = []string{"Nick", "Larry", "Jack", "Patty", "Greg", "Andrew", "Bob", "Fred"}

// ErrNoUsers is returned by a directory with an empty table.
var ErrNoUsers = errors.New("no users")

// Backend serves the user list.
type Backend interface {
	GetUsers(ctx context.Context) ([]User, error)
}

var userSchema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		userTable: {
			Name: userTable,
			Indexes: map[string]*memdb.IndexSchema{
				userIndex: {
					Name:    userIndex,
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "Name"},
				},
			},
		},
	},
}

// Directory is an in-memory user table. GetUsers answers after a random
// latency with two users drawn at random.
type Directory struct {
	db       *memdb.MemDB
	minDelay time.Duration
	maxDelay time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

// DirectoryOption configures a Directory.
type DirectoryOption func(*Directory)

// WithLatency sets the latency range of GetUsers.
func WithLatency(min, max time.Duration) DirectoryOption {
	return func(d *Directory) {
		d.minDelay, d.maxDelay = min, max
	}
}

// WithSeed makes the draws reproducible.
func WithSeed(seed uint64) DirectoryOption {
	return func(d *Directory) {
		d.rnd = rand.New(rand.NewPCG(seed, seed))
	}
}

// NewDirectory creates a directory holding one user per name.
func NewDirectory(names []string, opts ...DirectoryOption) (*Directory, error) {
	db, err := memdb.NewMemDB(userSchema)
	if err != nil {
		return nil, fmt.Errorf("create user table: %w", err)
	}

	txn := db.Txn(true)
	defer txn.Abort()
	for _, name := range names {
		if err := txn.Insert(userTable, User{Name: name}); err != nil {
			return nil, fmt.Errorf("insert user %q: %w", name, err)
		}
	}
	txn.Commit()

	d := &Directory{
		db:       db,
		minDelay: time.Second,
		maxDelay: 2 * time.Second,
		rnd:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Lookup returns the user with the given name.
func (d *Directory) Lookup(name string) (User, bool, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(userTable, userIndex, name)
	if err != nil || raw == nil {
		return User{}, false, err
	}
	return raw.(User), true, nil
}

func (d *Directory) all() ([]User, error) {
	txn := d.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(userTable, userIndex)
	if err != nil {
		return nil, err
	}
	var users []User
	for raw := it.Next(); raw != nil; raw = it.Next() {
		users = append(users, raw.(User))
	}
	return users, nil
}

// GetUsers draws two users, possibly the same one twice.
func (d *Directory) GetUsers(ctx context.Context) ([]User, error) {
	d.mu.Lock()
	delay := d.minDelay
	if span := d.maxDelay - d.minDelay; span > 0 {
		delay += time.Duration(d.rnd.Int64N(int64(span)))
	}
	d.mu.Unlock()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}

	users, err := d.all()
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return nil, ErrNoUsers
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	return []User{users[d.rnd.IntN(len(users))], users[d.rnd.IntN(len(users))]}, nil
}

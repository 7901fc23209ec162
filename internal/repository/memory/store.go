// Package memory is an in-process repository.Store backed by go-memdb.
// It serves STORAGE=memory and the handler tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/hashicorp/go-memdb"

	"github.com/sudo-init-do/coderr/internal/models"
	"github.com/sudo-init-do/coderr/internal/repository"
)

const (
	tableUsers    = "users"
	tableTokens   = "tokens"
	tableProfiles = "profiles"
	tableOffers   = "offers"
	tableDetails  = "offer_details"
	tableOrders   = "orders"
	tableReviews  = "reviews"
)

func intIndex(name, field string, unique bool) *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: name, Unique: unique, Indexer: &memdb.IntFieldIndex{Field: field}}
}

func stringIndex(name, field string, unique bool) *memdb.IndexSchema {
	return &memdb.IndexSchema{Name: name, Unique: unique, Indexer: &memdb.StringFieldIndex{Field: field}}
}

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tableUsers: {
			Name: tableUsers,
			Indexes: map[string]*memdb.IndexSchema{
				"id":       intIndex("id", "ID", true),
				"username": stringIndex("username", "Username", true),
				"email":    stringIndex("email", "Email", true),
				"type":     stringIndex("type", "Type", false),
			},
		},
		tableTokens: {
			Name: tableTokens,
			Indexes: map[string]*memdb.IndexSchema{
				"id":      stringIndex("id", "Key", true),
				"user_id": intIndex("user_id", "UserID", true),
			},
		},
		tableProfiles: {
			Name: tableProfiles,
			Indexes: map[string]*memdb.IndexSchema{
				"id": intIndex("id", "UserID", true),
			},
		},
		tableOffers: {
			Name: tableOffers,
			Indexes: map[string]*memdb.IndexSchema{
				"id":      intIndex("id", "ID", true),
				"user_id": intIndex("user_id", "UserID", false),
			},
		},
		tableDetails: {
			Name: tableDetails,
			Indexes: map[string]*memdb.IndexSchema{
				"id":       intIndex("id", "ID", true),
				"offer_id": intIndex("offer_id", "OfferID", false),
			},
		},
		tableOrders: {
			Name: tableOrders,
			Indexes: map[string]*memdb.IndexSchema{
				"id":       intIndex("id", "ID", true),
				"customer": intIndex("customer", "CustomerUserID", false),
				"business": intIndex("business", "BusinessUserID", false),
			},
		},
		tableReviews: {
			Name: tableReviews,
			Indexes: map[string]*memdb.IndexSchema{
				"id": intIndex("id", "ID", true),
				"pair": {
					Name:   "pair",
					Unique: true,
					Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
						&memdb.IntFieldIndex{Field: "BusinessUserID"},
						&memdb.IntFieldIndex{Field: "ReviewerID"},
					}},
				},
				"business": intIndex("business", "BusinessUserID", false),
				"reviewer": intIndex("reviewer", "ReviewerID", false),
			},
		},
	},
}

// DB owns the memdb instance and the id sequences.
type DB struct {
	mem *memdb.MemDB
	now func() time.Time

	userSeq   atomic.Int64
	offerSeq  atomic.Int64
	detailSeq atomic.Int64
	orderSeq  atomic.Int64
	reviewSeq atomic.Int64
}

func NewDB() (*DB, error) {
	mem, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("memory.NewDB: %w", err)
	}
	return &DB{mem: mem, now: time.Now}, nil
}

// NewStore wires every repository onto a fresh in-memory database.
func NewStore() (*repository.Store, error) {
	db, err := NewDB()
	if err != nil {
		return nil, err
	}
	return &repository.Store{
		Users:    &userRepo{db: db},
		Tokens:   &tokenRepo{db: db},
		Profiles: &profileRepo{db: db},
		Offers:   &offerRepo{db: db},
		Orders:   &orderRepo{db: db},
		Reviews:  &reviewRepo{db: db},
		Stats:    &statsRepo{db: db},
		Ping:     func(context.Context) error { return nil },
	}, nil
}

// first looks up a single row and reports ErrNotFound when absent.
func first(txn *memdb.Txn, table, index string, args ...any) (any, error) {
	raw, err := txn.First(table, index, args...)
	if err != nil {
		return nil, fmt.Errorf("memory.%s.%s: %w", table, index, err)
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	return raw, nil
}

func all(txn *memdb.Txn, table, index string, args ...any) ([]any, error) {
	it, err := txn.Get(table, index, args...)
	if err != nil {
		return nil, fmt.Errorf("memory.%s.%s: %w", table, index, err)
	}
	var out []any
	for obj := it.Next(); obj != nil; obj = it.Next() {
		out = append(out, obj)
	}
	return out, nil
}

func sortByUserID(views []models.ProfileView) {
	sort.Slice(views, func(i, j int) bool { return views[i].UserID < views[j].UserID })
}

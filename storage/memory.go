package storage

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/tidwall/buntdb"

	"polycopy/model"
)

type Bunt struct {
	lastID int64
	db     *buntdb.DB
}

// FromMemory creates an in-memory ledger. Used in tests and dry runs.
func FromMemory() (Storage, error) {
	return newBunt(":memory:")
}

// FromFile creates a file-backed buntdb ledger.
func FromFile(file string) (Storage, error) {
	return newBunt(file)
}

func newBunt(sourceFile string) (Storage, error) {
	db, err := buntdb.Open(sourceFile)
	if err != nil {
		return nil, err
	}

	err = db.CreateIndex("created_index", "*", buntdb.IndexJSON("created_at"))
	if err != nil {
		return nil, err
	}

	// Reopening an existing file must continue the ID sequence, otherwise
	// new entries overwrite the oldest ledger keys.
	var lastID int64
	err = db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("", func(key, value string) bool {
			if id, err := strconv.ParseInt(key, 10, 64); err == nil && id > lastID {
				lastID = id
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}

	return &Bunt{db: db, lastID: lastID}, nil
}

func (b *Bunt) Close() error {
	return b.db.Close()
}

func (b *Bunt) CreateCopyTrade(trade *model.CopyTrade) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		b.lastID++
		trade.ID = b.lastID

		content, err := json.Marshal(trade)
		if err != nil {
			return err
		}

		_, _, err = tx.Set(strconv.FormatInt(trade.ID, 10), string(content), nil)
		return err
	})
}

func (b *Bunt) UpdateCopyTrade(trade *model.CopyTrade) error {
	return b.db.Update(func(tx *buntdb.Tx) error {
		id := strconv.FormatInt(trade.ID, 10)

		content, err := json.Marshal(trade)
		if err != nil {
			return err
		}

		_, _, err = tx.Set(id, string(content), nil)
		return err
	})
}

func (b *Bunt) CopyTrades(filters ...TradeFilter) ([]*model.CopyTrade, error) {
	trades := make([]*model.CopyTrade, 0)
	err := b.db.View(func(tx *buntdb.Tx) error {
		return tx.Ascend("created_index", func(key, value string) bool {
			var trade model.CopyTrade
			if err := json.Unmarshal([]byte(value), &trade); err != nil {
				fmt.Println(err)
				return true
			}

			if isFulfilled(trade, filters...) {
				trades = append(trades, &trade)
			}
			return true
		})
	})
	if err != nil {
		return nil, err
	}
	return trades, nil
}

func isFulfilled(trade model.CopyTrade, filters ...TradeFilter) bool {
	for _, filter := range filters {
		if !filter(trade) {
			return false
		}
	}
	return true
}

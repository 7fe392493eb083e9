package data

import (
	"path/filepath"
)

// Stores bundles the persistence layer. The ledger lives in its own
// database file next to the message database: the two have no
// transactional coupling, which is why the message store's unique
// constraint doubles as the second idempotency barrier.
type Stores struct {
	Messages *Store
	Ledger   *Ledger
}

// Open opens the message store at dbPath and the ledger alongside it.
func Open(dbPath string) (*Stores, error) {
	messages, err := NewStore(dbPath)
	if err != nil {
		return nil, err
	}

	ledgerPath := filepath.Join(filepath.Dir(dbPath), "ledger.db")
	ledger, err := NewLedger(ledgerPath)
	if err != nil {
		messages.Close()
		return nil, err
	}

	return &Stores{Messages: messages, Ledger: ledger}, nil
}

// Close closes both databases.
func (s *Stores) Close() {
	s.Ledger.Close()
	s.Messages.Close()
}

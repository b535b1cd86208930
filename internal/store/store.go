package store

import (
	"encoding/json"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"reversal-alert-bot/internal/types"
)

var (
	ErrAlreadyTracked = errors.New("token is already tracked")
	ErrInvalidTarget  = errors.New("target percent must be positive")
	ErrNotFound       = errors.New("token not found")
	ErrAmbiguousMatch = errors.New("matcher resolves to more than one token")
)

// persistedToken is the on-disk shape of one tracked token. Tokens are
// persisted as an ordered array so insertion order survives restarts.
type persistedToken struct {
	Address string `json:"address"`
	types.TrackingRecord
}

// Store is the durable home of all tracking records. It is the only state
// shared between the Telegram command loop and the price monitor loop; every
// operation is serialized under a single mutex and no network call ever
// happens while the lock is held.
type Store struct {
	mu     sync.Mutex
	path   string
	tokens map[string]types.TrackingRecord
	order  []string
}

// Open loads the store from path. A missing or unreadable file yields an
// empty store with a logged warning, never a startup failure.
func Open(path string) *Store {
	s := &Store{
		path:   path,
		tokens: make(map[string]types.TrackingRecord),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("⚠️ Could not read %s, starting empty: %v", path, err)
		}
		return s
	}

	var persisted []persistedToken
	if err := json.Unmarshal(data, &persisted); err != nil {
		log.Warnf("⚠️ Corrupt token data in %s, starting empty: %v", path, err)
		return s
	}

	for _, t := range persisted {
		if _, ok := s.tokens[t.Address]; ok {
			continue
		}
		s.tokens[t.Address] = t.TrackingRecord
		s.order = append(s.order, t.Address)
	}

	log.Infof("Loaded %d tokens from %s", len(s.tokens), path)
	return s
}

// Add starts tracking a token, seeding its local bottom with the price
// observed at add time. The existing record is left untouched on duplicates.
func (s *Store) Add(address string, targetPercent, seedPrice float64, name, symbol string) error {
	if targetPercent <= 0 {
		return ErrInvalidTarget
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tokens[address]; ok {
		return ErrAlreadyTracked
	}

	s.tokens[address] = types.TrackingRecord{
		TargetPercent: targetPercent,
		LocalBottom:   seedPrice,
		AddedAt:       time.Now(),
		Name:          name,
		Symbol:        symbol,
	}
	s.order = append(s.order, address)
	s.persistLocked()
	return nil
}

// Remove stops tracking the token resolved by matcher. An exact address match
// wins; otherwise the matcher must select exactly one stored address by
// prefix or substring. Ambiguous matchers remove nothing.
func (s *Store) Remove(matcher string) (types.TrackingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	address := matcher
	if _, ok := s.tokens[address]; !ok {
		var candidates []string
		for _, a := range s.order {
			if strings.HasPrefix(a, matcher) || strings.Contains(a, matcher) {
				candidates = append(candidates, a)
			}
		}
		switch len(candidates) {
		case 0:
			return types.TrackingRecord{}, ErrNotFound
		case 1:
			address = candidates[0]
		default:
			return types.TrackingRecord{}, ErrAmbiguousMatch
		}
	}

	record := s.tokens[address]
	s.deleteLocked(address)
	s.persistLocked()
	return record, nil
}

// Get returns a copy of the record for address.
func (s *Store) Get(address string) (types.TrackingRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tokens[address]
	return record, ok
}

// ListAll returns all tracked tokens in insertion order.
func (s *Store) ListAll() []types.TrackedToken {
	s.mu.Lock()
	defer s.mu.Unlock()

	tokens := make([]types.TrackedToken, 0, len(s.order))
	for _, address := range s.order {
		tokens = append(tokens, types.TrackedToken{Address: address, Record: s.tokens[address]})
	}
	return tokens
}

// Len reports the number of tracked tokens.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

// UpdateBottom lowers the local bottom to price if price is below it.
// The bottom never rises. Absent records are a no-op: the token may have
// been removed by a concurrent command.
func (s *Store) UpdateBottom(address string, price float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tokens[address]
	if !ok || price >= record.LocalBottom {
		return
	}

	record.LocalBottom = price
	s.tokens[address] = record
	s.persistLocked()
}

// TakeIfReversed atomically checks the reversal condition against
// currentPrice and, when met, removes and returns the record. Check and
// removal are one step under the lock, so two overlapping ticks can never
// both fire for the same token.
func (s *Store) TakeIfReversed(address string, currentPrice float64) (types.TrackingRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tokens[address]
	if !ok || record.LocalBottom <= 0 {
		return types.TrackingRecord{}, false
	}

	percentGain := (currentPrice - record.LocalBottom) / record.LocalBottom * 100
	if percentGain < record.TargetPercent {
		return types.TrackingRecord{}, false
	}

	s.deleteLocked(address)
	s.persistLocked()
	return record, true
}

func (s *Store) deleteLocked(address string) {
	delete(s.tokens, address)
	for i, a := range s.order {
		if a == address {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

// persistLocked writes the full store state to disk via a temp file and an
// atomic rename, so a crash mid-write can never leave a torn file. Write
// failures are logged, not returned: the in-memory state stays authoritative
// for the running process.
func (s *Store) persistLocked() {
	persisted := make([]persistedToken, 0, len(s.order))
	for _, address := range s.order {
		persisted = append(persisted, persistedToken{Address: address, TrackingRecord: s.tokens[address]})
	}

	data, err := json.MarshalIndent(persisted, "", "  ")
	if err != nil {
		log.Errorf("❌ Failed to marshal token data, durability compromised: %v", err)
		return
	}

	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		log.Errorf("❌ Failed to write %s, durability compromised: %v", tmpPath, err)
		return
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		log.Errorf("❌ Failed to replace %s, durability compromised: %v", s.path, err)
	}
}

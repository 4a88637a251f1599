// Package audit keeps the book's event trail on disk. It is a Sink: events are
// appended as the book raises them and can be replayed in order later.
package audit

import (
	"encoding/binary"
	"errors"
	"fmt"

	"matchbook/internal/events"

	"github.com/cockroachdb/pebble"
	"github.com/mailru/easyjson"
	"github.com/rs/zerolog/log"
)

var ErrInvalidKey = errors.New("invalid audit key")

const (
	keyPrefix     = "event/"
	keyUpperBound = "event0" // '/' + 1
)

// Store is an append only event log in pebble, keyed by event sequence.
type Store struct {
	db   *pebble.DB
	sync bool
}

type Options struct {
	// Sync forces every append to disk before returning.
	Sync bool
	// Options are handed to pebble as is. Nil uses pebble's defaults.
	Options *pebble.Options
}

func Open(dir string, opts Options) (*Store, error) {
	pebbleOpts := opts.Options
	if pebbleOpts == nil {
		pebbleOpts = &pebble.Options{}
	}
	db, err := pebble.Open(dir, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("opening audit store at %q: %w", dir, err)
	}
	return &Store{db: db, sync: opts.Sync}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Emit appends event. Failures are logged, the book never waits on the audit
// trail.
func (s *Store) Emit(event events.Event) {
	if err := s.Append(event); err != nil {
		log.Error().
			Err(err).
			Uint64("seq", event.Seq).
			Str("kind", event.Kind.String()).
			Msg("unable to write audit event")
	}
}

func (s *Store) Append(event events.Event) error {
	value, err := easyjson.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding event %d: %w", event.Seq, err)
	}
	writeOpts := pebble.NoSync
	if s.sync {
		writeOpts = pebble.Sync
	}
	return s.db.Set(keyFor(event.Seq), value, writeOpts)
}

// Get returns the event recorded under seq.
func (s *Store) Get(seq uint64) (events.Event, error) {
	value, closer, err := s.db.Get(keyFor(seq))
	if err != nil {
		return events.Event{}, err
	}
	defer closer.Close()

	var event events.Event
	if err := easyjson.Unmarshal(value, &event); err != nil {
		return events.Event{}, fmt.Errorf("decoding event %d: %w", seq, err)
	}
	return event, nil
}

// Replay calls fn for every stored event in sequence order, stopping at the
// first error.
func (s *Store) Replay(fn func(event events.Event) error) error {
	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(keyPrefix),
		UpperBound: []byte(keyUpperBound),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		seq, err := parseKey(iter.Key())
		if err != nil {
			return err
		}
		var event events.Event
		if err := easyjson.Unmarshal(iter.Value(), &event); err != nil {
			return fmt.Errorf("decoding event %d: %w", seq, err)
		}
		if err := fn(event); err != nil {
			return err
		}
	}
	return iter.Error()
}

// ---- Helpers ----

// keyFor lays keys out big endian so that byte order is sequence order.
func keyFor(seq uint64) []byte {
	key := make([]byte, len(keyPrefix)+8)
	copy(key, keyPrefix)
	binary.BigEndian.PutUint64(key[len(keyPrefix):], seq)
	return key
}

func parseKey(key []byte) (uint64, error) {
	if len(key) != len(keyPrefix)+8 || string(key[:len(keyPrefix)]) != keyPrefix {
		return 0, fmt.Errorf("%w: %x", ErrInvalidKey, key)
	}
	return binary.BigEndian.Uint64(key[len(keyPrefix):]), nil
}

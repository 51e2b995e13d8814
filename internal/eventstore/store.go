// Package eventstore is an append-only, line-delimited JSON journal of account records.
package eventstore

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/nathanyu/account-ledger/internal/domain"
)

// EventStore appends account events to a file and replays them on startup.
type EventStore struct {
	filePath string
	file     *os.File
	mu       sync.Mutex
}

// NewEventStore opens (or creates) the journal at filePath.
func NewEventStore(filePath string) (*EventStore, error) {
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create event store directory: %w", err)
		}
	}

	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event store file: %w", err)
	}

	return &EventStore{
		filePath: filePath,
		file:     file,
	}, nil
}

// Path returns the journal file location.
func (s *EventStore) Path() string {
	return s.filePath
}

// Append writes events in order and syncs once.
func (s *EventStore) Append(events ...domain.Event) error {
	if len(events) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return errors.New("event store is closed")
	}

	var buf []byte
	for _, event := range events {
		data, err := domain.SerializeEvent(event)
		if err != nil {
			return fmt.Errorf("failed to serialize event: %w", err)
		}
		buf = append(buf, data...)
		buf = append(buf, '\n')
	}

	if _, err := s.file.Write(buf); err != nil {
		return fmt.Errorf("failed to write events: %w", err)
	}

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync event store: %w", err)
	}

	return nil
}

// Replay calls fn for each stored event in append order.
func (s *EventStore) Replay(fn func(domain.Event) error) (int, error) {
	file, err := os.Open(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to open event store for reading: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	lineNum, count := 0, 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		event, err := domain.DeserializeEvent(line)
		if err != nil {
			return count, fmt.Errorf("failed to deserialize event at line %d: %w", lineNum, err)
		}
		if err := fn(event); err != nil {
			return count, fmt.Errorf("failed to apply event at line %d: %w", lineNum, err)
		}
		count++
	}

	if err := scanner.Err(); err != nil {
		return count, fmt.Errorf("error reading event store: %w", err)
	}

	return count, nil
}

// Close closes the journal file.
func (s *EventStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	return err
}

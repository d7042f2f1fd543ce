// /internal/storage/storage.go
package storage

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/keshon/datastore"
)

const commandHistoryLimit int = 20

type Storage struct {
	ds     *datastore.DataStore
	cancel context.CancelFunc
	mu     sync.Mutex // serialises read-modify-write of guild records
}

type CommandHistoryRecord struct {
	ChannelID string    `json:"channel_id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Command   string    `json:"command"`
	Param     string    `json:"param"`
	Datetime  time.Time `json:"datetime"`
}

// Record is everything persisted for one guild.
type Record struct {
	Prefix          string                 `json:"prefix,omitempty"`
	Locale          string                 `json:"locale,omitempty"`
	CommandsHistory []CommandHistoryRecord `json:"cmd_history"`
}

func New(filePath string) (*Storage, error) {
	ctx, cancel := context.WithCancel(context.Background())
	ds, err := datastore.New(ctx, filePath)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open datastore %s: %w", filePath, err)
	}
	return &Storage{ds: ds, cancel: cancel}, nil
}

// Close stops the autosave loop and flushes the store to disk.
func (s *Storage) Close() error {
	s.cancel()
	return s.ds.Close()
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	record := &Record{CommandsHistory: []CommandHistoryRecord{}}
	if _, err := s.ds.Get(guildID, record); err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	return record, nil
}

func (s *Storage) update(guildID string, fn func(*Record)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	fn(record)
	if err := s.ds.Set(guildID, record); err != nil {
		return fmt.Errorf("save guild %s: %w", guildID, err)
	}
	return nil
}

// Prefix returns the guild's custom prefix, or "" when none is set.
func (s *Storage) Prefix(guildID string) (string, error) {
	if guildID == "" {
		return "", nil
	}
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.Prefix, nil
}

func (s *Storage) SetPrefix(guildID, prefix string) error {
	if guildID == "" {
		return fmt.Errorf("prefix can only be set for a guild")
	}
	return s.update(guildID, func(r *Record) { r.Prefix = prefix })
}

// Locale returns the guild's language, or "" when none is set.
func (s *Storage) Locale(guildID string) (string, error) {
	if guildID == "" {
		return "", nil
	}
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return "", err
	}
	return record.Locale, nil
}

func (s *Storage) SetLocale(guildID, locale string) error {
	if guildID == "" {
		return fmt.Errorf("locale can only be set for a guild")
	}
	return s.update(guildID, func(r *Record) { r.Locale = locale })
}

// AppendCommandToHistory appends a command history record for a guild, keeping the last
// commandHistoryLimit entries.
func (s *Storage) AppendCommandToHistory(guildID string, command CommandHistoryRecord) error {
	if guildID == "" {
		return nil
	}
	return s.update(guildID, func(r *Record) {
		r.CommandsHistory = append(r.CommandsHistory, command)
		if len(r.CommandsHistory) > commandHistoryLimit {
			r.CommandsHistory = r.CommandsHistory[len(r.CommandsHistory)-commandHistoryLimit:]
		}
	})
}

func (s *Storage) FetchCommandHistory(guildID string) ([]CommandHistoryRecord, error) {
	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return nil, err
	}
	return record.CommandsHistory, nil
}

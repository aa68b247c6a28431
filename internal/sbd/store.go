package sbd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// sessionTimeLayout is the filename layout used by the receiving server.
const sessionTimeLayout = "060102_150405"

// Extension is the filename extension for stored messages.
const Extension = ".sbd"

// Store provides read access to a collection of messages.
type Store interface {
	// Messages returns every message in the store.
	Messages() ([]Message, error)

	// MessagesForIMEI returns the messages from a single modem.
	MessagesForIMEI(imei string) ([]Message, error)
}

// FilesystemStore reads messages from a directory tree with one
// subdirectory per IMEI.
type FilesystemStore struct {
	root string
}

// OpenFilesystemStore opens the store rooted at dir. The directory must
// exist.
func OpenFilesystemStore(dir string) (*FilesystemStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("sbd: open store: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sbd: open store: %s is not a directory", dir)
	}
	return &FilesystemStore{root: dir}, nil
}

// Root returns the store's root directory.
func (s *FilesystemStore) Root() string { return s.root }

// Messages returns every message under the store's root. Entries that do
// not look like message files are skipped, not errors — receiving servers
// drop all kinds of scratch files next to the real ones.
func (s *FilesystemStore) Messages() ([]Message, error) {
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("sbd: list store: %w", err)
	}
	var messages []Message
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		fromIMEI, err := s.MessagesForIMEI(entry.Name())
		if err != nil {
			return nil, err
		}
		messages = append(messages, fromIMEI...)
	}
	sortMessages(messages)
	return messages, nil
}

// MessagesForIMEI returns the messages in the store's subdirectory for the
// given modem. A missing subdirectory means no messages, not an error.
func (s *FilesystemStore) MessagesForIMEI(imei string) ([]Message, error) {
	dir := filepath.Join(s.root, imei)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("sbd: list %s: %w", imei, err)
	}
	var messages []Message
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		sessionTime, ok := SessionTimeFromPath(entry.Name())
		if !ok {
			continue
		}
		payload, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("sbd: read %s: %w", entry.Name(), err)
		}
		messages = append(messages, NewMessage(imei, sessionTime, payload))
	}
	sortMessages(messages)
	return messages, nil
}

// Store writes a message into the filesystem layout, creating the IMEI
// subdirectory if needed. Used by the fetch mirror and by tests.
func (s *FilesystemStore) Store(m Message) error {
	dir := filepath.Join(s.root, m.IMEI())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("sbd: store message: %w", err)
	}
	name := m.SessionTime().Format(sessionTimeLayout) + Extension
	if err := os.WriteFile(filepath.Join(dir, name), m.Payload(), 0o644); err != nil {
		return fmt.Errorf("sbd: store message: %w", err)
	}
	return nil
}

// SessionTimeFromPath parses the session time encoded in a message filename.
// The second return value is false if the path does not name a message file.
func SessionTimeFromPath(path string) (time.Time, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, Extension) {
		return time.Time{}, false
	}
	t, err := time.Parse(sessionTimeLayout, strings.TrimSuffix(base, Extension))
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

func sortMessages(messages []Message) {
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Before(messages[j])
	})
}

// MemoryStore is an in-memory Store for tests and ad-hoc pipelines.
type MemoryStore struct {
	messages []Message
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Add appends a message to the store.
func (s *MemoryStore) Add(m Message) { s.messages = append(s.messages, m) }

// Messages returns all stored messages in deterministic order.
func (s *MemoryStore) Messages() ([]Message, error) {
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	sortMessages(out)
	return out, nil
}

// MessagesForIMEI returns stored messages from the given modem.
func (s *MemoryStore) MessagesForIMEI(imei string) ([]Message, error) {
	var out []Message
	for _, m := range s.messages {
		if m.IMEI() == imei {
			out = append(out, m)
		}
	}
	sortMessages(out)
	return out, nil
}

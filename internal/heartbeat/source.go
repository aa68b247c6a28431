package heartbeat

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/gadomski/atlas/internal/sbd"
)

// Source reassembles heartbeats out of a message store.
//
// Messages are grouped per modem before extraction so records from different
// stations never interleave inside one builder. An allow-list restricts the
// source to specific IMEI numbers; an empty allow-list admits every modem.
type Source struct {
	store     sbd.Store
	allowlist []string
}

// NewSource creates a source reading from store, with an empty allow-list.
func NewSource(store sbd.Store) *Source {
	return &Source{store: store}
}

// Allow adds an IMEI number to the allow-list.
func (s *Source) Allow(imei string) {
	s.allowlist = append(s.allowlist, imei)
}

// Heartbeats reassembles every available heartbeat, merged across modems and
// sorted ascending by start time.
//
// A record that fails finalization is logged and skipped rather than
// aborting the batch: one garbled transmission from the field must not blank
// the whole dashboard. Store I/O failures abort.
func (s *Source) Heartbeats() ([]Heartbeat, error) {
	buckets, err := s.collect()
	if err != nil {
		return nil, err
	}

	var heartbeats []Heartbeat
	for imei, messages := range buckets {
		sort.SliceStable(messages, func(i, j int) bool {
			return messages[i].Before(messages[j])
		})
		builders, _, err := ExtractBuilders(messages)
		if err != nil {
			return nil, fmt.Errorf("heartbeat: extract for %s: %w", imei, err)
		}
		for _, b := range builders {
			h, err := b.Heartbeat()
			if err != nil {
				slog.Warn("heartbeat: skipping unparseable record",
					"imei", imei, "err", err)
				continue
			}
			heartbeats = append(heartbeats, *h)
		}
	}

	sort.SliceStable(heartbeats, func(i, j int) bool {
		return heartbeats[i].StartTime.Before(heartbeats[j].StartTime)
	})
	return heartbeats, nil
}

// collect retrieves messages grouped per IMEI, honoring the allow-list.
func (s *Source) collect() (map[string][]sbd.Message, error) {
	buckets := make(map[string][]sbd.Message)
	if len(s.allowlist) == 0 {
		messages, err := s.store.Messages()
		if err != nil {
			return nil, fmt.Errorf("heartbeat: list messages: %w", err)
		}
		for _, m := range messages {
			buckets[m.IMEI()] = append(buckets[m.IMEI()], m)
		}
		return buckets, nil
	}
	for _, imei := range s.allowlist {
		messages, err := s.store.MessagesForIMEI(imei)
		if err != nil {
			return nil, fmt.Errorf("heartbeat: list messages for %s: %w", imei, err)
		}
		buckets[imei] = messages
	}
	return buckets, nil
}

package heartbeat

import (
	"errors"

	"github.com/gadomski/atlas/internal/sbd"
)

// ExtractBuilders drains messages through builders, in order.
//
// Each message either starts a new builder, folds into the current one, or
// ends up in the leftovers. Leftovers preserve their relative input order and
// can be retried against a later, larger batch: continuation fragments often
// arrive in a different delivery window than their header fragment.
//
// Only completed (full) builders are returned. A builder abandoned mid-way
// releases its constituent messages back into the leftovers, also in order.
// Encoding failures are real errors and abort the pass.
func ExtractBuilders(messages []sbd.Message) (builders []Builder, leftovers []sbd.Message, err error) {
	var current Builder
	abandon := func() {
		leftovers = append(leftovers, current.Messages()...)
		current = nil
	}
	promote := func() {
		builders = append(builders, current)
		current = nil
	}

	for _, m := range messages {
		b, err := NewBuilder(m)
		if err == nil {
			// A new record starts; an unfinished current record is junk.
			if current != nil && !current.Full() {
				abandon()
			}
			if current != nil {
				promote()
			}
			current = b
			continue
		}
		if !errors.Is(err, ErrRejectedMessage) {
			return nil, nil, err
		}
		if current == nil {
			leftovers = append(leftovers, m)
			continue
		}
		err = current.Push(m)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrRejectedMessage) {
			return nil, nil, err
		}
		// The current builder did not want it. If the builder is complete
		// it survives; otherwise it is junk too.
		if current.Full() {
			promote()
		} else {
			abandon()
		}
		leftovers = append(leftovers, m)
	}

	if current != nil {
		if current.Full() {
			promote()
		} else {
			abandon()
		}
	}
	return builders, leftovers, nil
}

// ExtractHeartbeats runs ExtractBuilders and finalizes every completed
// builder. Any finalization failure aborts the whole batch; use
// ExtractBuilders directly for per-record error handling.
func ExtractHeartbeats(messages []sbd.Message) ([]*Heartbeat, []sbd.Message, error) {
	builders, leftovers, err := ExtractBuilders(messages)
	if err != nil {
		return nil, nil, err
	}
	heartbeats := make([]*Heartbeat, 0, len(builders))
	for _, b := range builders {
		h, err := b.Heartbeat()
		if err != nil {
			return nil, nil, err
		}
		heartbeats = append(heartbeats, h)
	}
	return heartbeats, leftovers, nil
}

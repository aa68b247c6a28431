// Package heartbeat reassembles station status reports from Iridium
// short-burst-data messages.
//
// A heartbeat describes the ATLAS station at a point in time: weather,
// battery state of charge, and recent scanner activity. One heartbeat can be
// split across any number of physical messages, messages from different
// heartbeats interleave, and two incompatible wire formats coexist because
// the station firmware changed between field seasons. There is no reliable
// framing, so record boundaries are inferred from content.
//
// The pieces, bottom up:
//
//   - NewBuilder classifies a message as the start of a format-2 or format-1
//     record, or rejects it. A Builder accumulates continuation messages and
//     finalizes into a Heartbeat.
//   - ExtractBuilders drains a batch of messages through builders, returning
//     completed builders plus the leftover messages for a later retry.
//   - Source pulls messages from an sbd.Store, reassembles per modem, and
//     merges the results in time order.
//   - Watcher keeps a shared heartbeat slice up to date as new message files
//     land in the store directory.
//
// Rejection is control flow, not failure: a rejected message simply does not
// belong to the builder it was offered to, and is kept for retry against a
// future batch. Only finalization can produce real parse errors.
package heartbeat

package sbd

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Message is one mobile-originated short-burst-data transmission.
//
// Messages are immutable once created: the reassembly code reads payloads
// but never modifies them.
type Message struct {
	imei        string
	sessionTime time.Time
	payload     []byte
}

// NewMessage creates a message for the given modem and session.
func NewMessage(imei string, sessionTime time.Time, payload []byte) Message {
	return Message{imei: imei, sessionTime: sessionTime.UTC(), payload: payload}
}

// IMEI returns the identifier of the originating modem.
func (m Message) IMEI() string { return m.imei }

// SessionTime returns the time of the Iridium session that delivered the
// message.
func (m Message) SessionTime() time.Time { return m.sessionTime }

// Payload returns the raw payload bytes.
func (m Message) Payload() []byte { return m.payload }

// PayloadText returns the payload as a string. Payloads are expected to be
// plain ASCII telemetry; anything that is not valid UTF-8 is an error.
func (m Message) PayloadText() (string, error) {
	if !utf8.Valid(m.payload) {
		return "", fmt.Errorf("sbd: message from %s at %s: payload is not valid text",
			m.imei, m.sessionTime.Format(time.RFC3339))
	}
	return string(m.payload), nil
}

// Before reports whether m was delivered before other. Session time is the
// primary order; IMEI breaks ties so sorting is deterministic.
func (m Message) Before(other Message) bool {
	if !m.sessionTime.Equal(other.sessionTime) {
		return m.sessionTime.Before(other.sessionTime)
	}
	return m.imei < other.imei
}

// Equal reports whether two messages have the same modem, session time, and
// payload.
func (m Message) Equal(other Message) bool {
	return m.imei == other.imei &&
		m.sessionTime.Equal(other.sessionTime) &&
		string(m.payload) == string(other.payload)
}

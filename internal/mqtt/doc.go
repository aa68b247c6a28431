// Package mqtt publishes finalized heartbeats to an MQTT broker, with an
// abstraction for testing.
package mqtt

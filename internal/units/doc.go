// Package units provides light wrappers around float values to keep
// incompatible physical quantities from being mixed up. The types carry no
// behavior beyond display formatting.
package units

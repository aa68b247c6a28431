// Package sutron reads log files from the station's Sutron data logger.
//
// Sutron logs never come back over the satellite link; they are copied off
// the logger by hand during site visits, so this package only ever sees
// complete files on the local filesystem.
package sutron

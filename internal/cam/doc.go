// Package cam tracks the remote cameras scattered around the field site.
//
// Each camera uploads timestamped jpg images into its own directory on the
// receiving server. The capture time is encoded in the filename, so the
// newest image can be found without opening a single file.
package cam

// Package fetch mirrors message files from the receiving server over SSH.
//
// The receiving server is a plain Unix box that the Iridium gateway drops
// .sbd files onto. It offers nothing but shell access, so the mirror lists
// and reads files by running commands over SSH sessions.
package fetch

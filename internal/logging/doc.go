// Package logging provides file-based logging with rotation for the
// sentinel core. The CLI always writes JSON logs to ~/.sentinel/logs/.
//
// By default (without --debug) the level is info and nothing is written to
// stderr. With --debug the level is debug and every record is also copied
// to stderr.
package logging

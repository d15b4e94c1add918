// Package cli implements the snip command line on top of the local record
// store and the sync service.
//
// Every subcommand opens the store, runs one operation and closes it again.
// Snippets are addressed by id; names are free text and may contain spaces,
// so trailing arguments are joined:
//
//	snip add -t go -t http retry with backoff
//	snip list -t go
//	snip show 3
//	snip sync
//
// Content for add and edit comes from $EDITOR when stdin is a terminal and
// from stdin otherwise, so `echo hi | snip add greeting` works in scripts.
//
// Errors are reported on stderr followed by one "caused by:" line per wrapped
// cause, and the process exits with status 1.
package cli

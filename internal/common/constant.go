// Package common contains shared constants and the error taxonomy used across
// snip components.
package common

// MetadataKeyLastSynced is the metadata key holding the sync watermark: the
// logical timestamp up to which the remote peer has received local changes.
const MetadataKeyLastSynced = "last_synced"

// DefaultSyncTimeoutSeconds bounds every blocking read or write on the sync stream.
const DefaultSyncTimeoutSeconds = 60

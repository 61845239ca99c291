// Package session keeps live game sessions in memory.
//
// The Manager maps game ids to running engine instances. It is a cache
// in front of the repository, not a store of record: engines autosave
// on every mutation, so an evicted or expired session resumes from its
// persisted record on the next Get with nothing lost.
package session

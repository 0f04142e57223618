// Package journal records publish and backup runs in a local badger KV
// store.
//
// Records are keyed by their run id. Run ids embed a timestamp and sort
// lexically in creation order, so iterating keys backwards yields runs
// newest first. The journal is advisory history: callers are expected to
// treat write failures as warnings, not pipeline failures.
package journal

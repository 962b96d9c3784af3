// Package cli provides the nutrisync command-line client.
//
// It wires configuration, local storage, the remote API client and the sync
// engine, and exposes them as cobra commands: local mutations (food, weight)
// go through the queue, while run, sync, status, queue and clear operate the
// engine itself.
//
// Typical flow: record changes offline with "food add" or "weight add",
// inspect them with "queue", and let "run" (or a one-shot "sync") push them
// to the server once it is reachable.
package cli

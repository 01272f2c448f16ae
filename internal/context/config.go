// Package ctxengine implements the policies that keep a conversation's
// context bounded: the sliding window that evicts old exchange pairs and
// the compactor that folds the whole history into one summary turn.
package ctxengine

// DefaultMaxPairs is the number of user/assistant pairs retained when a
// window is built with a non-positive size.
const DefaultMaxPairs = 25

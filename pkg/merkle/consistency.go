package merkle

import (
	"fmt"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

// Kinds of bridge tree consistency violations.
const (
	ErrSavedPosition = "SAVED_POSITION"   // Saved entry does not point at a matching bridge
	ErrCheckpointMax = "CHECKPOINT_LIMIT" // More checkpoints than the declared maximum
	ErrCheckpointOrd = "CHECKPOINT_ORDER" // Checkpoint ids decrease or point past the bridges
	ErrContinuity    = "CONTINUITY"       // Bridge does not start where the previous one ended
)

// ConsistencyError describes why a decoded bridge tree was rejected.
type ConsistencyError struct {
	Kind    string
	Message string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("bridge tree consistency [%s]: %s", e.Kind, e.Message)
}

func inconsistent(kind, format string, args ...interface{}) error {
	return &encoding.InvalidFormatError{
		Message: "consistency violation found when attempting to deserialize Merkle tree",
		Cause:   &ConsistencyError{Kind: kind, Message: fmt.Sprintf(format, args...)},
	}
}

// NewBridgeTree assembles a tree from its decoded parts, enforcing the
// relations between them. A tree that fails any check is rejected whole.
func NewBridgeTree(
	prior []Bridge,
	current *Bridge,
	saved map[Position]uint64,
	checkpoints []Checkpoint,
	maxCheckpoints int,
) (*BridgeTree, error) {
	for pos, slot := range saved {
		if slot >= uint64(len(prior)) {
			return nil, inconsistent(ErrSavedPosition,
				"position %d refers to bridge %d of %d", pos, slot, len(prior))
		}
		if got := prior[slot].Frontier.Position; got != pos {
			return nil, inconsistent(ErrSavedPosition,
				"position %d refers to bridge %d at position %d", pos, slot, got)
		}
	}

	if len(checkpoints) > maxCheckpoints {
		return nil, inconsistent(ErrCheckpointMax,
			"%d checkpoints exceed the limit of %d", len(checkpoints), maxCheckpoints)
	}
	for i, c := range checkpoints {
		if i > 0 && checkpoints[i-1].ID > c.ID {
			return nil, inconsistent(ErrCheckpointOrd,
				"checkpoint %d has id %d after id %d", i, c.ID, checkpoints[i-1].ID)
		}
		if c.ID > uint64(len(prior)) {
			return nil, inconsistent(ErrCheckpointOrd,
				"checkpoint %d refers to %d bridges, only %d exist", i, c.ID, len(prior))
		}
	}

	for i := range prior {
		if err := checkOwnPrior(&prior[i]); err != nil {
			return nil, err
		}
		if i == 0 {
			continue
		}
		if err := checkFollows(&prior[i-1], &prior[i]); err != nil {
			return nil, err
		}
	}
	if current != nil {
		if err := checkOwnPrior(current); err != nil {
			return nil, err
		}
		if n := len(prior); n > 0 {
			if err := checkFollows(&prior[n-1], current); err != nil {
				return nil, err
			}
		}
	}

	return &BridgeTree{
		PriorBridges:   prior,
		CurrentBridge:  current,
		Saved:          saved,
		Checkpoints:    checkpoints,
		MaxCheckpoints: maxCheckpoints,
	}, nil
}

func checkFollows(prev, next *Bridge) error {
	if next.PriorPosition == nil {
		return inconsistent(ErrContinuity,
			"bridge at position %d has no prior position", next.Frontier.Position)
	}
	if *next.PriorPosition != prev.Frontier.Position {
		return inconsistent(ErrContinuity,
			"bridge starts at %d but the previous one ends at %d",
			*next.PriorPosition, prev.Frontier.Position)
	}
	return nil
}

func checkOwnPrior(b *Bridge) error {
	if b.PriorPosition != nil && b.Frontier.Position < *b.PriorPosition {
		return inconsistent(ErrContinuity,
			"frontier position %d precedes prior position %d",
			b.Frontier.Position, *b.PriorPosition)
	}
	return nil
}

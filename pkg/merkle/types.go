// Package merkle decodes the note commitment tree state stored in a wallet.
//
// Two generations of tree state appear in the file:
//
//   - Orchard: a bridge tree. The tree is a sequence of bridges, each
//     describing how the frontier moved from one marked leaf to the next,
//     together with the authentication fragments gathered along the way and
//     a bounded list of rewind checkpoints.
//   - Sapling: the legacy CommitmentTree / IncrementalWitness pair, kept in
//     blocks and notes.
//
// Values are decoded and validated, never recomputed: no hash function is
// evaluated here.
package merkle

import (
	"fmt"
	"math/bits"
)

// MaxDepth is the depth of both shielded note commitment trees.
const MaxDepth = 32

// Position is the index of a leaf in the tree.
type Position uint64

// IsOdd reports whether the leaf is a right child.
func (p Position) IsOdd() bool {
	return p&1 == 1
}

// PastOmmerCount is the number of ommers a frontier at this position must
// carry: one per completed subtree on the path to the root.
func (p Position) PastOmmerCount() int {
	return bits.OnesCount64(uint64(p >> 1))
}

// Hash is an Orchard tree node: a canonical Pallas base element in
// little-endian form.
type Hash [32]byte

// Leaf holds the last leaf, or the last pair of sibling leaves.
type Leaf struct {
	Left  Hash
	Right *Hash // Set iff the frontier position is odd
}

// Frontier is the right-most edge of a non-empty tree.
type Frontier struct {
	Position Position
	Leaf     Leaf
	Ommers   []Hash
}

func (f *Frontier) validate() error {
	if f.Position >= 1<<MaxDepth {
		return fmt.Errorf("position %d exceeds tree capacity", f.Position)
	}
	if f.Position.IsOdd() != (f.Leaf.Right != nil) {
		return fmt.Errorf("leaf shape does not match position %d", f.Position)
	}
	if want := f.Position.PastOmmerCount(); len(f.Ommers) != want {
		return fmt.Errorf("expected %d ommers at position %d, got %d", want, f.Position, len(f.Ommers))
	}
	return nil
}

// AuthFragment accumulates the authentication path of a marked leaf.
type AuthFragment struct {
	Position     Position
	AltsObserved uint64
	Values       []Hash
}

// Bridge connects two successive frontier states.
type Bridge struct {
	PriorPosition *Position // Frontier position of the preceding bridge
	AuthFragments map[Position]AuthFragment
	Frontier      Frontier
}

// Checkpoint records a rewind point. In this serialization ID is not a block
// height; it is only an ordering token.
type Checkpoint struct {
	ID        uint64
	Marked    bool
	Retained  []Position
	Forgotten map[Position]uint64
}

// BridgeTree is the Orchard note commitment accumulator of a wallet.
type BridgeTree struct {
	Version        uint64 // Stored but not interpreted
	PriorBridges   []Bridge
	CurrentBridge  *Bridge
	Saved          map[Position]uint64 // Marked position -> index into PriorBridges
	Checkpoints    []Checkpoint
	MaxCheckpoints int
}

// Size returns the number of leaves appended to the tree.
func (t *BridgeTree) Size() uint64 {
	if t.CurrentBridge != nil {
		return uint64(t.CurrentBridge.Frontier.Position) + 1
	}
	if n := len(t.PriorBridges); n > 0 {
		return uint64(t.PriorBridges[n-1].Frontier.Position) + 1
	}
	return 0
}

// MarkedPositions returns the number of witnessed leaves.
func (t *BridgeTree) MarkedPositions() int {
	return len(t.Saved)
}

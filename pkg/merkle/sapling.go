package merkle

import (
	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

// SaplingNode is a Sapling tree node: a canonical Jubjub base element in
// little-endian form.
type SaplingNode [32]byte

// CommitmentTree is the legacy incremental Sapling tree.
//
//	Option<node> left || Option<node> right || Vec<Option<node>> parents
type CommitmentTree struct {
	Left    *SaplingNode
	Right   *SaplingNode
	Parents []*SaplingNode
}

// Size returns the number of leaves appended to the tree.
func (t *CommitmentTree) Size() uint64 {
	var size uint64
	if t.Left != nil {
		size++
	}
	if t.Right != nil {
		size++
	}
	for i, p := range t.Parents {
		if p != nil {
			size += 1 << (i + 1)
		}
	}
	return size
}

// IsEmpty reports whether nothing was ever appended.
func (t *CommitmentTree) IsEmpty() bool {
	return t.Left == nil && t.Right == nil
}

// IncrementalWitness tracks the authentication path of one note.
//
//	CommitmentTree tree || Vec<node> filled || Option<CommitmentTree> cursor
type IncrementalWitness struct {
	Tree   CommitmentTree
	Filled []SaplingNode
	Cursor *CommitmentTree
}

// Position returns the index of the witnessed leaf.
func (w *IncrementalWitness) Position() uint64 {
	if s := w.Tree.Size(); s > 0 {
		return s - 1
	}
	return 0
}

// ReadSaplingNode decodes one node and rejects non-canonical encodings.
func ReadSaplingNode(r *encoding.Reader) (SaplingNode, error) {
	b, err := r.ReadArray32()
	if err != nil {
		return SaplingNode{}, err
	}
	if !crypto.IsCanonicalJubjubBase(b) {
		return SaplingNode{}, encoding.Invalidf("non-canonical Jubjub base element %x", b)
	}
	return SaplingNode(b), nil
}

func readOptionalNode(r *encoding.Reader) (*SaplingNode, error) {
	return encoding.ReadOptional(r, ReadSaplingNode)
}

// ReadCommitmentTree decodes a legacy Sapling tree.
func ReadCommitmentTree(r *encoding.Reader) (CommitmentTree, error) {
	var t CommitmentTree
	var err error
	if t.Left, err = readOptionalNode(r); err != nil {
		return t, err
	}
	if t.Right, err = readOptionalNode(r); err != nil {
		return t, err
	}
	if t.Parents, err = encoding.ReadVector(r, readOptionalNode); err != nil {
		return t, err
	}
	if len(t.Parents) > MaxDepth-1 {
		return t, encoding.Invalidf("commitment tree has %d parents, at most %d allowed", len(t.Parents), MaxDepth-1)
	}
	return t, nil
}

// ReadIncrementalWitness decodes a legacy Sapling witness.
func ReadIncrementalWitness(r *encoding.Reader) (IncrementalWitness, error) {
	var w IncrementalWitness
	var err error
	if w.Tree, err = ReadCommitmentTree(r); err != nil {
		return w, err
	}
	if w.Filled, err = encoding.ReadVector(r, ReadSaplingNode); err != nil {
		return w, err
	}
	w.Cursor, err = encoding.ReadOptional(r, ReadCommitmentTree)
	return w, err
}

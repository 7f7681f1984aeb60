package merkle

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

// bridgeSerV1 is the only bridge serialization tag in use.
const bridgeSerV1 = 1

// Tree serialization:
//
//	u64 version || Vec<Bridge> prior || Option<Bridge> current ||
//	Vec<(u64 position, u64 slot)> saved || Vec<Checkpoint> || u64 max_checkpoints

// ReadTree decodes a bridge tree.
func ReadTree(r *encoding.Reader) (*BridgeTree, error) {
	version, err := r.ReadU64()
	if err != nil {
		return nil, err
	}

	prior, err := encoding.ReadVector(r, ReadBridge)
	if err != nil {
		return nil, fmt.Errorf("prior bridges: %w", err)
	}
	current, err := encoding.ReadOptional(r, ReadBridge)
	if err != nil {
		return nil, fmt.Errorf("current bridge: %w", err)
	}

	savedPairs, err := encoding.ReadVector(r, readPositionSlot)
	if err != nil {
		return nil, fmt.Errorf("saved positions: %w", err)
	}
	saved := make(map[Position]uint64, len(savedPairs))
	for _, p := range savedPairs {
		saved[p.pos] = p.slot
	}

	checkpoints, err := encoding.ReadVector(r, ReadCheckpoint)
	if err != nil {
		return nil, fmt.Errorf("checkpoints: %w", err)
	}
	maxCheckpoints, err := r.ReadSize()
	if err != nil {
		return nil, fmt.Errorf("max checkpoints: %w", err)
	}

	tree, err := NewBridgeTree(prior, current, saved, checkpoints, maxCheckpoints)
	if err != nil {
		return nil, err
	}
	tree.Version = version

	log.WithFields(log.Fields{
		"prior_bridges": len(prior),
		"has_current":   current != nil,
		"saved":         len(saved),
		"checkpoints":   len(checkpoints),
		"size":          tree.Size(),
	}).Debug("decoded orchard bridge tree")

	return tree, nil
}

// ReadBridge decodes one tagged bridge.
func ReadBridge(r *encoding.Reader) (Bridge, error) {
	tag, err := r.ReadU8()
	if err != nil {
		return Bridge{}, err
	}
	if tag != bridgeSerV1 {
		return Bridge{}, encoding.Invalidf("unrecognized serialization version: %d", tag)
	}

	var b Bridge
	b.PriorPosition, err = encoding.ReadOptional(r, ReadPosition)
	if err != nil {
		return b, err
	}

	fragments, err := encoding.ReadVector(r, readFragmentEntry)
	if err != nil {
		return b, fmt.Errorf("auth fragments: %w", err)
	}
	b.AuthFragments = make(map[Position]AuthFragment, len(fragments))
	for _, f := range fragments {
		b.AuthFragments[f.pos] = f.fragment
	}

	b.Frontier, err = ReadFrontier(r)
	return b, err
}

// ReadFrontier decodes a non-empty frontier and checks its shape.
func ReadFrontier(r *encoding.Reader) (Frontier, error) {
	var f Frontier
	var err error
	if f.Position, err = ReadPosition(r); err != nil {
		return f, err
	}
	if f.Leaf.Left, err = ReadHash(r); err != nil {
		return f, err
	}
	if f.Leaf.Right, err = encoding.ReadOptional(r, ReadHash); err != nil {
		return f, err
	}
	if f.Ommers, err = encoding.ReadVector(r, ReadHash); err != nil {
		return f, err
	}
	if err := f.validate(); err != nil {
		return f, &encoding.InvalidFormatError{
			Message: "parsing resulted in an invalid Merkle frontier",
			Cause:   err,
		}
	}
	return f, nil
}

// ReadAuthFragment decodes an authentication fragment.
func ReadAuthFragment(r *encoding.Reader) (AuthFragment, error) {
	var a AuthFragment
	var err error
	if a.Position, err = ReadPosition(r); err != nil {
		return a, err
	}
	if a.AltsObserved, err = r.ReadU64(); err != nil {
		return a, err
	}
	a.Values, err = encoding.ReadVector(r, ReadHash)
	return a, err
}

// ReadCheckpoint decodes a checkpoint in its identifier-less form: the
// leading u64 is the number of bridges at checkpoint time and serves as id.
func ReadCheckpoint(r *encoding.Reader) (Checkpoint, error) {
	var c Checkpoint
	bridges, err := r.ReadSize()
	if err != nil {
		return c, err
	}
	c.ID = uint64(bridges)

	marked, err := r.ReadU8()
	if err != nil {
		return c, err
	}
	c.Marked = marked == 1

	if c.Retained, err = encoding.ReadVector(r, ReadPosition); err != nil {
		return c, err
	}
	forgotten, err := encoding.ReadVector(r, readPositionSlot)
	if err != nil {
		return c, err
	}
	c.Forgotten = make(map[Position]uint64, len(forgotten))
	for _, p := range forgotten {
		c.Forgotten[p.pos] = p.slot
	}
	return c, nil
}

// ReadPosition decodes a u64 position.
func ReadPosition(r *encoding.Reader) (Position, error) {
	v, err := r.ReadSize()
	return Position(v), err
}

// ReadHash decodes an Orchard node and rejects non-canonical encodings.
func ReadHash(r *encoding.Reader) (Hash, error) {
	b, err := r.ReadArray32()
	if err != nil {
		return Hash{}, err
	}
	if !crypto.IsCanonicalPallas(b) {
		return Hash{}, encoding.Invalidf("non-canonical Pallas base element %x", b)
	}
	return Hash(b), nil
}

type positionSlot struct {
	pos  Position
	slot uint64
}

func readPositionSlot(r *encoding.Reader) (positionSlot, error) {
	pos, err := ReadPosition(r)
	if err != nil {
		return positionSlot{}, err
	}
	slot, err := r.ReadSize()
	return positionSlot{pos: pos, slot: uint64(slot)}, err
}

type fragmentEntry struct {
	pos      Position
	fragment AuthFragment
}

func readFragmentEntry(r *encoding.Reader) (fragmentEntry, error) {
	pos, err := ReadPosition(r)
	if err != nil {
		return fragmentEntry{}, err
	}
	f, err := ReadAuthFragment(r)
	return fragmentEntry{pos: pos, fragment: f}, err
}

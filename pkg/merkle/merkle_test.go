package merkle

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

func writeHash(w *encoding.Writer, h Hash) { w.WriteBytes(h[:]) }

func writePosition(w *encoding.Writer, p Position) { w.WriteU64(uint64(p)) }

func writeFrontier(w *encoding.Writer, f Frontier) {
	writePosition(w, f.Position)
	writeHash(w, f.Leaf.Left)
	encoding.WriteOptional(w, f.Leaf.Right, writeHash)
	encoding.WriteVector(w, f.Ommers, writeHash)
}

func writeBridge(w *encoding.Writer, b Bridge) {
	w.WriteU8(bridgeSerV1)
	encoding.WriteOptional(w, b.PriorPosition, writePosition)
	w.WriteU64(uint64(len(b.AuthFragments)))
	for pos, f := range b.AuthFragments {
		writePosition(w, pos)
		writePosition(w, f.Position)
		w.WriteU64(f.AltsObserved)
		encoding.WriteVector(w, f.Values, writeHash)
	}
	writeFrontier(w, b.Frontier)
}

type savedEntry struct {
	pos  Position
	slot uint64
}

func writeTree(w *encoding.Writer, prior []Bridge, current *Bridge, saved []savedEntry, checkpoints []Checkpoint, max uint64) {
	w.WriteU64(0)
	encoding.WriteVector(w, prior, writeBridge)
	encoding.WriteOptional(w, current, writeBridge)
	encoding.WriteVector(w, saved, func(w *encoding.Writer, s savedEntry) {
		writePosition(w, s.pos)
		w.WriteU64(s.slot)
	})
	encoding.WriteVector(w, checkpoints, func(w *encoding.Writer, c Checkpoint) {
		w.WriteU64(c.ID)
		w.WriteBool(c.Marked)
		encoding.WriteVector(w, c.Retained, writePosition)
		w.WriteU64(uint64(len(c.Forgotten)))
		for pos, slot := range c.Forgotten {
			writePosition(w, pos)
			w.WriteU64(slot)
		}
	})
	w.WriteU64(max)
}

func treeBytes(t *testing.T, fn func(w *encoding.Writer)) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := encoding.NewWriter(&buf)
	fn(w)
	require.NoError(t, w.Err())
	return buf.Bytes()
}

func pos(p Position) *Position { return &p }

func hashOf(b byte) Hash { return Hash{b} }

func hashPtr(b byte) *Hash { h := hashOf(b); return &h }

// sampleBridges builds two continuous bridges ending at positions 0 and 3.
func sampleBridges() []Bridge {
	return []Bridge{
		{
			AuthFragments: map[Position]AuthFragment{},
			Frontier:      Frontier{Position: 0, Leaf: Leaf{Left: hashOf(1)}},
		},
		{
			PriorPosition: pos(0),
			AuthFragments: map[Position]AuthFragment{
				0: {Position: 0, AltsObserved: 2, Values: []Hash{hashOf(2), hashOf(3)}},
			},
			Frontier: Frontier{
				Position: 3,
				Leaf:     Leaf{Left: hashOf(4), Right: hashPtr(5)},
				Ommers:   []Hash{hashOf(6)},
			},
		},
	}
}

func TestReadTreeEmpty(t *testing.T) {
	data := treeBytes(t, func(w *encoding.Writer) {
		writeTree(w, nil, nil, nil, nil, 100)
	})
	tree, err := ReadTree(encoding.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Empty(t, tree.PriorBridges)
	assert.Nil(t, tree.CurrentBridge)
	assert.Equal(t, 100, tree.MaxCheckpoints)
	assert.Equal(t, uint64(0), tree.Size())
}

func TestReadTreeIdempotent(t *testing.T) {
	prior := sampleBridges()
	current := &Bridge{
		PriorPosition: pos(3),
		AuthFragments: map[Position]AuthFragment{},
		Frontier: Frontier{
			Position: 4,
			Leaf:     Leaf{Left: hashOf(7)},
			Ommers:   []Hash{hashOf(8)},
		},
	}
	checkpoints := []Checkpoint{
		{ID: 1, Marked: true, Retained: []Position{0}, Forgotten: map[Position]uint64{}},
		{ID: 2, Marked: false, Retained: []Position{}, Forgotten: map[Position]uint64{3: 1}},
	}
	data := treeBytes(t, func(w *encoding.Writer) {
		writeTree(w, prior, current, []savedEntry{{pos: 0, slot: 0}, {pos: 3, slot: 1}}, checkpoints, 10)
	})

	first, err := ReadTree(encoding.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)
	second, err := ReadTree(encoding.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	assert.Len(t, first.PriorBridges, 2)
	require.NotNil(t, first.CurrentBridge)
	assert.Equal(t, uint64(5), first.Size())
	assert.Equal(t, 2, first.MarkedPositions())
	assert.Equal(t, uint64(2), first.PriorBridges[1].AuthFragments[0].AltsObserved)
	assert.True(t, first.Checkpoints[0].Marked)
	assert.Equal(t, uint64(1), first.Checkpoints[1].Forgotten[3])
}

func TestReadTreeDanglingSavedPosition(t *testing.T) {
	data := treeBytes(t, func(w *encoding.Writer) {
		writeTree(w, sampleBridges(), nil, []savedEntry{{pos: 2, slot: 1}}, nil, 10)
	})
	_, err := ReadTree(encoding.NewReader(bytes.NewReader(data)))

	var fmtErr *encoding.InvalidFormatError
	var cErr *ConsistencyError
	require.ErrorAs(t, err, &fmtErr)
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, ErrSavedPosition, cErr.Kind)
}

func TestReadTreeSavedSlotOutOfRange(t *testing.T) {
	data := treeBytes(t, func(w *encoding.Writer) {
		writeTree(w, sampleBridges(), nil, []savedEntry{{pos: 3, slot: 5}}, nil, 10)
	})
	_, err := ReadTree(encoding.NewReader(bytes.NewReader(data)))

	var cErr *ConsistencyError
	require.ErrorAs(t, err, &cErr)
	assert.Equal(t, ErrSavedPosition, cErr.Kind)
}

func TestReadBridgeBadTag(t *testing.T) {
	data := treeBytes(t, func(w *encoding.Writer) {
		w.WriteU8(2)
	})
	_, err := ReadBridge(encoding.NewReader(bytes.NewReader(data)))

	var fmtErr *encoding.InvalidFormatError
	require.ErrorAs(t, err, &fmtErr)
	assert.Contains(t, err.Error(), "unrecognized serialization version")
}

func TestReadFrontierShape(t *testing.T) {
	tests := []struct {
		name     string
		frontier Frontier
		ok       bool
	}{
		{"single leaf", Frontier{Position: 0, Leaf: Leaf{Left: hashOf(1)}}, true},
		{"odd without right", Frontier{Position: 1, Leaf: Leaf{Left: hashOf(1)}}, false},
		{"even with right", Frontier{Position: 2, Leaf: Leaf{Left: hashOf(1), Right: hashPtr(2)}, Ommers: []Hash{hashOf(3)}}, false},
		{"missing ommer", Frontier{Position: 2, Leaf: Leaf{Left: hashOf(1)}}, false},
		{"too many ommers", Frontier{Position: 1, Leaf: Leaf{Left: hashOf(1), Right: hashPtr(2)}, Ommers: []Hash{hashOf(3)}}, false},
		{"past capacity", Frontier{Position: 1 << 32, Leaf: Leaf{Left: hashOf(1)}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := treeBytes(t, func(w *encoding.Writer) { writeFrontier(w, tt.frontier) })
			_, err := ReadFrontier(encoding.NewReader(bytes.NewReader(data)))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			var fmtErr *encoding.InvalidFormatError
			assert.ErrorAs(t, err, &fmtErr)
		})
	}
}

func TestReadHashRejectsNonCanonical(t *testing.T) {
	var h [32]byte
	for i := range h {
		h[i] = 0xff
	}
	_, err := ReadHash(encoding.NewReader(bytes.NewReader(h[:])))

	var fmtErr *encoding.InvalidFormatError
	assert.ErrorAs(t, err, &fmtErr)
}

func TestNewBridgeTreeConsistency(t *testing.T) {
	t.Run("too many checkpoints", func(t *testing.T) {
		_, err := NewBridgeTree(sampleBridges(), nil, nil, []Checkpoint{{ID: 1}, {ID: 2}}, 1)
		var cErr *ConsistencyError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, ErrCheckpointMax, cErr.Kind)
	})

	t.Run("decreasing checkpoint ids", func(t *testing.T) {
		_, err := NewBridgeTree(sampleBridges(), nil, nil, []Checkpoint{{ID: 2}, {ID: 1}}, 10)
		var cErr *ConsistencyError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, ErrCheckpointOrd, cErr.Kind)
	})

	t.Run("checkpoint past bridges", func(t *testing.T) {
		_, err := NewBridgeTree(sampleBridges(), nil, nil, []Checkpoint{{ID: 3}}, 10)
		var cErr *ConsistencyError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, ErrCheckpointOrd, cErr.Kind)
	})

	t.Run("broken continuity", func(t *testing.T) {
		bridges := sampleBridges()
		bridges[1].PriorPosition = pos(1)
		_, err := NewBridgeTree(bridges, nil, nil, nil, 10)
		var cErr *ConsistencyError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, ErrContinuity, cErr.Kind)
	})

	t.Run("missing prior position", func(t *testing.T) {
		bridges := sampleBridges()
		bridges[1].PriorPosition = nil
		_, err := NewBridgeTree(bridges, nil, nil, nil, 10)
		var cErr *ConsistencyError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, ErrContinuity, cErr.Kind)
	})

	t.Run("current does not follow", func(t *testing.T) {
		current := &Bridge{
			PriorPosition: pos(2),
			Frontier:      Frontier{Position: 4, Leaf: Leaf{Left: hashOf(1)}, Ommers: []Hash{hashOf(2)}},
		}
		_, err := NewBridgeTree(sampleBridges(), current, nil, nil, 10)
		var cErr *ConsistencyError
		require.ErrorAs(t, err, &cErr)
		assert.Equal(t, ErrContinuity, cErr.Kind)
	})
}

func writeNode(w *encoding.Writer, n SaplingNode) { w.WriteBytes(n[:]) }

func writeCommitmentTree(w *encoding.Writer, t CommitmentTree) {
	encoding.WriteOptional(w, t.Left, writeNode)
	encoding.WriteOptional(w, t.Right, writeNode)
	encoding.WriteVector(w, t.Parents, func(w *encoding.Writer, p *SaplingNode) {
		encoding.WriteOptional(w, p, writeNode)
	})
}

func node(b byte) *SaplingNode { n := SaplingNode{b}; return &n }

func TestReadCommitmentTree(t *testing.T) {
	want := CommitmentTree{
		Left:    node(1),
		Right:   node(2),
		Parents: []*SaplingNode{nil, node(3)},
	}
	data := treeBytes(t, func(w *encoding.Writer) { writeCommitmentTree(w, want) })

	got, err := ReadCommitmentTree(encoding.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, uint64(2+4), got.Size())
	assert.False(t, got.IsEmpty())
}

func TestReadIncrementalWitness(t *testing.T) {
	tree := CommitmentTree{Left: node(1), Parents: []*SaplingNode{}}
	cursor := CommitmentTree{Left: node(4), Right: node(5), Parents: []*SaplingNode{}}
	data := treeBytes(t, func(w *encoding.Writer) {
		writeCommitmentTree(w, tree)
		encoding.WriteVector(w, []SaplingNode{{2}, {3}}, writeNode)
		encoding.WriteOptional(w, &cursor, writeCommitmentTree)
	})

	got, err := ReadIncrementalWitness(encoding.NewReader(bytes.NewReader(data)))
	require.NoError(t, err)
	assert.Equal(t, tree, got.Tree)
	assert.Len(t, got.Filled, 2)
	require.NotNil(t, got.Cursor)
	assert.Equal(t, cursor, *got.Cursor)
	assert.Equal(t, uint64(0), got.Position())
}

func TestReadSaplingNodeRejectsNonCanonical(t *testing.T) {
	var n [32]byte
	for i := range n {
		n[i] = 0xff
	}
	_, err := ReadSaplingNode(encoding.NewReader(bytes.NewReader(n[:])))

	var fmtErr *encoding.InvalidFormatError
	assert.ErrorAs(t, err, &fmtErr)
}

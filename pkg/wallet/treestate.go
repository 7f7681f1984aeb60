package wallet

import (
	"bytes"
	"encoding/hex"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
	"github.com/dorianvp/zecwallet-utils/pkg/merkle"
)

// TreeState field numbers, as served by lightwalletd.
const (
	treeStateNetwork     protowire.Number = 1
	treeStateHeight      protowire.Number = 2
	treeStateHash        protowire.Number = 3
	treeStateTime        protowire.Number = 4
	treeStateSaplingTree protowire.Number = 5
	treeStateOrchardTree protowire.Number = 6
)

// TreeState is the last block state the wallet verified against a server.
type TreeState struct {
	Network     string
	Height      uint64
	Hash        string
	Time        uint32
	SaplingTree string // Hex-encoded CommitmentTree
	OrchardTree string
}

// DecodeTreeState parses a TreeState protobuf message. Unknown fields are
// skipped.
func DecodeTreeState(b []byte) (*TreeState, error) {
	var ts TreeState
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, encoding.Invalidf("verified tree: %v", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case typ == protowire.BytesType && num == treeStateNetwork:
			ts.Network, n = protowire.ConsumeString(b)
		case typ == protowire.BytesType && num == treeStateHash:
			ts.Hash, n = protowire.ConsumeString(b)
		case typ == protowire.BytesType && num == treeStateSaplingTree:
			ts.SaplingTree, n = protowire.ConsumeString(b)
		case typ == protowire.BytesType && num == treeStateOrchardTree:
			ts.OrchardTree, n = protowire.ConsumeString(b)
		case typ == protowire.VarintType && num == treeStateHeight:
			ts.Height, n = protowire.ConsumeVarint(b)
		case typ == protowire.VarintType && num == treeStateTime:
			var v uint64
			v, n = protowire.ConsumeVarint(b)
			ts.Time = uint32(v)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return nil, encoding.Invalidf("verified tree field %d: %v", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return &ts, nil
}

// SaplingCommitmentTree decodes the embedded Sapling tree. An empty string
// yields an empty tree.
func (ts *TreeState) SaplingCommitmentTree() (merkle.CommitmentTree, error) {
	if ts.SaplingTree == "" {
		return merkle.CommitmentTree{}, nil
	}
	raw, err := hex.DecodeString(ts.SaplingTree)
	if err != nil {
		return merkle.CommitmentTree{}, &encoding.InvalidFormatError{Message: "verified sapling tree is not hex", Cause: err}
	}
	return merkle.ReadCommitmentTree(encoding.NewReader(bytes.NewReader(raw)))
}

func readVerifiedTree(r *encoding.Reader) (*TreeState, error) {
	raw, err := r.ReadByteVector()
	if err != nil {
		return nil, err
	}
	return DecodeTreeState(raw)
}

// readOptionalVerifiedTree decodes Option<Vec<u8>> holding a TreeState.
func readOptionalVerifiedTree(r *encoding.Reader) (*TreeState, error) {
	ts, err := encoding.ReadOptional(r, readVerifiedTree)
	if err != nil || ts == nil {
		return nil, err
	}
	return *ts, nil
}

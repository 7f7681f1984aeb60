package txns

import (
	"fmt"

	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
	"github.com/dorianvp/zecwallet-utils/pkg/keys"
	"github.com/dorianvp/zecwallet-utils/pkg/merkle"
)

// Note record versions.
const (
	SaplingNoteVersion = 20
	OrchardNoteVersion = 22
)

// Nullifier is a 32-byte note nullifier.
type Nullifier [32]byte

// RseedKind distinguishes pre- and post-ZIP 212 note randomness.
type RseedKind uint8

const (
	BeforeZip212 RseedKind = 1 // 32 bytes are rcm
	AfterZip212  RseedKind = 2 // 32 bytes are rseed
)

// Rseed is the stored note commitment randomness.
type Rseed struct {
	Kind  RseedKind
	Bytes [32]byte
}

// SaplingNoteData is a received Sapling note.
type SaplingNoteData struct {
	Version          uint64
	Account          uint64 // Only stored up to version 5
	FullViewingKey   keys.ExtendedFullViewingKey
	Diversifier      [11]byte
	Value            uint64
	Rseed            Rseed
	Witnesses        []merkle.IncrementalWitness
	WitnessTopHeight uint64
	Nullifier        Nullifier
	Spent            *SpendRef
	UnconfirmedSpent *SpendRef
	Memo             *Memo
	IsChange         bool
	HaveSpendingKey  bool
}

// IsSpent reports whether a confirmed or pending spend exists.
func (n *SaplingNoteData) IsSpent() bool {
	return n.Spent != nil || n.UnconfirmedSpent != nil
}

// OrchardNoteData is a received Orchard note.
type OrchardNoteData struct {
	Version          uint64
	FullViewingKey   [keys.OrchardFVKSize]byte
	Address          [43]byte
	Value            uint64
	Rho              Nullifier
	Rseed            [32]byte
	WitnessPosition  *uint64
	Spent            *SpendRef
	UnconfirmedSpent *SpendRef
	Memo             *Memo
	IsChange         bool
	HaveSpendingKey  bool
}

// IsSpent reports whether a confirmed or pending spend exists.
func (n *OrchardNoteData) IsSpent() bool {
	return n.Spent != nil || n.UnconfirmedSpent != nil
}

func readMemo(r *encoding.Reader) (Memo, error) {
	var raw [MemoSize]byte
	if err := r.ReadFull(raw[:]); err != nil {
		return Memo{}, err
	}
	return ParseMemo(raw), nil
}

func readRseed(r *encoding.Reader, version uint64) (Rseed, error) {
	if version <= 3 {
		b, err := r.ReadArray32()
		return Rseed{Kind: BeforeZip212, Bytes: b}, err
	}
	kind, err := r.ReadU8()
	if err != nil {
		return Rseed{}, err
	}
	b, err := r.ReadArray32()
	if err != nil {
		return Rseed{}, err
	}
	switch RseedKind(kind) {
	case BeforeZip212, AfterZip212:
		return Rseed{Kind: RseedKind(kind), Bytes: b}, nil
	default:
		return Rseed{}, encoding.Invalidf("bad note type %d", kind)
	}
}

func readOrchardNullifier(r *encoding.Reader) (Nullifier, error) {
	b, err := r.ReadArray32()
	if err != nil {
		return Nullifier{}, err
	}
	if !crypto.IsCanonicalPallas(b) {
		return Nullifier{}, encoding.Invalidf("non-canonical orchard nullifier %x", b)
	}
	return Nullifier(b), nil
}

func readNullifier(r *encoding.Reader) (Nullifier, error) {
	b, err := r.ReadArray32()
	return Nullifier(b), err
}

// ReadSaplingNote decodes a Sapling note record.
func ReadSaplingNote(r *encoding.Reader) (SaplingNoteData, error) {
	var n SaplingNoteData
	var err error
	if n.Version, err = r.ReadU64(); err != nil {
		return n, err
	}
	if err := encoding.CheckVersion("sapling note", n.Version, SaplingNoteVersion); err != nil {
		return n, err
	}
	if n.Version <= 5 {
		if n.Account, err = r.ReadU64(); err != nil {
			return n, err
		}
	}
	if err := r.ReadFull(n.FullViewingKey[:]); err != nil {
		return n, fmt.Errorf("note viewing key: %w", err)
	}
	if err := r.ReadFull(n.Diversifier[:]); err != nil {
		return n, fmt.Errorf("note diversifier: %w", err)
	}
	if n.Value, err = r.ReadU64(); err != nil {
		return n, err
	}
	if n.Rseed, err = readRseed(r, n.Version); err != nil {
		return n, err
	}
	if n.Witnesses, err = encoding.ReadVector(r, merkle.ReadIncrementalWitness); err != nil {
		return n, fmt.Errorf("note witnesses: %w", err)
	}
	if n.Version >= 20 {
		if n.WitnessTopHeight, err = r.ReadU64(); err != nil {
			return n, err
		}
	}
	if n.Nullifier, err = readNullifier(r); err != nil {
		return n, err
	}

	if n.Version <= 5 {
		spent, err := encoding.ReadOptional(r, readTxID)
		if err != nil {
			return n, err
		}
		var height *int32
		if n.Version >= 2 {
			if height, err = encoding.ReadOptional(r, encoding.ReadI32); err != nil {
				return n, err
			}
		}
		// A legacy spend only counts once its height is known.
		if spent != nil && height != nil {
			n.Spent = &SpendRef{TxID: *spent, Height: uint32(*height)}
		}
	} else if n.Spent, err = encoding.ReadOptional(r, readSpendRef); err != nil {
		return n, err
	}
	if n.Version >= 5 {
		if n.UnconfirmedSpent, err = encoding.ReadOptional(r, readSpendRef); err != nil {
			return n, err
		}
	}

	if n.Memo, err = encoding.ReadOptional(r, readMemo); err != nil {
		return n, err
	}
	if n.IsChange, err = r.ReadBool(); err != nil {
		return n, err
	}
	n.HaveSpendingKey = true
	if n.Version > 2 {
		if n.HaveSpendingKey, err = r.ReadBool(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// ReadOrchardNote decodes an Orchard note record.
func ReadOrchardNote(r *encoding.Reader) (OrchardNoteData, error) {
	var n OrchardNoteData
	var err error
	if n.Version, err = r.ReadU64(); err != nil {
		return n, err
	}
	if err := encoding.CheckVersion("orchard note", n.Version, OrchardNoteVersion); err != nil {
		return n, err
	}
	if err := r.ReadFull(n.FullViewingKey[:]); err != nil {
		return n, fmt.Errorf("note viewing key: %w", err)
	}
	if err := r.ReadFull(n.Address[:]); err != nil {
		return n, fmt.Errorf("note address: %w", err)
	}
	if n.Value, err = r.ReadU64(); err != nil {
		return n, err
	}
	if n.Rho, err = readOrchardNullifier(r); err != nil {
		return n, fmt.Errorf("note rho: %w", err)
	}
	if n.Rseed, err = r.ReadArray32(); err != nil {
		return n, err
	}
	if n.WitnessPosition, err = encoding.ReadOptional(r, encoding.ReadU64); err != nil {
		return n, err
	}
	if n.Spent, err = encoding.ReadOptional(r, readSpendRef); err != nil {
		return n, err
	}
	if n.UnconfirmedSpent, err = encoding.ReadOptional(r, readSpendRef); err != nil {
		return n, err
	}
	if n.Memo, err = encoding.ReadOptional(r, readMemo); err != nil {
		return n, err
	}
	if n.IsChange, err = r.ReadBool(); err != nil {
		return n, err
	}
	n.HaveSpendingKey, err = r.ReadBool()
	return n, err
}

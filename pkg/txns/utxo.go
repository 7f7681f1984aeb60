package txns

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

// UtxoVersion is the newest UTXO record version, and the one Write emits.
const UtxoVersion = 3

// TxID is a transaction id in internal byte order.
type TxID [32]byte

// String returns the id in the byte-reversed form block explorers show.
func (id TxID) String() string {
	var rev [32]byte
	for i := range id {
		rev[31-i] = id[i]
	}
	return hex.EncodeToString(rev[:])
}

// SpendRef points at the transaction that spent an output, and its height.
type SpendRef struct {
	TxID   TxID
	Height uint32
}

// Utxo is a wallet-owned transparent output.
type Utxo struct {
	Address          string
	TxID             TxID
	OutputIndex      uint64
	Value            uint64
	Height           int32
	Script           []byte
	Spent            *TxID
	SpentAtHeight    *int32    // Since version 2
	UnconfirmedSpent *SpendRef // Since version 3
}

// IsSpent reports whether a confirmed or pending spend exists.
func (u *Utxo) IsSpent() bool {
	return u.Spent != nil || u.UnconfirmedSpent != nil
}

func readTxID(r *encoding.Reader) (TxID, error) {
	b, err := r.ReadArray32()
	return TxID(b), err
}

func writeTxID(w *encoding.Writer, id TxID) {
	w.WriteBytes(id[:])
}

func readSpendRef(r *encoding.Reader) (SpendRef, error) {
	id, err := readTxID(r)
	if err != nil {
		return SpendRef{}, err
	}
	h, err := r.ReadU32()
	return SpendRef{TxID: id, Height: h}, err
}

func writeSpendRef(w *encoding.Writer, s SpendRef) {
	writeTxID(w, s.TxID)
	w.WriteU32(s.Height)
}

// ReadUtxo decodes:
//
//	u64 version || u32 address_len || address || [32] txid || u64 output_index ||
//	u64 value || i32 height || Vec<u8> script || Option<txid> spent ||
//	[Option<i32> spent_at_height >= 2] || [Option<(txid, u32)> unconfirmed_spent >= 3]
func ReadUtxo(r *encoding.Reader) (Utxo, error) {
	var u Utxo
	version, err := r.ReadU64()
	if err != nil {
		return u, err
	}
	if err := encoding.CheckVersion("utxo", version, UtxoVersion); err != nil {
		return u, err
	}

	if u.Address, err = r.ReadString32(); err != nil {
		return u, fmt.Errorf("utxo address: %w", err)
	}
	if !strings.HasPrefix(u.Address, "t") {
		return u, encoding.Invalidf("utxo address %q is not transparent", u.Address)
	}
	if u.TxID, err = readTxID(r); err != nil {
		return u, err
	}
	if u.OutputIndex, err = r.ReadU64(); err != nil {
		return u, err
	}
	if u.Value, err = r.ReadU64(); err != nil {
		return u, err
	}
	if u.Height, err = r.ReadI32(); err != nil {
		return u, err
	}
	if u.Script, err = r.ReadByteVector(); err != nil {
		return u, fmt.Errorf("utxo script: %w", err)
	}
	if u.Spent, err = encoding.ReadOptional(r, readTxID); err != nil {
		return u, err
	}
	if version >= 2 {
		if u.SpentAtHeight, err = encoding.ReadOptional(r, encoding.ReadI32); err != nil {
			return u, err
		}
	}
	if version >= 3 {
		if u.UnconfirmedSpent, err = encoding.ReadOptional(r, readSpendRef); err != nil {
			return u, err
		}
	}
	return u, nil
}

// Write encodes the UTXO at UtxoVersion.
func (u *Utxo) Write(w *encoding.Writer) error {
	w.WriteU64(UtxoVersion)
	w.WriteString32(u.Address)
	writeTxID(w, u.TxID)
	w.WriteU64(u.OutputIndex)
	w.WriteU64(u.Value)
	w.WriteI32(u.Height)
	w.WriteByteVector(u.Script)
	encoding.WriteOptional(w, u.Spent, writeTxID)
	encoding.WriteOptional(w, u.SpentAtHeight, encoding.WriteI32)
	encoding.WriteOptional(w, u.UnconfirmedSpent, writeSpendRef)
	return w.Err()
}

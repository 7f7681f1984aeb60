package txns

import (
	"fmt"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

// WalletTxVersion is the newest transaction record version.
const WalletTxVersion = 23

// First record version that stores each optional field. Every
// version-dependent branch of ReadWalletTx consults this table.
const (
	sinceDatetime               = 4
	sinceZecPrice               = 5
	sinceSaplingSpentNullifiers = 6
	sinceUnconfirmed            = 21
	sinceOrchard                = 22
	sinceOrchardValueSpent      = 23
)

// recordFields says which optional fields a record version carries.
type recordFields struct {
	unconfirmed       bool
	datetime          bool
	orchardValueSpent bool
	zecPrice          bool
	saplingNullifiers bool
	orchard           bool
}

func fieldsFor(version uint64) recordFields {
	return recordFields{
		unconfirmed:       version >= sinceUnconfirmed,
		datetime:          version >= sinceDatetime,
		orchardValueSpent: version >= sinceOrchardValueSpent,
		zecPrice:          version >= sinceZecPrice,
		saplingNullifiers: version >= sinceSaplingSpentNullifiers,
		orchard:           version >= sinceOrchard,
	}
}

// OutgoingTxMetadata describes a send to an address outside the wallet.
type OutgoingTxMetadata struct {
	Address string
	Value   uint64
	Memo    Memo
}

// ReadOutgoingTxMetadata decodes String address || u64 value || [512] memo.
func ReadOutgoingTxMetadata(r *encoding.Reader) (OutgoingTxMetadata, error) {
	var m OutgoingTxMetadata
	var err error
	if m.Address, err = r.ReadString(); err != nil {
		return m, fmt.Errorf("outgoing address: %w", err)
	}
	if m.Value, err = r.ReadU64(); err != nil {
		return m, err
	}
	m.Memo, err = readMemo(r)
	return m, err
}

// WalletTx is one transaction the wallet participated in. Fields absent
// from older record versions hold their zero values.
type WalletTx struct {
	Version     uint64
	Block       int32
	Unconfirmed bool
	Datetime    uint64
	TxID        TxID

	SaplingNotes []SaplingNoteData
	Utxos        []Utxo
	OrchardNotes []OrchardNoteData

	TotalOrchardValueSpent     uint64
	TotalSaplingValueSpent     uint64
	TotalTransparentValueSpent uint64

	OutgoingMetadata []OutgoingTxMetadata
	FullTxScanned    bool
	ZecPrice         *float64

	SaplingSpentNullifiers []Nullifier
	OrchardSpentNullifiers []Nullifier
}

// TotalFundsSpent sums the wallet's spent value across pools.
func (tx *WalletTx) TotalFundsSpent() uint64 {
	return tx.TotalOrchardValueSpent + tx.TotalSaplingValueSpent + tx.TotalTransparentValueSpent
}

// TotalReceived sums the value of every output the wallet received.
func (tx *WalletTx) TotalReceived() uint64 {
	var total uint64
	for i := range tx.SaplingNotes {
		total += tx.SaplingNotes[i].Value
	}
	for i := range tx.OrchardNotes {
		total += tx.OrchardNotes[i].Value
	}
	for i := range tx.Utxos {
		total += tx.Utxos[i].Value
	}
	return total
}

// UnspentValue sums the value of received outputs with no known spend.
func (tx *WalletTx) UnspentValue() uint64 {
	var total uint64
	for i := range tx.SaplingNotes {
		if !tx.SaplingNotes[i].IsSpent() {
			total += tx.SaplingNotes[i].Value
		}
	}
	for i := range tx.OrchardNotes {
		if !tx.OrchardNotes[i].IsSpent() {
			total += tx.OrchardNotes[i].Value
		}
	}
	for i := range tx.Utxos {
		if !tx.Utxos[i].IsSpent() {
			total += tx.Utxos[i].Value
		}
	}
	return total
}

// ReadWalletTx decodes a transaction record.
func ReadWalletTx(r *encoding.Reader) (WalletTx, error) {
	var tx WalletTx
	var err error
	if tx.Version, err = r.ReadU64(); err != nil {
		return tx, err
	}
	if err := encoding.CheckVersion("transaction", tx.Version, WalletTxVersion); err != nil {
		return tx, err
	}
	has := fieldsFor(tx.Version)

	if tx.Block, err = r.ReadI32(); err != nil {
		return tx, err
	}
	if has.unconfirmed {
		b, err := r.ReadU8()
		if err != nil {
			return tx, err
		}
		tx.Unconfirmed = b == 1
	}
	if has.datetime {
		if tx.Datetime, err = r.ReadU64(); err != nil {
			return tx, err
		}
	}
	if tx.TxID, err = readTxID(r); err != nil {
		return tx, err
	}

	if tx.SaplingNotes, err = encoding.ReadVector(r, ReadSaplingNote); err != nil {
		return tx, fmt.Errorf("sapling notes: %w", err)
	}
	if tx.Utxos, err = encoding.ReadVector(r, ReadUtxo); err != nil {
		return tx, fmt.Errorf("utxos: %w", err)
	}

	if has.orchardValueSpent {
		if tx.TotalOrchardValueSpent, err = r.ReadU64(); err != nil {
			return tx, err
		}
	}
	if tx.TotalSaplingValueSpent, err = r.ReadU64(); err != nil {
		return tx, err
	}
	if tx.TotalTransparentValueSpent, err = r.ReadU64(); err != nil {
		return tx, err
	}

	if tx.OutgoingMetadata, err = encoding.ReadVector(r, ReadOutgoingTxMetadata); err != nil {
		return tx, fmt.Errorf("outgoing metadata: %w", err)
	}
	if tx.FullTxScanned, err = r.ReadBool(); err != nil {
		return tx, err
	}
	if has.zecPrice {
		if tx.ZecPrice, err = encoding.ReadOptional(r, encoding.ReadF64); err != nil {
			return tx, err
		}
	}
	if has.saplingNullifiers {
		if tx.SaplingSpentNullifiers, err = encoding.ReadVector(r, readNullifier); err != nil {
			return tx, fmt.Errorf("sapling spent nullifiers: %w", err)
		}
	}
	if has.orchard {
		if tx.OrchardNotes, err = encoding.ReadVector(r, ReadOrchardNote); err != nil {
			return tx, fmt.Errorf("orchard notes: %w", err)
		}
		if tx.OrchardSpentNullifiers, err = encoding.ReadVector(r, readOrchardNullifier); err != nil {
			return tx, fmt.Errorf("orchard spent nullifiers: %w", err)
		}
	}
	return tx, nil
}

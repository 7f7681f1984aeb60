// Package txns decodes the transaction ledger of a ZecWallet Lite wallet.
//
// Ledger layout:
//
//	u64 version || Vec<([32] txid, WalletTx)> current ||
//	[Vec<([32] txid, WalletTx)> mempool if version <= 20]
//
// Every record inside the ledger carries its own version, so a single file
// can mix records written by different releases. Fields a record version
// does not store decode to their zero values without consuming input.
package txns

import (
	"fmt"
	"sort"

	log "github.com/sirupsen/logrus"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
	"github.com/dorianvp/zecwallet-utils/pkg/keys"
)

const (
	// LedgerVersion is the newest ledger header version.
	LedgerVersion = 21
	// lastMempoolVersion is the last ledger version that persisted the
	// mempool list.
	lastMempoolVersion = 20
)

// WalletTxns is the decoded ledger.
type WalletTxns struct {
	Version      uint64
	Transactions []*WalletTx // File order
	Mempool      []*WalletTx // Legacy ledgers only

	byID map[TxID]*WalletTx
}

type txEntry struct {
	key TxID
	tx  WalletTx
}

func readTxEntry(r *encoding.Reader) (txEntry, error) {
	key, err := readTxID(r)
	if err != nil {
		return txEntry{}, err
	}
	tx, err := ReadWalletTx(r)
	if err != nil {
		return txEntry{}, fmt.Errorf("transaction %s: %w", key, err)
	}
	return txEntry{key: key, tx: tx}, nil
}

// Read decodes the ledger.
func Read(r *encoding.Reader) (*WalletTxns, error) {
	version, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if err := encoding.CheckVersion("transactions", version, LedgerVersion); err != nil {
		return nil, err
	}

	entries, err := encoding.ReadVector(r, readTxEntry)
	if err != nil {
		return nil, fmt.Errorf("transactions: %w", err)
	}
	t := &WalletTxns{
		Version:      version,
		Transactions: make([]*WalletTx, 0, len(entries)),
		byID:         make(map[TxID]*WalletTx, len(entries)),
	}
	for i := range entries {
		tx := &entries[i].tx
		t.Transactions = append(t.Transactions, tx)
		t.byID[entries[i].key] = tx
	}

	if version <= lastMempoolVersion {
		mempool, err := encoding.ReadVector(r, readTxEntry)
		if err != nil {
			return nil, fmt.Errorf("mempool: %w", err)
		}
		for i := range mempool {
			t.Mempool = append(t.Mempool, &mempool[i].tx)
		}
	}

	log.WithFields(log.Fields{
		"version":      version,
		"transactions": len(t.Transactions),
		"mempool":      len(t.Mempool),
	}).Debug("decoded transaction ledger")

	return t, nil
}

// Get returns the transaction stored under id.
func (t *WalletTxns) Get(id TxID) (*WalletTx, bool) {
	tx, ok := t.byID[id]
	return tx, ok
}

// Len returns the number of confirmed and pending transactions.
func (t *WalletTxns) Len() int {
	return len(t.Transactions)
}

// ByHeight returns the transactions ordered by block height, then txid.
func (t *WalletTxns) ByHeight() []*WalletTx {
	out := make([]*WalletTx, len(t.Transactions))
	copy(out, t.Transactions)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Block != out[j].Block {
			return out[i].Block < out[j].Block
		}
		return out[i].TxID.String() < out[j].TxID.String()
	})
	return out
}

// HeightRange returns the lowest and highest block heights in the ledger.
// ok is false for an empty ledger.
func (t *WalletTxns) HeightRange() (lo, hi int32, ok bool) {
	for i, tx := range t.Transactions {
		if i == 0 || tx.Block < lo {
			lo = tx.Block
		}
		if i == 0 || tx.Block > hi {
			hi = tx.Block
		}
	}
	return lo, hi, len(t.Transactions) > 0
}

// NoteCounts is the number of received outputs per pool.
type NoteCounts struct {
	Sapling     int
	Orchard     int
	Transparent int
}

// Notes counts the received outputs across all transactions.
func (t *WalletTxns) Notes() NoteCounts {
	var c NoteCounts
	for _, tx := range t.Transactions {
		c.Sapling += len(tx.SaplingNotes)
		c.Orchard += len(tx.OrchardNotes)
		c.Transparent += len(tx.Utxos)
	}
	return c
}

// TotalFundsSpent sums TotalFundsSpent over every transaction.
func (t *WalletTxns) TotalFundsSpent() uint64 {
	var total uint64
	for _, tx := range t.Transactions {
		total += tx.TotalFundsSpent()
	}
	return total
}

// UnspentValue sums the unspent outputs over every transaction.
func (t *WalletTxns) UnspentValue() uint64 {
	var total uint64
	for _, tx := range t.Transactions {
		total += tx.UnspentValue()
	}
	return total
}

// AdjustSpendableStatus marks each Sapling note spendable exactly when its
// viewing key is in spendable. Notes that are not spendable lose their
// witnesses.
func (t *WalletTxns) AdjustSpendableStatus(spendable []keys.ExtendedFullViewingKey) {
	set := make(map[keys.ExtendedFullViewingKey]struct{}, len(spendable))
	for _, k := range spendable {
		set[k] = struct{}{}
	}
	for _, tx := range t.Transactions {
		for i := range tx.SaplingNotes {
			n := &tx.SaplingNotes[i]
			_, n.HaveSpendingKey = set[n.FullViewingKey]
			if !n.HaveSpendingKey {
				n.Witnesses = nil
			}
		}
	}
}

// Package wallet decodes a complete ZecWallet Lite wallet file.
//
// File layout:
//
//	u64 version || Keys || Vec<BlockData> || WalletTxns || String chain ||
//	WalletOptions || u64 birthday || Option<Vec<u8>> verified tree ||
//	PriceInfo || [Option<BridgeTree> orchard witnesses if version > 24]
package wallet

import (
	"bufio"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
	"github.com/dorianvp/zecwallet-utils/pkg/keys"
	"github.com/dorianvp/zecwallet-utils/pkg/merkle"
	"github.com/dorianvp/zecwallet-utils/pkg/txns"
)

// Wallet is a fully decoded wallet file. It is immutable after decoding and
// safe to share between goroutines.
type Wallet struct {
	Version      uint64
	Keys         *keys.Keys
	Blocks       []BlockData // Highest block first
	Transactions *txns.WalletTxns
	ChainName    ChainType
	Options      WalletOptions
	Birthday     uint64
	VerifiedTree *TreeState
	PriceInfo    PriceInfo
	// OrchardWitnesses is nil for files older than version 25 and for
	// wallets that never synced Orchard.
	OrchardWitnesses *merkle.BridgeTree
}

// Read opens path and decodes the wallet stored there.
func Read(path string) (*Wallet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &encoding.IOError{Op: "open wallet", Cause: err}
	}
	defer f.Close()
	return ReadFrom(bufio.NewReader(f))
}

// ReadFrom decodes a wallet from src. A version outside the supported range
// fails after reading only the version field.
func ReadFrom(src io.Reader) (*Wallet, error) {
	r := encoding.NewReader(src)

	version, err := r.ReadU64()
	if err != nil {
		return nil, err
	}
	if err := CheckVersion(version); err != nil {
		return nil, err
	}
	log.WithField("version", version).Debug("reading wallet")

	w := &Wallet{Version: version}

	if w.Keys, err = keys.Read(r); err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	if w.Blocks, err = encoding.ReadVector(r, ReadBlockData); err != nil {
		return nil, fmt.Errorf("blocks: %w", err)
	}
	if w.Transactions, err = txns.Read(r); err != nil {
		return nil, err
	}

	chain, err := r.ReadString()
	if err != nil {
		return nil, fmt.Errorf("chain name: %w", err)
	}
	w.ChainName = ParseChainType(chain)

	if w.Options, err = ReadWalletOptions(r); err != nil {
		return nil, fmt.Errorf("wallet options: %w", err)
	}
	if w.Birthday, err = r.ReadU64(); err != nil {
		return nil, fmt.Errorf("birthday: %w", err)
	}
	if w.VerifiedTree, err = readOptionalVerifiedTree(r); err != nil {
		return nil, err
	}
	if w.PriceInfo, err = ReadPriceInfo(r); err != nil {
		return nil, fmt.Errorf("price info: %w", err)
	}
	if version >= orchardTreeSince {
		tree, err := encoding.ReadOptional(r, merkle.ReadTree)
		if err != nil {
			return nil, fmt.Errorf("orchard witnesses: %w", err)
		}
		if tree != nil {
			w.OrchardWitnesses = *tree
		}
	}

	applySpendableFixup(version, w.Keys, w.Transactions)

	log.WithFields(log.Fields{
		"chain":        w.ChainName,
		"blocks":       len(w.Blocks),
		"transactions": w.Transactions.Len(),
		"offset":       r.Offset(),
	}).Debug("decoded wallet")

	return w, nil
}

// applySpendableFixup recomputes note spendability for files written before
// notes tracked it reliably.
func applySpendableFixup(version uint64, k *keys.Keys, t *txns.WalletTxns) {
	if version > spendableFixupCutoff {
		return
	}
	t.AdjustSpendableStatus(k.SpendableSaplingViewingKeys())
}

// KeyCounts returns the number of key records per pool.
func (w *Wallet) KeyCounts() keys.Counts {
	return w.Keys.Count()
}

// LatestSyncHeight returns the verified tree height, falling back to the
// highest stored block. ok is false when the wallet never synced.
func (w *Wallet) LatestSyncHeight() (height uint64, ok bool) {
	if w.VerifiedTree != nil {
		return w.VerifiedTree.Height, true
	}
	var found bool
	for _, b := range w.Blocks {
		if b.Height >= 0 && (!found || uint64(b.Height) > height) {
			height, found = uint64(b.Height), true
		}
	}
	return height, found
}

// TransactionHeightRange returns the block height span of the ledger.
func (w *Wallet) TransactionHeightRange() (lo, hi int32, ok bool) {
	return w.Transactions.HeightRange()
}

// EstimatedBalance sums received outputs that have no recorded spend.
func (w *Wallet) EstimatedBalance() uint64 {
	return w.Transactions.UnspentValue()
}

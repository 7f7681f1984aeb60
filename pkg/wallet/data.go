package wallet

import (
	"encoding/hex"
	"fmt"

	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
	"github.com/dorianvp/zecwallet-utils/pkg/merkle"
)

// compactBlockSince is the first block record version that keeps the
// compact block bytes.
const compactBlockSince = 12

// BlockData is the per-block sync state kept for recent blocks.
type BlockData struct {
	Height int32
	Hash   [32]byte // Display (byte-reversed) order
	// Tree is always stored; its content predates the block version field
	// and is not maintained by newer releases.
	Tree         merkle.CommitmentTree
	Version      uint64
	CompactBlock []byte
}

// HashHex returns the block hash as shown by explorers.
func (b *BlockData) HashHex() string {
	return hex.EncodeToString(b.Hash[:])
}

// ReadBlockData decodes:
//
//	i32 height || [32] hash || CommitmentTree || u64 version ||
//	[Vec<u8> compact block if version > 11]
func ReadBlockData(r *encoding.Reader) (BlockData, error) {
	var b BlockData
	var err error
	if b.Height, err = r.ReadI32(); err != nil {
		return b, err
	}
	stored, err := r.ReadArray32()
	if err != nil {
		return b, err
	}
	for i := range stored {
		b.Hash[31-i] = stored[i]
	}
	if b.Tree, err = merkle.ReadCommitmentTree(r); err != nil {
		return b, fmt.Errorf("block %d tree: %w", b.Height, err)
	}
	if b.Version, err = r.ReadU64(); err != nil {
		return b, err
	}
	if b.Version >= compactBlockSince {
		if b.CompactBlock, err = r.ReadByteVector(); err != nil {
			return b, fmt.Errorf("block %d compact data: %w", b.Height, err)
		}
	}
	return b, nil
}

// MemoDownloadOption selects which memos the wallet fetches.
type MemoDownloadOption uint8

const (
	NoMemos     MemoDownloadOption = 0
	WalletMemos MemoDownloadOption = 1
	AllMemos    MemoDownloadOption = 2
)

func (o MemoDownloadOption) String() string {
	switch o {
	case NoMemos:
		return "none"
	case WalletMemos:
		return "wallet"
	case AllMemos:
		return "all"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(o))
	}
}

// WalletOptionsVersion is the newest options record version.
const WalletOptionsVersion = 2

// WalletOptions holds user preferences.
type WalletOptions struct {
	Version       uint64
	DownloadMemos MemoDownloadOption
	SpamThreshold int64 // -1 disables spam filtering
}

// DefaultWalletOptions returns the options of a fresh wallet.
func DefaultWalletOptions() WalletOptions {
	return WalletOptions{Version: WalletOptionsVersion, DownloadMemos: WalletMemos, SpamThreshold: -1}
}

// ReadWalletOptions decodes:
//
//	u64 version || u8 download_memos || [i64 spam_threshold if version > 1]
func ReadWalletOptions(r *encoding.Reader) (WalletOptions, error) {
	o := WalletOptions{SpamThreshold: -1}
	var err error
	if o.Version, err = r.ReadU64(); err != nil {
		return o, err
	}
	if err := encoding.CheckVersion("wallet options", o.Version, WalletOptionsVersion); err != nil {
		return o, err
	}
	m, err := r.ReadU8()
	if err != nil {
		return o, err
	}
	if m > uint8(AllMemos) {
		return o, encoding.Invalidf("bad download option %d", m)
	}
	o.DownloadMemos = MemoDownloadOption(m)
	if o.Version > 1 {
		if o.SpamThreshold, err = r.ReadI64(); err != nil {
			return o, err
		}
	}
	return o, nil
}

// PriceInfoVersion is the newest price record version.
const PriceInfoVersion = 20

// PriceInfo is the persisted part of the wallet's ZEC price cache. The
// current price is never persisted.
type PriceInfo struct {
	Version                 uint64
	Currency                string
	LastHistoricalFetchedAt *uint64
	HistoricalRetryCount    uint64
}

// ReadPriceInfo decodes:
//
//	u64 version || Option<u64> last_historical_prices_fetched_at || u64 retry_count
func ReadPriceInfo(r *encoding.Reader) (PriceInfo, error) {
	p := PriceInfo{Currency: "USD"}
	var err error
	if p.Version, err = r.ReadU64(); err != nil {
		return p, err
	}
	if err := encoding.CheckVersion("price info", p.Version, PriceInfoVersion); err != nil {
		return p, err
	}
	if p.LastHistoricalFetchedAt, err = encoding.ReadOptional(r, encoding.ReadU64); err != nil {
		return p, err
	}
	p.HistoricalRetryCount, err = r.ReadU64()
	return p, err
}

// ChainType is the network a wallet was created for. Names other than the
// known three are kept verbatim.
type ChainType struct {
	name string
}

var (
	Mainnet = ChainType{name: "main"}
	Testnet = ChainType{name: "test"}
	Regtest = ChainType{name: "regtest"}
)

// ParseChainType maps a stored chain name to a ChainType.
func ParseChainType(name string) ChainType {
	switch name {
	case Mainnet.name:
		return Mainnet
	case Testnet.name:
		return Testnet
	case Regtest.name:
		return Regtest
	default:
		return ChainType{name: name}
	}
}

// String returns the stored name.
func (c ChainType) String() string {
	return c.name
}

// IsKnown reports whether c is one of the three known networks.
func (c ChainType) IsKnown() bool {
	return c == Mainnet || c == Testnet || c == Regtest
}

// ViewingKeyHRP returns the Sapling viewing key prefix for c. Unknown chains
// use the mainnet prefix.
func (c ChainType) ViewingKeyHRP() string {
	switch c {
	case Testnet:
		return crypto.TestnetViewingKeyHRP
	case Regtest:
		return crypto.RegtestViewingKeyHRP
	default:
		return crypto.MainnetViewingKeyHRP
	}
}

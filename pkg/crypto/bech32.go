package crypto

import (
	"fmt"

	"github.com/btcsuite/btcutil/bech32"
)

// Sapling extended full viewing key human-readable parts.
const (
	MainnetViewingKeyHRP = "zxviews"
	TestnetViewingKeyHRP = "zxviewtestsapling"
	RegtestViewingKeyHRP = "zxviewregtestsapling"
)

// EncodeSaplingViewingKey renders a 169-byte extended full viewing key in
// bech32 (ZIP 32 encoding, no length limit).
func EncodeSaplingViewingKey(hrp string, extfvk []byte) (string, error) {
	conv, err := bech32.ConvertBits(extfvk, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert viewing key bits: %w", err)
	}
	return bech32.Encode(hrp, conv)
}

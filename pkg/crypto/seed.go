// Package crypto seed helpers.
//
// ZecWallet Lite stores a single 32-byte seed. The seed is the BIP 39
// entropy of the wallet's 24-word phrase, and its ZIP 32 fingerprint
// identifies the wallet without revealing it.
//
// References:
//   - ZIP 32 §Seed Fingerprints: https://zips.z.cash/zip-0032
//   - BIP 39: https://github.com/bitcoin/bips/blob/master/bip-0039.mediawiki
package crypto

import (
	"fmt"
	"hash"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/tyler-smith/go-bip39"
)

// SeedFingerprintPersonalization is the BLAKE2b personalization of ZIP 32
// seed fingerprints.
const SeedFingerprintPersonalization = "Zcash_HD_Seed_FP"

// blake2bNew256 creates a new BLAKE2b-256 hash with the given personalization.
// The personalization is NOT a key, but a distinct parameter that modifies
// the hash function.
func blake2bNew256(personalization []byte) (hash.Hash, error) {
	config := &blake2b.Config{
		Size:   32,
		Person: personalization,
	}
	return blake2b.New(config)
}

// SeedFingerprint computes BLAKE2b-256("Zcash_HD_Seed_FP", len(seed) || seed).
func SeedFingerprint(seed []byte) ([32]byte, error) {
	var out [32]byte
	if len(seed) < 32 || len(seed) > 252 {
		return out, fmt.Errorf("seed must be between 32 and 252 bytes, got %d", len(seed))
	}
	h, err := blake2bNew256([]byte(SeedFingerprintPersonalization))
	if err != nil {
		return out, err
	}
	h.Write([]byte{byte(len(seed))})
	h.Write(seed)
	copy(out[:], h.Sum(nil))
	return out, nil
}

// MnemonicFromSeed returns the BIP 39 phrase whose entropy is seed.
func MnemonicFromSeed(seed []byte) (string, error) {
	return bip39.NewMnemonic(seed)
}

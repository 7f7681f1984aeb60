// Package crypto implements secp256k1 handling for transparent wallet keys.
//
// Transparent keys in a ZecWallet Lite wallet are Bitcoin-style secp256k1
// secret keys stored as raw 32-byte big-endian scalars. Their addresses are
// base58check encodings of a two-byte Zcash prefix followed by the
// HASH160 of the compressed public key.
//
// Key formats:
//   - Secret keys: raw 32 bytes, 0 < k < n
//   - Public keys: compressed 33-byte format (0x02/0x03 prefix + x-coordinate)
//   - Addresses: base58check(prefix[2] || hash160(pubkey)[20])
package crypto

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcutil/base58"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck
)

// Transparent address prefixes.
var (
	MainnetP2PKH = [2]byte{0x1c, 0xb8} // t1
	MainnetP2SH  = [2]byte{0x1c, 0xbd} // t3
	TestnetP2PKH = [2]byte{0x1d, 0x25} // tm
	TestnetP2SH  = [2]byte{0x1c, 0xba} // t2
)

var (
	ErrSecretOverflow = errors.New("secret key is not below the secp256k1 group order")
	ErrSecretZero     = errors.New("secret key is zero")
)

// SecretKey wraps a secp256k1 private key
type SecretKey struct {
	key *secp256k1.PrivateKey
}

// PublicKey wraps a secp256k1 public key
type PublicKey struct {
	key *secp256k1.PublicKey
}

// ParseTransparentSecret validates a raw 32-byte secret key.
func ParseTransparentSecret(b [32]byte) (*SecretKey, error) {
	var s secp256k1.ModNScalar
	if overflow := s.SetBytes(&b); overflow != 0 {
		return nil, ErrSecretOverflow
	}
	if s.IsZero() {
		return nil, ErrSecretZero
	}
	return &SecretKey{key: secp256k1.NewPrivateKey(&s)}, nil
}

// PublicKey derives the public key
func (sk *SecretKey) PublicKey() *PublicKey {
	return &PublicKey{key: sk.key.PubKey()}
}

// Bytes returns the raw 32-byte secret key
func (sk *SecretKey) Bytes() []byte {
	return sk.key.Serialize()
}

// Bytes returns the compressed public key bytes
func (pub *PublicKey) Bytes() []byte {
	return pub.key.SerializeCompressed()
}

// Hash160 returns RIPEMD160(SHA256(b)).
func Hash160(b []byte) [20]byte {
	sha := sha256.Sum256(b)
	h := ripemd160.New()
	h.Write(sha[:])
	var out [20]byte
	copy(out[:], h.Sum(nil))
	return out
}

// TransparentAddress is a decoded t-address.
type TransparentAddress struct {
	Prefix [2]byte
	Hash   [20]byte
}

// IsP2PKH reports whether the address pays to a public key hash.
func (a TransparentAddress) IsP2PKH() bool {
	return a.Prefix == MainnetP2PKH || a.Prefix == TestnetP2PKH
}

// String re-encodes the address.
func (a TransparentAddress) String() string {
	payload := make([]byte, 0, 21)
	payload = append(payload, a.Prefix[1])
	payload = append(payload, a.Hash[:]...)
	return base58.CheckEncode(payload, a.Prefix[0])
}

// DecodeTransparentAddress decodes a base58check t-address.
//
// base58.CheckDecode splits off a single version byte; Zcash prefixes are two
// bytes long, so the second one is the first byte of the returned payload.
func DecodeTransparentAddress(s string) (TransparentAddress, error) {
	var addr TransparentAddress
	payload, version, err := base58.CheckDecode(s)
	if err != nil {
		return addr, fmt.Errorf("failed to decode transparent address: %w", err)
	}
	if len(payload) != 21 {
		return addr, fmt.Errorf("transparent address payload must be 22 bytes, got %d", len(payload)+1)
	}
	addr.Prefix = [2]byte{version, payload[0]}
	copy(addr.Hash[:], payload[1:])
	switch addr.Prefix {
	case MainnetP2PKH, MainnetP2SH, TestnetP2PKH, TestnetP2SH:
		return addr, nil
	default:
		return addr, fmt.Errorf("unknown transparent address prefix 0x%02x%02x", addr.Prefix[0], addr.Prefix[1])
	}
}

// P2PKHAddress builds the pay-to-pubkey-hash address of pub.
func (pub *PublicKey) P2PKHAddress(prefix [2]byte) TransparentAddress {
	return TransparentAddress{Prefix: prefix, Hash: Hash160(pub.Bytes())}
}

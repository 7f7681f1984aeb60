package keys

import (
	"fmt"

	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

// Per-record serialization versions.
const (
	TransparentKeyVersion = 1
	SaplingKeyVersion     = 1
	OrchardKeyVersion     = 1
)

// Serialized key sizes.
const (
	ExtendedKeySize        = 169
	OrchardFVKSize         = 96
	OrchardSpendingKeySize = 32
)

// ExtendedSpendingKey is a serialized Sapling ZIP 32 extended spending key.
type ExtendedSpendingKey [ExtendedKeySize]byte

// ExtendedFullViewingKey is a serialized Sapling ZIP 32 extended full
// viewing key.
type ExtendedFullViewingKey [ExtendedKeySize]byte

// Encode renders the key in bech32 under hrp.
func (k ExtendedFullViewingKey) Encode(hrp string) (string, error) {
	return crypto.EncodeSaplingViewingKey(hrp, k[:])
}

// TransparentKey is a secp256k1 key with its t-address.
type TransparentKey struct {
	Version      uint64
	Origin       Origin
	Locked       bool
	Secret       *[32]byte // Clear secret; nil when locked
	Address      string
	EncryptedKey []byte // Nil when absent
	Nonce        []byte // Nil when absent
}

// HaveSpendingKey reports whether spending authority exists for this key.
func (k *TransparentKey) HaveSpendingKey() bool {
	return haveSpendingKey(k.Origin, k.Secret != nil, k.EncryptedKey != nil)
}

// AddressMatchesSecret reports whether Address is the P2PKH address of the
// clear secret. It fails when the secret is absent or the address is not a
// P2PKH t-address.
func (k *TransparentKey) AddressMatchesSecret() (bool, error) {
	if k.Secret == nil {
		return false, fmt.Errorf("transparent key %s has no clear secret", k.Address)
	}
	addr, err := crypto.DecodeTransparentAddress(k.Address)
	if err != nil {
		return false, err
	}
	if !addr.IsP2PKH() {
		return false, fmt.Errorf("transparent address %s is not P2PKH", k.Address)
	}
	sk, err := crypto.ParseTransparentSecret(*k.Secret)
	if err != nil {
		return false, err
	}
	return sk.PublicKey().P2PKHAddress(addr.Prefix) == addr, nil
}

// SaplingKey is a Sapling extended key pair.
type SaplingKey struct {
	Version        uint64
	Origin         Origin
	Locked         bool
	SpendingKey    *ExtendedSpendingKey // Nil when locked or viewing-only
	FullViewingKey ExtendedFullViewingKey
	EncryptedKey   []byte
	Nonce          []byte
}

// HaveSpendingKey reports whether spending authority exists for this key.
func (k *SaplingKey) HaveSpendingKey() bool {
	return haveSpendingKey(k.Origin, k.SpendingKey != nil, k.EncryptedKey != nil)
}

// OrchardKey is an Orchard full viewing key and optional spending key.
type OrchardKey struct {
	Version        uint64
	Origin         Origin
	Locked         bool
	FullViewingKey [OrchardFVKSize]byte
	SpendingKey    *[OrchardSpendingKeySize]byte
	EncryptedKey   []byte
	Nonce          []byte
}

// HaveSpendingKey reports whether spending authority exists for this key.
func (k *OrchardKey) HaveSpendingKey() bool {
	return haveSpendingKey(k.Origin, k.SpendingKey != nil, k.EncryptedKey != nil)
}

func haveSpendingKey(origin Origin, clear, encrypted bool) bool {
	if IsViewingOnly(origin) {
		return false
	}
	_, hd := IsHD(origin)
	return clear || encrypted || hd
}

func readEncryptedParts(r *encoding.Reader) (encKey, nonce []byte, err error) {
	k, err := encoding.ReadOptional(r, encoding.ReadByteVector)
	if err != nil {
		return nil, nil, fmt.Errorf("encrypted key: %w", err)
	}
	n, err := encoding.ReadOptional(r, encoding.ReadByteVector)
	if err != nil {
		return nil, nil, fmt.Errorf("nonce: %w", err)
	}
	if k != nil {
		encKey = *k
	}
	if n != nil {
		nonce = *n
	}
	return encKey, nonce, nil
}

func readExtendedKey(r *encoding.Reader) ([ExtendedKeySize]byte, error) {
	var out [ExtendedKeySize]byte
	err := r.ReadFull(out[:])
	return out, err
}

// readTransparentKey decodes:
//
//	u64 version || u32 keytype || u8 locked || Option<[32] secret> ||
//	String address || Option<u32> hdkey_num || Option<Vec<u8>> enc_key ||
//	Option<Vec<u8>> nonce
func readTransparentKey(encrypted bool) func(*encoding.Reader) (TransparentKey, error) {
	return func(r *encoding.Reader) (TransparentKey, error) {
		var k TransparentKey
		var err error
		if k.Version, err = r.ReadU64(); err != nil {
			return k, err
		}
		if err := encoding.CheckVersion("transparent key", k.Version, TransparentKeyVersion); err != nil {
			return k, err
		}
		keytype, err := r.ReadU32()
		if err != nil {
			return k, err
		}
		if k.Locked, err = r.ReadBool(); err != nil {
			return k, err
		}
		if k.Secret, err = encoding.ReadOptional(r, encoding.ReadArray32); err != nil {
			return k, fmt.Errorf("secret key: %w", err)
		}
		if k.Address, err = r.ReadString(); err != nil {
			return k, fmt.Errorf("address: %w", err)
		}
		hdIndex, err := encoding.ReadOptional(r, encoding.ReadU32)
		if err != nil {
			return k, err
		}
		if k.EncryptedKey, k.Nonce, err = readEncryptedParts(r); err != nil {
			return k, err
		}

		if k.Origin, err = originFrom("transparent", keytype, hdIndex, false); err != nil {
			return k, err
		}
		if err := checkSecret("transparent", k.Secret != nil, encrypted, k.Origin); err != nil {
			return k, err
		}
		if k.Secret != nil {
			if _, err := crypto.ParseTransparentSecret(*k.Secret); err != nil {
				return k, &encoding.InvalidFormatError{Message: "invalid transparent secret key", Cause: err}
			}
		}
		return k, nil
	}
}

// readSaplingKey decodes:
//
//	u64 version || u32 keytype || u8 locked || Option<[169] extsk> ||
//	[169] extfvk || Option<u32> hdkey_num || Option<Vec<u8>> enc_key ||
//	Option<Vec<u8>> nonce
func readSaplingKey(encrypted bool) func(*encoding.Reader) (SaplingKey, error) {
	return func(r *encoding.Reader) (SaplingKey, error) {
		var k SaplingKey
		var err error
		if k.Version, err = r.ReadU64(); err != nil {
			return k, err
		}
		if err := encoding.CheckVersion("sapling key", k.Version, SaplingKeyVersion); err != nil {
			return k, err
		}
		keytype, err := r.ReadU32()
		if err != nil {
			return k, err
		}
		if k.Locked, err = r.ReadBool(); err != nil {
			return k, err
		}
		extsk, err := encoding.ReadOptional(r, readExtendedKey)
		if err != nil {
			return k, fmt.Errorf("extended spending key: %w", err)
		}
		if extsk != nil {
			sk := ExtendedSpendingKey(*extsk)
			k.SpendingKey = &sk
		}
		fvk, err := readExtendedKey(r)
		if err != nil {
			return k, fmt.Errorf("extended full viewing key: %w", err)
		}
		k.FullViewingKey = fvk
		hdIndex, err := encoding.ReadOptional(r, encoding.ReadU32)
		if err != nil {
			return k, err
		}
		if k.EncryptedKey, k.Nonce, err = readEncryptedParts(r); err != nil {
			return k, err
		}

		if k.Origin, err = originFrom("sapling", keytype, hdIndex, true); err != nil {
			return k, err
		}
		return k, checkSecret("sapling", k.SpendingKey != nil, encrypted, k.Origin)
	}
}

// readOrchardKey decodes:
//
//	u64 version || u32 keytype || u8 locked || Option<u32> hdkey_num ||
//	[96] fvk || Option<[32] sk> || Option<Vec<u8>> enc_key || Option<Vec<u8>> nonce
func readOrchardKey(encrypted bool) func(*encoding.Reader) (OrchardKey, error) {
	return func(r *encoding.Reader) (OrchardKey, error) {
		var k OrchardKey
		var err error
		if k.Version, err = r.ReadU64(); err != nil {
			return k, err
		}
		if err := encoding.CheckVersion("orchard key", k.Version, OrchardKeyVersion); err != nil {
			return k, err
		}
		keytype, err := r.ReadU32()
		if err != nil {
			return k, err
		}
		if k.Locked, err = r.ReadBool(); err != nil {
			return k, err
		}
		hdIndex, err := encoding.ReadOptional(r, encoding.ReadU32)
		if err != nil {
			return k, err
		}
		if err := r.ReadFull(k.FullViewingKey[:]); err != nil {
			return k, fmt.Errorf("full viewing key: %w", err)
		}
		if k.SpendingKey, err = encoding.ReadOptional(r, encoding.ReadArray32); err != nil {
			return k, fmt.Errorf("spending key: %w", err)
		}
		if k.EncryptedKey, k.Nonce, err = readEncryptedParts(r); err != nil {
			return k, err
		}

		if k.Origin, err = originFrom("orchard", keytype, hdIndex, true); err != nil {
			return k, err
		}
		return k, checkSecret("orchard", k.SpendingKey != nil, encrypted, k.Origin)
	}
}

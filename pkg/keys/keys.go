// Package keys decodes the key bundle of a ZecWallet Lite wallet.
//
// Bundle layout:
//
//	u64 version || u8 encrypted || [48] enc_seed || Vec<u8> nonce || [32] seed ||
//	[Vec<OrchardKey> if version > 21] || Vec<SaplingKey> || Vec<TransparentKey>
//
// When the bundle is encrypted the clear seed is zero-filled and every key
// record is locked: only viewing keys and addresses remain readable.
package keys

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

const (
	// MaxVersion is the newest key bundle version this package reads.
	MaxVersion = 22
	// orchardSince is the first bundle version that stores Orchard keys.
	orchardSince = 22
)

// ErrEncrypted is returned when seed material is requested from an encrypted
// bundle.
var ErrEncrypted = errors.New("wallet seed is encrypted")

// Keys is the decoded key bundle.
type Keys struct {
	Version       uint64
	Encrypted     bool
	EncryptedSeed [48]byte
	Nonce         []byte
	Seed          [32]byte

	Orchard     []OrchardKey
	Sapling     []SaplingKey
	Transparent []TransparentKey
}

// Counts holds the number of key records per pool.
type Counts struct {
	Transparent int
	Sapling     int
	Orchard     int
}

// Total returns the number of key records across pools.
func (c Counts) Total() int {
	return c.Transparent + c.Sapling + c.Orchard
}

// Read decodes a key bundle.
func Read(r *encoding.Reader) (*Keys, error) {
	var k Keys
	var err error
	if k.Version, err = r.ReadU64(); err != nil {
		return nil, err
	}
	if err := encoding.CheckVersion("keys", k.Version, MaxVersion); err != nil {
		return nil, err
	}
	if k.Encrypted, err = r.ReadBool(); err != nil {
		return nil, err
	}
	if err := r.ReadFull(k.EncryptedSeed[:]); err != nil {
		return nil, fmt.Errorf("encrypted seed: %w", err)
	}
	if k.Nonce, err = r.ReadByteVector(); err != nil {
		return nil, fmt.Errorf("seed nonce: %w", err)
	}
	if err := r.ReadFull(k.Seed[:]); err != nil {
		return nil, fmt.Errorf("seed: %w", err)
	}

	if k.Version >= orchardSince {
		if k.Orchard, err = encoding.ReadVector(r, readOrchardKey(k.Encrypted)); err != nil {
			return nil, fmt.Errorf("orchard keys: %w", err)
		}
	}
	if k.Sapling, err = encoding.ReadVector(r, readSaplingKey(k.Encrypted)); err != nil {
		return nil, fmt.Errorf("sapling keys: %w", err)
	}
	if k.Transparent, err = encoding.ReadVector(r, readTransparentKey(k.Encrypted)); err != nil {
		return nil, fmt.Errorf("transparent keys: %w", err)
	}

	log.WithFields(log.Fields{
		"version":     k.Version,
		"encrypted":   k.Encrypted,
		"orchard":     len(k.Orchard),
		"sapling":     len(k.Sapling),
		"transparent": len(k.Transparent),
	}).Debug("decoded key bundle")

	return &k, nil
}

// Count returns the number of key records per pool.
func (k *Keys) Count() Counts {
	return Counts{
		Transparent: len(k.Transparent),
		Sapling:     len(k.Sapling),
		Orchard:     len(k.Orchard),
	}
}

// SaplingViewingKeys returns every Sapling extended full viewing key, in
// storage order.
func (k *Keys) SaplingViewingKeys() []ExtendedFullViewingKey {
	out := make([]ExtendedFullViewingKey, 0, len(k.Sapling))
	for i := range k.Sapling {
		out = append(out, k.Sapling[i].FullViewingKey)
	}
	return out
}

// SpendableSaplingViewingKeys returns the viewing keys for which
// HaveSaplingSpendingKey holds, in storage order.
func (k *Keys) SpendableSaplingViewingKeys() []ExtendedFullViewingKey {
	var out []ExtendedFullViewingKey
	for _, fvk := range k.SaplingViewingKeys() {
		if k.HaveSaplingSpendingKey(fvk) {
			out = append(out, fvk)
		}
	}
	return out
}

// HaveSaplingSpendingKey reports whether the record holding fvk can spend.
// An unknown key cannot.
func (k *Keys) HaveSaplingSpendingKey(fvk ExtendedFullViewingKey) bool {
	for i := range k.Sapling {
		if k.Sapling[i].FullViewingKey == fvk {
			return k.Sapling[i].HaveSpendingKey()
		}
	}
	return false
}

// Mnemonic returns the 24-word phrase of the clear seed.
func (k *Keys) Mnemonic() (string, error) {
	if k.Encrypted {
		return "", ErrEncrypted
	}
	return crypto.MnemonicFromSeed(k.Seed[:])
}

// SeedFingerprint returns the ZIP 32 fingerprint of the clear seed.
func (k *Keys) SeedFingerprint() ([32]byte, error) {
	if k.Encrypted {
		return [32]byte{}, ErrEncrypted
	}
	return crypto.SeedFingerprint(k.Seed[:])
}

// AccountKeys groups the records derived at one HD index.
type AccountKeys struct {
	Index       uint32
	Transparent []TransparentKey
	Sapling     []SaplingKey
	Orchard     []OrchardKey
}

// IsEmpty reports whether no record uses the index.
func (a *AccountKeys) IsEmpty() bool {
	return len(a.Transparent)+len(a.Sapling)+len(a.Orchard) == 0
}

// KeysForAccount returns the records derived from the seed at idx.
func (k *Keys) KeysForAccount(idx uint32) AccountKeys {
	acct := AccountKeys{Index: idx}
	for _, t := range k.Transparent {
		if i, ok := IsHD(t.Origin); ok && i == idx {
			acct.Transparent = append(acct.Transparent, t)
		}
	}
	for _, s := range k.Sapling {
		if i, ok := IsHD(s.Origin); ok && i == idx {
			acct.Sapling = append(acct.Sapling, s)
		}
	}
	for _, o := range k.Orchard {
		if i, ok := IsHD(o.Origin); ok && i == idx {
			acct.Orchard = append(acct.Orchard, o)
		}
	}
	return acct
}

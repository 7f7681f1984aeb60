package wallet

import "github.com/dorianvp/zecwallet-utils/pkg/encoding"

const (
	// MaxSupportedVersion is the newest outer wallet version.
	MaxSupportedVersion = 25
	// LegacyCutoff is the last version of the incompatible early layout.
	LegacyCutoff = 14
	// spendableFixupCutoff is the last version whose notes need their
	// spendability recomputed after decoding.
	spendableFixupCutoff = 8
	// orchardTreeSince is the first version that stores the Orchard tree.
	orchardTreeSince = 25
)

// CheckVersion accepts versions in (LegacyCutoff, MaxSupportedVersion]. It
// consumes nothing.
func CheckVersion(v uint64) error {
	if v > MaxSupportedVersion {
		return &encoding.UnsupportedVersionError{Section: "wallet", Version: v, Max: MaxSupportedVersion}
	}
	if v <= LegacyCutoff {
		return &encoding.NotImplementedError{Feature: "wallets", Version: v}
	}
	return nil
}

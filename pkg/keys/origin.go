package keys

import (
	"fmt"

	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

// Origin records how a key came to be in the wallet.
//
// The stored form is a keytype code plus an optional HD index; the pair is
// folded into one of the variants below so that an index exists exactly when
// the key was derived from the seed.
type Origin interface {
	isOrigin()
	String() string
}

// HDDerived keys were derived from the wallet seed at Index.
type HDDerived struct {
	Index uint32
}

// Imported keys carry spending authority but were not derived from the seed.
type Imported struct{}

// ViewingOnly keys can see incoming funds but never spend.
type ViewingOnly struct{}

func (HDDerived) isOrigin()   {}
func (Imported) isOrigin()    {}
func (ViewingOnly) isOrigin() {}

func (o HDDerived) String() string { return fmt.Sprintf("hd/%d", o.Index) }
func (Imported) String() string    { return "imported" }
func (ViewingOnly) String() string { return "viewing-only" }

// Stored keytype codes.
const (
	keyTypeHD          = 0
	keyTypeImported    = 1
	keyTypeViewingOnly = 2
)

// IsHD reports whether o is seed-derived, and its index.
func IsHD(o Origin) (uint32, bool) {
	hd, ok := o.(HDDerived)
	return hd.Index, ok
}

// IsViewingOnly reports whether o lacks spending authority by construction.
func IsViewingOnly(o Origin) bool {
	_, ok := o.(ViewingOnly)
	return ok
}

func originFrom(pool string, keytype uint32, hdIndex *uint32, allowViewing bool) (Origin, error) {
	switch {
	case keytype == keyTypeHD:
		if hdIndex == nil {
			return nil, encoding.Invalidf("%s key is HD derived but has no HD index", pool)
		}
		return HDDerived{Index: *hdIndex}, nil
	case keytype == keyTypeImported:
		if hdIndex != nil {
			return nil, encoding.Invalidf("imported %s key has an HD index", pool)
		}
		return Imported{}, nil
	case keytype == keyTypeViewingOnly && allowViewing:
		if hdIndex != nil {
			return nil, encoding.Invalidf("viewing %s key has an HD index", pool)
		}
		return ViewingOnly{}, nil
	default:
		return nil, encoding.Invalidf("unknown %s keytype %d", pool, keytype)
	}
}

// checkSecret enforces that a clear secret appears only in an unencrypted
// bundle, on a record that can spend.
func checkSecret(pool string, present, bundleEncrypted bool, origin Origin) error {
	if !present {
		return nil
	}
	if bundleEncrypted {
		return encoding.Invalidf("%s key holds a clear secret in an encrypted wallet", pool)
	}
	if IsViewingOnly(origin) {
		return encoding.Invalidf("viewing-only %s key holds a secret", pool)
	}
	return nil
}

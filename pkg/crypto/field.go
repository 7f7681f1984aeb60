// Package crypto field canonicality checks.
//
// Shielded note commitment trees store their nodes as 32-byte little-endian
// field elements. A node is only well-formed if the integer it encodes is
// strictly below the field modulus:
//   - Orchard nodes, nullifiers and rho values live in the Pallas base field.
//   - Sapling nodes live in the Jubjub base field, which is the BLS12-381
//     scalar field.
//
// References:
//   - Zcash protocol specification §5.4.9.6 (Pallas and Vesta)
//   - Zcash protocol specification §5.4.9.3 (Jubjub)
package crypto

import (
	"github.com/consensys/gnark-crypto/ecc/bls12-381/fr"
	"github.com/holiman/uint256"
)

// PallasBaseModulus is p = 2^254 + 45560315531419706090280762371685220353.
var PallasBaseModulus = uint256.MustFromHex("0x40000000000000000000000000000000224698fc094cf91b992d30ed00000001")

// reverse32 converts between the little-endian wire form and the big-endian
// form both libraries expect.
func reverse32(b [32]byte) [32]byte {
	var out [32]byte
	for i := range b {
		out[31-i] = b[i]
	}
	return out
}

// IsCanonicalPallas reports whether b is a canonical Pallas base element.
func IsCanonicalPallas(b [32]byte) bool {
	be := reverse32(b)
	v := new(uint256.Int).SetBytes32(be[:])
	return v.Lt(PallasBaseModulus)
}

// IsCanonicalJubjubBase reports whether b is a canonical Jubjub base
// element.
func IsCanonicalJubjubBase(b [32]byte) bool {
	be := reverse32(b)
	var e fr.Element
	return e.SetBytesCanonical(be[:]) == nil
}

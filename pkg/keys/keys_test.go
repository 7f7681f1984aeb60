package keys

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
)

type tkeyFixture struct {
	keytype uint32
	secret  *[32]byte
	address string
	hd      *uint32
	encKey  []byte
}

type zkeyFixture struct {
	keytype uint32
	extsk   *[ExtendedKeySize]byte
	extfvk  [ExtendedKeySize]byte
	hd      *uint32
	encKey  []byte
}

type okeyFixture struct {
	keytype uint32
	hd      *uint32
	fvk     [OrchardFVKSize]byte
	sk      *[32]byte
}

type bundleFixture struct {
	version   uint64
	encrypted bool
	seed      [32]byte
	orchard   []okeyFixture
	sapling   []zkeyFixture
	transp    []tkeyFixture
}

func writeOptionalBytes(w *encoding.Writer, b []byte) {
	if b == nil {
		w.WriteU8(0)
		return
	}
	w.WriteU8(1)
	w.WriteByteVector(b)
}

func (b bundleFixture) bytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := encoding.NewWriter(&buf)
	w.WriteU64(b.version)
	w.WriteBool(b.encrypted)
	w.WriteBytes(make([]byte, 48))
	w.WriteByteVector([]byte{9, 9})
	w.WriteBytes(b.seed[:])
	if b.version > 21 {
		encoding.WriteVector(w, b.orchard, func(w *encoding.Writer, k okeyFixture) {
			w.WriteU64(1)
			w.WriteU32(k.keytype)
			w.WriteBool(false)
			encoding.WriteOptional(w, k.hd, encoding.WriteU32)
			w.WriteBytes(k.fvk[:])
			encoding.WriteOptional(w, k.sk, encoding.WriteArray32)
			writeOptionalBytes(w, nil)
			writeOptionalBytes(w, nil)
		})
	}
	encoding.WriteVector(w, b.sapling, func(w *encoding.Writer, k zkeyFixture) {
		w.WriteU64(1)
		w.WriteU32(k.keytype)
		w.WriteBool(k.extsk == nil)
		encoding.WriteOptional(w, k.extsk, func(w *encoding.Writer, sk [ExtendedKeySize]byte) {
			w.WriteBytes(sk[:])
		})
		w.WriteBytes(k.extfvk[:])
		encoding.WriteOptional(w, k.hd, encoding.WriteU32)
		writeOptionalBytes(w, k.encKey)
		writeOptionalBytes(w, k.encKey)
	})
	encoding.WriteVector(w, b.transp, func(w *encoding.Writer, k tkeyFixture) {
		w.WriteU64(1)
		w.WriteU32(k.keytype)
		w.WriteBool(k.secret == nil)
		encoding.WriteOptional(w, k.secret, encoding.WriteArray32)
		w.WriteString(k.address)
		encoding.WriteOptional(w, k.hd, encoding.WriteU32)
		writeOptionalBytes(w, k.encKey)
		writeOptionalBytes(w, k.encKey)
	})
	require.NoError(t, w.Err())
	return buf.Bytes()
}

func readBundle(t *testing.T, b bundleFixture) (*Keys, error) {
	t.Helper()
	return Read(encoding.NewReader(bytes.NewReader(b.bytes(t))))
}

func idx(i uint32) *uint32 { return &i }

func secretOne() *[32]byte {
	var s [32]byte
	s[31] = 1
	return &s
}

func fvk(b byte) ExtendedFullViewingKey {
	var k ExtendedFullViewingKey
	k[0] = b
	return k
}

func TestReadEmptyBundle(t *testing.T) {
	k, err := readBundle(t, bundleFixture{version: 22})
	require.NoError(t, err)
	assert.Equal(t, Counts{}, k.Count())
	assert.Equal(t, 0, k.Count().Total())
	assert.Equal(t, []byte{9, 9}, k.Nonce)
}

func TestReadBundleBeforeOrchard(t *testing.T) {
	k, err := readBundle(t, bundleFixture{
		version: 21,
		transp:  []tkeyFixture{{keytype: keyTypeImported, secret: secretOne(), address: "t1imported"}},
	})
	require.NoError(t, err)
	assert.Empty(t, k.Orchard)
	require.Len(t, k.Transparent, 1)
	assert.Equal(t, Imported{}, k.Transparent[0].Origin)
}

func TestReadBundleVersionTooNew(t *testing.T) {
	_, err := readBundle(t, bundleFixture{version: 23})

	var fmtErr *encoding.InvalidFormatError
	var verErr *encoding.UnsupportedVersionError
	require.ErrorAs(t, err, &fmtErr)
	require.ErrorAs(t, err, &verErr)
	assert.Equal(t, uint64(23), verErr.Version)
}

func TestReadBundleAllPools(t *testing.T) {
	extsk := [ExtendedKeySize]byte{1}
	k, err := readBundle(t, bundleFixture{
		version: 22,
		orchard: []okeyFixture{
			{keytype: keyTypeHD, hd: idx(0), sk: &[32]byte{7}},
			{keytype: keyTypeViewingOnly},
		},
		sapling: []zkeyFixture{
			{keytype: keyTypeHD, hd: idx(0), extsk: &extsk, extfvk: fvk(1)},
			{keytype: keyTypeViewingOnly, extfvk: fvk(2)},
			{keytype: keyTypeHD, hd: idx(1), extfvk: fvk(3)},
		},
		transp: []tkeyFixture{
			{keytype: keyTypeHD, hd: idx(0), secret: secretOne(), address: "t1abc"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, Counts{Transparent: 1, Sapling: 3, Orchard: 2}, k.Count())
	assert.Equal(t, HDDerived{Index: 0}, k.Orchard[0].Origin)
	assert.True(t, k.Orchard[0].HaveSpendingKey())
	assert.False(t, k.Orchard[1].HaveSpendingKey())

	assert.Equal(t, []ExtendedFullViewingKey{fvk(1), fvk(2), fvk(3)}, k.SaplingViewingKeys())
	assert.True(t, k.HaveSaplingSpendingKey(fvk(1)))
	assert.False(t, k.HaveSaplingSpendingKey(fvk(2)))
	// HD records keep spending authority while locked.
	assert.True(t, k.HaveSaplingSpendingKey(fvk(3)))
	assert.False(t, k.HaveSaplingSpendingKey(fvk(9)))
	assert.Equal(t, []ExtendedFullViewingKey{fvk(1), fvk(3)}, k.SpendableSaplingViewingKeys())

	acct0 := k.KeysForAccount(0)
	assert.Len(t, acct0.Transparent, 1)
	assert.Len(t, acct0.Sapling, 1)
	assert.Len(t, acct0.Orchard, 1)
	acct1 := k.KeysForAccount(1)
	assert.Len(t, acct1.Sapling, 1)
	empty := k.KeysForAccount(5)
	assert.True(t, empty.IsEmpty())
}

func TestSpendableKeysUseFirstRecord(t *testing.T) {
	var extsk [ExtendedKeySize]byte
	k, err := readBundle(t, bundleFixture{
		version: 22,
		sapling: []zkeyFixture{
			{keytype: keyTypeViewingOnly, extfvk: fvk(4)},
			{keytype: keyTypeImported, extsk: &extsk, extfvk: fvk(4)},
			{keytype: keyTypeImported, extsk: &extsk, extfvk: fvk(5)},
		},
	})
	require.NoError(t, err)

	assert.False(t, k.HaveSaplingSpendingKey(fvk(4)))
	assert.Equal(t, []ExtendedFullViewingKey{fvk(5)}, k.SpendableSaplingViewingKeys())
}

func TestOriginInvariants(t *testing.T) {
	tests := []struct {
		name   string
		bundle bundleFixture
	}{
		{"hd without index", bundleFixture{version: 22, sapling: []zkeyFixture{{keytype: keyTypeHD}}}},
		{"imported with index", bundleFixture{version: 22, sapling: []zkeyFixture{{keytype: keyTypeImported, hd: idx(3)}}}},
		{"viewing with index", bundleFixture{version: 22, orchard: []okeyFixture{{keytype: keyTypeViewingOnly, hd: idx(0)}}}},
		{"unknown keytype", bundleFixture{version: 22, sapling: []zkeyFixture{{keytype: 7}}}},
		{"transparent viewing key", bundleFixture{version: 22, transp: []tkeyFixture{{keytype: keyTypeViewingOnly, address: "t1"}}}},
		{"viewing key with secret", bundleFixture{version: 22, orchard: []okeyFixture{{keytype: keyTypeViewingOnly, sk: &[32]byte{1}}}}},
		{"clear secret in encrypted bundle", bundleFixture{version: 22, encrypted: true, transp: []tkeyFixture{{keytype: keyTypeImported, secret: secretOne(), address: "t1"}}}},
		{"secret out of range", bundleFixture{version: 22, transp: []tkeyFixture{{keytype: keyTypeImported, secret: &[32]byte{}, address: "t1"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readBundle(t, tt.bundle)
			var fmtErr *encoding.InvalidFormatError
			assert.ErrorAs(t, err, &fmtErr)
		})
	}
}

func TestEncryptedBundle(t *testing.T) {
	k, err := readBundle(t, bundleFixture{
		version:   22,
		encrypted: true,
		sapling:   []zkeyFixture{{keytype: keyTypeImported, extfvk: fvk(1), encKey: []byte{1, 2, 3}}},
	})
	require.NoError(t, err)
	assert.True(t, k.Sapling[0].Locked)
	assert.True(t, k.Sapling[0].HaveSpendingKey())

	_, err = k.Mnemonic()
	assert.ErrorIs(t, err, ErrEncrypted)
	_, err = k.SeedFingerprint()
	assert.ErrorIs(t, err, ErrEncrypted)
}

func TestMnemonicAndFingerprint(t *testing.T) {
	k, err := readBundle(t, bundleFixture{version: 22})
	require.NoError(t, err)

	phrase, err := k.Mnemonic()
	require.NoError(t, err)
	assert.Contains(t, phrase, "abandon")

	fp, err := k.SeedFingerprint()
	require.NoError(t, err)
	want, err := crypto.SeedFingerprint(make([]byte, 32))
	require.NoError(t, err)
	assert.Equal(t, want, fp)
}

func TestAddressMatchesSecret(t *testing.T) {
	sk, err := crypto.ParseTransparentSecret(*secretOne())
	require.NoError(t, err)
	addr := sk.PublicKey().P2PKHAddress(crypto.MainnetP2PKH).String()

	k := TransparentKey{Origin: Imported{}, Secret: secretOne(), Address: addr}
	ok, err := k.AddressMatchesSecret()
	require.NoError(t, err)
	assert.True(t, ok)

	locked := TransparentKey{Origin: Imported{}, Address: addr}
	_, err = locked.AddressMatchesSecret()
	assert.Error(t, err)
}

func TestViewingKeyEncoding(t *testing.T) {
	s, err := fvk(1).Encode(crypto.MainnetViewingKeyHRP)
	require.NoError(t, err)
	assert.Contains(t, s, "zxviews1")
}

package main

import (
	"bytes"
	"encoding/hex"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dorianvp/zecwallet-utils/pkg/config"
	"github.com/dorianvp/zecwallet-utils/pkg/crypto"
	"github.com/dorianvp/zecwallet-utils/pkg/encoding"
	"github.com/dorianvp/zecwallet-utils/pkg/keys"
	"github.com/dorianvp/zecwallet-utils/pkg/txns"
	"github.com/dorianvp/zecwallet-utils/pkg/wallet"
)

func init() {
	pterm.DisableColor()
}

func sampleWallet() *wallet.Wallet {
	var secret [32]byte
	secret[31] = 1
	return &wallet.Wallet{
		Version: 25,
		Keys: &keys.Keys{
			Sapling: []keys.SaplingKey{{Origin: keys.ViewingOnly{}}},
			Transparent: []keys.TransparentKey{
				{Origin: keys.HDDerived{Index: 0}, Secret: &secret, Address: "t1UYsZVJkLPeMjxEtACvSxfWuNmddpWfxzs"},
				{Origin: keys.Imported{}, Address: "t1Zj3yrsLvGbqYF3AADeQW5X29bzv9cTSHQ"},
			},
		},
		Transactions: &txns.WalletTxns{Transactions: []*txns.WalletTx{
			{Block: 1_700_000, Utxos: []txns.Utxo{{Value: 150_000_000}}},
			{Block: 1_600_000, SaplingNotes: []txns.SaplingNoteData{{Value: 5_000}}},
		}},
		ChainName: wallet.ParseChainType("main"),
		Options:   wallet.DefaultWalletOptions(),
		Birthday:  1_590_000,
		Blocks:    []wallet.BlockData{{Height: 1_700_100}},
	}
}

func TestPrintSummary(t *testing.T) {
	var out bytes.Buffer
	printSummary(&out, sampleWallet())

	assert.Equal(t, strings.Join([]string{
		"Wallet was created for [ main ]",
		"Found 3 keys:",
		"- Sapling: 1",
		"- Transparent: 2",
		"Birthday: 1590000",
		"Synced to: 1700100",
		"Transactions: 2 (blocks 1600000 to 1700000)",
		"Estimated balance: 1.50005000 ZEC",
		"",
	}, "\n"), out.String())
}

func TestPrintSummaryNoKeys(t *testing.T) {
	w := &wallet.Wallet{
		Keys:         &keys.Keys{},
		Transactions: &txns.WalletTxns{},
		ChainName:    wallet.ParseChainType("regtest"),
	}
	var out bytes.Buffer
	printSummary(&out, w)

	assert.Contains(t, out.String(), "Wallet was created for [ regtest ]\nNo keys found in wallet.\n")
	assert.Contains(t, out.String(), "Synced to: never\n")
	assert.Contains(t, out.String(), "Transactions: 0\n")
}

func TestPrintDump(t *testing.T) {
	t.Run("basic hides secrets", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDump(&out, sampleWallet(), config.Basic, false))
		assert.Contains(t, out.String(), "t1UYsZVJkLPeMjxEtACvSxfWuNmddpWfxzs (hd/0, spendable)")
		assert.Contains(t, out.String(), "t1Zj3yrsLvGbqYF3AADeQW5X29bzv9cTSHQ (imported)")
		assert.Contains(t, out.String(), "zxviews1")
		assert.NotContains(t, out.String(), "secret:")
		assert.NotContains(t, out.String(), "Memo download")
		assert.NotContains(t, out.String(), "Accounts:")

		var seed [32]byte
		fp, err := crypto.SeedFingerprint(seed[:])
		require.NoError(t, err)
		assert.Contains(t, out.String(), "Seed fingerprint: "+hex.EncodeToString(fp[:]))
	})

	t.Run("encrypted has no fingerprint", func(t *testing.T) {
		w := sampleWallet()
		w.Keys.Encrypted = true
		var out bytes.Buffer
		require.NoError(t, printDump(&out, w, config.Basic, true))
		assert.Contains(t, out.String(), "Wallet is encrypted")
		assert.NotContains(t, out.String(), "Seed fingerprint")
	})

	t.Run("secrets", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDump(&out, sampleWallet(), config.Basic, true))
		assert.Contains(t, out.String(), "secret: "+strings.Repeat("00", 31)+"01")
		assert.Contains(t, out.String(), "Seed phrase: abandon")
	})

	t.Run("verbose", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDump(&out, sampleWallet(), config.Verbose, false))
		assert.Contains(t, out.String(), "Memo download: wallet")
		assert.Contains(t, out.String(), "1.50000000 ZEC")
		assert.Contains(t, out.String(), "Accounts:\n  0: 0 orchard, 0 sapling, 1 transparent\n")
		assert.NotContains(t, out.String(), "(*wallet.Wallet)")
	})

	t.Run("debug", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, printDump(&out, sampleWallet(), config.Debug, false))
		assert.Contains(t, out.String(), "(*wallet.Wallet)")
	})
}

func TestFormatZec(t *testing.T) {
	assert.Equal(t, "0.00000000 ZEC", formatZec(0))
	assert.Equal(t, "21000000.00000001 ZEC", formatZec(2_100_000_000_000_001))
}

func TestLogLevel(t *testing.T) {
	require.NoError(t, config.InitConfig(""))
	assert.Equal(t, log.WarnLevel, logLevel(0))
	assert.Equal(t, log.InfoLevel, logLevel(1))
	assert.Equal(t, log.DebugLevel, logLevel(3))

	t.Setenv("ZWDUMP_LOG_LEVEL", "error")
	require.NoError(t, config.InitConfig(""))
	assert.Equal(t, log.ErrorLevel, logLevel(2))
}

func TestExecuteMissingFile(t *testing.T) {
	rootCmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.dat")})
	err := rootCmd.Execute()
	var ioErr *encoding.IOError
	assert.ErrorAs(t, err, &ioErr)
	assert.True(t, strings.HasPrefix(errorMessage(err), "Error reading wallet: "))
}

func TestErrorMessageConfig(t *testing.T) {
	err := config.InitConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, "Error: "+err.Error(), errorMessage(err))
	require.NoError(t, config.InitConfig(""))
}

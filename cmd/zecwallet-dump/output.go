package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"sort"
	"strconv"

	"github.com/davecgh/go-spew/spew"
	"github.com/pterm/pterm"
	"github.com/shopspring/decimal"

	"github.com/dorianvp/zecwallet-utils/pkg/config"
	"github.com/dorianvp/zecwallet-utils/pkg/keys"
	"github.com/dorianvp/zecwallet-utils/pkg/txns"
	"github.com/dorianvp/zecwallet-utils/pkg/wallet"
)

// zecDecimals is the number of zatoshi digits in one ZEC.
const zecDecimals = 8

func disableColor() {
	pterm.DisableColor()
}

func formatZec(zats uint64) string {
	amount := decimal.NewFromBigInt(new(big.Int).SetUint64(zats), -zecDecimals)
	return amount.StringFixed(zecDecimals) + " ZEC"
}

func printSummary(out io.Writer, w *wallet.Wallet) {
	fmt.Fprintf(out, "%s [ %s ]\n",
		pterm.Bold.Sprint("Wallet was created for"),
		pterm.FgCyan.Sprint(w.ChainName.String()))

	counts := w.KeyCounts()
	if counts.Total() == 0 {
		fmt.Fprintln(out, pterm.FgYellow.Sprint("No keys found in wallet."))
	} else {
		fmt.Fprintf(out, "Found %s keys:\n", pterm.FgGreen.Sprint(counts.Total()))
		for _, pool := range []struct {
			name string
			n    int
		}{
			{"Orchard", counts.Orchard},
			{"Sapling", counts.Sapling},
			{"Transparent", counts.Transparent},
		} {
			if pool.n > 0 {
				fmt.Fprintf(out, "- %s: %d\n", pool.name, pool.n)
			}
		}
	}

	fmt.Fprintf(out, "Birthday: %d\n", w.Birthday)
	if h, ok := w.LatestSyncHeight(); ok {
		fmt.Fprintf(out, "Synced to: %d\n", h)
	} else {
		fmt.Fprintln(out, "Synced to: never")
	}
	if lo, hi, ok := w.TransactionHeightRange(); ok {
		fmt.Fprintf(out, "Transactions: %d (blocks %d to %d)\n", w.Transactions.Len(), lo, hi)
	} else {
		fmt.Fprintln(out, "Transactions: 0")
	}
	fmt.Fprintf(out, "Estimated balance: %s\n", pterm.FgGreen.Sprint(formatZec(w.EstimatedBalance())))
}

func printDump(out io.Writer, w *wallet.Wallet, verbosity config.Verbosity, secrets bool) error {
	printSummary(out, w)
	fmt.Fprintln(out)
	printKeys(out, w, secrets)

	if verbosity == config.Basic {
		return nil
	}
	fmt.Fprintln(out)
	printSettings(out, w)
	if accounts := accountIndexes(w.Keys); len(accounts) > 0 {
		fmt.Fprintln(out)
		printAccounts(out, w.Keys, accounts)
	}
	fmt.Fprintln(out)
	if err := printTransactions(out, w.Transactions); err != nil {
		return err
	}

	if verbosity == config.Debug {
		fmt.Fprintln(out)
		fmt.Fprint(out, spew.Sdump(w))
	}
	return nil
}

func keyState(origin keys.Origin, spendable bool) string {
	if spendable {
		return fmt.Sprintf("%s, spendable", origin)
	}
	return origin.String()
}

func printKeys(out io.Writer, w *wallet.Wallet, secrets bool) {
	k := w.Keys
	if secrets {
		if k.Encrypted {
			fmt.Fprintln(out, pterm.FgYellow.Sprint("Wallet is encrypted; no secrets available."))
		} else if phrase, err := k.Mnemonic(); err == nil {
			fmt.Fprintf(out, "Seed phrase: %s\n", pterm.FgRed.Sprint(phrase))
		}
	}
	if fp, err := k.SeedFingerprint(); err == nil {
		fmt.Fprintf(out, "Seed fingerprint: %s\n", hex.EncodeToString(fp[:]))
	}

	if len(k.Orchard) > 0 {
		fmt.Fprintln(out, pterm.Bold.Sprint("Orchard keys:"))
		for i := range k.Orchard {
			o := &k.Orchard[i]
			fmt.Fprintf(out, "  %s (%s)\n", hex.EncodeToString(o.FullViewingKey[:]), keyState(o.Origin, o.HaveSpendingKey()))
			if secrets && o.SpendingKey != nil {
				fmt.Fprintf(out, "    spending key: %s\n", hex.EncodeToString(o.SpendingKey[:]))
			}
		}
	}
	if len(k.Sapling) > 0 {
		fmt.Fprintln(out, pterm.Bold.Sprint("Sapling keys:"))
		for i := range k.Sapling {
			s := &k.Sapling[i]
			encoded, err := s.FullViewingKey.Encode(w.ChainName.ViewingKeyHRP())
			if err != nil {
				encoded = hex.EncodeToString(s.FullViewingKey[:])
			}
			fmt.Fprintf(out, "  %s (%s)\n", encoded, keyState(s.Origin, s.HaveSpendingKey()))
			if secrets && s.SpendingKey != nil {
				fmt.Fprintf(out, "    spending key: %s\n", hex.EncodeToString(s.SpendingKey[:]))
			}
		}
	}
	if len(k.Transparent) > 0 {
		fmt.Fprintln(out, pterm.Bold.Sprint("Transparent keys:"))
		for i := range k.Transparent {
			t := &k.Transparent[i]
			fmt.Fprintf(out, "  %s (%s)\n", t.Address, keyState(t.Origin, t.HaveSpendingKey()))
			if secrets && t.Secret != nil {
				fmt.Fprintf(out, "    secret: %s\n", hex.EncodeToString(t.Secret[:]))
			}
		}
	}
}

// accountIndexes returns the HD indexes in use, ascending.
func accountIndexes(k *keys.Keys) []uint32 {
	seen := make(map[uint32]struct{})
	add := func(o keys.Origin) {
		if i, ok := keys.IsHD(o); ok {
			seen[i] = struct{}{}
		}
	}
	for i := range k.Transparent {
		add(k.Transparent[i].Origin)
	}
	for i := range k.Sapling {
		add(k.Sapling[i].Origin)
	}
	for i := range k.Orchard {
		add(k.Orchard[i].Origin)
	}
	out := make([]uint32, 0, len(seen))
	for i := range seen {
		out = append(out, i)
	}
	sort.Slice(out, func(a, b int) bool { return out[a] < out[b] })
	return out
}

func printAccounts(out io.Writer, k *keys.Keys, indexes []uint32) {
	fmt.Fprintln(out, pterm.Bold.Sprint("Accounts:"))
	for _, idx := range indexes {
		acct := k.KeysForAccount(idx)
		fmt.Fprintf(out, "  %d: %d orchard, %d sapling, %d transparent\n",
			acct.Index, len(acct.Orchard), len(acct.Sapling), len(acct.Transparent))
	}
}

func printSettings(out io.Writer, w *wallet.Wallet) {
	fmt.Fprintf(out, "Wallet version: %d\n", w.Version)
	fmt.Fprintf(out, "Stored blocks: %d\n", len(w.Blocks))
	fmt.Fprintf(out, "Memo download: %s\n", w.Options.DownloadMemos)
	if w.Options.SpamThreshold >= 0 {
		fmt.Fprintf(out, "Spam threshold: %d\n", w.Options.SpamThreshold)
	}
	if w.VerifiedTree != nil {
		fmt.Fprintf(out, "Verified tree: height %d hash %s\n", w.VerifiedTree.Height, w.VerifiedTree.Hash)
	}
	if w.OrchardWitnesses != nil {
		fmt.Fprintf(out, "Orchard tree: %d leaves, %d marked\n",
			w.OrchardWitnesses.Size(), w.OrchardWitnesses.MarkedPositions())
	}
}

func printTransactions(out io.Writer, t *txns.WalletTxns) error {
	if t.Len() == 0 {
		return nil
	}
	data := pterm.TableData{{"Height", "TxID", "Received", "Spent", "Memos"}}
	for _, tx := range t.ByHeight() {
		data = append(data, []string{
			strconv.Itoa(int(tx.Block)),
			tx.TxID.String(),
			formatZec(tx.TotalReceived()),
			formatZec(tx.TotalFundsSpent()),
			strconv.Itoa(textMemos(tx)),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	fmt.Fprintln(out, table)
	return nil
}

func textMemos(tx *txns.WalletTx) int {
	var n int
	for i := range tx.SaplingNotes {
		if m := tx.SaplingNotes[i].Memo; m != nil && m.Kind == txns.MemoText {
			n++
		}
	}
	for i := range tx.OrchardNotes {
		if m := tx.OrchardNotes[i].Memo; m != nil && m.Kind == txns.MemoText {
			n++
		}
	}
	for i := range tx.OutgoingMetadata {
		if tx.OutgoingMetadata[i].Memo.Kind == txns.MemoText {
			n++
		}
	}
	return n
}

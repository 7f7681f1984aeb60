// zecwallet-dump prints what a ZecWallet Lite wallet file contains.
//
// Example usage:
//
//	# Summarize a wallet (chain, key counts, sync state)
//	zecwallet-dump zecwallet-light-wallet.dat
//
//	# Dump every key and transaction, with debug logging
//	zecwallet-dump dump -dd zecwallet-light-wallet.dat
package main

import (
	"errors"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dorianvp/zecwallet-utils/pkg/config"
	"github.com/dorianvp/zecwallet-utils/pkg/wallet"
)

var (
	configFile  string
	debugLevel  int
	showSecrets bool
)

var rootCmd = &cobra.Command{
	Use:   "zecwallet-dump [flags] <wallet-file>",
	Short: "Inspect a ZecWallet Lite wallet file",
	Long: `Decode a ZecWallet Lite wallet file and print its contents.

Without a subcommand the wallet is summarized.`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: setup,
	RunE:              runSummarize,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize <wallet-file>",
	Short: "Print the chain, key counts and sync state",
	Args:  cobra.ExactArgs(1),
	RunE:  runSummarize,
}

var dumpCmd = &cobra.Command{
	Use:   "dump <wallet-file>",
	Short: "Print every key and transaction",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file")
	rootCmd.PersistentFlags().CountVarP(&debugLevel, "debug", "d", "Increase log verbosity (-d info, -dd debug)")
	rootCmd.PersistentFlags().BoolVar(&showSecrets, "show-secrets", false, "Print seed phrase and clear secret keys")

	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(dumpCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorMessage(err))
		os.Exit(1)
	}
}

// readError marks a failure to decode the wallet file itself.
type readError struct {
	err error
}

func (e *readError) Error() string { return e.err.Error() }
func (e *readError) Unwrap() error { return e.err }

func errorMessage(err error) string {
	var rerr *readError
	if errors.As(err, &rerr) {
		return fmt.Sprintf("Error reading wallet: %v", err)
	}
	return fmt.Sprintf("Error: %v", err)
}

func readWallet(path string) (*wallet.Wallet, error) {
	w, err := wallet.Read(path)
	if err != nil {
		return nil, &readError{err: err}
	}
	log.WithField("file", path).Info("wallet decoded")
	return w, nil
}

func setup(cmd *cobra.Command, _ []string) error {
	if err := config.InitConfig(configFile); err != nil {
		return err
	}
	if cmd.Flags().Changed("show-secrets") {
		config.Set(config.ShowSecretsKey, showSecrets)
	}
	log.SetOutput(os.Stderr)
	log.SetLevel(logLevel(debugLevel))
	if config.GetBool(config.NoColorKey) {
		disableColor()
	}
	return nil
}

// logLevel maps the number of -d flags to a level. A configured level wins.
func logLevel(count int) log.Level {
	if level, ok := config.GetLogLevel(); ok {
		return level
	}
	switch {
	case count >= 2:
		return log.DebugLevel
	case count == 1:
		return log.InfoLevel
	default:
		return log.WarnLevel
	}
}

func runSummarize(cmd *cobra.Command, args []string) error {
	w, err := readWallet(args[0])
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), w)
	return nil
}

func runDump(cmd *cobra.Command, args []string) error {
	w, err := readWallet(args[0])
	if err != nil {
		return err
	}
	return printDump(cmd.OutOrStdout(), w, config.GetVerbosity(), config.GetBool(config.ShowSecretsKey))
}

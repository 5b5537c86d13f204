// Command mintctl deploys and drives a token issuance engine stored in a
// local data directory.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bitfsorg/libmint-go/config"
	"github.com/bitfsorg/libmint-go/logging"
)

// app is the state shared by all commands of one invocation.
type app struct {
	// Global flags
	dataDir  string
	password string
	account  uint32

	cfg     config.Config
	secrets config.Secrets
	logger  *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "mintctl",
		Short: "Deploy and operate a token issuance engine",
		Long: `mintctl manages one issuance engine persisted in a data directory
(default ~/.mint) holding the config file, the encrypted HD wallet
(wallet.enc) and the engine database (mint.db).

Calls are signed by an HD wallet account selected with --account.
Account 0 deployed the engine and is its administrator.

Secrets are read from the environment: MINT_PASSWORD unlocks the wallet,
MNEMONIC restores an existing wallet on init.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "help" {
				return nil
			}
			return a.setup(cmd.Name() == "init")
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&a.dataDir, "datadir", "", "data directory (default ~/.mint, env MINT_DATADIR)")
	root.PersistentFlags().StringVar(&a.password, "password", "", "wallet password (default env MINT_PASSWORD)")
	root.PersistentFlags().Uint32Var(&a.account, "account", 0, "HD account index that signs the call")

	root.AddCommand(
		newInitCmd(a),
		newStatusCmd(a),
		newToggleCmd(a),
		newWhitelistCmd(a),
		newMintCmd(a),
		newAirdropCmd(a),
		newWithdrawCmd(a),
		newBalanceCmd(a),
		newAddressCmd(a),
	)
	return root
}

// setup resolves configuration (flags, then environment, then the config
// file, then defaults) and builds the logger.
func (a *app) setup(initializing bool) error {
	base, err := config.ApplyEnv(config.DefaultConfig())
	if err != nil {
		return err
	}
	if a.dataDir == "" {
		a.dataDir = base.DataDir
	}

	cfg, err := config.LoadConfig(config.ConfigPath(a.dataDir))
	switch {
	case err == nil:
	case errors.Is(err, config.ErrConfigNotFound) && initializing:
		cfg = config.DefaultConfig()
	case errors.Is(err, config.ErrConfigNotFound):
		return fmt.Errorf("%w (run \"mintctl init\" first)", err)
	default:
		return err
	}
	if cfg, err = config.ApplyEnv(cfg); err != nil {
		return err
	}
	cfg.DataDir = a.dataDir
	if err := config.ValidateConfig(cfg); err != nil {
		return err
	}
	a.cfg = cfg

	if a.secrets, err = config.LoadSecrets(); err != nil {
		return err
	}
	if a.password == "" {
		a.password = a.secrets.Password
	}

	if a.logger, err = logging.New(cfg.LogLevel, cfg.LogFile); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.logger = a.logger.With(zap.String("datadir", a.dataDir))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

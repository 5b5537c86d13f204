package main

import (
	"fmt"
	"math/big"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bitfsorg/libmint-go/access"
	"github.com/bitfsorg/libmint-go/actor"
	"github.com/bitfsorg/libmint-go/config"
	"github.com/bitfsorg/libmint-go/engine"
	"github.com/bitfsorg/libmint-go/payrail"
	"github.com/bitfsorg/libmint-go/store"
	"github.com/bitfsorg/libmint-go/wallet"
)

func newInitCmd(a *app) *cobra.Command {
	var variant, network, baseURI, hiddenURI string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the wallet and config, then deploy the engine",
		Long: `Creates wallet.enc from MNEMONIC (or a freshly generated mnemonic),
writes the config file and deploys an engine administered by account 0.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for dst, v := range map[*string]string{
				&a.cfg.Variant:   variant,
				&a.cfg.Network:   network,
				&a.cfg.BaseURI:   baseURI,
				&a.cfg.HiddenURI: hiddenURI,
			} {
				if v != "" {
					*dst = v
				}
			}
			if err := config.ValidateConfig(a.cfg); err != nil {
				return err
			}
			if a.password == "" {
				return errNoPassword
			}

			mnemonic := a.secrets.Mnemonic
			generated := mnemonic == ""
			if generated {
				var err error
				if mnemonic, err = wallet.GenerateMnemonic(wallet.Mnemonic12Words); err != nil {
					return err
				}
			}
			seed, err := wallet.SeedFromMnemonic(mnemonic, "")
			if err != nil {
				return err
			}
			if err := wallet.SaveSeed(wallet.WalletPath(a.dataDir), seed, a.password); err != nil {
				return err
			}
			if err := config.SaveConfig(config.ConfigPath(a.dataDir), a.cfg); err != nil {
				return err
			}

			w, err := a.openWallet()
			if err != nil {
				return err
			}
			admin, err := w.ActorOf(wallet.AdminAccount)
			if err != nil {
				return err
			}

			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()
			e, err := a.deployEngine(st, admin)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Deployed %s engine %q in %s\n", e.Variant(), e.Name(), a.dataDir)
			fmt.Fprintf(out, "Administrator: %s\n", a.address(admin))
			fmt.Fprintf(out, "Max supply:    %d\n", e.MaxSupply())
			if generated {
				fmt.Fprintf(out, "\nMnemonic (write it down, it is not stored in plain text):\n  %s\n", mnemonic)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&variant, "variant", "", "engine variant: simple or whitelist")
	cmd.Flags().StringVar(&network, "network", "", "address network: mainnet, testnet or regtest")
	cmd.Flags().StringVar(&baseURI, "base-uri", "", "base metadata URI")
	cmd.Flags().StringVar(&hiddenURI, "hidden-uri", "", "pre-reveal metadata URI (whitelist variant)")
	return cmd
}

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show engine state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withEngine(func(_ *store.BoltStore, e engine.Engine) error {
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Engine:        %s (%s)\n", e.Name(), e.Variant())
				fmt.Fprintf(out, "Administrator: %s\n", a.address(e.Administrator()))
				fmt.Fprintf(out, "Supply:        %d/%d\n", e.TotalSupply(), e.MaxSupply())
				fmt.Fprintf(out, "Retained:      %s ETH\n", payrail.FormatEther(e.Retained()))
				switch v := e.(type) {
				case *engine.Simple:
					fmt.Fprintf(out, "Sale:          %s\n", stateOf(v.SaleActive()))
				case *engine.Whitelist:
					fmt.Fprintf(out, "Whitelist:     %s (%d members)\n", stateOf(v.WlMintActive()), len(v.Whitelisted()))
					fmt.Fprintf(out, "Public:        %s\n", stateOf(v.PubMintActive()))
					fmt.Fprintf(out, "Revealed:      %t\n", v.Revealed())
				}
				return nil
			})
		},
	}
}

func stateOf(open bool) access.State {
	if open {
		return access.Open
	}
	return access.Closed
}

func newToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <sale|whitelist|public|reveal>",
		Short: "Flip a phase flag or the reveal flag (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.signer()
			if err != nil {
				return err
			}
			return a.withEngine(func(_ *store.BoltStore, e engine.Engine) error {
				out := cmd.OutOrStdout()
				if args[0] == "reveal" {
					wl, ok := e.(*engine.Whitelist)
					if !ok {
						return errWrongVariant
					}
					revealed, err := wl.ToggleRevealed(caller)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "revealed: %t\n", revealed)
					return nil
				}

				phase, err := access.ParsePhase(args[0])
				if err != nil {
					return err
				}
				var st access.State
				switch v := e.(type) {
				case *engine.Simple:
					if phase != access.PhaseSale {
						return fmt.Errorf("%w: %s", errWrongVariant, phase)
					}
					st, err = v.ToggleSaleState(caller)
				case *engine.Whitelist:
					switch phase {
					case access.PhaseWhitelist:
						st, err = v.ToggleWlMintActive(caller)
					case access.PhasePublic:
						st, err = v.TogglePubMintActive(caller)
					default:
						return fmt.Errorf("%w: %s", errWrongVariant, phase)
					}
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", phase, st)
				return nil
			})
		},
	}
}

func newWhitelistCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whitelist <address>",
		Short: "Add or remove a whitelist member (administrator)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			member, err := actor.Parse(args[0])
			if err != nil {
				return err
			}
			caller, err := a.signer()
			if err != nil {
				return err
			}
			return a.withEngine(func(_ *store.BoltStore, e engine.Engine) error {
				wl, ok := e.(*engine.Whitelist)
				if !ok {
					return errWrongVariant
				}
				in, err := wl.ToggleWhitelist(caller, member)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s whitelisted: %t\n", a.address(member), in)
				return nil
			})
		},
	}
}

func newMintCmd(a *app) *cobra.Command {
	var (
		quantity uint64
		value    string
		phase    string
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint units to the signing account",
		Long: `Mints --qty units to the --account signer, paying --value ether.
Without --value the exact price is paid. The whitelist variant mints
through --phase (whitelist or public, default public).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.signer()
			if err != nil {
				return err
			}
			return a.withEngine(func(_ *store.BoltStore, e engine.Engine) error {
				var (
					p    access.Phase
					mint func(actor.Actor, uint64, *big.Int) (*engine.Receipt, error)
				)
				switch v := e.(type) {
				case *engine.Simple:
					p, mint = access.PhaseSale, v.Mint
				case *engine.Whitelist:
					switch phase {
					case "", access.PhasePublic.String():
						p, mint = access.PhasePublic, v.PublicMint
					case access.PhaseWhitelist.String():
						p, mint = access.PhaseWhitelist, v.WhitelistMint
					default:
						return fmt.Errorf("%w: phase %q", errWrongVariant, phase)
					}
				}

				paid, err := e.Price(p, quantity)
				if err != nil {
					return err
				}
				if value != "" {
					if paid, err = payrail.ParseEther(value); err != nil {
						return err
					}
				}

				rcpt, err := mint(caller, quantity, paid)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Minted %d (tokens %d-%d) to %s for %s ETH\n",
					rcpt.Quantity, rcpt.FirstTokenID, rcpt.FirstTokenID+rcpt.Quantity-1,
					a.address(caller), payrail.FormatEther(rcpt.Paid))
				return nil
			})
		},
	}

	cmd.Flags().Uint64Var(&quantity, "qty", 1, "number of units")
	cmd.Flags().StringVar(&value, "value", "", "ether to pay (default: exact price)")
	cmd.Flags().StringVar(&phase, "phase", "", "whitelist variant phase: whitelist or public")
	return cmd
}

func newAirdropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "airdrop <address> <qty>",
		Short: "Mint units to an address without payment (administrator)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			to, err := actor.Parse(args[0])
			if err != nil {
				return err
			}
			quantity, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid quantity %q: %w", args[1], err)
			}
			caller, err := a.signer()
			if err != nil {
				return err
			}
			return a.withEngine(func(_ *store.BoltStore, e engine.Engine) error {
				rcpt, err := e.AirDropMint(caller, to, quantity)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Airdropped %d (tokens %d-%d) to %s\n",
					rcpt.Quantity, rcpt.FirstTokenID, rcpt.FirstTokenID+rcpt.Quantity-1, a.address(to))
				return nil
			})
		},
	}
}

func newWithdrawCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw",
		Short: "Send retained payments to the administrator (administrator)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			caller, err := a.signer()
			if err != nil {
				return err
			}
			return a.withEngine(func(_ *store.BoltStore, e engine.Engine) error {
				amount, err := e.Withdraw(cmd.Context(), caller)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Withdrew %s ETH to %s\n",
					payrail.FormatEther(amount), a.address(e.Administrator()))
				return nil
			})
		},
	}
}

func newBalanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <address>",
		Short: "Show units held and ether received by an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			who, err := actor.Parse(args[0])
			if err != nil {
				return err
			}
			return a.withEngine(func(st *store.BoltStore, e engine.Engine) error {
				wei, err := st.Ledger().Balance(who)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Units: %d\n", e.BalanceOf(who))
				fmt.Fprintf(out, "Ether: %s ETH\n", payrail.FormatEther(wei))
				return nil
			})
		},
	}
}

func newAddressCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "address [index]",
		Short: "Show the address of an HD account (default --account)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index := a.account
			if len(args) == 1 {
				n, err := strconv.ParseUint(args[0], 10, 32)
				if err != nil {
					return fmt.Errorf("invalid account index %q: %w", args[0], err)
				}
				index = uint32(n)
			}
			w, err := a.openWallet()
			if err != nil {
				return err
			}
			kp, err := w.DeriveAccount(index)
			if err != nil {
				return err
			}
			addr, err := kp.Address(w.Network())
			if err != nil {
				return err
			}
			who, err := kp.Actor()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", kp.Path, addr, who)
			return nil
		},
	}
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/config"
	"github.com/danielpatrickdp/splitshift/internal/history"
	"github.com/danielpatrickdp/splitshift/internal/logging"
	"github.com/danielpatrickdp/splitshift/internal/pipeline"
)

// #region main
func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
// #endregion main

// #region app
// app carries what the persistent pre-run resolved for the subcommands.
type app struct {
	configPath string
	verbose    bool
	shift1     int
	shift2     int

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "splitshift",
		Short: "Split-half shift cipher with metadata-assisted decryption",
		Long: `splitshift encrypts a text by shifting each ASCII letter by an amount that
depends on its case and on which half of the alphabet it is in.

Encryption writes the cipher text and a metadata file recording each
character's class. Decryption uses that metadata when it is present and valid,
and otherwise falls back to a brute force search that flags ambiguous positions.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.configPath)
			if err != nil {
				return err
			}
			if a.verbose {
				cfg.Verbose = true
			}
			a.cfg = cfg
			a.logger, err = logging.NewLogger(cfg.Verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		a.runCmd(),
		a.encryptCmd(),
		a.decryptCmd(),
		a.verifyCmd(),
		a.serveCmd(),
	)
	return root
}

func (a *app) addShiftFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&a.shift1, "shift1", 0, "first shift (prompted when omitted)")
	cmd.Flags().IntVar(&a.shift2, "shift2", 0, "second shift (prompted when omitted)")
}
// #endregion app

// #region shifts
// shiftPair returns the shift flags, prompting on stdin for any that were
// not given.
func (a *app) shiftPair(cmd *cobra.Command) (cipher.ShiftPair, error) {
	in := bufio.NewReader(cmd.InOrStdin())
	p := cipher.ShiftPair{Shift1: a.shift1, Shift2: a.shift2}
	var err error
	if !cmd.Flags().Changed("shift1") {
		if p.Shift1, err = promptInt(in, cmd.OutOrStdout(), "Enter shift1: "); err != nil {
			return p, err
		}
	}
	if !cmd.Flags().Changed("shift2") {
		if p.Shift2, err = promptInt(in, cmd.OutOrStdout(), "Enter shift2: "); err != nil {
			return p, err
		}
	}
	return p, nil
}

func promptInt(in *bufio.Reader, out io.Writer, prompt string) (int, error) {
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return 0, fmt.Errorf("read %s: %w", strings.TrimSuffix(prompt, ": "), err)
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, fmt.Errorf("please enter valid integer values for shift1 and shift2: %w", err)
	}
	return n, nil
}
// #endregion shifts

// #region runner
// newRunner builds a pipeline runner; the returned func releases the history
// store when one is configured.
func (a *app) newRunner() (*pipeline.Runner, func(), error) {
	var store *history.Store
	if a.cfg.DBPath != "" {
		var err error
		store, err = history.NewStore(a.cfg.DBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open history: %w", err)
		}
	}
	opts := pipeline.Options{
		Verify:           a.cfg.VerifyOptions(),
		AmbiguityPreview: a.cfg.AmbiguityPreview,
	}
	r := pipeline.NewRunner(a.cfg.WorkspaceFiles(), a.logger, store, opts)
	return r, func() {
		if store != nil {
			store.Close()
		}
	}, nil
}
// #endregion runner

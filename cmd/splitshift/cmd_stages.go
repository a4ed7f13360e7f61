package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/danielpatrickdp/splitshift/internal/cipher"
	"github.com/danielpatrickdp/splitshift/internal/pipeline"
	"github.com/danielpatrickdp/splitshift/internal/verify"
)

// #region run
func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Encrypt, decrypt and verify the workspace text",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.shiftPair(cmd)
			if err != nil {
				return err
			}
			r, done, err := a.newRunner()
			if err != nil {
				return err
			}
			defer done()

			out := cmd.OutOrStdout()
			enc, err := r.Encrypt(p)
			if err != nil {
				return fmt.Errorf("encryption error: %w", err)
			}
			a.printEncrypted(out, enc)

			dec, err := r.Decrypt(p)
			if err != nil {
				return fmt.Errorf("decryption error: %w", err)
			}
			a.printDecrypted(out, dec)

			outcome, err := r.Verify()
			if err != nil {
				return fmt.Errorf("verification error: %w", err)
			}
			printOutcome(out, outcome)
			return nil
		},
	}
	a.addShiftFlags(cmd)
	return cmd
}
// #endregion run

// #region encrypt
func (a *app) encryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encrypt",
		Short: "Encrypt the raw text into cipher text and metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.shiftPair(cmd)
			if err != nil {
				return err
			}
			r, done, err := a.newRunner()
			if err != nil {
				return err
			}
			defer done()

			enc, err := r.Encrypt(p)
			if err != nil {
				return fmt.Errorf("encryption error: %w", err)
			}
			a.printEncrypted(cmd.OutOrStdout(), enc)
			return nil
		},
	}
	a.addShiftFlags(cmd)
	return cmd
}
// #endregion encrypt

// #region decrypt
func (a *app) decryptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decrypt",
		Short: "Decrypt the cipher text, falling back to brute force without metadata",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.shiftPair(cmd)
			if err != nil {
				return err
			}
			r, done, err := a.newRunner()
			if err != nil {
				return err
			}
			defer done()

			dec, err := r.Decrypt(p)
			if err != nil {
				return fmt.Errorf("decryption error: %w", err)
			}
			a.printDecrypted(cmd.OutOrStdout(), dec)
			return nil
		},
	}
	a.addShiftFlags(cmd)
	return cmd
}
// #endregion decrypt

// #region verify
func (a *app) verifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Compare the raw text with the decrypted text",
		RunE: func(cmd *cobra.Command, args []string) error {
			r, done, err := a.newRunner()
			if err != nil {
				return err
			}
			defer done()

			outcome, err := r.Verify()
			if err != nil {
				return fmt.Errorf("verification error: %w", err)
			}
			printOutcome(cmd.OutOrStdout(), outcome)
			return nil
		},
	}
}
// #endregion verify

// #region output
func (a *app) printEncrypted(out io.Writer, res pipeline.EncryptResult) {
	ws := a.cfg.WorkspaceFiles()
	fmt.Fprintf(out, "Encrypted -> '%s' and metadata -> '%s' written.\n",
		ws.Path(ws.EncFile), ws.Path(ws.MetaFile))
}

func (a *app) printDecrypted(out io.Writer, res pipeline.DecryptResult) {
	ws := a.cfg.WorkspaceFiles()
	if res.Warning != nil {
		fmt.Fprintf(out, "Warning: %v -> used brute-force fallback.\n", res.Warning)
	}
	fmt.Fprintf(out, "Decrypted -> '%s' written.\n", ws.Path(ws.DecFile))
	if res.Mode == cipher.ModeBruteForce && len(res.Ambiguities) > 0 {
		fmt.Fprintf(out, "Brute-force decryption produced %d ambiguous positions.\n", len(res.Ambiguities))
		fmt.Fprintln(out, "Ambiguous positions (index, cipher, candidates):")
		fmt.Fprint(out, pipeline.FormatAmbiguities(res.Ambiguities, a.cfg.AmbiguityPreview))
	}
}

func printOutcome(out io.Writer, o verify.Outcome) {
	if o.Match {
		fmt.Fprintln(out, "Decryption successful! Decrypted text matches the original.")
		return
	}
	fmt.Fprintln(out, "Decryption failed: decrypted text does not match original.")
	fmt.Fprintf(out, "First difference: %s\n", o)
	fmt.Fprintf(out, "\nShowing a short unified diff (original -> decrypted):\n\n%s\n", o.Diff)
}
// #endregion output

package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Jayden-Richmond/Radius-Finance/internal/services/storage"
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt the dataset files in the data directory",
	Long: `Encrypts the CSV and JSON files under the data directory with an
age scrypt passphrase. The server reads the passphrase from
RADIUS_STORAGE_PASSPHRASE, or prompts for it at startup when run
interactively.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		files := storage.New(cfg.DataDirectory)
		if files.IsEncrypted() {
			return fmt.Errorf("data directory %s is already encrypted", cfg.DataDirectory)
		}

		pass, err := promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := promptPassphrase("Confirm passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := files.EnableEncryption(pass); err != nil {
			return err
		}
		fmt.Printf("Encrypted dataset files under %s\n", cfg.DataDirectory)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt the dataset files in the data directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		files := storage.New(cfg.DataDirectory)
		if !files.IsEncrypted() {
			return fmt.Errorf("data directory %s is not encrypted", cfg.DataDirectory)
		}

		pass, err := promptPassphrase("Passphrase: ")
		if err != nil {
			return err
		}

		if err := files.DisableEncryption(pass); err != nil {
			return err
		}
		fmt.Printf("Decrypted dataset files under %s\n", cfg.DataDirectory)
		return nil
	},
}

func promptPassphrase(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read passphrase: %w", err)
	}
	return string(b), nil
}

func init() {
	rootCmd.AddCommand(encryptCmd)
	rootCmd.AddCommand(decryptCmd)
}

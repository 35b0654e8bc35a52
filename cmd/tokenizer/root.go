package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "tokenizer",
	Short: "Train and run a subword tokenizer",
	Long: `Tokenizer is a CLI for training byte-level and character-level BPE
subword vocabularies and using them to encode and decode text.

Available commands:
  train  - Learn a merge-rule vocabulary from a text corpus
  encode - Convert text to token IDs
  decode - Convert token IDs back to text
  info   - Display model information`,
	Example: `  # Train a model from a corpus and save it
  tokenizer train --model model.txt --vocab-size 2000 corpus.txt

  # Encode text with a trained model
  tokenizer encode --model model.txt "Hello, world!"

  # Decode token IDs
  tokenizer decode --model model.txt 104 101 108 108 111

  # Show model information
  tokenizer info --model model.txt`,
	SilenceUsage: true,
}

// versionCmd represents the version command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tokenizer version %s\n", version)
		if commit != "none" {
			fmt.Printf("  commit: %s\n", commit)
		}
		if buildDate != "unknown" {
			fmt.Printf("  built:  %s\n", buildDate)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newEncodeCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newInfoCmd())
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/subword/bpe"
)

var infoModel string

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Display model information",
		Long: `Display information about a trained model including vocabulary size,
variant, pre-tokenizer pattern, and merge count.`,
		Example: `  tokenizer info --model model.txt`,
		RunE:    runInfo,
	}

	cmd.Flags().StringVar(&infoModel, "model", "", "path to a trained model file (required)")
	cmd.MarkFlagRequired("model")

	return cmd
}

func runInfo(_ *cobra.Command, _ []string) error {
	tok, err := bpe.Load(infoModel)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	fmt.Println("Tokenizer Model Information")
	fmt.Println("===========================")
	fmt.Println()
	fmt.Printf("  Variant:         %s\n", tok.Variant())
	fmt.Printf("  Vocabulary Size: %d\n", tok.VocabSize())
	fmt.Printf("  Merge Rules:     %d\n", len(tok.GetMerges()))
	fmt.Printf("  Pattern:         %s\n", tok.Pattern())

	return nil
}

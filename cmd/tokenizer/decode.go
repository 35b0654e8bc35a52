package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/agentstation/subword/bpe"
)

var decModel string

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [token-ids...]",
		Short: "Decode token IDs to text",
		Long: `Decode token IDs back to text using a trained model.

Token IDs can be given as arguments or piped from stdin, separated by
whitespace.`,
		Example: `  tokenizer decode --model model.txt 104 101 108 108 111
  tokenizer encode --model model.txt "hi" | tokenizer decode --model model.txt`,
		RunE: runDecode,
	}

	cmd.Flags().StringVar(&decModel, "model", "", "path to a trained model file (required)")
	cmd.MarkFlagRequired("model")

	return cmd
}

func runDecode(_ *cobra.Command, args []string) error {
	tok, err := bpe.Load(decModel)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	ids, err := parseIDs(args)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return fmt.Errorf("no token IDs provided")
	}

	text, err := tok.Decode(ids)
	if err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	fmt.Println(text)
	return nil
}

func parseIDs(args []string) ([]uint32, error) {
	var ids []uint32
	parse := func(tok string) error {
		v, err := strconv.ParseUint(tok, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid token id %q: %w", tok, err)
		}
		ids = append(ids, uint32(v))
		return nil
	}

	if len(args) > 0 {
		for _, a := range args {
			if err := parse(a); err != nil {
				return nil, err
			}
		}
		return ids, nil
	}

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Split(bufio.ScanWords)
	for scanner.Scan() {
		if err := parse(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return ids, nil
}

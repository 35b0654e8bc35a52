package main

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/subword/bpe"
)

var (
	trainModel     string
	trainVocabSize int
	trainVariant   string
	trainPattern   string
)

func newTrainCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train [corpus-file...]",
		Short: "Learn a merge-rule vocabulary from a text corpus",
		Long: `Train reads one or more corpus files (or stdin if none given), one
training text per line, and learns a BPE vocabulary up to --vocab-size,
saving the result to --model.`,
		Example: `  tokenizer train --model model.txt --vocab-size 2000 corpus.txt
  cat corpus.txt | tokenizer train --model model.txt --vocab-size 2000`,
		RunE: runTrain,
	}

	cmd.Flags().StringVar(&trainModel, "model", "", "path to write the trained model file (required)")
	cmd.Flags().IntVar(&trainVocabSize, "vocab-size", 1000, "target vocabulary size")
	cmd.Flags().StringVar(&trainVariant, "variant", "bbpe", "id-ification scheme: bbpe or bpe")
	cmd.Flags().StringVar(&trainPattern, "pattern", "", "pre-tokenizer pattern override")
	cmd.MarkFlagRequired("model")

	return cmd
}

func runTrain(cmd *cobra.Command, args []string) error {
	variant := bpe.BBPE
	if trainVariant == "bpe" {
		variant = bpe.CharBPE
	}

	opts := []bpe.Option{bpe.WithVariant(variant)}
	if trainPattern != "" {
		opts = append(opts, bpe.WithPattern(trainPattern))
	}

	tok, err := bpe.New(opts...)
	if err != nil {
		return fmt.Errorf("init tokenizer: %w", err)
	}

	texts, err := readLines(args)
	if err != nil {
		return err
	}

	if err := tok.Train(context.Background(), texts, trainVocabSize); err != nil {
		return fmt.Errorf("train: %w", err)
	}

	if err := tok.Save(trainModel); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	fmt.Printf("trained vocab_size=%d merges=%d -> %s\n", tok.VocabSize(), len(tok.GetMerges()), trainModel)
	return nil
}

func readLines(paths []string) ([]string, error) {
	var texts []string
	readFrom := func(f *os.File) error {
		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)
		for scanner.Scan() {
			texts = append(texts, scanner.Text())
		}
		return scanner.Err()
	}

	if len(paths) == 0 {
		if err := readFrom(os.Stdin); err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return texts, nil
	}

	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		err = readFrom(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}
	return texts, nil
}

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/subword/bpe"
)

var (
	encModel  string
	encOutput string
	encCount  bool
)

func newEncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text to token IDs",
		Long: `Encode text into token IDs using a trained model.

If no text is provided as an argument, reads from stdin.`,
		Example: `  tokenizer encode --model model.txt "Hello, world!"
  echo "Hello, world!" | tokenizer encode --model model.txt
  tokenizer encode --model model.txt --output json "Hello"`,
		RunE: runEncode,
	}

	cmd.Flags().StringVar(&encModel, "model", "", "path to a trained model file (required)")
	cmd.Flags().StringVarP(&encOutput, "output", "o", "space", "output format: space, newline, json")
	cmd.Flags().BoolVar(&encCount, "count", false, "print the token count")
	cmd.MarkFlagRequired("model")

	return cmd
}

func runEncode(_ *cobra.Command, args []string) error {
	tok, err := bpe.Load(encModel)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	var text string
	if len(args) > 0 {
		text = strings.Join(args, " ")
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		text = strings.TrimRight(string(data), "\n")
	}

	ids, err := tok.Encode(text)
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	if encCount {
		fmt.Printf("count: %d\n", len(ids))
	}

	switch encOutput {
	case "json":
		var sb strings.Builder
		sb.WriteByte('[')
		for i, id := range ids {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(strconv.FormatUint(uint64(id), 10))
		}
		sb.WriteByte(']')
		fmt.Println(sb.String())
	case "newline":
		w := bufio.NewWriter(os.Stdout)
		for _, id := range ids {
			fmt.Fprintln(w, id)
		}
		w.Flush()
	case "space":
		for i, id := range ids {
			if i > 0 {
				fmt.Print(" ")
			}
			fmt.Print(id)
		}
		fmt.Println()
	default:
		return fmt.Errorf("unknown output format: %s", encOutput)
	}
	return nil
}

// Package subword is an umbrella for a family of subword tokenizer
// implementations that share one incremental Byte-Pair merge-learning
// engine.
//
// The engine itself lives in internal/merge. The public tokenizers are:
//
//   - bpe: byte-level BPE (BBPE) and character-level BPE, the two
//     variants that share the merge-learning machinery directly.
//   - wordpiece: longest-match segmentation over a vocabulary trained
//     elsewhere; it does not use internal/merge and does not train.
//   - unigram: Viterbi segmentation over externally supplied scores; it
//     does not use internal/merge and does not train.
//
// Currently supported trainable tokenizers:
//   - bpe: byte-level and character-level Byte-Pair Encoding
//
// Future tokenizer families can be added as siblings of bpe without
// touching internal/merge.
package subword

//go:generate gomarkdoc -o README.md -e . --embed --repository.url https://github.com/agentstation/subword --repository.default-branch master --repository.path /

//go:generate gomarkdoc -o ./bpe/README.md -e ./bpe --embed --repository.url https://github.com/agentstation/subword --repository.default-branch master --repository.path /bpe

//go:generate gomarkdoc -o ./cmd/tokenizer/README.md -e ./cmd/tokenizer --embed --repository.url https://github.com/agentstation/subword --repository.default-branch master --repository.path /cmd/tokenizer

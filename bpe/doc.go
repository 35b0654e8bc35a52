// Package bpe implements byte-level (BBPE) and character-level Byte-Pair
// Encoding tokenizers on top of the incremental merge-learning engine in
// internal/merge.
//
// A Tokenizer is constructed with New, trained with Train or
// TrainFromIterator, and is safe for concurrent Encode/Decode calls once
// training completes - inference only reads the vocabulary and rules, and
// the optional encode cache is internally locked.
package bpe

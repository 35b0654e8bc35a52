package bpe

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/agentstation/subword/internal/merge"
	"github.com/agentstation/subword/internal/pretoken"
	"github.com/agentstation/subword/internal/vocab"
)

// Save writes the model file format: pattern, the primary token->id dump,
// the caller-supplied base tokens (WithBaseTokens) recorded as
// base_chars/base_char, the secondary id-form vocab dump, the merge
// rules, and next_token_id. Fields are written in the order the format
// recommends.
func (t *Tokenizer) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return newErr(ModelSave, "save", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)

	fmt.Fprintf(w, "pattern: %s\n", t.cfg.pattern)
	fmt.Fprintf(w, "variant: %s\n", t.cfg.variant)
	fmt.Fprintf(w, "vocab_size: %d\n", t.vocabulary.Len())

	var writeErr error
	t.vocabulary.Iter(func(id uint32, tok []byte) bool {
		if _, err := fmt.Fprintf(w, "%s %d\n", strconv.Quote(string(tok)), id); err != nil {
			writeErr = err
			return false
		}
		return true
	})
	if writeErr != nil {
		return newErr(ModelSave, "save", writeErr)
	}

	fmt.Fprintf(w, "base_chars: %d\n", len(t.cfg.baseTokens))
	for _, tok := range t.cfg.baseTokens {
		fmt.Fprintf(w, "base_char: %s\n", tok)
	}

	fmt.Fprintf(w, "vocab: %d\n", t.vocabulary.Len())
	var entryErr error
	t.vocabulary.Iter(func(id uint32, tok []byte) bool {
		var sb strings.Builder
		fmt.Fprintf(&sb, "vocab_entry: %d", id)
		for _, b := range tok {
			fmt.Fprintf(&sb, " %d", b)
		}
		sb.WriteByte('\n')
		if _, err := w.WriteString(sb.String()); err != nil {
			entryErr = err
			return false
		}
		return true
	})
	if entryErr != nil {
		return newErr(ModelSave, "save", entryErr)
	}

	fmt.Fprintf(w, "merges: %d\n", len(t.rules))
	for _, r := range t.rules {
		if _, err := fmt.Fprintf(w, "merge: %d %d %d\n", r.Pair.Left, r.Pair.Right, r.NewID); err != nil {
			return newErr(ModelSave, "save", err)
		}
	}

	var maxID uint32
	hasAny := false
	t.vocabulary.Iter(func(id uint32, _ []byte) bool {
		if !hasAny || id > maxID {
			maxID = id
			hasAny = true
		}
		return true
	})
	nextID := uint32(0)
	if hasAny {
		nextID = maxID + 1
	}
	fmt.Fprintf(w, "next_token_id: %d\n", nextID)

	if err := w.Flush(); err != nil {
		return newErr(ModelSave, "save", err)
	}
	return nil
}

// Load reconstructs a Tokenizer from a file written by Save. The secondary
// vocab_entry section is authoritative if present: it is applied after the
// primary token/id dump, so any divergence between the two resolves in its
// favor. base_chars/base_char and next_token_id are optional; pattern,
// vocab and merges are required.
func Load(path string, opts ...Option) (*Tokenizer, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newErr(ModelLoad, "load", err)
	}
	defer f.Close()

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	v := vocab.New()

	var pattern string
	var haveVocab, haveMerges bool
	var rules []merge.Rule

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<24)

	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		key, rest, ok := strings.Cut(line, " ")
		if !ok {
			key, rest = line, ""
		}
		key = strings.TrimSuffix(key, ":")

		switch key {
		case "pattern":
			pattern = rest
		case "variant":
			if rest == CharBPE.String() {
				cfg.variant = CharBPE
			} else {
				cfg.variant = BBPE
			}
		case "vocab_size":
			n, err := strconv.Atoi(rest)
			if err != nil {
				return nil, newErrf(ModelLoad, "load", "bad vocab_size: %v", err)
			}
			for i := 0; i < n; i++ {
				if !sc.Scan() {
					return nil, newErrf(ModelLoad, "load", "truncated primary vocab dump: wanted %d entries", n)
				}
				tok, id, err := parseTokenLine(sc.Text())
				if err != nil {
					return nil, newErr(ModelLoad, "load", err)
				}
				v.Insert(id, tok)
			}
		case "base_chars":
			n, err := strconv.Atoi(rest)
			if err != nil {
				return nil, newErrf(ModelLoad, "load", "bad base_chars: %v", err)
			}
			for i := 0; i < n; i++ {
				if !sc.Scan() {
					return nil, newErrf(ModelLoad, "load", "truncated base_char section: wanted %d entries", n)
				}
				const prefix = "base_char: "
				line := sc.Text()
				if !strings.HasPrefix(line, prefix) {
					return nil, newErrf(ModelLoad, "load", "malformed base_char line: %q", line)
				}
				cfg.baseTokens = append(cfg.baseTokens, strings.TrimPrefix(line, prefix))
			}
		case "vocab":
			n, err := strconv.Atoi(rest)
			if err != nil {
				return nil, newErrf(ModelLoad, "load", "bad vocab count: %v", err)
			}
			for i := 0; i < n; i++ {
				if !sc.Scan() {
					return nil, newErrf(ModelLoad, "load", "truncated secondary vocab dump: wanted %d entries", n)
				}
				id, tok, err := parseVocabEntryLine(sc.Text())
				if err != nil {
					return nil, newErr(ModelLoad, "load", err)
				}
				v.Insert(id, tok)
			}
			haveVocab = true
		case "merges":
			n, err := strconv.Atoi(rest)
			if err != nil {
				return nil, newErrf(ModelLoad, "load", "bad merges count: %v", err)
			}
			rules = make([]merge.Rule, 0, n)
			for i := 0; i < n; i++ {
				if !sc.Scan() {
					return nil, newErrf(ModelLoad, "load", "truncated merges section: wanted %d entries", n)
				}
				rule, err := parseMergeLine(sc.Text())
				if err != nil {
					return nil, newErr(ModelLoad, "load", err)
				}
				rules = append(rules, rule)
			}
			haveMerges = true
		case "next_token_id":
			// Accepted and ignored: a Tokenizer keeps no next id, and
			// training derives it from the vocabulary's largest id.
		}
	}
	if err := sc.Err(); err != nil {
		return nil, newErr(ModelLoad, "load", err)
	}

	if pattern == "" {
		return nil, newErrf(ModelLoad, "load", "missing required section: pattern")
	}
	if !haveVocab {
		return nil, newErrf(ModelLoad, "load", "missing required section: vocab")
	}
	if !haveMerges {
		return nil, newErrf(ModelLoad, "load", "missing required section: merges")
	}

	splitter, err := pretoken.New(pattern)
	if err != nil {
		return nil, newErr(InvalidRegex, "load", err)
	}
	cfg.pattern = pattern

	t := &Tokenizer{
		cfg:        cfg,
		splitter:   splitter,
		vocabulary: v,
		rules:      rules,
		ruleTable:  merge.NewRuleTable(rules),
	}
	if cfg.cacheSize != 0 {
		t.cache = newEncodeCache(cfg.cacheSize)
	}
	return t, nil
}

func parseTokenLine(line string) ([]byte, uint32, error) {
	i := strings.LastIndex(line, " ")
	if i < 0 {
		return nil, 0, fmt.Errorf("malformed token line: %q", line)
	}
	quoted, idStr := line[:i], line[i+1:]
	tok, err := strconv.Unquote(quoted)
	if err != nil {
		return nil, 0, fmt.Errorf("malformed token line %q: %w", line, err)
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		return nil, 0, fmt.Errorf("malformed token line %q: %w", line, err)
	}
	return []byte(tok), uint32(id), nil
}

func parseVocabEntryLine(line string) (uint32, []byte, error) {
	const prefix = "vocab_entry: "
	if !strings.HasPrefix(line, prefix) {
		return 0, nil, fmt.Errorf("malformed vocab_entry line: %q", line)
	}
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) < 1 {
		return 0, nil, fmt.Errorf("malformed vocab_entry line: %q", line)
	}
	id, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return 0, nil, fmt.Errorf("malformed vocab_entry line %q: %w", line, err)
	}
	tok := make([]byte, 0, len(fields)-1)
	for _, f := range fields[1:] {
		b, err := strconv.ParseUint(f, 10, 8)
		if err != nil {
			return 0, nil, fmt.Errorf("malformed vocab_entry line %q: %w", line, err)
		}
		tok = append(tok, byte(b))
	}
	return uint32(id), tok, nil
}

func parseMergeLine(line string) (merge.Rule, error) {
	const prefix = "merge: "
	if !strings.HasPrefix(line, prefix) {
		return merge.Rule{}, fmt.Errorf("malformed merge line: %q", line)
	}
	fields := strings.Fields(strings.TrimPrefix(line, prefix))
	if len(fields) != 3 {
		return merge.Rule{}, fmt.Errorf("malformed merge line: %q", line)
	}
	left, err := strconv.ParseUint(fields[0], 10, 32)
	if err != nil {
		return merge.Rule{}, fmt.Errorf("malformed merge line %q: %w", line, err)
	}
	right, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return merge.Rule{}, fmt.Errorf("malformed merge line %q: %w", line, err)
	}
	newID, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return merge.Rule{}, fmt.Errorf("malformed merge line %q: %w", line, err)
	}
	return merge.Rule{Pair: merge.Pair{Left: uint32(left), Right: uint32(right)}, NewID: uint32(newID)}, nil
}

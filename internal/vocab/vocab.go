// Package vocab implements the bidirectional id<->token mapping shared by
// every tokenizer variant built on top of the merge-learning engine.
package vocab

import "fmt"

// Vocabulary is a bidirectional mapping between token ids and the byte
// strings they stand for. Both directions are kept in sync by Insert; there
// is no way to mutate one side without the other.
//
// A Vocabulary is pure data: no I/O, no concurrency control. Callers that
// share one across goroutines must synchronize externally, except that
// concurrent reads of an otherwise-immutable (post-training) Vocabulary are
// always safe.
type Vocabulary struct {
	idToTok map[uint32][]byte
	tokToID map[string]uint32
}

// New returns an empty Vocabulary.
func New() *Vocabulary {
	return &Vocabulary{
		idToTok: make(map[uint32][]byte),
		tokToID: make(map[string]uint32),
	}
}

// WithCapacity returns an empty Vocabulary pre-sized for n entries.
func WithCapacity(n int) *Vocabulary {
	return &Vocabulary{
		idToTok: make(map[uint32][]byte, n),
		tokToID: make(map[string]uint32, n),
	}
}

// Insert sets id -> tok and tok -> id. If id already mapped to a different
// token, that token's reverse entry is removed first. If tok already mapped
// to a different id, that id's forward entry is removed first. Insert
// returns the token previously held by id, if any.
func (v *Vocabulary) Insert(id uint32, tok []byte) (prev []byte, hadPrev bool) {
	if old, ok := v.idToTok[id]; ok {
		prev, hadPrev = old, true
		if string(old) != string(tok) {
			delete(v.tokToID, string(old))
		}
	}
	if oldID, ok := v.tokToID[string(tok)]; ok && oldID != id {
		delete(v.idToTok, oldID)
	}

	cp := make([]byte, len(tok))
	copy(cp, tok)
	v.idToTok[id] = cp
	v.tokToID[string(cp)] = id
	return prev, hadPrev
}

// GetByID returns the token for id, if present.
func (v *Vocabulary) GetByID(id uint32) ([]byte, bool) {
	tok, ok := v.idToTok[id]
	return tok, ok
}

// GetByToken returns the id for tok, if present.
func (v *Vocabulary) GetByToken(tok []byte) (uint32, bool) {
	id, ok := v.tokToID[string(tok)]
	return id, ok
}

// RemoveByID removes the entry for id from both directions, returning the
// removed token.
func (v *Vocabulary) RemoveByID(id uint32) ([]byte, bool) {
	tok, ok := v.idToTok[id]
	if !ok {
		return nil, false
	}
	delete(v.idToTok, id)
	delete(v.tokToID, string(tok))
	return tok, true
}

// RemoveByToken removes the entry for tok from both directions, returning
// the removed id.
func (v *Vocabulary) RemoveByToken(tok []byte) (uint32, bool) {
	id, ok := v.tokToID[string(tok)]
	if !ok {
		return 0, false
	}
	delete(v.tokToID, string(tok))
	delete(v.idToTok, id)
	return id, true
}

// Len returns the number of entries in the vocabulary.
func (v *Vocabulary) Len() int { return len(v.idToTok) }

// MaxID returns the largest id currently present and true, or (0, false)
// if the vocabulary is empty. Callers that allocate ids outside the dense
// 0..Len()-1 range (character-level BPE, whose ids are Unicode scalar
// values) use this instead of Len() to find where the next id must start.
func (v *Vocabulary) MaxID() (uint32, bool) {
	var max uint32
	found := false
	for id := range v.idToTok {
		if !found || id > max {
			max = id
			found = true
		}
	}
	return max, found
}

// IsEmpty reports whether the vocabulary has no entries.
func (v *Vocabulary) IsEmpty() bool { return len(v.idToTok) == 0 }

// Clear removes every entry.
func (v *Vocabulary) Clear() {
	v.idToTok = make(map[uint32][]byte)
	v.tokToID = make(map[string]uint32)
}

// Iter calls fn once per (id, token) entry. Iteration order is unspecified.
// Iter must not be used to mutate the vocabulary; use Insert/Remove instead.
func (v *Vocabulary) Iter(fn func(id uint32, tok []byte) bool) {
	for id, tok := range v.idToTok {
		if !fn(id, tok) {
			return
		}
	}
}

// Validate confirms the four §3 invariants in O(n):
//  1. every id maps to exactly one token (guaranteed by the map itself)
//  2. every token maps to exactly one id (guaranteed by the map itself)
//  3. the two directions agree: id -> token -> id is identity
//  4. every id reachable from the reverse map also appears forward
func (v *Vocabulary) Validate() error {
	if len(v.idToTok) != len(v.tokToID) {
		return fmt.Errorf("vocab: size mismatch: %d forward entries, %d reverse entries", len(v.idToTok), len(v.tokToID))
	}
	for id, tok := range v.idToTok {
		backID, ok := v.tokToID[string(tok)]
		if !ok {
			return fmt.Errorf("vocab: token %q (id %d) has no reverse entry", tok, id)
		}
		if backID != id {
			return fmt.Errorf("vocab: token %q maps forward from id %d but reverse maps to id %d", tok, id, backID)
		}
	}
	for tok, id := range v.tokToID {
		fwdTok, ok := v.idToTok[id]
		if !ok {
			return fmt.Errorf("vocab: id %d (token %q) has no forward entry", id, tok)
		}
		if string(fwdTok) != tok {
			return fmt.Errorf("vocab: id %d maps reverse from token %q but forward maps to token %q", id, tok, fwdTok)
		}
	}
	return nil
}

package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"
)

var (
	ErrEmpty      = errors.New("blockchain is empty")
	ErrOutOfRange = errors.New("index out of range")

	ErrBadGenesis        = errors.New("invalid genesis block")
	ErrBadIndex          = errors.New("index is not contiguous")
	ErrBrokenLink        = errors.New("previous hash does not match")
	ErrBadHash           = errors.New("hash does not match content")
	ErrInsufficientVotes = errors.New("insufficient votes")
)

// Blockchain is safe for concurrent use.
type Blockchain struct {
	mu     sync.RWMutex
	blocks []Block
	now    func() time.Time
}

// NewBlockchain creates a blockchain holding only the genesis block, which
// has index 0 and previous hash "0".
func NewBlockchain() *Blockchain {
	bc := &Blockchain{now: time.Now}
	genesis := Block{
		Index:     0,
		Timestamp: bc.now().Unix(),
		PrevHash:  "0",
		Kind:      KindGenesis,
		Votes:     []Vote{},
		Metadata:  Metadata{},
	}
	genesis.Hash = calculateHash(genesis)
	bc.blocks = append(bc.blocks, genesis)
	return bc
}

// Append encodes payload into a new block and appends it. The block needs at
// least quorum votes.
func (bc *Blockchain) Append(kind, author string, payload any, votes []Vote, quorum int, extra ...map[string]string) (Block, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Block{}, fmt.Errorf("encode %s payload: %w", kind, err)
	}
	var extraMsg map[string]string
	if len(extra) > 0 {
		extraMsg = extra[0]
	}
	if votes == nil {
		votes = []Vote{}
	}

	bc.mu.Lock()
	defer bc.mu.Unlock()

	latest := bc.blocks[len(bc.blocks)-1]
	newBlock := Block{
		Index:     latest.Index + 1,
		Timestamp: bc.now().Unix(),
		PrevHash:  latest.Hash,
		Kind:      kind,
		Payload:   raw,
		Votes:     slices.Clone(votes),
		Metadata: Metadata{
			Author: author,
			Quorum: quorum,
			Extra:  extraMsg,
		},
	}
	newBlock.Hash = calculateHash(newBlock)
	if err := validateBlock(newBlock, latest); err != nil {
		return Block{}, fmt.Errorf("append %s block: %w", kind, err)
	}
	bc.blocks = append(bc.blocks, newBlock)
	return newBlock, nil
}

// GetLatest returns the most recently added block.
func (bc *Blockchain) GetLatest() (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return Block{}, ErrEmpty
	}
	return bc.blocks[len(bc.blocks)-1], nil
}

func (bc *Blockchain) GetByIndex(index int) (Block, error) {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if index < 0 || index >= len(bc.blocks) {
		return Block{}, fmt.Errorf("%w: %d", ErrOutOfRange, index)
	}
	return bc.blocks[index], nil
}

func (bc *Blockchain) Len() int {
	bc.mu.RLock()
	defer bc.mu.RUnlock()
	return len(bc.blocks)
}

// Filter returns the blocks of the given kind, oldest first.
func (bc *Blockchain) Filter(kind string) []Block {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	var out []Block
	for _, b := range bc.blocks {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// Verify checks the genesis block and then the hash, index and link of every
// following block.
func (bc *Blockchain) Verify() error {
	bc.mu.RLock()
	defer bc.mu.RUnlock()

	if len(bc.blocks) == 0 {
		return ErrEmpty
	}
	if g := bc.blocks[0]; g.PrevHash != "0" || g.Hash != calculateHash(g) {
		return ErrBadGenesis
	}
	for i, b := range bc.blocks[1:] {
		if err := validateBlock(b, bc.blocks[i]); err != nil {
			return fmt.Errorf("block %d: %w", b.Index, err)
		}
	}
	return nil
}

func validateBlock(b, prev Block) error {
	switch want := calculateHash(b); {
	case b.Index != prev.Index+1:
		return fmt.Errorf("%w: %d follows %d", ErrBadIndex, b.Index, prev.Index)
	case b.PrevHash != prev.Hash:
		return fmt.Errorf("%w: %.12s", ErrBrokenLink, b.PrevHash)
	case b.Hash != want:
		return fmt.Errorf("%w: %.12s, want %.12s", ErrBadHash, b.Hash, want)
	case len(b.Votes) < b.Metadata.Quorum:
		return fmt.Errorf("%w: %d of %d", ErrInsufficientVotes, len(b.Votes), b.Metadata.Quorum)
	}
	return nil
}

// calculateHash is the SHA256 of every field of b but its own hash.
func calculateHash(b Block) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%d|%s|%s|", b.Index, b.Timestamp, b.PrevHash, b.Kind)
	h.Write(b.Payload)
	for _, v := range b.Votes {
		fmt.Fprintf(h, "|%s=%s", v.VoterID, v.Value)
	}
	fmt.Fprintf(h, "|%s|%d", b.Metadata.Author, b.Metadata.Quorum)
	keys := slices.Sorted(maps.Keys(b.Metadata.Extra))
	for _, k := range keys {
		fmt.Fprintf(h, "|%s=%s", k, b.Metadata.Extra[k])
	}
	return hex.EncodeToString(h.Sum(nil))
}

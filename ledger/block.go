package ledger

import "encoding/json"

const (
	KindGenesis  = "genesis"
	KindStarter  = "starter"
	KindExchange = "exchange"
)

// Block is a committed decision.
type Block struct {
	Index     int             `json:"index"`
	Timestamp int64           `json:"timestamp"`
	PrevHash  string          `json:"prev_hash"`
	Hash      string          `json:"hash"`
	Kind      string          `json:"kind"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	Votes     []Vote          `json:"votes"`
	Metadata  Metadata        `json:"metadata"`
}

// Vote is the contribution of a peer to a decision, such as its roll in an
// election.
type Vote struct {
	VoterID string `json:"voter_id"`
	Value   string `json:"value"`
}

type Metadata struct {
	Author string            `json:"author"`
	Quorum int               `json:"quorum"`
	Extra  map[string]string `json:"extra,omitempty"`
}

// Decode unmarshals the payload of b into v.
func (b Block) Decode(v any) error {
	return json.Unmarshal(b.Payload, v)
}

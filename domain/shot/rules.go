package shot

import "fmt"

// Rules configure when an exchange ends and whether it was won.
// Only StartingPlayer changes, once per election.
type Rules struct {
	MinTimesTargeted    int    `json:"min_times_targeted"`
	RequiredBranchCount int    `json:"required_branch_count"`
	MaxTotalShots       int    `json:"max_total_shots"`
	StartingPlayer      PeerID `json:"starting_player"`
}

func DefaultRules() Rules {
	return Rules{
		MinTimesTargeted:    1,
		RequiredBranchCount: 2,
		MaxTotalShots:       10,
	}
}

func (r Rules) Validate() error {
	if r.MinTimesTargeted < 0 {
		return fmt.Errorf("%w: min times targeted must not be negative, got %d", ErrInvalidRules, r.MinTimesTargeted)
	}
	if r.RequiredBranchCount < 1 {
		return fmt.Errorf("%w: required branch count must be positive, got %d", ErrInvalidRules, r.RequiredBranchCount)
	}
	if r.MaxTotalShots < 1 {
		return fmt.Errorf("%w: max total shots must be positive, got %d", ErrInvalidRules, r.MaxTotalShots)
	}
	return nil
}

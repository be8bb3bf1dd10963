// Package player holds automatic decision functions.
package player

import (
	"context"
	"encoding/binary"

	"go.dedis.ch/kyber/v4/suites"

	"github.com/luca-patrignani/splitshot/domain/shot"
)

var suite suites.Suite = suites.MustFind("Ed25519")

// Random plays uniformly random moves. As a winner it ends its beam with
// probability EndBeamOdds/100 and otherwise shoots at a random participant.
type Random struct {
	EndBeamOdds int
	intn        func(n int) int
}

func NewRandom(endBeamOdds int) *Random {
	return &Random{EndBeamOdds: endBeamOdds, intn: intn}
}

func (r *Random) Decide(ctx context.Context, e shot.Event) (shot.Decision, error) {
	if err := ctx.Err(); err != nil {
		return shot.Decision{}, err
	}
	move := shot.Moves[r.intn(len(shot.Moves))]
	if e.Kind == shot.EventShot {
		return shot.Play(move), nil
	}
	var targets []shot.PeerID
	for _, p := range e.Participants {
		if p != e.Target {
			targets = append(targets, p)
		}
	}
	if len(targets) == 0 || r.intn(100) < r.EndBeamOdds {
		return shot.EndBeam(), nil
	}
	return shot.Shoot(targets[r.intn(len(targets))], move), nil
}

// intn draws from the suite's random stream.
func intn(n int) int {
	b, err := suite.Scalar().Pick(suite.RandomStream()).MarshalBinary()
	if err != nil {
		panic(err)
	}
	return int(binary.LittleEndian.Uint64(b[:8]) % uint64(n))
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/splitshot/coordinator"
	"github.com/luca-patrignani/splitshot/domain/shot"
	"github.com/luca-patrignani/splitshot/membership"
)

const (
	optionOpen    = "Open an exchange"
	optionJoin    = "Join a peer by address"
	optionPeers   = "Show peers"
	optionRefresh = "Refresh"
	optionEndBeam = "End beam"
	optionShoot   = "Shoot again"
)

var errCancelled = errors.New("cancelled by the player")

// console is the terminal of the local player. Prompts from the decision
// function and from the menu never overlap.
type console struct {
	mu    sync.Mutex
	self  membership.PeerID
	names *roster
	node  *coordinator.Node
}

// Decide asks the player how to answer e.
func (c *console) Decide(ctx context.Context, e shot.Event) (shot.Decision, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	pterm.Println()
	printChain(e.Chain, c.names.name)
	if e.Kind == shot.EventShot {
		pterm.Warning.Printfln("%s shot at you!", c.names.name(e.From))
		options := append(moveOptions(), optionEndBeam)
		choice, err := pterm.DefaultInteractiveSelect.WithDefaultText("Answer with").WithOptions(options).Show()
		if err != nil {
			return shot.Decision{}, err
		}
		if choice == optionEndBeam {
			return shot.EndBeam(), nil
		}
		return shot.Play(shot.Move(choice)), nil
	}

	pterm.Success.Printfln("You beat %s, who played %s", c.names.name(e.Loser), e.LoserMove)
	choice, err := pterm.DefaultInteractiveSelect.WithDefaultText("What next?").WithOptions([]string{optionShoot, optionEndBeam}).Show()
	if err != nil {
		return shot.Decision{}, err
	}
	if choice == optionEndBeam {
		return shot.EndBeam(), nil
	}
	target, err := c.selectPeer("Shoot at", e.Participants)
	if err != nil {
		return shot.Decision{}, err
	}
	move, err := selectMove()
	if err != nil {
		return shot.Decision{}, err
	}
	return shot.Shoot(target, move), nil
}

// Present prints a finished exchange. It does not wait for the menu.
func (c *console) Present(res shot.Result) {
	printResult(res, c.names.name)
}

// loop shows the menu until ctx is done.
func (c *console) loop(ctx context.Context, localAddr string) error {
	for ctx.Err() == nil {
		s, err := c.node.Snapshot(ctx)
		if err != nil {
			return err
		}
		options := []string{optionJoin, optionPeers, optionRefresh}
		if s.Starter == c.self && !s.InProgress && len(s.Peers) > 1 {
			options = append([]string{optionOpen}, options...)
		}

		c.mu.Lock()
		var action func() error
		choice, err := pterm.DefaultInteractiveSelect.WithDefaultText("Menu").WithOptions(options).Show()
		if err == nil {
			action, err = c.prompt(ctx, choice, s, localAddr)
		}
		c.mu.Unlock()
		// the node may be waiting on a decision prompt, so it is never
		// called with the terminal held
		if err == nil && action != nil {
			err = action()
		}
		if err != nil && !errors.Is(err, errCancelled) {
			pterm.Error.Println(err)
		}
	}
	return ctx.Err()
}

// prompt collects the input a menu choice needs and returns the node call
// that carries it out.
func (c *console) prompt(ctx context.Context, choice string, s coordinator.Snapshot, localAddr string) (func() error, error) {
	switch choice {
	case optionOpen:
		target, err := c.selectPeer("Shoot at", s.Peers)
		if err != nil {
			return nil, err
		}
		move, err := selectMove()
		if err != nil {
			return nil, err
		}
		return func() error { return c.node.Open(ctx, target, move) }, nil
	case optionJoin:
		input, _ := pterm.DefaultInteractiveTextInput.WithDefaultText("Enter the address in ipaddr:port format").Show()
		addr, err := completeAddress(localAddr, input)
		if err != nil {
			return nil, err
		}
		return func() error { return c.node.Join(ctx, addr) }, nil
	case optionPeers:
		printPeers(s, c.names.name)
	case optionRefresh:
		time.Sleep(200 * time.Millisecond)
	}
	return nil, nil
}

func (c *console) selectPeer(text string, peers []membership.PeerID) (membership.PeerID, error) {
	byLabel := make(map[string]membership.PeerID)
	var labels []string
	for _, p := range peers {
		if p == c.self {
			continue
		}
		label := c.names.name(p)
		byLabel[label] = p
		labels = append(labels, label)
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("%w: nobody to shoot at", errCancelled)
	}
	choice, err := pterm.DefaultInteractiveSelect.WithDefaultText(text).WithOptions(labels).Show()
	if err != nil {
		return "", err
	}
	return byLabel[choice], nil
}

func selectMove() (shot.Move, error) {
	choice, err := pterm.DefaultInteractiveSelect.WithDefaultText("Move").WithOptions(moveOptions()).Show()
	if err != nil {
		return "", err
	}
	return shot.ParseMove(choice)
}

func moveOptions() []string {
	options := make([]string, len(shot.Moves))
	for i, m := range shot.Moves {
		options[i] = string(m)
	}
	return options
}

// completeAddress fills the address typed by the player with the octets of
// the local address it omits.
func completeAddress(localAddr, input string) (string, error) {
	ipaddr, port, err := net.SplitHostPort(strings.TrimSpace(input))
	if err != nil {
		return "", fmt.Errorf("invalid address format %q: %w", input, err)
	}
	localIp, _, err := splitHostPort(localAddr, 0)
	if err != nil {
		return "", err
	}
	guessed, err := guessIpAddress(net.ParseIP(localIp), ipaddr)
	if err != nil {
		return "", fmt.Errorf("could not guess address for %q: %w", input, err)
	}
	return net.JoinHostPort(guessed.String(), port), nil
}

// autoOpen opens an exchange at a random peer whenever the local peer is the
// idle starter.
func autoOpen(ctx context.Context, node *coordinator.Node, r coordinator.Decider) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		s, err := node.Snapshot(ctx)
		if err != nil {
			return err
		}
		if s.Starter != s.Self || s.InProgress || len(s.Peers) < 2 {
			continue
		}
		// a random winner's shot doubles as the opening shot
		d, err := r.Decide(ctx, shot.Event{Kind: shot.EventWon, Target: s.Self, Participants: s.Peers})
		if err != nil || d.Kind != shot.DecisionShoot {
			continue
		}
		if err := node.Open(ctx, d.Target, d.Move); err != nil {
			pterm.Warning.Println(err)
		}
	}
}

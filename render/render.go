// Package render draws finished exchanges for the terminal.
package render

import (
	"fmt"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/splitshot/domain/shot"
)

// Namer returns the display name of a peer.
type Namer func(shot.PeerID) string

// Tree renders the turn tree of res. A nil name prints peer ids.
func Tree(res shot.Result, name Namer) (string, error) {
	if name == nil {
		name = func(p shot.PeerID) string { return string(p) }
	}
	root := pterm.TreeNode{
		Text:     fmt.Sprintf("exchange of %s", name(res.Owner)),
		Children: branchNodes(res.Tree, name),
	}
	return pterm.DefaultTree.WithRoot(root).Srender()
}

func branchNodes(b shot.Branch, name Namer) []pterm.TreeNode {
	nodes := make([]pterm.TreeNode, 0, len(b.Turns)+1)
	for _, t := range b.Turns {
		nodes = append(nodes, pterm.TreeNode{Text: turnText(t, name)})
	}
	if b.Split != nil {
		nodes = append(nodes, pterm.TreeNode{
			Text: "tie",
			Children: []pterm.TreeNode{
				{Text: "left", Children: branchNodes(b.Split.Left, name)},
				{Text: "right", Children: branchNodes(b.Split.Right, name)},
			},
		})
	}
	return nodes
}

func turnText(t shot.Turn, name Namer) string {
	if t.IsShot() {
		return fmt.Sprintf("%s shot %s at %s: %s", name(t.Actor), t.Action, name(t.Target), t.Outcome)
	}
	return fmt.Sprintf("%s won: %s", name(t.Actor), t.Action)
}

// Summary describes the outcome of res in one line.
func Summary(res shot.Result) string {
	s := res.Status
	if s.Won {
		return fmt.Sprintf("won with %d shots over %d branches", s.Shots, s.Terminals)
	}
	var reasons string
	switch {
	case s.Shots >= res.Rules.MaxTotalShots:
		reasons = "shot budget spent"
	case s.Terminals != res.Rules.RequiredBranchCount:
		reasons = fmt.Sprintf("%d branches instead of %d", s.Terminals, res.Rules.RequiredBranchCount)
	default:
		reasons = "a beam missed or a player was not targeted enough"
	}
	return fmt.Sprintf("lost after %d shots: %s", s.Shots, reasons)
}

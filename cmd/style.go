package main

import (
	"strings"

	"github.com/pterm/pterm"

	"github.com/luca-patrignani/splitshot/coordinator"
	"github.com/luca-patrignani/splitshot/domain/shot"
	"github.com/luca-patrignani/splitshot/render"
)

func printResult(res shot.Result, name render.Namer) {
	tree, err := render.Tree(res, name)
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)
	title := pterm.LightRed("|EXCHANGE LOST|")
	if res.Status.Won {
		title = pterm.LightGreen("|EXCHANGE WON|")
	}
	pbox.WithTitle(title).WithTitleTopCenter().Println(tree + "\n" + render.Summary(res))
}

// printChain shows how the exchange reached the local player.
func printChain(chain shot.Chain, name render.Namer) {
	for i, lineage := range chain {
		names := make([]string, len(lineage))
		for j, p := range lineage {
			names[j] = name(p)
		}
		line := strings.Join(names, " -> ")
		if i == len(chain)-1 {
			pterm.Info.Println(line)
		} else {
			pterm.Println(pterm.Gray(line))
		}
	}
}

func printPeers(s coordinator.Snapshot, name render.Namer) {
	data := pterm.TableData{{"Peer", "Address", "Role"}}
	for _, p := range s.Peers {
		role := ""
		if p == s.Starter {
			role = pterm.LightCyan("starter")
		}
		if p == s.Self {
			role = strings.TrimSpace(role + " you")
		}
		data = append(data, []string{name(p), s.View[p], role})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		pterm.Error.Println(err)
	}
}

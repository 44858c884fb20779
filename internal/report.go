package internal

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

var reportHeader = []string{"Team", "Player", "Id", "TD", "Cas", "CasSus", "Comp", "Fouls", "Fouled",
	"SPP", "Sacks", "Kills", "Surfs", "Surfed", "Exp", "DodgeTO", "Dubskulls", "ArmorSus"}

// WriteReport prints the per player summary of a match, followed by the
// players whose counted SPP do not add up to the SPP the log credits
func WriteReport(w io.Writer, stats *MatchStats) error {
	fmt.Fprintf(w, "\n> %s vs %s\n", stats.Home.Name, stats.Away.Name)
	fmt.Fprintf(w, " Fan attendance: %d / %d\n\n", stats.Home.Fans, stats.Away.Fans)

	tbl := tablewriter.NewTable(w)
	tbl.Header(reportHeader)

	var mismatched []*PlayerStats

	for _, team := range stats.Teams() {
		for _, player := range team.Players {
			row := []string{team.Name, player.Name, strconv.Itoa(player.ID)}
			for _, value := range []int{player.TouchdownsScored, player.CasInflicted, player.CasSustained,
				player.PassCompletions, player.FoulsInflicted, player.FoulsSustained, player.SppEarned,
				player.Sacks, player.Kills, player.SurfsInflicted, player.SurfsSustained, player.Expulsions,
				player.DodgeTurnovers, player.DubskullsRolled, player.ArmorRollsSustained} {
				row = append(row, strconv.Itoa(value))
			}

			if err := tbl.Append(row); err != nil {
				return err
			}

			if player.ExpectedSPP() != player.SppEarned {
				mismatched = append(mismatched, player)
			}
		}
	}

	if err := tbl.Render(); err != nil {
		return err
	}

	warn := color.New(color.FgRed)
	for _, player := range mismatched {
		warn.Fprintf(w, "!!! %s (id=%d): Expected %d spp but found %d\n",
			player.Name, player.ID, player.ExpectedSPP(), player.SppEarned)
	}

	return nil
}

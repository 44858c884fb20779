package internal

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
)

// CSVSeparator separates the fields of the csv output
const CSVSeparator rune = ';'

type csvColumn struct {
	name  string
	value func(p *PlayerStats) string
}

func intColumn(name string, field func(p *PlayerStats) int) csvColumn {
	return csvColumn{name: name, value: func(p *PlayerStats) string { return strconv.Itoa(field(p)) }}
}

// csvColumns are the scalar statistics of a player, in output order
var csvColumns = []csvColumn{
	intColumn("Id", func(p *PlayerStats) int { return p.ID }),
	{name: "Name", value: func(p *PlayerStats) string { return p.Name }},
	intColumn("TouchdownsScored", func(p *PlayerStats) int { return p.TouchdownsScored }),
	intColumn("CasInflicted", func(p *PlayerStats) int { return p.CasInflicted }),
	intColumn("CasSustained", func(p *PlayerStats) int { return p.CasSustained }),
	intColumn("PassCompletions", func(p *PlayerStats) int { return p.PassCompletions }),
	intColumn("FoulsInflicted", func(p *PlayerStats) int { return p.FoulsInflicted }),
	intColumn("FoulsSustained", func(p *PlayerStats) int { return p.FoulsSustained }),
	intColumn("SppEarned", func(p *PlayerStats) int { return p.SppEarned }),
	intColumn("Sacks", func(p *PlayerStats) int { return p.Sacks }),
	intColumn("Kills", func(p *PlayerStats) int { return p.Kills }),
	intColumn("Deaths", func(p *PlayerStats) int { return p.Deaths }),
	intColumn("SurfsInflicted", func(p *PlayerStats) int { return p.SurfsInflicted }),
	intColumn("SurfsSustained", func(p *PlayerStats) int { return p.SurfsSustained }),
	intColumn("Expulsions", func(p *PlayerStats) int { return p.Expulsions }),
	intColumn("DodgeTurnovers", func(p *PlayerStats) int { return p.DodgeTurnovers }),
	intColumn("DubskullsRolled", func(p *PlayerStats) int { return p.DubskullsRolled }),
	intColumn("ArmorRollsSustained", func(p *PlayerStats) int { return p.ArmorRollsSustained }),
	intColumn("ArmorBreaksSustained", func(p *PlayerStats) int { return p.ArmorBreaksSustained }),
	intColumn("BlocksInflicted", func(p *PlayerStats) int { return p.BlocksInflicted }),
	intColumn("BlocksSustained", func(p *PlayerStats) int { return p.BlocksSustained }),
	intColumn("Blitzes", func(p *PlayerStats) int { return p.Blitzes }),
}

// CSVHeader returns the column names of a player row
func CSVHeader() []string {
	header := make([]string, len(csvColumns))
	for idx, column := range csvColumns {
		header[idx] = column.name
	}

	return header
}

// MakeCSVLine returns the fields of a player row
func MakeCSVLine(player *PlayerStats) []string {
	line := make([]string, len(csvColumns))
	for idx, column := range csvColumns {
		line[idx] = column.value(player)
	}

	return line
}

// WriteCSV writes the match heading, the fan attendance and one row per
// player, home players first
func WriteCSV(w io.Writer, stats *MatchStats) error {
	writer := csv.NewWriter(w)
	writer.Comma = CSVSeparator

	records := [][]string{
		{fmt.Sprintf("%s vs %s", stats.Home.Name, stats.Away.Name)},
		{fmt.Sprintf("Fan attendance home: %d", stats.Home.Fans)},
		{fmt.Sprintf("Fan attendance away: %d", stats.Away.Fans)},
		CSVHeader(),
	}

	for _, team := range stats.Teams() {
		for _, player := range team.Players {
			records = append(records, MakeCSVLine(player))
		}
	}

	return writer.WriteAll(records)
}

// WriteJSON writes the indented json document of a match
func WriteJSON(w io.Writer, stats *MatchStats) error {
	outputMarshalled, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return err
	}

	if _, err = w.Write(append(outputMarshalled, '\n')); err != nil {
		return err
	}

	return nil
}

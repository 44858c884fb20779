package internal

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func reportFixture(t *testing.T) *MatchStats {
	t.Helper()

	fix := newFixture()
	// the log credits an SPP the counted actions cannot explain
	fix.home.players[0].xp = 4

	return fix.step(touchdown(homeBlitzer)).analyze(t, ProfileLegacy)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, reportFixture(t)))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 4+6)
	require.Equal(t, "Gouged Eye Orcs vs Elfheim Eagles", lines[0])
	require.Equal(t, "Fan attendance home: 4", lines[1])
	require.Equal(t, "Fan attendance away: 5", lines[2])
	require.Equal(t, strings.Join(CSVHeader(), ";"), lines[3])
	require.True(t, strings.HasPrefix(lines[4], "1;Ugrak;1;0;"), lines[4])
	require.True(t, strings.HasPrefix(lines[7], "11;Celeborn;0;"), lines[7])
	require.Len(t, strings.Split(lines[4], ";"), len(CSVHeader()))
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, reportFixture(t)))

	var document struct {
		ID   string `json:"id"`
		Home struct {
			Name    string           `json:"name"`
			Fans    int              `json:"fans"`
			Players []map[string]any `json:"players"`
		} `json:"home"`
		Away json.RawMessage `json:"away"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &document))
	require.Equal(t, "fixture", document.ID)
	require.Equal(t, "Gouged Eye Orcs", document.Home.Name)
	require.Equal(t, 4, document.Home.Fans)
	require.Len(t, document.Home.Players, 3)
	require.Equal(t, "Ugrak", document.Home.Players[0]["Name"])
	require.EqualValues(t, 1, document.Home.Players[0]["TouchdownsScored"])
	require.Contains(t, document.Home.Players[0]["Rolls"], "ArmorOrInjury")
	require.NotContains(t, document.Home.Players[0], "Mvp")
	require.NotEmpty(t, document.Away)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, reportFixture(t)))

	report := buf.String()
	require.Contains(t, report, "> Gouged Eye Orcs vs Elfheim Eagles")
	require.Contains(t, report, "Fan attendance: 4 / 5")
	require.Contains(t, report, "Legolas")
	require.Contains(t, report, "Ugrak (id=1): Expected 3 spp but found 4")
	require.NotContains(t, report, "Grishnak (id=2)")
}

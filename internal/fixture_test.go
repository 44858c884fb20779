package internal

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"
)

// fixture players: home 1-3, away 11-13
const (
	homeBlitzer  = 1
	homeThrower  = 2
	homeCatcher  = 3
	awayBlocker  = 11
	awayLineman  = 12
	awayCarrier  = 13
	unknownActor = 99
)

type fixturePlayer struct {
	id      int
	name    string
	xp      int
	totalXp int // -1 for none
	mvp     bool
}

type fixtureTeam struct {
	coach   string
	name    string
	players []fixturePlayer
}

type fixture struct {
	home      fixtureTeam
	away      fixtureTeam
	noLobby   bool
	noResult  bool
	fans      [2]int
	steps     []string
	trailings []string
}

func newFixture() *fixture {
	return &fixture{
		home: fixtureTeam{coach: "Sjogren", name: "Gouged Eye Orcs", players: []fixturePlayer{
			{id: homeBlitzer, name: "Ugrak", totalXp: -1},
			{id: homeThrower, name: "Grishnak", totalXp: -1},
			{id: homeCatcher, name: "Snaga", totalXp: -1},
		}},
		away: fixtureTeam{coach: "Elrond", name: "Elfheim Eagles", players: []fixturePlayer{
			{id: awayBlocker, name: "Celeborn", totalXp: -1},
			{id: awayLineman, name: "Haldir", totalXp: -1},
			{id: awayCarrier, name: "Legolas", totalXp: -1},
		}},
		fans: [2]int{4, 5},
	}
}

func (f *fixture) step(events ...string) *fixture {
	f.steps = append(f.steps, replayStepXML("", events...))

	return f
}

func (f *fixture) stepWithBall(ball string, events ...string) *fixture {
	f.steps = append(f.steps, replayStepXML(ball, events...))

	return f
}

func (f *fixture) xml() string {
	var b strings.Builder

	b.WriteString("<Replay><ClientVersion>1.2.3</ClientVersion>")

	if !f.noLobby {
		b.WriteString("<NotificationGameJoined><GameInfos>")
		b.WriteString("<Competition><CompetitionInfos><Name>ZFL Season 9</Name></CompetitionInfos></Competition>")
		b.WriteString("<GamersInfos>")

		for _, team := range []fixtureTeam{f.home, f.away} {
			fmt.Fprintf(&b, "<GamerInfos><Name>%s</Name><Roster><Name>%s</Name></Roster></GamerInfos>",
				html.EscapeString(team.coach), html.EscapeString(team.name))
		}

		b.WriteString("</GamersInfos></GameInfos></NotificationGameJoined>")
	}

	fmt.Fprintf(&b, "<ReplayStep><EventFanFactor><HomeRoll><Dice><Die><DieType>0</DieType><Value>%d</Value></Die></Dice></HomeRoll>"+
		"<AwayRoll><Dice><Die><DieType>0</DieType><Value>%d</Value></Die></Dice></AwayRoll></EventFanFactor></ReplayStep>",
		f.fans[0], f.fans[1])

	// every log opens with a kickoff, which also carries the profile's MessageData
	b.WriteString(replayStepXML("", kickoff()))

	for _, step := range f.steps {
		b.WriteString(step)
	}

	if !f.noResult {
		b.WriteString("<EndGame><RulesEventGameFinished><MatchResult><GamerResults>")

		for _, team := range []fixtureTeam{f.home, f.away} {
			fmt.Fprintf(&b, "<GamerResult><TeamResult><TeamData><Name>%s</Name></TeamData><PlayerResults>", html.EscapeString(team.name))

			for _, player := range team.players {
				fmt.Fprintf(&b, "<PlayerResult><PlayerData><Id>%d</Id><Name>%s</Name><LobbyId>lobby-%d</LobbyId></PlayerData><Xp>%d</Xp>",
					player.id, html.EscapeString(player.name), player.id, player.xp)

				if player.mvp {
					b.WriteString("<Mvp>1</Mvp>")
				}

				if player.totalXp >= 0 {
					fmt.Fprintf(&b, "<TotalXp>%d</TotalXp>", player.totalXp)
				}

				b.WriteString("</PlayerResult>")
			}

			b.WriteString("</PlayerResults></TeamResult></GamerResult>")
		}

		b.WriteString("</GamerResults></MatchResult></RulesEventGameFinished></EndGame>")
	}

	for _, trailing := range f.trailings {
		b.WriteString(trailing)
	}

	b.WriteString("</Replay>")

	return b.String()
}

// decoded parses the fixture as the codec would have produced it
func (f *fixture) decoded(t *testing.T, profile SchemaProfile) *Decoded {
	t.Helper()

	decoded, err := Decode(encodeReplay(t, f.xml(), profile))
	require.NoError(t, err)
	require.Equal(t, profile, decoded.Profile)

	return decoded
}

func (f *fixture) replay(t *testing.T, profile SchemaProfile) *Replay {
	t.Helper()

	replay, err := NewReplay("fixture"+ReplayExtension, f.decoded(t, profile))
	require.NoError(t, err)

	return replay
}

func (f *fixture) analyze(t *testing.T, profile SchemaProfile) *MatchStats {
	t.Helper()

	stats, err := Analyze(f.replay(t, profile))
	require.NoError(t, err)

	return stats
}

func (f *fixture) writeFile(t *testing.T, dir, name string, profile SchemaProfile) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, encodeReplay(t, f.xml(), profile), 0o600))

	return path
}

func playerOf(t *testing.T, stats *MatchStats, id int) *PlayerStats {
	t.Helper()

	for _, team := range stats.Teams() {
		if player := team.Player(id); player != nil {
			return player
		}
	}

	require.FailNowf(t, "missing player", "no statistics for player %d", id)

	return nil
}

var (
	fixtureMessageData = regexp.MustCompile(`(?s)<MessageData>(.*?)</MessageData>`)
	fixtureTextTag     = regexp.MustCompile(`<(Name|LobbyId|GamerId|CreatorGamerId|MatchId)>([^<]*)</(?:Name|LobbyId|GamerId|CreatorGamerId|MatchId)>`)
)

// encodeReplay applies the replay container to plaintext markup: the tag
// encoding of the profile, zlib and base64
func encodeReplay(t *testing.T, text string, profile SchemaProfile) []byte {
	t.Helper()

	if profile == ProfileEncoded {
		text = encodeText(text)
	}

	var compressed bytes.Buffer

	writer := zlib.NewWriter(&compressed)
	_, err := writer.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return []byte(base64.StdEncoding.EncodeToString(compressed.Bytes()))
}

func encodeText(text string) string {
	text = fixtureTextTag.ReplaceAllStringFunc(text, func(match string) string {
		groups := fixtureTextTag.FindStringSubmatch(match)

		return "<" + groups[1] + ">" + base64.StdEncoding.EncodeToString([]byte(html.UnescapeString(groups[2]))) + "</" + groups[1] + ">"
	})

	return fixtureMessageData.ReplaceAllStringFunc(text, func(match string) string {
		inner := fixtureMessageData.FindStringSubmatch(match)[1]
		once := base64.StdEncoding.EncodeToString([]byte(inner))

		return "<MessageData>" + base64.StdEncoding.EncodeToString([]byte(once)) + "</MessageData>"
	})
}

func replayStepXML(ball string, events ...string) string {
	board := ""
	if ball != "" {
		board = "<BoardState>" + ball + "</BoardState>"
	}

	return "<ReplayStep>" + strings.Join(events, "") + board + "</ReplayStep>"
}

func heldBall(carrier int) string {
	return fmt.Sprintf("<Ball><IsHeld>1</IsHeld><Carrier>%d</Carrier></Ball>", carrier)
}

func looseBall() string {
	return "<Ball><IsHeld>0</IsHeld></Ball>"
}

// fields renders alternating tag names and values as child elements
func fields(pairs ...any) string {
	var b strings.Builder

	for idx := 0; idx+1 < len(pairs); idx += 2 {
		fmt.Fprintf(&b, "<%s>%v</%s>", pairs[idx], pairs[idx+1], pairs[idx])
	}

	return b.String()
}

func dice(values ...int) string {
	var b strings.Builder

	b.WriteString("<Dice>")

	for _, value := range values {
		fmt.Fprintf(&b, "<Die><DieType>0</DieType><Value>%d</Value></Die>", value)
	}

	b.WriteString("</Dice>")

	return b.String()
}

func message(name string, body string) string {
	return fmt.Sprintf("<StringMessage><Name>%s</Name><MessageData><%s>%s</%s></MessageData></StringMessage>",
		name, name, body, name)
}

func stepResult(name string, stepType StepType, player, target int, results ...string) string {
	body := fields("StepType", int(stepType))
	if player != NoPlayer {
		body += fields("PlayerId", player)
	}

	if target != NoPlayer {
		body += fields("TargetId", target)
	}

	return fmt.Sprintf("<StepResult><Step><Name>%s</Name><MessageData><%s>%s</%s></MessageData></Step><Results>%s</Results></StepResult>",
		name, name, body, name, strings.Join(results, ""))
}

func sequence(stepResults ...string) string {
	return "<EventExecuteSequence><Sequence>" + strings.Join(stepResults, "") + "</Sequence></EventExecuteSequence>"
}

func kickoff() string {
	return sequence(stepResult("KickoffStep", StepKickoff, NoPlayer, NoPlayer))
}

func activation(player int) string {
	return sequence(stepResult("ActivationStep", StepActivation, player, NoPlayer))
}

func endTurn(next int, turnover bool) string {
	reason := 1
	if turnover {
		reason = 2
	}

	return "<EventEndTurn>" + fields("Reason", reason, "NextPlayingGamer", next) + "</EventEndTurn>"
}

func touchdown(player int) string {
	return "<EventTouchdown>" + fields("PlayerId", player) + "</EventTouchdown>"
}

func roll(player int, rollType RollType, success bool, values ...int) string {
	outcome := 0
	if success {
		outcome = 1
	}

	body := fields("RollType", int(rollType), "Outcome", outcome) + dice(values...)
	if player != NoPlayer {
		body = fields("PlayerId", player) + body
	}

	return message("ResultRoll", body)
}

func blockOutcome(attacker, defender int, outcome BlockOutcome) string {
	return message("ResultBlockOutcome", fields("AttackerId", attacker, "DefenderId", defender, "Outcome", int(outcome)))
}

func removal(player int, situation PlayerSituation, reason int) string {
	return message("ResultPlayerRemoval", fields("PlayerId", player, "Situation", int(situation), "Status", 0, "Reason", reason))
}

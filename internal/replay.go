package internal

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beevik/etree"
)

const (
	pathGameInfos      = "NotificationGameJoined/GameInfos"
	pathCompetition    = "Competition/CompetitionInfos/Name"
	pathCoachNames     = "GamersInfos/GamerInfos/Name"
	pathRosterNames    = "GamersInfos/GamerInfos/Roster/Name"
	pathGamerResults   = "EndGame/RulesEventGameFinished/MatchResult/GamerResults/GamerResult"
	pathPlayerResults  = "TeamResult/PlayerResults/PlayerResult"
	pathResultTeamName = "TeamResult/TeamData/Name"
	pathBoardTeams     = "ReplayStep/BoardState/ListTeams"
	pathPitchPlayers   = "TeamState/ListPitchPlayers"
)

// Player is the identity of a player taking part in a replay. Players are
// equal when their team and id are, and are ordered by id.
type Player struct {
	Team    int
	ID      int
	Name    string
	LobbyID string
	// SppGained is the SPP the post-game result credits the player with
	SppGained int
	// XpTotal is the experience gained total of the later schema, or -1
	XpTotal int
	Mvp     bool
}

func (p *Player) String() string {
	return fmt.Sprintf("Player(%d, %s)", p.ID, p.Name)
}

// Team is one side of a replay
type Team struct {
	Name    string
	Coach   string
	Players map[int]*Player
}

func newTeam(name, coach string) *Team {
	return &Team{Name: name, Coach: coach, Players: make(map[int]*Player)}
}

// PlayerIDs returns the ids of the team's players in ascending order
func (t *Team) PlayerIDs() []int {
	ids := make([]int, 0, len(t.Players))
	for id := range t.Players {
		ids = append(ids, id)
	}

	slices.Sort(ids)

	return ids
}

// add inserts the player unless one with the same id is already known
func (t *Team) add(player *Player) {
	if _, found := t.Players[player.ID]; !found {
		t.Players[player.ID] = player
	}
}

// MatchInfo is the static pre-game information of a replay. Every field may
// be empty since the lobby section is absent in some log sources.
type MatchInfo struct {
	ClientVersion string
	Coaches       []string
	Teams         []string
	Competition   string
}

// Replay is one decoded match
type Replay struct {
	Path          string
	ClientVersion string
	Profile       SchemaProfile

	HomeCoach     string
	VisitingCoach string
	HomeTeam      *Team
	VisitingTeam  *Team

	Competition string

	// Root is the document root, queried by the analyzer
	Root *etree.Element
}

// ID returns the replay's file name without the replay extension
func (r *Replay) ID() string {
	return strings.TrimSuffix(filepath.Base(r.Path), ReplayExtension)
}

// Team returns the team with the given index
func (r *Replay) Team(index int) *Team {
	if index == AwayTeam {
		return r.VisitingTeam
	}

	return r.HomeTeam
}

// Player looks a player up by id in both teams
func (r *Replay) Player(id int) (*Player, bool) {
	if player, found := r.HomeTeam.Players[id]; found {
		return player, true
	}

	player, found := r.VisitingTeam.Players[id]

	return player, found
}

// ReadMatchInfo reads the coach, team and competition names of the lobby
// section. It is cheap enough to filter replays before a full extraction.
func ReadMatchInfo(root *etree.Element) MatchInfo {
	var info MatchInfo

	info.ClientVersion, _ = childText(root, "ClientVersion")

	gameInfos := root.FindElement(pathGameInfos)
	if gameInfos == nil {
		// without a lobby section the post-game result may still name the teams
		for _, gamerResult := range root.FindElements(pathGamerResults) {
			if name, found := childText(gamerResult, pathResultTeamName); found {
				info.Teams = append(info.Teams, name)
			}
		}

		return info
	}

	info.Competition, _ = childText(gameInfos, pathCompetition)

	for _, node := range gameInfos.FindElements(pathCoachNames) {
		info.Coaches = append(info.Coaches, strings.TrimSpace(node.Text()))
	}

	for _, node := range gameInfos.FindElements(pathRosterNames) {
		info.Teams = append(info.Teams, strings.TrimSpace(node.Text()))
	}

	return info
}

// NewReplay extracts the match metadata and the player roster of a decoded
// replay. It fails with ErrMissingSection when the post-game result, which
// holds the roster, is absent.
func NewReplay(path string, decoded *Decoded) (*Replay, error) {
	root := decoded.Document.Root()
	info := ReadMatchInfo(root)

	replay := &Replay{
		Path:          path,
		ClientVersion: info.ClientVersion,
		Profile:       decoded.Profile,
		HomeCoach:     nth(info.Coaches, HomeTeam),
		VisitingCoach: nth(info.Coaches, AwayTeam),
		Competition:   info.Competition,
		Root:          root,
	}

	replay.HomeTeam = newTeam(nth(info.Teams, HomeTeam), replay.HomeCoach)
	replay.VisitingTeam = newTeam(nth(info.Teams, AwayTeam), replay.VisitingCoach)

	if err := readRoster(replay); err != nil {
		return nil, err
	}

	if err := readBoardPlayers(replay); err != nil {
		return nil, err
	}

	return replay, nil
}

func readRoster(replay *Replay) error {
	gamerResults := replay.Root.FindElements(pathGamerResults)
	if len(gamerResults) == 0 {
		return fmt.Errorf("%w: %s", ErrMissingSection, pathGamerResults)
	}

	if len(gamerResults) != 2 {
		return schemaErrorf("expected 2 GamerResult sections, found %d", len(gamerResults))
	}

	for teamIndex, gamerResult := range gamerResults {
		team := replay.Team(teamIndex)

		for _, result := range gamerResult.FindElements(pathPlayerResults) {
			player, err := readPlayer(teamIndex, result.SelectElement("PlayerData"))
			if err != nil {
				return err
			}

			if player.SppGained, err = optInt(result, "Xp"); err != nil {
				return err
			}

			if player.SppGained < 0 {
				player.SppGained = 0
			}

			if player.XpTotal, err = optInt(result, "TotalXp"); err != nil {
				return err
			}

			player.Mvp = boolField(result, "Mvp")
			team.add(player)
		}
	}

	return nil
}

// readBoardPlayers merges the players listed in the board states, so players
// that never show up in the result are still known
func readBoardPlayers(replay *Replay) error {
	for _, listTeams := range replay.Root.FindElements(pathBoardTeams) {
		for teamIndex, pitchPlayers := range listTeams.FindElements(pathPitchPlayers) {
			if teamIndex > AwayTeam {
				break
			}

			for _, data := range pitchPlayers.FindElements("PlayerState/Data") {
				player, err := readPlayer(teamIndex, data)
				if err != nil {
					return err
				}

				player.XpTotal = NoPlayer
				replay.Team(teamIndex).add(player)
			}
		}
	}

	return nil
}

func readPlayer(team int, data *etree.Element) (*Player, error) {
	if data == nil {
		return nil, errors.Join(ErrMissingSection, errors.New("PlayerData"))
	}

	id, err := reqInt(data, "Id")
	if err != nil {
		return nil, err
	}

	name, _ := childText(data, "Name")
	lobbyID, _ := childText(data, "LobbyId")

	return &Player{Team: team, ID: id, Name: name, LobbyID: lobbyID}, nil
}

func nth(values []string, idx int) string {
	if idx < len(values) {
		return values[idx]
	}

	return ""
}

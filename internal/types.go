package internal

// MatchStats holds the statistics derived from one replay - the outermost
// element of the json output
type MatchStats struct {
	ID   string     `json:"id"`
	Home *TeamStats `json:"home"`
	Away *TeamStats `json:"away"`
}

// Teams returns the home and away statistics in team index order
func (m *MatchStats) Teams() [2]*TeamStats {
	return [2]*TeamStats{m.Home, m.Away}
}

// TeamStats holds the per-team aggregate of one replay
type TeamStats struct {
	Name    string         `json:"name"`
	Fans    int            `json:"fans"`
	Players []*PlayerStats `json:"players"`

	BribeRolls        []int `json:"BribeRolls"`
	ArgueTheCallRolls []int `json:"ArgueTheCallRolls"`

	// dice histograms, summed from the team's players
	AllBlockDice       map[string]int `json:"AllBlockDice"`
	ChosenBlockDice    map[string]int `json:"ChosenBlockDice"`
	ArmorAndInjuryDice map[int]int    `json:"ArmorAndInjuryDice"`
	OtherDice          map[int]int    `json:"OtherDice"`

	// number of turns the scoring team held the ball for each touchdown
	TurnsPerTouchdown []int `json:"TurnsPerTouchdown"`
}

func newTeamStats(name string) *TeamStats {
	return &TeamStats{
		Name:               name,
		Players:            make([]*PlayerStats, 0),
		BribeRolls:         make([]int, 0),
		ArgueTheCallRolls:  make([]int, 0),
		AllBlockDice:       make(map[string]int),
		ChosenBlockDice:    make(map[string]int),
		ArmorAndInjuryDice: make(map[int]int),
		OtherDice:          make(map[int]int),
		TurnsPerTouchdown:  make([]int, 0),
	}
}

// sumPlayerDice rebuilds the team level histograms from the players
func (t *TeamStats) sumPlayerDice() {
	for _, player := range t.Players {
		mergeCounts(t.AllBlockDice, player.AllBlockDice)
		mergeCounts(t.ChosenBlockDice, player.ChosenBlockDice)
		mergeCounts(t.ArmorAndInjuryDice, player.ArmorAndInjuryDice)
		mergeCounts(t.OtherDice, player.OtherDice)
	}
}

// Player returns the statistics of the player with the given id, or nil
func (t *TeamStats) Player(id int) *PlayerStats {
	for _, player := range t.Players {
		if player.ID == id {
			return player
		}
	}

	return nil
}

// PlayerStats holds the counters and dice histograms of a single player
type PlayerStats struct {
	ID      int    `json:"Id"`
	Name    string `json:"Name"`
	LobbyID string `json:"LobbyId,omitempty"`

	TouchdownsScored     int `json:"TouchdownsScored"`
	CasInflicted         int `json:"CasInflicted"`
	CasSustained         int `json:"CasSustained"`
	PassCompletions      int `json:"PassCompletions"`
	FoulsInflicted       int `json:"FoulsInflicted"`
	FoulsSustained       int `json:"FoulsSustained"`
	SppEarned            int `json:"SppEarned"`
	Sacks                int `json:"Sacks"`
	Kills                int `json:"Kills"`
	Deaths               int `json:"Deaths"`
	SurfsInflicted       int `json:"SurfsInflicted"`
	SurfsSustained       int `json:"SurfsSustained"`
	Expulsions           int `json:"Expulsions"`
	DodgeTurnovers       int `json:"DodgeTurnovers"`
	DubskullsRolled      int `json:"DubskullsRolled"`
	ArmorRollsSustained  int `json:"ArmorRollsSustained"`
	ArmorBreaksSustained int `json:"ArmorBreaksSustained"`
	BlocksInflicted      int `json:"BlocksInflicted"`
	BlocksSustained      int `json:"BlocksSustained"`
	Blitzes              int `json:"Blitzes"`

	// block dice by face name, every die offered vs the die picked
	AllBlockDice    map[string]int `json:"AllBlockDice"`
	ChosenBlockDice map[string]int `json:"ChosenBlockDice"`
	// armor and injury rolls by the sum of the dice
	ArmorAndInjuryDice map[int]int `json:"ArmorAndInjuryDice"`
	// every single d6 rolled in the Other bucket
	OtherDice map[int]int `json:"OtherDice"`
	// full dice tuples per statistical bucket
	Rolls map[RollStatType]DiceHistogram `json:"Rolls"`

	Mvp bool `json:"-"`
}

func newPlayerStats(player *Player) *PlayerStats {
	return &PlayerStats{
		ID:                 player.ID,
		Name:               player.Name,
		LobbyID:            player.LobbyID,
		AllBlockDice:       make(map[string]int),
		ChosenBlockDice:    make(map[string]int),
		ArmorAndInjuryDice: make(map[int]int),
		OtherDice:          make(map[int]int),
		Rolls: map[RollStatType]DiceHistogram{
			RollStatBlock:         {},
			RollStatArmorOrInjury: {},
			RollStatCasualty:      {},
			RollStatOther:         {},
		},
	}
}

// ExpectedSPP returns the SPP the counted actions should have earned. It is
// only used to validate the analysis against the log's own SPP total.
func (p *PlayerStats) ExpectedSPP() int {
	spp := p.TouchdownsScored*3 + p.CasInflicted*2 + p.PassCompletions
	if p.Mvp {
		spp += MvpSpp
	}

	return spp
}

// recordRoll accumulates a roll in the histograms of its bucket
func (p *PlayerStats) recordRoll(bucket RollStatType, values []int) {
	p.Rolls[bucket].Add(values...)

	switch bucket {
	case RollStatArmorOrInjury:
		p.ArmorAndInjuryDice[sum(values)]++
	case RollStatOther:
		for _, value := range values {
			p.OtherDice[value]++
		}
	}
}

package internal

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/beevik/etree"
	"github.com/sjogrenm/ZFLStats/internal/log"
)

// correlation holds the transient ids used to tie together sub-events that
// the log emits separately but that belong to one game action. Every id uses
// NoPlayer / NoTeam when unknown.
type correlation struct {
	activePlayer    int
	blockingPlayer  int
	defendingPlayer int
	passingPlayer   int
	catchingPlayer  int

	ballCarrier int
	// carrierSacked is set once a sack was credited against the current
	// carrier, so losing the ball afterwards is not credited twice
	carrierSacked bool

	activeGamer    int
	possessionTeam int
	// turns each team has held the ball since possession last changed
	turnsSincePossession [2]int

	lastTurnover      bool
	lastBlockOutcome  BlockOutcome
	lastCasualty      CasualtyOutcome
	lastRemovedPlayer int
}

func newCorrelation() correlation {
	return correlation{
		activePlayer:         NoPlayer,
		blockingPlayer:       NoPlayer,
		defendingPlayer:      NoPlayer,
		passingPlayer:        NoPlayer,
		catchingPlayer:       NoPlayer,
		ballCarrier:          NoPlayer,
		activeGamer:          NoTeam,
		possessionTeam:       NoTeam,
		turnsSincePossession: [2]int{1, 1},
		lastBlockOutcome:     -1,
		lastCasualty:         -1,
		lastRemovedPlayer:    NoPlayer,
	}
}

// clearAction forgets the action in flight
func (c *correlation) clearAction() {
	c.activePlayer = NoPlayer
	c.blockingPlayer = NoPlayer
	c.defendingPlayer = NoPlayer
	c.passingPlayer = NoPlayer
	c.catchingPlayer = NoPlayer
}

func (c *correlation) resetTurnCounters() {
	c.turnsSincePossession = [2]int{1, 1}
}

// analysis is the state of a single Analyze call
type analysis struct {
	replay  *Replay
	profile SchemaProfile
	stats   map[int]*PlayerStats
	teams   [2]*TeamStats
	state   correlation
	logger  *slog.Logger
	tracing bool
	err     error
}

// Analyze walks the replay steps once, in document order, and derives the
// player and team statistics. Any schema violation aborts the analysis and
// no partial statistics are returned.
func Analyze(replay *Replay) (*MatchStats, error) {
	return newAnalysis(replay).run()
}

func newAnalysis(replay *Replay) *analysis {
	logger := slog.Default().With(slog.String("file", replay.Path))

	return &analysis{
		replay:  replay,
		profile: replay.Profile,
		stats:   make(map[int]*PlayerStats),
		teams:   [2]*TeamStats{newTeamStats(replay.HomeTeam.Name), newTeamStats(replay.VisitingTeam.Name)},
		state:   newCorrelation(),
		logger:  logger,
		tracing: logger.Enabled(context.Background(), log.LevelTrace),
	}
}

func (a *analysis) run() (*MatchStats, error) {
	for _, team := range []*Team{a.replay.HomeTeam, a.replay.VisitingTeam} {
		for _, player := range team.Players {
			playerStats := a.playerStats(player.ID)
			playerStats.SppEarned = player.SppGained
			playerStats.Mvp = player.Mvp
		}
	}

	if err := a.readFans(); err != nil {
		return nil, err
	}

	for _, replayStep := range a.replay.Root.SelectElements("ReplayStep") {
		if err := a.replayStep(replayStep); err != nil {
			return nil, err
		}
	}

	if a.profile == ProfileEncoded {
		a.reconcileExperience()
	}

	return a.finish(), nil
}

func (a *analysis) trace(msg string, args ...any) {
	if a.tracing {
		a.logger.Log(context.Background(), log.LevelTrace, msg, args...)
	}
}

// fail records the first error met while applying a message
func (a *analysis) fail(err error) {
	if a.err == nil {
		a.err = err
	}
}

// playerStats returns the one statistics record of a player, creating it on
// first reference. Unknown ids fail the analysis.
func (a *analysis) playerStats(id int) *PlayerStats {
	if existing, found := a.stats[id]; found {
		return existing
	}

	player, found := a.replay.Player(id)
	if !found {
		a.fail(schemaErrorf("reference to unknown player id %d", id))

		return newPlayerStats(&Player{ID: id})
	}

	created := newPlayerStats(player)
	a.stats[id] = created

	return created
}

func (a *analysis) teamOf(id int) int {
	player, found := a.replay.Player(id)
	if !found {
		a.fail(schemaErrorf("reference to unknown player id %d", id))

		return NoTeam
	}

	return player.Team
}

func (a *analysis) readFans() error {
	home, err := optInt(a.replay.Root, "ReplayStep/EventFanFactor/HomeRoll/Dice/Die/Value")
	if err != nil {
		return err
	}

	away, err := optInt(a.replay.Root, "ReplayStep/EventFanFactor/AwayRoll/Dice/Die/Value")
	if err != nil {
		return err
	}

	a.teams[HomeTeam].Fans = max(home, 0)
	a.teams[AwayTeam].Fans = max(away, 0)

	return nil
}

func (a *analysis) replayStep(replayStep *etree.Element) error {
	for _, child := range replayStep.ChildElements() {
		event, err := DecodeEvent(child)
		if err != nil {
			return err
		}

		switch ev := event.(type) {
		case EndTurnEvent:
			a.endTurn(ev)
		case ExecuteSequenceEvent:
			for _, stepResult := range ev.Steps {
				a.stepResult(stepResult)

				if a.err != nil {
					return a.err
				}
			}
		case TouchdownEvent:
			a.touchdown(ev)
		case SpecialCardEvent:
			if ev.IsWizard() {
				a.trace("Wizard card interrupts the action", slog.String("card", ev.Card.String()))
				a.state.clearAction()
			}
		default:
			a.trace("Ignored event", slog.String("event", event.EventName()))
		}

		if a.err != nil {
			return a.err
		}
	}

	a.trackBall(replayStep.FindElement("BoardState/Ball"))

	return a.err
}

func (a *analysis) endTurn(ev EndTurnEvent) {
	s := &a.state
	s.lastTurnover = ev.Turnover

	finished := s.activeGamer
	if finished == NoTeam && (ev.NextPlayingGamer == HomeTeam || ev.NextPlayingGamer == AwayTeam) {
		finished = 1 - ev.NextPlayingGamer
	}

	if s.ballCarrier != NoPlayer && finished != NoTeam && a.teamOf(s.ballCarrier) == finished {
		s.turnsSincePossession[finished]++
	}

	a.trace("End of turn", slog.Bool("turnover", ev.Turnover), slog.Int("next", ev.NextPlayingGamer))

	s.activeGamer = ev.NextPlayingGamer
	s.clearAction()
}

func (a *analysis) touchdown(ev TouchdownEvent) {
	scorer := a.playerStats(ev.PlayerID)
	scorer.TouchdownsScored++

	team := a.teamOf(ev.PlayerID)
	if team == NoTeam {
		return
	}

	turns := a.state.turnsSincePossession[team]
	a.teams[team].TurnsPerTouchdown = append(a.teams[team].TurnsPerTouchdown, turns)
	a.trace("Touchdown", slog.Int("player", ev.PlayerID), slog.Int("turns", turns))

	a.state.resetTurnCounters()
	a.state.possessionTeam = NoTeam
}

func (a *analysis) step(step Step) {
	s := &a.state

	a.trace("Step", slog.String("name", step.Name), slog.String("type", step.Type.String()),
		slog.Int("player", step.PlayerID), slog.Int("target", step.TargetID))

	switch {
	case step.Type == StepKickoff:
		s.clearAction()
		s.ballCarrier = NoPlayer
		s.carrierSacked = false
		s.resetTurnCounters()
		s.possessionTeam = NoTeam
	case step.Type == StepActivation:
		s.clearAction()
		s.activePlayer = step.PlayerID
	case step.Type == StepBlock:
		s.blockingPlayer = step.PlayerID
		if a.profile == ProfileEncoded {
			s.defendingPlayer = step.TargetID
		}
	case step.Type == StepPass:
		s.passingPlayer = step.PlayerID
		s.catchingPlayer = step.TargetID
	case step.IsFoul():
		a.playerStats(step.PlayerID).FoulsInflicted++
		if step.TargetID != NoPlayer {
			a.playerStats(step.TargetID).FoulsSustained++
		}

		s.clearAction()
	}
}

func (a *analysis) stepResult(stepResult StepResult) {
	a.step(stepResult.Step)

	catchSucceeded := false

	for _, result := range stepResult.Results {
		if roll, ok := result.(RollResult); ok && roll.Success && roll.RollType == RollCatch {
			catchSucceeded = true
		}

		a.result(stepResult.Step, result)

		if a.err != nil {
			return
		}
	}

	s := &a.state
	if stepResult.Step.Type == StepCatch && s.passingPlayer != NoPlayer && s.catchingPlayer != NoPlayer && catchSucceeded {
		a.trace("Pass completed", slog.Int("passer", s.passingPlayer), slog.Int("catcher", s.catchingPlayer))
		a.playerStats(s.passingPlayer).PassCompletions++
		s.passingPlayer = NoPlayer
		s.catchingPlayer = NoPlayer
	}
}

//nolint:cyclop
func (a *analysis) result(step Step, result Result) {
	s := &a.state

	switch res := result.(type) {
	case SkillUsageResult:
		a.trace("Skill usage", slog.Int("skill", res.Skill), slog.Bool("used", res.Used))

		if res.Used && res.Skill == SkillStripBall && res.PlayerID != NoPlayer {
			a.creditSack(res.PlayerID)
		}
	case MoveOutcomeResult:
		mover := firstKnown(step.PlayerID, res.PlayerID)
		if res.HasRoll && res.RollType == RollDodge && !res.RollSuccess && mover != NoPlayer &&
			a.teamOf(mover) == s.activeGamer {
			a.playerStats(mover).DodgeTurnovers++
		}
	case RollResult:
		a.roll(step, res)
	case BlockDiceQuestion:
		player := firstKnown(res.PlayerID, step.PlayerID, s.blockingPlayer)
		a.trace("Picking block dice", slog.Any("dice", res.Dice))

		if player == NoPlayer {
			return
		}

		playerStats := a.playerStats(player)
		allBothDown := len(res.Dice) >= 2

		for _, die := range res.Dice {
			playerStats.AllBlockDice[die.String()]++
			allBothDown = allBothDown && die == BlockDieBothDown
		}

		if allBothDown {
			playerStats.DubskullsRolled++
		}
	case BlockRollResult:
		a.trace("Block die", slog.String("die", res.Die.String()))

		if player := firstKnown(res.PlayerID, step.PlayerID, s.blockingPlayer); player != NoPlayer {
			a.playerStats(player).ChosenBlockDice[res.Die.String()]++
		}
	case PlayerRemovalResult:
		a.removal(res)
	case BlockOutcomeResult:
		a.blockOutcome(res)
	case InjuryRollResult:
		a.trace("Injury outcome", slog.Int("player", res.PlayerID), slog.Int("outcome", res.Outcome))
	case CasualtyRollResult:
		a.trace("Casualty outcome", slog.Int("player", res.PlayerID), slog.Int("outcome", int(res.Outcome)))
		s.lastCasualty = res.Outcome
	case RaisedDeadResult:
		a.trace("Raising dead player", slog.Int("dead", s.lastRemovedPlayer), slog.Int("raised", res.RaisedPlayerID))
	case PlayerSentOffResult:
		a.trace("Sending off", slog.Int("player", res.PlayerID))
		a.playerStats(res.PlayerID).Expulsions++
	case UseActionResult:
		if res.Action == SequenceBlitz {
			if actor := firstKnown(res.PlayerID, step.PlayerID, s.activePlayer); actor != NoPlayer {
				a.playerStats(actor).Blitzes++
			}
		}
	case TouchBackQuestion:
		s.clearAction()
	default:
		a.trace("Ignored result", slog.String("result", result.ResultName()))
	}
}

// armorTarget is the player an armor roll is sustained by, which the two
// profiles attribute differently
func (a *analysis) armorTarget(step Step) int {
	if a.profile == ProfileLegacy {
		return step.PlayerID
	}

	return firstKnown(step.TargetID, step.PlayerID)
}

func (a *analysis) roll(step Step, res RollResult) {
	s := &a.state

	a.trace("Roll", slog.String("type", res.RollType.String()), slog.Int("die", res.DieType),
		slog.Any("values", res.Values), slog.Bool("success", res.Success))

	if !res.Success && res.RollType == RollPass {
		s.passingPlayer = NoPlayer
		s.catchingPlayer = NoPlayer
	}

	if res.RollType == RollArmor {
		if target := a.armorTarget(step); target != NoPlayer {
			targetStats := a.playerStats(target)
			targetStats.ArmorRollsSustained++

			if a.profile == ProfileEncoded && res.Success {
				targetStats.ArmorBreaksSustained++
			}
		}
	}

	if (res.RollType == RollBribe || res.RollType == RollArgueTheCall) && len(res.Values) > 0 {
		team := s.activeGamer
		if actor := firstKnown(res.PlayerID, step.PlayerID); actor != NoPlayer {
			team = a.teamOf(actor)
		}

		if team == HomeTeam || team == AwayTeam {
			if res.RollType == RollBribe {
				a.teams[team].BribeRolls = append(a.teams[team].BribeRolls, res.Values[0])
			} else {
				a.teams[team].ArgueTheCallRolls = append(a.teams[team].ArgueTheCallRolls, res.Values[0])
			}
		}
	}

	bucket, tracked := RollStatTypeFor(res.RollType)
	if !tracked || len(res.Values) == 0 {
		return
	}

	roller := res.PlayerID
	if roller == NoPlayer {
		if bucket == RollStatArmorOrInjury || bucket == RollStatCasualty {
			roller = a.armorTarget(step)
		} else {
			roller = step.PlayerID
		}
	}

	if roller != NoPlayer {
		a.playerStats(roller).recordRoll(bucket, res.Values)
	}
}

func (a *analysis) removal(res PlayerRemovalResult) {
	s := &a.state
	removed := res.PlayerID

	var surf bool
	if a.profile == ProfileLegacy {
		surf = res.Reason == RemovalReasonSurf
	} else {
		surf = res.Situation == SituationReserve
	}

	a.trace("Removing player", slog.Int("player", removed), slog.Int("situation", int(res.Situation)),
		slog.Int("reason", res.Reason), slog.Bool("surf", surf))

	switch {
	case surf:
		if s.blockingPlayer == NoPlayer {
			break
		}

		a.playerStats(s.blockingPlayer).SurfsInflicted++
		a.playerStats(removed).SurfsSustained++

		if s.ballCarrier != NoPlayer && s.ballCarrier == removed {
			a.creditSack(s.blockingPlayer)
		}
	case res.Situation == SituationInjured:
		if s.defendingPlayer == NoPlayer || removed != s.defendingPlayer {
			break
		}

		a.playerStats(removed).CasSustained++
		if s.blockingPlayer != NoPlayer {
			a.playerStats(s.blockingPlayer).CasInflicted++
		}

		if s.lastCasualty == CasualtyDead {
			if s.blockingPlayer != NoPlayer {
				a.playerStats(s.blockingPlayer).Kills++
			}

			a.playerStats(removed).Deaths++
		}

		s.lastCasualty = -1
	}

	s.lastRemovedPlayer = removed
}

func (a *analysis) blockOutcome(res BlockOutcomeResult) {
	s := &a.state

	if !res.Outcome.Valid() {
		a.fail(schemaErrorf("unrecognised block outcome %d (attacker %d, defender %d)",
			int(res.Outcome), res.AttackerID, res.DefenderID))

		return
	}

	a.trace("Block", slog.Int("attacker", res.AttackerID), slog.Int("defender", res.DefenderID),
		slog.String("outcome", res.Outcome.String()))

	a.playerStats(res.AttackerID).BlocksInflicted++
	a.playerStats(res.DefenderID).BlocksSustained++

	s.blockingPlayer = res.AttackerID
	s.defendingPlayer = res.DefenderID
	s.lastBlockOutcome = res.Outcome

	if s.ballCarrier != NoPlayer && res.DefenderID == s.ballCarrier && res.Outcome.KnocksDefenderDown() {
		a.creditSack(res.AttackerID)
	}
}

func (a *analysis) creditSack(player int) {
	a.trace("Sack", slog.Int("player", player), slog.Int("carrier", a.state.ballCarrier))
	a.playerStats(player).Sacks++
	a.state.carrierSacked = true
}

// trackBall follows the ball carrier from the board state at the end of a
// replay step
func (a *analysis) trackBall(ball *etree.Element) {
	if ball == nil {
		return
	}

	s := &a.state

	carrier := NoPlayer
	if text, found := childText(ball, "Carrier"); found && text != "" {
		id, err := strconv.Atoi(text)
		if err != nil {
			a.fail(schemaErrorf("ball carrier is not an integer: %q", text))

			return
		}

		carrier = id
	}

	held := carrier != NoPlayer
	if text, found := childText(ball, "IsHeld"); found {
		held = text == "1" || text == "true"
	}

	if !held || carrier == NoPlayer {
		if s.ballCarrier != NoPlayer {
			a.trace("Ball is loose", slog.Int("previous", s.ballCarrier))

			if s.activePlayer != NoPlayer && s.activePlayer != s.ballCarrier && !s.carrierSacked {
				a.creditSack(s.activePlayer)
			}

			s.ballCarrier = NoPlayer
			s.carrierSacked = false
		}

		return
	}

	if carrier == s.ballCarrier {
		return
	}

	a.trace("New ball carrier", slog.Int("carrier", carrier), slog.Int("previous", s.ballCarrier))

	if s.ballCarrier != NoPlayer && s.activePlayer != NoPlayer && s.activePlayer != carrier &&
		s.activePlayer != s.ballCarrier && !s.carrierSacked {
		a.creditSack(s.activePlayer)
	}

	s.ballCarrier = carrier
	s.carrierSacked = false

	team := a.teamOf(carrier)
	if team != s.possessionTeam {
		s.resetTurnCounters()
	}

	s.possessionTeam = team
}

// reconcileExperience overwrites the counted SPP with the document's
// experience total. A total exactly one MVP award above the counted SPP marks
// the player as MVP.
func (a *analysis) reconcileExperience() {
	for _, team := range []*Team{a.replay.HomeTeam, a.replay.VisitingTeam} {
		for _, player := range team.Players {
			if player.XpTotal < 0 {
				continue
			}

			playerStats := a.playerStats(player.ID)
			if player.XpTotal-playerStats.SppEarned == MvpSpp {
				playerStats.Mvp = true
			}

			playerStats.SppEarned = player.XpTotal
		}
	}
}

func (a *analysis) finish() *MatchStats {
	for idx, team := range []*Team{a.replay.HomeTeam, a.replay.VisitingTeam} {
		for _, id := range team.PlayerIDs() {
			playerStats := a.playerStats(id)
			a.teams[idx].Players = append(a.teams[idx].Players, playerStats)

			if expected := playerStats.ExpectedSPP(); expected != playerStats.SppEarned {
				a.logger.Warn("Unexpected SPP total", slog.String("player", playerStats.Name),
					slog.Int("id", id), slog.Int("expected", expected), slog.Int("found", playerStats.SppEarned))
			}
		}

		a.teams[idx].sumPlayerDice()
	}

	return &MatchStats{ID: a.replay.ID(), Home: a.teams[HomeTeam], Away: a.teams[AwayTeam]}
}

func firstKnown(ids ...int) int {
	for _, id := range ids {
		if id != NoPlayer {
			return id
		}
	}

	return NoPlayer
}

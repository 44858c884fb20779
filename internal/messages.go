package internal

import (
	"strings"

	"github.com/beevik/etree"
)

// Event is one typed child of a ReplayStep
type Event interface {
	EventName() string
}

// EndTurnEvent ends the turn of the team on turn
type EndTurnEvent struct {
	Turnover         bool
	NextPlayingGamer int
}

// ExecuteSequenceEvent carries the step results of one executed sequence
type ExecuteSequenceEvent struct {
	Steps []StepResult
}

// TouchdownEvent credits a touchdown to a player
type TouchdownEvent struct {
	PlayerID int
}

// SpecialCardEvent is an inducement card being played
type SpecialCardEvent struct {
	Card StepType
}

// IsWizard reports whether the card is one of the wizard spells, which
// interrupt whatever action is in flight
func (e SpecialCardEvent) IsWizard() bool {
	return e.Card == StepFireball || e.Card == StepZap
}

// UnknownEvent is any event the analyzer does not use
type UnknownEvent struct {
	Name string
}

func (EndTurnEvent) EventName() string         { return "EventEndTurn" }
func (ExecuteSequenceEvent) EventName() string { return "EventExecuteSequence" }
func (TouchdownEvent) EventName() string       { return "EventTouchdown" }
func (SpecialCardEvent) EventName() string     { return "EventUseSpecialCard" }
func (e UnknownEvent) EventName() string       { return e.Name }

// StepResult is one Step and the result messages it produced
type StepResult struct {
	Step    Step
	Results []Result
}

// Step is one atomic game action
type Step struct {
	Name     string
	Type     StepType
	PlayerID int
	TargetID int
}

// IsFoul reports whether the step is a foul, including chainsaw fouls
func (s Step) IsFoul() bool {
	return s.Type == StepFoul || (s.Type == StepChainsaw && strings.HasSuffix(s.Name, "Foul"))
}

// Result is one typed result message of a StepResult
type Result interface {
	ResultName() string
}

type SkillUsageResult struct {
	PlayerID int
	Skill    int
	Used     bool
}

type MoveOutcomeResult struct {
	PlayerID int
	// HasRoll is false when the move needed no roll
	HasRoll     bool
	RollType    RollType
	RollSuccess bool
}

type RollResult struct {
	PlayerID int
	RollType RollType
	DieType  int
	Values   []int
	Success  bool
}

type BlockDiceQuestion struct {
	PlayerID int
	Dice     []BlockDie
}

type BlockRollResult struct {
	PlayerID int
	Die      BlockDie
}

type PlayerRemovalResult struct {
	PlayerID  int
	Situation PlayerSituation
	Status    int
	Reason    int
}

type BlockOutcomeResult struct {
	AttackerID int
	DefenderID int
	Outcome    BlockOutcome
}

type InjuryRollResult struct {
	PlayerID int
	Outcome  int
}

type CasualtyRollResult struct {
	PlayerID int
	Outcome  CasualtyOutcome
}

type RaisedDeadResult struct {
	RaisedPlayerID int
}

type PlayerSentOffResult struct {
	PlayerID int
}

type UseActionResult struct {
	PlayerID int
	Action   SequenceType
}

type TouchBackQuestion struct{}

// UnknownResult is any result message the analyzer does not use
type UnknownResult struct {
	Name string
}

func (SkillUsageResult) ResultName() string    { return "ResultSkillUsage" }
func (MoveOutcomeResult) ResultName() string   { return "ResultMoveOutcome" }
func (RollResult) ResultName() string          { return "ResultRoll" }
func (BlockDiceQuestion) ResultName() string   { return "QuestionBlockDice" }
func (BlockRollResult) ResultName() string     { return "ResultBlockRoll" }
func (PlayerRemovalResult) ResultName() string { return "ResultPlayerRemoval" }
func (BlockOutcomeResult) ResultName() string  { return "ResultBlockOutcome" }
func (InjuryRollResult) ResultName() string    { return "ResultInjuryRoll" }
func (CasualtyRollResult) ResultName() string  { return "ResultCasualtyRoll" }
func (RaisedDeadResult) ResultName() string    { return "ResultRaisedDead" }
func (PlayerSentOffResult) ResultName() string { return "ResultPlayerSentOff" }
func (UseActionResult) ResultName() string     { return "ResultUseAction" }
func (TouchBackQuestion) ResultName() string   { return "QuestionTouchBack" }
func (r UnknownResult) ResultName() string     { return r.Name }

type resultDecoder func(payload *etree.Element) (Result, error)

var resultDecoders = map[string]resultDecoder{
	"ResultSkillUsage":    decodeSkillUsage,
	"ResultMoveOutcome":   decodeMoveOutcome,
	"ResultRoll":          decodeRoll,
	"QuestionBlockDice":   decodeBlockDice,
	"ResultBlockRoll":     decodeBlockRoll,
	"ResultPlayerRemoval": decodePlayerRemoval,
	"ResultBlockOutcome":  decodeBlockOutcome,
	"ResultInjuryRoll":    decodeInjuryRoll,
	"ResultCasualtyRoll":  decodeCasualtyRoll,
	"ResultRaisedDead":    decodeRaisedDead,
	"ResultPlayerSentOff": decodePlayerSentOff,
	"ResultUseAction":     decodeUseAction,
	"QuestionTouchBack": func(*etree.Element) (Result, error) {
		return TouchBackQuestion{}, nil
	},
}

// DecodeEvent turns a ReplayStep child into its typed event
func DecodeEvent(el *etree.Element) (Event, error) {
	switch el.Tag {
	case "EventEndTurn":
		reason, _ := childText(el, "Reason")

		next, err := optInt(el, "NextPlayingGamer")
		if err != nil {
			return nil, err
		}

		if next == NoTeam {
			next = HomeTeam
		}

		return EndTurnEvent{Turnover: reason == EndTurnReasonTurnover, NextPlayingGamer: next}, nil
	case "EventExecuteSequence":
		return decodeSequence(el)
	case "EventTouchdown":
		playerID, err := reqInt(el, "PlayerId")
		if err != nil {
			return nil, err
		}

		return TouchdownEvent{PlayerID: playerID}, nil
	case "EventUseSpecialCard":
		card, err := optInt(el, "CardType")
		if err != nil {
			return nil, err
		}

		return SpecialCardEvent{Card: StepType(card)}, nil
	default:
		return UnknownEvent{Name: el.Tag}, nil
	}
}

func decodeSequence(el *etree.Element) (ExecuteSequenceEvent, error) {
	var event ExecuteSequenceEvent

	for _, stepResult := range el.FindElements("Sequence/StepResult") {
		step, err := decodeStep(stepResult.SelectElement("Step"))
		if err != nil {
			return event, err
		}

		decoded := StepResult{Step: step}

		for _, message := range stepResult.FindElements("Results/StringMessage") {
			result, errResult := decodeResult(message)
			if errResult != nil {
				return event, errResult
			}

			decoded.Results = append(decoded.Results, result)
		}

		event.Steps = append(event.Steps, decoded)
	}

	return event, nil
}

// payload returns the MessageData child named by the message's Name field
func payload(message *etree.Element) (string, *etree.Element, error) {
	if message == nil {
		return "", nil, schemaErrorf("step result without a Step")
	}

	name, found := childText(message, "Name")
	if !found || name == "" {
		return "", nil, schemaErrorf("%s without a Name", message.Tag)
	}

	return name, message.FindElement("MessageData/" + name), nil
}

func decodeStep(el *etree.Element) (Step, error) {
	name, data, err := payload(el)
	if err != nil {
		return Step{}, err
	}

	if data == nil {
		return Step{}, schemaErrorf("step %s has no MessageData", name)
	}

	stepType, err := reqInt(data, "StepType")
	if err != nil {
		return Step{}, err
	}

	step := Step{Name: name, Type: StepType(stepType)}

	playerField := "PlayerId"
	if step.Type == StepThrowTeamMate {
		playerField = "ThrowerId"
	}

	if step.PlayerID, err = optInt(data, playerField); err != nil {
		return step, err
	}

	if step.TargetID, err = optInt(data, "TargetId"); err != nil {
		return step, err
	}

	return step, nil
}

func decodeResult(message *etree.Element) (Result, error) {
	name, data, err := payload(message)
	if err != nil {
		return nil, err
	}

	decoder, known := resultDecoders[name]
	if !known {
		return UnknownResult{Name: name}, nil
	}

	if data == nil {
		return nil, schemaErrorf("result %s has no MessageData", name)
	}

	return decoder(data)
}

func decodeSkillUsage(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	skill, err := reqInt(el, "Skill")
	if err != nil {
		return nil, err
	}

	return SkillUsageResult{PlayerID: playerID, Skill: skill, Used: boolField(el, "Used")}, nil
}

func decodeMoveOutcome(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	result := MoveOutcomeResult{PlayerID: playerID}

	summary := el.FindElement("Rolls/RollSummary")
	if summary == nil {
		return result, nil
	}

	rollType, err := reqInt(summary, "RollType")
	if err != nil {
		return nil, err
	}

	outcome, _ := childText(summary, "Outcome")
	result.HasRoll = true
	result.RollType = RollType(rollType)
	result.RollSuccess = outcome != "0"

	return result, nil
}

func decodeRoll(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	rollType, err := reqInt(el, "RollType")
	if err != nil {
		return nil, err
	}

	values, err := dieValues(el, "Dice/Die")
	if err != nil {
		return nil, err
	}

	dieType := NoPlayer
	if first := el.FindElement("Dice/Die"); first != nil {
		if dieType, err = optInt(first, "DieType"); err != nil {
			return nil, err
		}
	}

	outcome, _ := childText(el, "Outcome")

	return RollResult{
		PlayerID: playerID,
		RollType: RollType(rollType),
		DieType:  dieType,
		Values:   values,
		Success:  outcome != "0",
	}, nil
}

func decodeBlockDice(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	values, err := dieValues(el, "Dice/Die")
	if err != nil {
		return nil, err
	}

	dice := make([]BlockDie, len(values))
	for idx, value := range values {
		dice[idx] = BlockDie(value)
	}

	return BlockDiceQuestion{PlayerID: playerID, Dice: dice}, nil
}

func decodeBlockRoll(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	value, err := reqInt(el, "Die/Value")
	if err != nil {
		return nil, err
	}

	return BlockRollResult{PlayerID: playerID, Die: BlockDie(value)}, nil
}

func decodePlayerRemoval(el *etree.Element) (Result, error) {
	var (
		result PlayerRemovalResult
		err    error
	)

	if result.PlayerID, err = reqInt(el, "PlayerId"); err != nil {
		return nil, err
	}

	situation, err := optInt(el, "Situation")
	if err != nil {
		return nil, err
	}

	result.Situation = PlayerSituation(situation)

	if result.Status, err = optInt(el, "Status"); err != nil {
		return nil, err
	}

	if result.Reason, err = optInt(el, "Reason"); err != nil {
		return nil, err
	}

	return result, nil
}

func decodeBlockOutcome(el *etree.Element) (Result, error) {
	attackerID, err := reqInt(el, "AttackerId")
	if err != nil {
		return nil, err
	}

	defenderID, err := reqInt(el, "DefenderId")
	if err != nil {
		return nil, err
	}

	outcome, err := reqInt(el, "Outcome")
	if err != nil {
		return nil, err
	}

	return BlockOutcomeResult{AttackerID: attackerID, DefenderID: defenderID, Outcome: BlockOutcome(outcome)}, nil
}

func decodeInjuryRoll(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	outcome, err := reqInt(el, "Outcome")
	if err != nil {
		return nil, err
	}

	return InjuryRollResult{PlayerID: playerID, Outcome: outcome}, nil
}

func decodeCasualtyRoll(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	outcome, err := reqInt(el, "Outcome")
	if err != nil {
		return nil, err
	}

	return CasualtyRollResult{PlayerID: playerID, Outcome: CasualtyOutcome(outcome)}, nil
}

func decodeRaisedDead(el *etree.Element) (Result, error) {
	raisedID, err := reqInt(el, "RaisedPlayerId")
	if err != nil {
		return nil, err
	}

	return RaisedDeadResult{RaisedPlayerID: raisedID}, nil
}

func decodePlayerSentOff(el *etree.Element) (Result, error) {
	playerID, err := reqInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	return PlayerSentOffResult{PlayerID: playerID}, nil
}

func decodeUseAction(el *etree.Element) (Result, error) {
	playerID, err := optInt(el, "PlayerId")
	if err != nil {
		return nil, err
	}

	action, err := reqInt(el, "Action")
	if err != nil {
		return nil, err
	}

	return UseActionResult{PlayerID: playerID, Action: SequenceType(action)}, nil
}

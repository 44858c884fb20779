package internal

import "strconv"

const (
	// Version denotes the current application version (following semantic
	// versioning)
	Version string = "0.3.0"

	// ReplayExtension denotes the file extension used by replay files
	ReplayExtension string = ".bbr"

	// NoPlayer is the sentinel used for any player id that is not currently
	// known or not present in a message
	NoPlayer int = -1

	// NoTeam is the sentinel used for a team index that is not currently known
	NoTeam int = -1

	// HomeTeam is the team index of the home team
	HomeTeam int = 0

	// AwayTeam is the team index of the visiting team
	AwayTeam int = 1

	// EndTurnReasonTurnover denotes the EventEndTurn reason code of a turn
	// ended by a failed action
	EndTurnReasonTurnover string = "2"

	// RemovalReasonSurf denotes the legacy ResultPlayerRemoval reason code of
	// a player pushed off the pitch
	RemovalReasonSurf int = 1

	// SkillStripBall denotes the Strip Ball skill id in ResultSkillUsage
	SkillStripBall int = 1

	// MvpSpp is the number of SPP awarded to the MVP of a match
	MvpSpp int = 4
)

// SchemaProfile identifies which encoding and field conventions a replay
// log uses. It is detected once per file by the codec.
type SchemaProfile int

const (
	// ProfileLegacy is the oldest schema: plain markup, surfs flagged by the
	// removal Reason, armor rolls attributed to the acting player
	ProfileLegacy SchemaProfile = iota
	// ProfileEncoded is the current schema: base64 text tags, double encoded
	// MessageData, surfs flagged by the removal Situation, armor rolls
	// attributed to the step target
	ProfileEncoded
)

func (p SchemaProfile) String() string {
	switch p {
	case ProfileLegacy:
		return "legacy"
	case ProfileEncoded:
		return "encoded"
	default:
		return "unknown(" + strconv.Itoa(int(p)) + ")"
	}
}

// StepType is the kind of a Step carried by a StepResult
type StepType int

const (
	StepActivation    StepType = 0
	StepMove          StepType = 1
	StepDamage        StepType = 2
	StepBall          StepType = 3
	StepCatch         StepType = 4
	StepHandoff       StepType = 5
	StepBlock         StepType = 6
	StepStandUp       StepType = 7
	StepFoul          StepType = 8
	StepReferee       StepType = 9
	StepKickoff       StepType = 10
	StepPass          StepType = 11
	StepJumpOver      StepType = 12
	StepThrowTeamMate StepType = 13
	StepLand          StepType = 14
	StepBouncePlayer  StepType = 15
	StepStab          StepType = 16
	StepVomit         StepType = 17
	StepDivingCatch   StepType = 18
	StepFireball      StepType = 19
	StepZap           StepType = 20
	StepChainsaw      StepType = 24
	StepThrowARock    StepType = 28
	StepInterception  StepType = 29
)

var stepTypeNames = map[StepType]string{
	StepActivation:    "Activation",
	StepMove:          "Move",
	StepDamage:        "Damage",
	StepBall:          "Ball",
	StepCatch:         "Catch",
	StepHandoff:       "Handoff",
	StepBlock:         "Block",
	StepStandUp:       "StandUp",
	StepFoul:          "Foul",
	StepReferee:       "Referee",
	StepKickoff:       "Kickoff",
	StepPass:          "Pass",
	StepJumpOver:      "JumpOver",
	StepThrowTeamMate: "ThrowTeamMate",
	StepLand:          "Land",
	StepBouncePlayer:  "BouncePlayer",
	StepStab:          "Stab",
	StepVomit:         "Vomit",
	StepDivingCatch:   "DivingCatch",
	StepFireball:      "Fireball",
	StepZap:           "Zap",
	StepChainsaw:      "Chainsaw",
	StepThrowARock:    "ThrowARock",
	StepInterception:  "Interception",
}

func (s StepType) String() string {
	if name, ok := stepTypeNames[s]; ok {
		return name
	}

	return "StepType(" + strconv.Itoa(int(s)) + ")"
}

// RollType is the kind of dice roll reported by ResultRoll and RollSummary
type RollType int

const (
	RollNoRoll        RollType = 0
	RollGFI           RollType = 1
	RollDodge         RollType = 2
	RollBlock         RollType = 3
	RollPickUp        RollType = 4
	RollPass          RollType = 5
	RollInterception  RollType = 6
	RollCatch         RollType = 7
	RollScatter       RollType = 8
	RollThrowIn       RollType = 9
	RollArmor         RollType = 10
	RollInjury        RollType = 11
	RollCasualty      RollType = 12
	RollWakeUp        RollType = 13
	RollScatterPlayer RollType = 17
	RollBribe         RollType = 21
	RollBounce        RollType = 25
	RollDeviate       RollType = 26
	RollTouchBack     RollType = 27
	RollArgueTheCall  RollType = 30
)

var rollTypeNames = map[RollType]string{
	RollNoRoll:        "NoRoll",
	RollGFI:           "GFI",
	RollDodge:         "Dodge",
	RollBlock:         "Block",
	RollPickUp:        "PickUp",
	RollPass:          "Pass",
	RollInterception:  "Interception",
	RollCatch:         "Catch",
	RollScatter:       "Scatter",
	RollThrowIn:       "ThrowIn",
	RollArmor:         "Armor",
	RollInjury:        "Injury",
	RollCasualty:      "Casualty",
	RollWakeUp:        "WakeUp",
	RollScatterPlayer: "ScatterPlayer",
	RollBribe:         "Bribe",
	RollBounce:        "Bounce",
	RollDeviate:       "Deviate",
	RollTouchBack:     "TouchBack",
	RollArgueTheCall:  "ArgueTheCall",
}

func (r RollType) String() string {
	if name, ok := rollTypeNames[r]; ok {
		return name
	}

	return "RollType(" + strconv.Itoa(int(r)) + ")"
}

// RollStatType is the statistical bucket a roll is accumulated into
type RollStatType int

const (
	// RollStatBlock holds block dice (attacker down ... defender down)
	RollStatBlock RollStatType = iota
	// RollStatArmorOrInjury holds armor and injury rolls (lower is better)
	RollStatArmorOrInjury
	// RollStatCasualty holds casualty rolls (lower is better)
	RollStatCasualty
	// RollStatOther holds everything else, eg dodge, pass, catch (higher is
	// better)
	RollStatOther
)

var rollStatTypeNames = [...]string{"Block", "ArmorOrInjury", "Casualty", "Other"}

func (r RollStatType) String() string {
	if r < 0 || int(r) >= len(rollStatTypeNames) {
		return "RollStatType(" + strconv.Itoa(int(r)) + ")"
	}

	return rollStatTypeNames[r]
}

// MarshalText lets RollStatType be used as a JSON object key
func (r RollStatType) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// RollStatTypeFor returns the statistical bucket of a roll type. Roll types
// that are not tracked (scatters, bounces, kick deviation...) return false.
func RollStatTypeFor(roll RollType) (RollStatType, bool) {
	switch roll {
	case RollBlock:
		return RollStatBlock, true
	case RollArmor, RollInjury:
		return RollStatArmorOrInjury, true
	case RollCasualty:
		return RollStatCasualty, true
	case RollGFI, RollDodge, RollPickUp, RollPass, RollInterception, RollCatch, RollWakeUp, RollBribe, RollArgueTheCall:
		return RollStatOther, true
	default:
		return 0, false
	}
}

// BlockDie is a face of a block die
type BlockDie int

const (
	BlockDieAttackerDown     BlockDie = 0
	BlockDieBothDown         BlockDie = 1
	BlockDiePush             BlockDie = 2
	BlockDieDefenderStumbles BlockDie = 3
	BlockDieDefenderDown     BlockDie = 4
)

var blockDieNames = [...]string{"AttackerDown", "BothDown", "Push", "DefenderStumbles", "DefenderDown"}

func (b BlockDie) String() string {
	if b < 0 || int(b) >= len(blockDieNames) {
		return "BlockDie(" + strconv.Itoa(int(b)) + ")"
	}

	return blockDieNames[b]
}

// BlockOutcome is the resolved outcome of a block, reported by
// ResultBlockOutcome
type BlockOutcome int

const (
	BlockAttackerDown       BlockOutcome = 0
	BlockBothDown           BlockOutcome = 1
	BlockBothWrestleDown    BlockOutcome = 2
	BlockBothStanding       BlockOutcome = 3
	BlockPushed             BlockOutcome = 4
	BlockDefenderDown       BlockOutcome = 5
	BlockDefenderPushedDown BlockOutcome = 6
)

var blockOutcomeNames = [...]string{
	"AttackerDown", "BothDown", "BothWrestleDown", "BothStanding", "Pushed", "DefenderDown", "DefenderPushedDown",
}

// Valid reports whether the outcome is one of the known enum values
func (b BlockOutcome) Valid() bool {
	return b >= 0 && int(b) < len(blockOutcomeNames)
}

func (b BlockOutcome) String() string {
	if !b.Valid() {
		return "BlockOutcome(" + strconv.Itoa(int(b)) + ")"
	}

	return blockOutcomeNames[b]
}

// KnocksDefenderDown reports whether the outcome leaves the defender on the
// ground
func (b BlockOutcome) KnocksDefenderDown() bool {
	switch b {
	case BlockBothDown, BlockBothWrestleDown, BlockDefenderDown, BlockDefenderPushedDown:
		return true
	default:
		return false
	}
}

// CasualtyOutcome is the result of a casualty roll
type CasualtyOutcome int

const (
	CasualtyNone               CasualtyOutcome = 0
	CasualtyBadlyHurt          CasualtyOutcome = 1
	CasualtySeriouslyHurt      CasualtyOutcome = 2
	CasualtySeriousInjury      CasualtyOutcome = 3
	CasualtyLastingInjury      CasualtyOutcome = 4
	CasualtySmashedKnee        CasualtyOutcome = 5
	CasualtyHeadInjury         CasualtyOutcome = 6
	CasualtyBrokenArm          CasualtyOutcome = 7
	CasualtyNeckInjury         CasualtyOutcome = 8
	CasualtyDislocatedShoulder CasualtyOutcome = 9
	CasualtyDead               CasualtyOutcome = 10
)

// PlayerSituation is where a player ends up after a ResultPlayerRemoval
type PlayerSituation int

const (
	SituationActive  PlayerSituation = 0
	SituationReserve PlayerSituation = 1
	SituationKo      PlayerSituation = 2
	SituationInjured PlayerSituation = 3
	SituationSentOff PlayerSituation = 4
)

// SequenceType is the action a player declares on activation
type SequenceType int

const (
	SequenceNoActivation    SequenceType = 0
	SequenceMove            SequenceType = 1
	SequenceBlock           SequenceType = 2
	SequenceBlitz           SequenceType = 3
	SequencePass            SequenceType = 4
	SequenceHandoff         SequenceType = 5
	SequenceFoul            SequenceType = 6
	SequenceThrowTeamMate   SequenceType = 7
	SequenceOnTheBall       SequenceType = 8
	SequenceDumpOff         SequenceType = 9
	SequenceTentacles       SequenceType = 10
	SequenceShadowing       SequenceType = 11
	SequenceTreacherousTrap SequenceType = 12
	SequenceKickOff         SequenceType = 13
)

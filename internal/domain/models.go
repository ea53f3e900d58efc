package domain

import (
	"time"
)

type Fighter struct {
	ID           int64
	WisdomPoint  int
	StrengthFrom int
	StrengthTo   int
	AttackFrom   int
	AttackTo     int
	DefenceFrom  int
	DefenceTo    int
	OmegaFrom    int
	OmegaTo      int
	ChampionType *string
	Mum          *int64
	LastUpdated  time.Time
}

type FighterTrait struct {
	FighterID int64
	TraitType string
	Value     string
}

// FighterParent is one directed lineage edge. A fighter carries either zero
// or exactly two of these.
type FighterParent struct {
	FighterID int64
	ParentID  int64
}

type Tournament struct {
	ID            int64
	ServiceID     int
	Currency      string
	FeePercentage int
	BuyIn         string // decimal string, arbitrary precision
	TopUp         string // decimal string, arbitrary precision
	Key           string
	Legacy        *bool
	Level         string
	Modified      time.Time
	Name          *string
	Restrictions  string // raw JSON
	SoloOptionals *string
	StartTime     time.Time
	Status        string // "completed" or "cancelled"
	MetaUpdatedAt time.Time
}

type TournamentParticipant struct {
	TournamentID int64
	ServiceID    int
	FighterID    int64
	Account      *string // absent for the solo mode
}

type ChampionStance struct {
	TournamentID int64
	ServiceID    int
	FighterID    int64
	Stance       int64
}

type Attack struct {
	TournamentID  int64
	ServiceID     int
	FighterID     int64
	Round         int64
	Order         int64
	SpecialAttack bool
	SpecialDefend bool
	MissedHit     bool
	Damage        int64
}

// FailedPage is a tournament listing page whose fetch or persistence failed
// and that should be retried on the next scan.
type FailedPage struct {
	PageSize  int
	PageIndex int
}

// Checkpoint marks the last fully processed tournament listing page.
type Checkpoint struct {
	PageSize  int
	PageIndex int
}

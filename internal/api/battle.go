package api

import (
	"encoding/json"
	"fmt"
)

// BattleDetail is the hit-by-hit record of one tournament. The wire
// document nests it under a "match" key.
type BattleDetail struct {
	Champions []BattleChampion
	Battles   []Battle
}

func (d *BattleDetail) UnmarshalJSON(data []byte) error {
	var helper struct {
		Match struct {
			Champions []BattleChampion `json:"champions"`
			Battles   []Battle         `json:"battles"`
		} `json:"match"`
	}
	if err := json.Unmarshal(data, &helper); err != nil {
		return err
	}

	d.Champions = helper.Match.Champions
	d.Battles = helper.Match.Battles
	return nil
}

type BattleChampion struct {
	TokenID     int64 `json:"token_id"`
	FirstWins   int64 `json:"first_wins"`
	SecondWins  int64 `json:"second_wins"`
	TotalFought int64 `json:"total_fought"`
	Stance      int64 `json:"stance"`
}

// Battle is one round. Each entry in the battle list wraps the round
// under an "engagement" key.
type Battle struct {
	Round     int64
	Champions []ChampionAttacks
}

func (b *Battle) UnmarshalJSON(data []byte) error {
	var helper struct {
		Engagement struct {
			Round     int64             `json:"round"`
			Champions []ChampionAttacks `json:"champions"`
		} `json:"engagement"`
	}
	if err := json.Unmarshal(data, &helper); err != nil {
		return err
	}

	b.Round = helper.Engagement.Round
	b.Champions = helper.Engagement.Champions
	return nil
}

// ChampionAttacks lists one champion's hits within a round. The champion
// id arrives as a string or a number depending on the mode.
type ChampionAttacks struct {
	ID     int64
	Attack []Attack
}

func (c *ChampionAttacks) UnmarshalJSON(data []byte) error {
	var helper struct {
		ID     json.RawMessage `json:"id"`
		Attack []Attack        `json:"attack"`
	}
	if err := json.Unmarshal(data, &helper); err != nil {
		return err
	}

	raw := helper.ID
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		raw = json.RawMessage(s)
	}

	var id int64
	if err := json.Unmarshal(raw, &id); err != nil {
		return fmt.Errorf("champion id %s is not numeric", helper.ID)
	}

	c.ID = id
	c.Attack = helper.Attack
	return nil
}

type Attack struct {
	SpecialAttack bool  `json:"special_attack"`
	SpecialDefend bool  `json:"special_defend"`
	MissedHit     bool  `json:"missed_hit"`
	Damage        int64 `json:"damage"`
	Order         int64 `json:"order"`
}

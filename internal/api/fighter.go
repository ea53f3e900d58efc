package api

import (
	"encoding/json"
	"fmt"
)

type FighterResponse struct {
	Attributes FighterAttributes `json:"attributes"`
	Statistic  FighterStatistics `json:"statistic"`
}

type FighterAttributes struct {
	ID           int64        `json:"id"`
	ChampionType *string      `json:"champion_type"`
	Attributes   []TraitEntry `json:"attributes"`
	LineageNode  *LineageNode `json:"lineage_node"`
}

// TraitEntry is one NFT metadata attribute. Values arrive as strings or
// numbers; both normalize to a string.
type TraitEntry struct {
	TraitType string
	Value     string
}

func (t *TraitEntry) UnmarshalJSON(data []byte) error {
	var helper struct {
		TraitType string          `json:"trait_type"`
		Value     json.RawMessage `json:"value"`
	}
	if err := json.Unmarshal(data, &helper); err != nil {
		return err
	}

	t.TraitType = helper.TraitType

	var s string
	if err := json.Unmarshal(helper.Value, &s); err == nil {
		t.Value = s
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(helper.Value, &n); err != nil {
		return fmt.Errorf("trait %q: value is neither string nor number", helper.TraitType)
	}
	t.Value = n.String()
	return nil
}

// LineageNode carries exactly two parent ids for summoned fighters.
type LineageNode struct {
	Parents     [2]int64 `json:"parents"`
	OriginalMum int64    `json:"original_mum"`
}

type FighterStatistics struct {
	Wisdom       Wisdom `json:"wisdom"`
	Elo          *int64 `json:"elo"`
	OwnerAddress string `json:"owner_address"`
}

type Wisdom struct {
	Point    int64 `json:"point"`
	Strength Stat  `json:"strength"`
	Attack   Stat  `json:"attack"`
	Defence  Stat  `json:"defence"`
	Omega    Stat  `json:"omega"`
}

// Stat is a ranged statistic. The wire shape is
// {"current_range": n, "range": [from, to]}.
type Stat struct {
	CurrentRange int64
	From         int64
	To           int64
}

func (s *Stat) UnmarshalJSON(data []byte) error {
	var helper struct {
		CurrentRange int64   `json:"current_range"`
		Range        []int64 `json:"range"`
	}
	if err := json.Unmarshal(data, &helper); err != nil {
		return err
	}
	if len(helper.Range) != 2 {
		return fmt.Errorf("stat range has %d bounds, want 2", len(helper.Range))
	}

	s.CurrentRange = helper.CurrentRange
	s.From = helper.Range[0]
	s.To = helper.Range[1]
	return nil
}

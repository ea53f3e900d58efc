package api

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// Service ids discriminate the tournament payload variants.
const (
	ServiceOneVOne   = 0
	ServiceBlooding  = 1
	ServiceBloodbath = 2
	ServiceBloodElo  = 3
)

// TournamentPage is one page of the tournament listing. Items stay raw so
// that a single undecodable tournament cannot fail the page.
type TournamentPage struct {
	Pagination
	Items []json.RawMessage `json:"items"`
}

type Pagination struct {
	TotalCount  int64 `json:"total_count"`
	TotalPages  int64 `json:"total_pages"`
	HasNextPage bool  `json:"has_next_page"`
	CurrentPage int64 `json:"current_page"`
	ItemCount   int64 `json:"item_count"`
}

type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw {
	case "COMPLETE_SUCCEED":
		*s = StatusCompleted
	case "CANCEL_SUCCEED":
		*s = StatusCancelled
	default:
		return fmt.Errorf("%q is not a valid tournament status", raw)
	}
	return nil
}

type Level struct {
	NavKey string `json:"nav_key"`
}

type Configs struct {
	Currency      string `json:"currency"`
	FeePercentage int    `json:"fee_percentage"`
	BuyIn         BigDec `json:"buy_in"`
	TopUp         BigDec `json:"top_up"`
}

// BigDec is an arbitrary-precision unsigned integer sent as a decimal string.
type BigDec struct {
	*big.Int
}

func (b *BigDec) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	n, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return fmt.Errorf("%q is not a decimal integer", raw)
	}
	b.Int = n
	return nil
}

type Warrior struct {
	Account string `json:"account"`
	ID      int64  `json:"id"`
}

type SoloWarrior struct {
	ID int64 `json:"id"`
}

// Tournament is one decoded listing item. ServiceID selects the variant;
// fields not carried by the resolved variant are nil.
type Tournament struct {
	ServiceID    int
	TournamentID int64
	Configs      Configs
	Key          string
	Level        Level
	Modified     time.Time
	Restrictions json.RawMessage
	StartTime    time.Time
	Status       Status

	// PvP variants only.
	Name           *string
	Legacy         *bool
	TournamentType *string
	Class          json.RawMessage
	Warriors       []Warrior

	// Solo variant only.
	SoloOptionals json.RawMessage
	SoloWarriors  []SoloWarrior
}

const startTimeFormat = "2006-01-02 15:04"

var addressPattern = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)

// kitchenSink has every field of every variant; non-common fields are
// optional and validated into the required set once the service id is known.
type kitchenSink struct {
	ServiceID      int             `json:"service_id"`
	TournamentID   int64           `json:"tournament_id"`
	Class          json.RawMessage `json:"class"`
	Configs        Configs         `json:"configs"`
	Key            string          `json:"key"`
	Legacy         *bool           `json:"legacy"`
	Level          Level           `json:"level"`
	Modified       time.Time       `json:"modified"`
	Name           *string         `json:"name"`
	Restrictions   json.RawMessage `json:"restrictions"`
	StartTime      string          `json:"start_time"`
	Status         Status          `json:"status"`
	TournamentType *string         `json:"tournament_type"`
	Warriors       []Warrior       `json:"warriors"`
	SoloWarriors   []SoloWarrior   `json:"solo_warriors"`
	SoloOptionals  json.RawMessage `json:"solo_optionals"`
}

// DecodeTournament decodes one raw listing item, dispatching on its
// service id.
func DecodeTournament(raw json.RawMessage) (*Tournament, error) {
	var sink kitchenSink
	if err := json.Unmarshal(raw, &sink); err != nil {
		return nil, err
	}

	startTime, err := time.Parse(startTimeFormat, sink.StartTime)
	if err != nil {
		return nil, fmt.Errorf("bad start_time: %w", err)
	}

	if !addressPattern.MatchString(sink.Configs.Currency) {
		return nil, fmt.Errorf("%q is not an address", sink.Configs.Currency)
	}

	t := &Tournament{
		ServiceID:    sink.ServiceID,
		TournamentID: sink.TournamentID,
		Configs:      sink.Configs,
		Key:          sink.Key,
		Level:        sink.Level,
		Modified:     sink.Modified,
		Restrictions: sink.Restrictions,
		StartTime:    startTime,
		Status:       sink.Status,
	}

	switch sink.ServiceID {
	case ServiceOneVOne:
		if sink.SoloOptionals == nil {
			return nil, fmt.Errorf("expected solo_optionals")
		}
		t.SoloOptionals = sink.SoloOptionals
		t.SoloWarriors = sink.SoloWarriors
	case ServiceBlooding, ServiceBloodbath, ServiceBloodElo:
		if sink.Class == nil {
			return nil, fmt.Errorf("expected class")
		}
		if sink.Name == nil {
			return nil, fmt.Errorf("expected name")
		}
		if sink.TournamentType == nil {
			return nil, fmt.Errorf("expected tournament_type")
		}
		for _, w := range sink.Warriors {
			if !addressPattern.MatchString(w.Account) {
				return nil, fmt.Errorf("warrior %d: %q is not an address", w.ID, w.Account)
			}
		}
		t.Class = sink.Class
		t.Name = sink.Name
		t.TournamentType = sink.TournamentType
		t.Warriors = sink.Warriors
		legacy := false
		if sink.Legacy != nil {
			legacy = *sink.Legacy
		}
		t.Legacy = &legacy
	default:
		return nil, fmt.Errorf("%d is not a valid service id", sink.ServiceID)
	}

	return t, nil
}

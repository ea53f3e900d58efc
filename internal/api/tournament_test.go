package api

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const soloItem = `{
	"service_id": 0,
	"tournament_id": 101,
	"configs": {
		"currency": "0x2791bca1f2de4661ed88a30c99a7a9449aa84174",
		"fee_percentage": 5,
		"buy_in": "25000000000000000000",
		"top_up": "0"
	},
	"key": "1v1-101",
	"level": {"nav_key": "rookie"},
	"modified": "2023-01-14T10:30:00Z",
	"restrictions": {"min_level": 1},
	"solo_optionals": {"best_of": 3},
	"start_time": "2023-01-14 11:00",
	"status": "COMPLETE_SUCCEED",
	"warriors": [],
	"solo_warriors": [{"id": 17}, {"id": 44}]
}`

const bloodingItem = `{
	"service_id": 1,
	"tournament_id": 202,
	"class": {"tier": "silver"},
	"configs": {
		"currency": "0x2791bca1f2de4661ed88a30c99a7a9449aa84174",
		"fee_percentage": 10,
		"buy_in": "100000000000000000000",
		"top_up": "5000000000000000000"
	},
	"key": "blooding-202",
	"legacy": false,
	"level": {"nav_key": "veteran"},
	"modified": "2023-01-14T12:00:00Z",
	"name": "Friday Blooding",
	"restrictions": {},
	"start_time": "2023-01-14 13:30",
	"status": "COMPLETE_SUCCEED",
	"tournament_type": "scheduled",
	"warriors": [
		{"account": "0x1111111111111111111111111111111111111111", "id": 5},
		{"account": "0x2222222222222222222222222222222222222222", "id": 9}
	],
	"solo_warriors": []
}`

func TestDecodeTournamentSolo(t *testing.T) {
	tournament, err := DecodeTournament(json.RawMessage(soloItem))
	require.NoError(t, err)

	assert.Equal(t, ServiceOneVOne, tournament.ServiceID)
	assert.Equal(t, int64(101), tournament.TournamentID)
	assert.Equal(t, StatusCompleted, tournament.Status)
	assert.Equal(t, "25000000000000000000", tournament.Configs.BuyIn.String())
	assert.Equal(t, "0", tournament.Configs.TopUp.String())
	assert.Equal(t, "rookie", tournament.Level.NavKey)
	assert.Equal(t, time.Date(2023, 1, 14, 11, 0, 0, 0, time.UTC), tournament.StartTime)

	assert.Nil(t, tournament.Name)
	assert.Nil(t, tournament.Legacy)
	assert.Nil(t, tournament.TournamentType)
	assert.NotNil(t, tournament.SoloOptionals)
	require.Len(t, tournament.SoloWarriors, 2)
	assert.Equal(t, int64(17), tournament.SoloWarriors[0].ID)
}

func TestDecodeTournamentBlooding(t *testing.T) {
	tournament, err := DecodeTournament(json.RawMessage(bloodingItem))
	require.NoError(t, err)

	assert.Equal(t, ServiceBlooding, tournament.ServiceID)
	require.NotNil(t, tournament.Name)
	assert.Equal(t, "Friday Blooding", *tournament.Name)
	require.NotNil(t, tournament.Legacy)
	assert.False(t, *tournament.Legacy)
	require.NotNil(t, tournament.TournamentType)
	assert.Nil(t, tournament.SoloOptionals)
	require.Len(t, tournament.Warriors, 2)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", tournament.Warriors[0].Account)
}

func TestDecodeTournamentVariantValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(map[string]json.RawMessage)
		wantErr string
	}{
		{
			name:    "unknown service id",
			mutate:  func(m map[string]json.RawMessage) { m["service_id"] = json.RawMessage(`42`) },
			wantErr: "not a valid service id",
		},
		{
			name:    "pvp missing name",
			mutate:  func(m map[string]json.RawMessage) { delete(m, "name") },
			wantErr: "expected name",
		},
		{
			name:    "pvp missing class",
			mutate:  func(m map[string]json.RawMessage) { delete(m, "class") },
			wantErr: "expected class",
		},
		{
			name:    "pvp missing tournament type",
			mutate:  func(m map[string]json.RawMessage) { delete(m, "tournament_type") },
			wantErr: "expected tournament_type",
		},
		{
			name:    "bad status",
			mutate:  func(m map[string]json.RawMessage) { m["status"] = json.RawMessage(`"IN_PROGRESS"`) },
			wantErr: "not a valid tournament status",
		},
		{
			name:    "bad start time",
			mutate:  func(m map[string]json.RawMessage) { m["start_time"] = json.RawMessage(`"13:30 on friday"`) },
			wantErr: "bad start_time",
		},
		{
			name:    "bad currency address",
			mutate:  func(m map[string]json.RawMessage) { m["configs"] = json.RawMessage(`{"currency": "money", "fee_percentage": 1, "buy_in": "0", "top_up": "0"}`) },
			wantErr: "not an address",
		},
		{
			name:    "bad buy in",
			mutate:  func(m map[string]json.RawMessage) { m["configs"] = json.RawMessage(`{"currency": "0x2791bca1f2de4661ed88a30c99a7a9449aa84174", "fee_percentage": 1, "buy_in": "lots", "top_up": "0"}`) },
			wantErr: "not a decimal integer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var fields map[string]json.RawMessage
			require.NoError(t, json.Unmarshal([]byte(bloodingItem), &fields))
			tt.mutate(fields)
			raw, err := json.Marshal(fields)
			require.NoError(t, err)

			_, err = DecodeTournament(raw)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDecodeTournamentSoloRequiresOptionals(t *testing.T) {
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(soloItem), &fields))
	delete(fields, "solo_optionals")
	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	_, err = DecodeTournament(raw)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected solo_optionals")
}

func TestDecodeTournamentLegacyDefaultsFalse(t *testing.T) {
	var fields map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(bloodingItem), &fields))
	delete(fields, "legacy")
	raw, err := json.Marshal(fields)
	require.NoError(t, err)

	tournament, err := DecodeTournament(raw)
	require.NoError(t, err)
	require.NotNil(t, tournament.Legacy)
	assert.False(t, *tournament.Legacy)
}

func TestTournamentPageEnvelope(t *testing.T) {
	payload := `{
		"total_count": 120,
		"total_pages": 3,
		"has_next_page": true,
		"current_page": 1,
		"item_count": 50,
		"items": [` + soloItem + `, {"garbage": true}]
	}`

	var page TournamentPage
	require.NoError(t, json.Unmarshal([]byte(payload), &page))
	assert.Equal(t, int64(120), page.TotalCount)
	assert.True(t, page.HasNextPage)
	// Items stay raw; garbage is only rejected at per-item decode time.
	assert.Len(t, page.Items, 2)

	_, err := DecodeTournament(page.Items[0])
	assert.NoError(t, err)
	_, err = DecodeTournament(page.Items[1])
	assert.Error(t, err)
}

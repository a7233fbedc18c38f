package models_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Matthew11K/TwitchBot/internal/domain/models"
)

func TestCommandRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		data string
		want bool
	}{
		{name: "поле отсутствует", data: `{"type":"echo","trigger":{"word":"!x"}}`, want: true},
		{name: "явно false", data: `{"type":"echo","modOverridesCooldown":false}`, want: false},
		{name: "явно true", data: `{"type":"echo","modOverridesCooldown":true}`, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec models.CommandRecord

			require.NoError(t, json.Unmarshal([]byte(tt.data), &rec))
			assert.Equal(t, tt.want, rec.ModOverridesCooldown)
			assert.Equal(t, models.CommandTypeEcho, rec.Type)
		})
	}
}

func TestCommandRecord_UnmarshalJSONInvalid(t *testing.T) {
	var records []models.CommandRecord

	assert.Error(t, json.Unmarshal([]byte(`[{"type":`), &records))
}

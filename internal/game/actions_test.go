package game

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAction(t *testing.T) {
	tests := map[string]Action{
		"hit": Hit, "h": Hit, "HIT": Hit,
		"stand": Stand, "s": Stand,
		"double": Double, "d": Double,
		"split": Split, " p ": Split,
	}
	for input, want := range tests {
		got, err := ParseAction(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseAction("surrender")
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestParseHandRole(t *testing.T) {
	role, err := ParseHandRole("")
	require.NoError(t, err)
	assert.Equal(t, MainHand, role)

	role, err = ParseHandRole("Split")
	require.NoError(t, err)
	assert.Equal(t, SplitHand, role)

	_, err = ParseHandRole("third")
	assert.Error(t, err)
}

func TestActionSet(t *testing.T) {
	s := NewActionSet(Stand, Hit)
	assert.True(t, s.Has(Hit))
	assert.True(t, s.Has(Stand))
	assert.False(t, s.Has(Split))
	assert.Equal(t, []Action{Hit, Stand}, s.List())
	assert.Equal(t, "hit, stand", s.String())
	assert.True(t, ActionSet(0).Empty())
	assert.Equal(t, s.With(Double), NewActionSet(Hit, Stand, Double))
}

func TestActionJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Action Action   `json:"action"`
		Hand   HandRole `json:"hand"`
	}{Double, SplitHand})
	require.NoError(t, err)
	assert.JSONEq(t, `{"action":"double","hand":"split"}`, string(b))

	var v struct {
		Action Action   `json:"action"`
		Hand   HandRole `json:"hand"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"action":"p","hand":"main"}`), &v))
	assert.Equal(t, Split, v.Action)
	assert.Equal(t, MainHand, v.Hand)
}

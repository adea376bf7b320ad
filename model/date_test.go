package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateJSON(t *testing.T) {
	var body struct {
		Deadline *Date `json:"deadline"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"deadline":"2030-01-31"}`), &body))
	require.NotNil(t, body.Deadline)
	assert.Equal(t, "2030-01-31", body.Deadline.String())

	require.NoError(t, json.Unmarshal([]byte(`{"deadline":null}`), &body))
	assert.Nil(t, body.Deadline)

	assert.Error(t, json.Unmarshal([]byte(`{"deadline":""}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"deadline":"  "}`), &body))
	assert.Error(t, json.Unmarshal([]byte(`{"deadline":"31/01/2030"}`), &body))
}

func TestDateZeroValueIsNull(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = mustParse(t, "2024-02-29").Value()
	require.NoError(t, err)
	assert.NotNil(t, v)
}

func mustParse(t *testing.T, s string) Date {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_Validate(t *testing.T) {
	tests := []struct {
		name    string
		fields  Fields
		wantErr bool
	}{
		{"empty", Fields{}, false},
		{"string", Fields{"name": "x"}, false},
		{"list", Fields{"creator": []string{"a", "b"}}, false},
		{"null", Fields{"distribution": nil}, false},
		{"int", Fields{"num_cells": 3}, true},
		{"map", Fields{"publisher": map[string]any{"name": "x"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fields.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFields_Accessors(t *testing.T) {
	f := Fields{
		"name":     "Flux data",
		"keywords": []string{"co2", "flux"},
		"empty":    "",
		"none":     nil,
	}

	assert.Equal(t, "Flux data", f.String("name"))
	assert.Equal(t, "", f.String("keywords"))
	assert.Equal(t, []string{"co2", "flux"}, f.Strings("keywords"))
	assert.Equal(t, []string{"Flux data"}, f.Strings("name"))
	assert.Nil(t, f.Strings("empty"))
	assert.Nil(t, f.Strings("none"))
	assert.Equal(t, []string{"empty", "keywords", "name", "none"}, f.Names())
}

func TestFields_Clone(t *testing.T) {
	f := Fields{"keywords": []string{"a"}}
	c := f.Clone()
	c.Strings("keywords")[0] = "changed"

	assert.Equal(t, "a", f.Strings("keywords")[0])
	assert.Nil(t, Fields(nil).Clone())
}

func TestFields_UnmarshalJSON(t *testing.T) {
	var f Fields
	err := json.Unmarshal([]byte(`{"name":"x","creator":["a","b"],"distribution":null,"empty":[]}`), &f)
	require.NoError(t, err)

	assert.Equal(t, Fields{
		"name":         "x",
		"creator":      []string{"a", "b"},
		"distribution": nil,
		"empty":        []string{},
	}, f)
	assert.NoError(t, f.Validate())
}

func TestFields_UnmarshalJSON_Rejects(t *testing.T) {
	inputs := []string{
		`{"n":1}`,
		`{"list":[1,2]}`,
		`{"obj":{"a":"b"}}`,
	}
	for _, in := range inputs {
		var f Fields
		err := json.Unmarshal([]byte(in), &f)
		assert.ErrorIs(t, err, ErrInvalidInput, in)
	}
}

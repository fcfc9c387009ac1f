package service

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionalUintUnmarshal(t *testing.T) {
	t.Run("absent field stays unset", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"title":"x"}`), &req))
		assert.False(t, req.AssignedTo.Set)
		assert.Nil(t, req.AssignedTo.Value)
	})

	t.Run("explicit null sets with nil value", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"assignedTo":null}`), &req))
		assert.True(t, req.AssignedTo.Set)
		assert.Nil(t, req.AssignedTo.Value)
	})

	t.Run("number sets the value", func(t *testing.T) {
		var req UpdateTaskRequest
		require.NoError(t, json.Unmarshal([]byte(`{"assignedTo":42}`), &req))
		assert.True(t, req.AssignedTo.Set)
		require.NotNil(t, req.AssignedTo.Value)
		assert.Equal(t, uint(42), *req.AssignedTo.Value)
	})

	t.Run("non-numeric value is rejected", func(t *testing.T) {
		var req UpdateTaskRequest
		assert.Error(t, json.Unmarshal([]byte(`{"assignedTo":"abc"}`), &req))
	})
}

func TestOptionalUintMarshal(t *testing.T) {
	v := uint(7)
	b, err := json.Marshal(OptionalUint{Set: true, Value: &v})
	require.NoError(t, err)
	assert.Equal(t, "7", string(b))

	b, err = json.Marshal(OptionalUint{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))
}

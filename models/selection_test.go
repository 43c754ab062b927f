package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderSelection(t *testing.T) {
	sel, err := ParseProviderSelection("any")
	require.NoError(t, err)
	assert.True(t, sel.IsAny())
	assert.Empty(t, sel.ProviderID())

	sel, err = ParseProviderSelection(" ANY ")
	require.NoError(t, err)
	assert.True(t, sel.IsAny())

	sel, err = ParseProviderSelection("prov-1")
	require.NoError(t, err)
	assert.False(t, sel.IsAny())
	assert.Equal(t, "prov-1", sel.ProviderID())

	_, err = ParseProviderSelection("  ")
	assert.Error(t, err)
}

func TestProviderSelectionJSON(t *testing.T) {
	b, err := json.Marshal(AnyProvider())
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"any"}`, string(b))

	b, err = json.Marshal(SpecificProvider("p1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"mode":"specific","providerId":"p1"}`, string(b))

	var sel ProviderSelection
	require.NoError(t, json.Unmarshal([]byte(`"any"`), &sel))
	assert.True(t, sel.IsAny())

	require.NoError(t, json.Unmarshal([]byte(`{"mode":"specific","providerId":"p9"}`), &sel))
	assert.Equal(t, SpecificProvider("p9"), sel)

	assert.Error(t, json.Unmarshal([]byte(`{"mode":"specific"}`), &sel))
	assert.Error(t, json.Unmarshal([]byte(`{"mode":"random"}`), &sel))
}

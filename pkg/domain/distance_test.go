package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDistance_Add(t *testing.T) {
	assert.Equal(t, domain.Distance(7), domain.Distance(3).Add(4))
	assert.Equal(t, domain.Infinite, domain.Infinite.Add(4))
	assert.True(t, domain.Distance(0).Add(domain.MaxWeight) < domain.Infinite)
}

func TestDistance_String(t *testing.T) {
	assert.Equal(t, "∞", domain.Infinite.String())
	assert.Equal(t, "12", domain.Distance(12).String())
}

func TestDistanceTable_JSON(t *testing.T) {
	table := domain.DistanceTable{0: 0, 1: 4, 2: domain.Infinite}

	data, err := json.Marshal(table)
	require.NoError(t, err)
	assert.JSONEq(t, `{"0":0,"1":4,"2":null}`, string(data))

	var back domain.DistanceTable
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, table, back)
}

func TestDistance_YAML(t *testing.T) {
	data, err := yaml.Marshal(map[string]domain.Distance{"a": domain.Infinite, "b": 3})
	require.NoError(t, err)
	assert.Equal(t, "a: inf\nb: 3\n", string(data))
}

func TestDistanceTable_Helpers(t *testing.T) {
	table := domain.DistanceTable{3: 1, 0: 0, 1: domain.Infinite}

	assert.Equal(t, []domain.Vertex{0, 1, 3}, table.Vertices())
	assert.Equal(t, domain.Infinite, table.Get(42))
	assert.Equal(t, 2, table.Reachable())

	c := table.Clone()
	c[0] = 5
	assert.Equal(t, domain.Distance(0), table[0])

	var empty domain.DistanceTable
	assert.NotNil(t, empty.Clone())
}

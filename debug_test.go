package hilt_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/hilt"
)

const testPkg = "github.com/danpasecinic/hilt_test."

func debugContainer(t *testing.T) *hilt.Container {
	t.Helper()

	c := hilt.New()
	require.NoError(t, hilt.ProvideFunc[*TestLogger](c, NewTestLogger))
	require.NoError(t, hilt.ProvideFunc[*TestDatabase](c, NewTestDatabase))
	require.NoError(t, hilt.ProvideFunc[*TestUserService](c, NewTestUserService))
	return c
}

func TestSprintGraph_Empty(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "(empty container)\n", hilt.New().SprintGraph())
}

func TestSprintGraph(t *testing.T) {
	t.Parallel()

	c := debugContainer(t)
	_ = hilt.MustInvoke[*TestDatabase](c)

	out := c.SprintGraph()
	assert.Contains(t, out, "● *"+testPkg+"TestLogger\n")
	assert.Contains(t, out, "● *"+testPkg+"TestDatabase ← *"+testPkg+"TestLogger\n")
	assert.Contains(t, out, "○ *"+testPkg+"TestUserService ← ")
}

func TestSprintGraphDOT(t *testing.T) {
	t.Parallel()

	c := debugContainer(t)
	_ = hilt.MustInvoke[*TestLogger](c)

	out := c.SprintGraphDOT()
	assert.True(t, strings.HasPrefix(out, "digraph dependencies {\n"))
	assert.True(t, strings.HasSuffix(out, "}\n"))
	assert.Contains(t, out, `label="1: hilt_test.TestLogger", style=filled`)
	assert.Contains(t, out, `label="hilt_test.TestDatabase"];`)
	assert.Contains(t, out, `"*`+testPkg+`TestDatabase" -> "*`+testPkg+`TestLogger";`)
}

func TestGraphInfo(t *testing.T) {
	t.Parallel()

	c := debugContainer(t)
	require.NoError(t, hilt.Bind[UserRepository, *PostgresUserRepo](c))
	_ = hilt.MustInvoke[*TestUserService](c)

	services := make(map[string]hilt.ServiceInfo)
	for _, svc := range c.Graph().Services {
		services[svc.Key] = svc
	}
	require.Len(t, services, 4)

	logger := services["*"+testPkg+"TestLogger"]
	assert.True(t, logger.Instantiated)
	assert.Equal(t, "singleton", logger.Scope)
	assert.EqualValues(t, 1, logger.Seq)
	assert.ElementsMatch(t, []string{"*" + testPkg + "TestDatabase", "*" + testPkg + "TestUserService"}, logger.Dependents)

	svc := services["*"+testPkg+"TestUserService"]
	assert.EqualValues(t, 3, svc.Seq)
	assert.ElementsMatch(t, []string{"*" + testPkg + "TestDatabase", "*" + testPkg + "TestLogger"}, svc.Dependencies)

	alias := services[testPkg+"UserRepository"]
	assert.True(t, alias.Alias)
	assert.Equal(t, "alias", alias.Scope)
	assert.False(t, alias.Instantiated)
	assert.Zero(t, alias.Seq)
}

func TestSprintLedger(t *testing.T) {
	t.Parallel()

	c := hilt.New()
	assert.Equal(t, "(nothing constructed)\n", c.SprintLedger())

	hilt.MustProvideValue(c, &worker{name: "w", ev: &events{}}, hilt.WithOnStop(func(context.Context) error { return nil }))
	hilt.MustProvideValue(c, &Config{})
	_ = hilt.MustInvoke[*Config](c)
	_ = hilt.MustInvoke[*worker](c)

	assert.Equal(
		t,
		"  1 *"+testPkg+"Config (start=0 stop=0)\n"+
			"  2 *"+testPkg+"worker (start=1 stop=2)\n",
		c.SprintLedger(),
	)
}

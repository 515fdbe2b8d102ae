package container

import (
	"bytes"
	"context"
	"testing"

	"gocrack/adapters/console"
	"gocrack/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestInMemoryLedgerWithoutDatabase(t *testing.T) {
	c, err := New(config.Default())
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.InitLedger(context.Background()))
	assert.Nil(t, c.DB)
	assert.Same(t, c.TestKit.RunRepository(), c.Runs)

	var out bytes.Buffer
	svc := c.InitCrackService(console.NewReporter(&out))
	assert.NotNil(t, svc)
	assert.Same(t, svc, c.CrackService)
}

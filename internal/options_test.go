package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions_Validate(t *testing.T) {
	require.NoError(t, (&Options{}).Validate())

	for name, o := range map[string]Options{
		"threads": {Threads: -1},
		"queue":   {QueueSize: -1},
		"depth":   {MaxDepth: -2},
		"policy":  {ErrorPolicy: ErrorPolicy(7)},
	} {
		assert.Error(t, o.Validate(), name)
	}
}

func TestOptions_Prepare(t *testing.T) {
	o := Options{}
	o.Prepare()
	assert.Equal(t, defaultQueueSize, o.QueueSize)
	assert.False(t, o.parallel())

	o = Options{QueueSize: 8, Threads: 4}
	o.Prepare()
	assert.Equal(t, 8, o.QueueSize)
	assert.True(t, o.parallel())
}

func TestOptions_IgnoreConfig(t *testing.T) {
	cfg := (&Options{}).ignoreConfig()
	assert.False(t, cfg.Disabled)
	assert.True(t, cfg.Parents)
	assert.True(t, cfg.Global)
	assert.True(t, cfg.Exclude)
	assert.False(t, cfg.RequireGit)

	cfg = (&Options{NoIgnore: true, NoParents: true, NoGlobal: true, NoExclude: true, RequireGit: true}).ignoreConfig()
	assert.True(t, cfg.Disabled)
	assert.False(t, cfg.Parents)
	assert.False(t, cfg.Global)
	assert.False(t, cfg.Exclude)
	assert.True(t, cfg.RequireGit)
}

func TestOptions_WithinDepth(t *testing.T) {
	o := Options{}
	assert.True(t, o.withinDepth(100))
	o.MaxDepth = 2
	assert.True(t, o.withinDepth(2))
	assert.False(t, o.withinDepth(3))
}

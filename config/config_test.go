package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/slowlang/minipy/compiler/wat"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, wat.DefaultModuleConfig, c.Module)
	assert.Empty(t, c.Log)
	assert.False(t, c.Trace)
	assert.Empty(t, c.Filter())
}

func TestFromEnv(t *testing.T) {
	t.Setenv(LogEnv, "lower,symbols")
	t.Setenv(TraceEnv, "1")
	t.Setenv(EntryEnv, "main")
	t.Setenv(ImportModuleEnv, "env")

	c := FromEnv()

	assert.Equal(t, "lower,symbols", c.Log)
	assert.True(t, c.Trace)
	assert.Equal(t, wat.ModuleConfig{ImportModule: "env", Entry: "main"}, c.Module)
	assert.Equal(t, "lower,symbols,vm_trace", c.Filter())
}

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv(LogEnv, "")
	t.Setenv(TraceEnv, "")
	t.Setenv(EntryEnv, "")
	t.Setenv(ImportModuleEnv, "")

	c := FromEnv()

	assert.Equal(t, Default(), c)
}

func TestFilter(t *testing.T) {
	assert.Equal(t, "vm_trace", Config{Trace: true}.Filter())
	assert.Equal(t, "symbols", Config{Log: "symbols"}.Filter())
}

func TestFromEnvReload(t *testing.T) {
	t.Setenv(EntryEnv, "first")

	assert.Equal(t, "first", FromEnv().Module.Entry)

	t.Setenv(EntryEnv, "second")

	assert.Equal(t, "second", FromEnv().Module.Entry)
}

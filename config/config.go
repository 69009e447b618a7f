package config

import (
	"github.com/xyproto/env/v2"

	"github.com/slowlang/minipy/compiler/wat"
)

type Config struct {
	// Log is a tlog verbosity filter, like "lower,wat" or "symbols".
	Log string

	// Trace turns on per-instruction logging while running.
	Trace bool

	Module wat.ModuleConfig
}

const (
	LogEnv          = "MINIPY_LOG"
	TraceEnv        = "MINIPY_TRACE"
	EntryEnv        = "MINIPY_ENTRY"
	ImportModuleEnv = "MINIPY_IMPORT_MODULE"
)

func Default() Config {
	return Config{
		Module: wat.DefaultModuleConfig,
	}
}

// FromEnv returns Default overridden by the MINIPY_* environment variables.
func FromEnv() Config {
	env.Load()

	c := Default()

	c.Log = env.Str(LogEnv, c.Log)
	c.Trace = env.Bool(TraceEnv)
	c.Module.Entry = env.Str(EntryEnv, c.Module.Entry)
	c.Module.ImportModule = env.Str(ImportModuleEnv, c.Module.ImportModule)

	return c
}

// Filter is the tlog filter for c, including the topics Trace needs.
func (c Config) Filter() string {
	switch {
	case c.Trace && c.Log != "":
		return c.Log + ",vm_trace"
	case c.Trace:
		return "vm_trace"
	default:
		return c.Log
	}
}

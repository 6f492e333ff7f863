// Package config holds configuration primitives shared by the engine's
// packages.
//
// Each package owns its own Config struct with JSON tags, a DefaultConfig
// constructor and a Merge method that copies non-zero values from a loaded
// source over the defaults:
//
//	cfg := wordcount.DefaultConfig()
//	cfg.Merge(&loaded)
//
// Configuration only exists during initialization. Constructors copy what
// they need into the runtime components; changing a Config afterwards has no
// effect on running actors.
//
// Durations are written in JSON as Go duration strings:
//
//	{
//	  "job_timeout": "30s",
//	  "idle_timeout": "2m"
//	}
package config

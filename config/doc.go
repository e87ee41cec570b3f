// Package config loads streamgen configuration.
//
// Values come from config.yml, found under ./cmd/<service>/, ./config/ or the
// working directory, then from a .env file and the process environment.
// Environment variables map onto nested keys by underscores, so
// ADAPTER_CHUNK_CEILING sets adapter.chunk_ceiling.
//
//	cfg, err := config.Load("streamgen", config.WithConfigFile(path))
package config

// Package config loads the pointflow process configuration.
//
// It uses Viper to read pointflow.yml (or .yaml/.json) from standard
// locations, then applies an optional .env file and POINTFLOW_* environment
// variables on top.
//
// # Usage
//
//	var cfg config.Config
//	err := config.Load(&cfg, config.WithConfigFile("pointflow.yml"))
//
// Environment variables use underscore-separated paths, e.g.
// POINTFLOW_ENGINE_MAX_PARALLEL=4 or POINTFLOW_LOGGING_LEVEL=debug.
package config

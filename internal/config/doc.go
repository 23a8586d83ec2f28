// Package config provides configuration for zoomreport.
//
// Values come from four layers, later ones winning:
//  1. defaults (NewConfig)
//  2. the YAML config file (.zoomreport, see FindConfigFile)
//  3. the environment, including a .env file (LoadEnv, ApplyEnv)
//  4. command line flags
package config

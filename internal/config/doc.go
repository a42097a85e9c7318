// Package config loads pyvm's settings with Viper.
//
// Settings come from config.yaml in the working directory or
// $XDG_CONFIG_HOME/pyvm, overridden by PYVM_-prefixed environment
// variables with dots replaced by underscores:
//
//	version: 1
//	python:
//	  command: python3
//	release:
//	  index_url: https://www.python.org/downloads/
//	  timeout: 15s
//	debian:
//	  repository: ppa:deadsnakes/ppa
//	policy:
//	  minimum_version: "3.10"
//
// PYVM_RELEASE_TIMEOUT=30s overrides release.timeout. Every key has a
// default, so a missing file is not an error.
package config

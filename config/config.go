// Package config loads the Virtualmin connection settings.
package config

import (
	"net/url"
	"os"
	"strconv"

	"github.com/dirien/virtualmin-sdk/model"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the config file.
const (
	EnvHost      = "VIRTUALMIN_HOST"
	EnvUsername  = "VIRTUALMIN_USERNAME"
	EnvPassword  = "VIRTUALMIN_PASSWORD"
	EnvVerifySSL = "VIRTUALMIN_VERIFY_SSL"
)

// Load reads the config file at path, when set, and applies environment
// overrides. A .env file in the working directory is loaded first; it never
// overrides variables that are already set.
func Load(path string) (*model.Config, error) {
	_ = godotenv.Load()

	cfg := &model.Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "failed to parse config file %s", path)
		}
	}

	if v := os.Getenv(EnvHost); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv(EnvVerifySSL); v != "" {
		verify, err := strconv.ParseBool(v)
		if err != nil {
			return nil, errors.Wrapf(err, "%s must be a boolean", EnvVerifySSL)
		}
		cfg.VerifySSL = verify
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg has everything needed to reach Virtualmin.
func Validate(cfg *model.Config) error {
	if cfg.Host == "" {
		return errors.New("host is required")
	}
	u, err := url.Parse(cfg.Host)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("host %q must be an http or https URL", cfg.Host)
	}
	if cfg.Username == "" {
		return errors.New("username is required")
	}
	if cfg.Password == "" {
		return errors.New("password is required")
	}
	return nil
}

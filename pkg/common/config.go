/**
 * Copyright 2026 The SqueefDB Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package common

import (
	"fmt"
	"io/ioutil"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

const (
	// DefaultPort is the port the server listens on when none is configured.
	DefaultPort = 6870

	// DefaultMaxMessageSize is the size of the buffer a connection is read into.
	DefaultMaxMessageSize = 128

	// ColorAuto colorizes log tags only when writing to a terminal.
	ColorAuto = "auto"
	// ColorAlways always colorizes log tags.
	ColorAlways = "always"
	// ColorNever never colorizes log tags.
	ColorNever = "never"
)

// ServerConfig defines the configuration settings for the squeef server.
type ServerConfig struct {
	Port int `yaml:"port"`

	// Backlog is passed to listen(2). Zero means no queued connections.
	Backlog int `yaml:"backlog"`

	// MaxMessageSize is the capacity of the per connection read buffer.
	// A message filling the whole buffer is rejected.
	MaxMessageSize int `yaml:"maxMessageSize"`

	// ReadTimeout bounds the single read done for a connection. Zero disables it.
	ReadTimeout time.Duration `yaml:"readTimeout"`

	// HealthAddress is the address of the grpc health service. Empty disables it.
	HealthAddress string `yaml:"healthAddress"`

	// SchemaPath points at a yaml schema definition loaded into the catalog on start.
	SchemaPath string `yaml:"schemaPath"`

	// Logging config
	LogLevel string `yaml:"logLevel"`
	LogFile  string `yaml:"logFile"`
	Color    string `yaml:"color"`
}

// NewDefaultServerConfig returns a new default server configuration.
func NewDefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:           DefaultPort,
		Backlog:        0,
		MaxMessageSize: DefaultMaxMessageSize,
		LogLevel:       "info",
		Color:          ColorAuto,
	}
}

// Validate validates a ServerConfig and returns an error if it's invalid.
func (conf *ServerConfig) Validate() error {
	if conf.Port < 0 || conf.Port > 65535 {
		return fmt.Errorf("invalid port %d provided in config", conf.Port)
	}
	if conf.Backlog < 0 {
		return fmt.Errorf("invalid backlog %d provided in config", conf.Backlog)
	}
	if conf.MaxMessageSize < 2 {
		return fmt.Errorf("invalid max message size %d provided in config", conf.MaxMessageSize)
	}
	if conf.ReadTimeout < 0 {
		return fmt.Errorf("invalid read timeout %s provided in config", conf.ReadTimeout)
	}
	if _, err := log.ParseLevel(conf.LogLevel); err != nil {
		return fmt.Errorf("invalid log level provided in config: %w", err)
	}
	switch conf.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return fmt.Errorf("invalid color mode %q provided in config", conf.Color)
	}
	return nil
}

// LoadFromFile loads the config from the file. It assumes that config already has the defaults.
// In the case of an error, it leaves the config untouched.
//
// Only non-zero values in the file override the config. A zero port or backlog in
// the file is indistinguishable from an absent key and keeps the current value.
func (conf *ServerConfig) LoadFromFile(path string) {
	log.Info(fmt.Sprintf("squeef::config::LoadFromFile; loading config from file %s", path))
	data, err := ioutil.ReadFile(path)
	if err != nil {
		log.Error(fmt.Sprintf("squeef::config::LoadFromFile; error reading config from file %s, error %s", path, err))
		return
	}
	fconf := ServerConfig{}
	err = yaml.UnmarshalStrict(data, &fconf)
	if err != nil {
		log.Error(fmt.Sprintf("squeef::config::LoadFromFile; error unmarshalling config from file %s, error %s", path, err))
		return
	}

	log.WithFields(log.Fields{"config": fconf}).Debug("squeef::config::LoadFromFile; read contents from the file")
	conf.merge(&fconf)
}

// LoadFromEnv applies SQUEEF_* environment variables on top of the config.
// The given dotenv files (".env" when none are given) are loaded first if present.
// As with LoadFromFile, SQUEEF_PORT=0 or SQUEEF_BACKLOG=0 keeps the current value.
func (conf *ServerConfig) LoadFromEnv(files ...string) error {
	// missing dotenv files are fine
	_ = godotenv.Load(files...)

	econf := ServerConfig{
		HealthAddress: os.Getenv("SQUEEF_HEALTH_ADDRESS"),
		SchemaPath:    os.Getenv("SQUEEF_SCHEMA_PATH"),
		LogLevel:      os.Getenv("SQUEEF_LOG_LEVEL"),
		LogFile:       os.Getenv("SQUEEF_LOG_FILE"),
		Color:         os.Getenv("SQUEEF_COLOR"),
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SQUEEF_PORT", &econf.Port},
		{"SQUEEF_BACKLOG", &econf.Backlog},
		{"SQUEEF_MAX_MESSAGE_SIZE", &econf.MaxMessageSize},
	}
	for _, v := range ints {
		raw := os.Getenv(v.key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", v.key, err)
		}
		*v.dst = n
	}

	if raw := os.Getenv("SQUEEF_READ_TIMEOUT"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid SQUEEF_READ_TIMEOUT: %w", err)
		}
		econf.ReadTimeout = d
	}

	conf.merge(&econf)
	return nil
}

// merge copies the non zero fields of other into conf.
func (conf *ServerConfig) merge(other *ServerConfig) {
	if other.Port != 0 {
		conf.Port = other.Port
	}
	if other.Backlog != 0 {
		conf.Backlog = other.Backlog
	}
	if other.MaxMessageSize != 0 {
		conf.MaxMessageSize = other.MaxMessageSize
	}
	if other.ReadTimeout != 0 {
		conf.ReadTimeout = other.ReadTimeout
	}
	if other.HealthAddress != "" {
		conf.HealthAddress = other.HealthAddress
	}
	if other.SchemaPath != "" {
		conf.SchemaPath = other.SchemaPath
	}
	if other.LogLevel != "" {
		conf.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		conf.LogFile = other.LogFile
	}
	if other.Color != "" {
		conf.Color = other.Color
	}
}

// Package config loads ox client configuration from YAML.
//
// Example file:
//
//	jid: alice@example.com/desk
//	log_level: debug
//	protocol_log: /var/log/ox/session.olog
//	keepalive: 90s
//	services:
//	  voicemail: xmpp:pubsub.staging.example.com
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/onsip/ox-go/pkg/services"
	"github.com/onsip/ox-go/pkg/uri"
)

// Config is the client configuration.
type Config struct {
	// JID is the session's full JID.
	JID string `yaml:"jid"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`

	// ProtocolLog is the path of the CBOR protocol log. Empty disables it.
	ProtocolLog string `yaml:"protocol_log"`

	// KeepAlive is the XMPP ping interval. Zero disables pinging.
	KeepAlive time.Duration `yaml:"keepalive"`

	// Services overrides pubsub addresses by service name.
	Services map[string]string `yaml:"services"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		KeepAlive: 60 * time.Second,
	}
}

// LoadError describes a configuration that could not be loaded.
type LoadError struct {
	// File is the path to the file that failed to load.
	File string

	// Line is the line number where the error occurred (0 if unknown).
	Line int

	// Message describes the error.
	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		if e.Line > 0 {
			b.WriteString(":" + strconv.Itoa(e.Line))
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// Parse parses and validates YAML configuration. Unset fields keep their
// Default values.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, &LoadError{Message: "failed to parse YAML", Cause: err}
	}
	if len(node.Content) > 0 {
		if err := node.Decode(cfg); err != nil {
			return nil, &LoadError{Line: node.Content[0].Line, Message: "invalid configuration", Cause: err}
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	cfg, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return cfg, nil
}

// Validate checks required fields and service overrides.
func (c *Config) Validate() error {
	if c.JID == "" {
		return &LoadError{Message: "jid is required"}
	}
	if _, err := c.Level(); err != nil {
		return &LoadError{Message: "invalid log_level", Cause: err}
	}
	if c.KeepAlive < 0 {
		return &LoadError{Message: "keepalive must not be negative"}
	}
	for name, addr := range c.Services {
		if _, ok := services.Lookup(name); !ok {
			return &LoadError{Message: fmt.Sprintf("unknown service %q", name)}
		}
		u, err := uri.Parse(addr)
		if err != nil {
			return &LoadError{Message: fmt.Sprintf("service %s", name), Cause: err}
		}
		if u.Path() == "" {
			return &LoadError{Message: fmt.Sprintf("service %s: address has no host", name)}
		}
	}
	return nil
}

// Level returns the slog level for LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if c.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	err := lvl.UnmarshalText([]byte(c.LogLevel))
	return lvl, err
}

// ServiceAddress returns the configured address for a service, or its
// default address.
func (c *Config) ServiceAddress(name string) uri.URI {
	if addr, ok := c.Services[name]; ok {
		if u, err := uri.Parse(addr); err == nil {
			return u.Service()
		}
	}
	return services.DefaultAddress(name)
}

// Domain returns the domain part of the JID, the usual ping target.
func (c *Config) Domain() string {
	d := c.JID
	if i := strings.IndexByte(d, '@'); i >= 0 {
		d = d[i+1:]
	}
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return d
}

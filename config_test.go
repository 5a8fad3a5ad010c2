package main

import (
	"regexp"
	"testing"
)

func validConfig() *Config {
	return &Config{bind: "0.0.0.0", port: 3217, rounds: 3, repo: "."}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"port too low", func(c *Config) { c.port = 0 }},
		{"port too high", func(c *Config) { c.port = 70000 }},
		{"rounds too low", func(c *Config) { c.rounds = 0 }},
		{"rounds too high", func(c *Config) { c.rounds = 11 }},
		{"cert without key", func(c *Config) { c.tlsCert = "cert.pem" }},
		{"key without cert", func(c *Config) { c.tlsKey = "key.pem" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			if err := cfg.validate(); err == nil {
				t.Fatal("invalid config accepted")
			}
		})
	}
}

func TestConfigScheme(t *testing.T) {
	cfg := validConfig()
	if cfg.scheme() != "http" {
		t.Fatalf("scheme = %q", cfg.scheme())
	}
	cfg.tlsCert, cfg.tlsKey = "cert.pem", "key.pem"
	if cfg.scheme() != "https" {
		t.Fatalf("scheme = %q with tls", cfg.scheme())
	}
}

func TestGeneratePasswordFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^[a-z]+-[a-z]+-\d{2}$`)
	for i := 0; i < 20; i++ {
		pw := generatePassword()
		if !pattern.MatchString(pw) {
			t.Fatalf("password %q does not match adjective-noun-number", pw)
		}
	}
}

func TestJoinLink(t *testing.T) {
	cfg := validConfig()
	cfg.password = "epic-wizard-42"
	if got := cfg.joinLink("192.168.1.5"); got != "gitgame://192.168.1.5:3217/epic-wizard-42" {
		t.Fatalf("joinLink = %q", got)
	}
}

package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Accounts struct {
		BaseURL   string `yaml:"base_url"`
		AuthToken string `yaml:"auth_token"`
	} `yaml:"accounts"`

	Table struct {
		// Transport selects how the table server is reached: "ws" dials the
		// websocket endpoint, "nats" joins through the broker.
		Transport string `yaml:"transport"`
		Endpoint  string `yaml:"endpoint"`
		NATSURL   string `yaml:"nats_url"`
	} `yaml:"table"`

	Player struct {
		UserID          string `yaml:"user_id"`
		Username        string `yaml:"username"`
		ProfileImageURL string `yaml:"profile_image_url"`
	} `yaml:"player"`

	Room struct {
		// RoomID joins a specific room; empty lets the server matchmake.
		RoomID  string `yaml:"room_id"`
		Private bool   `yaml:"private"`
	} `yaml:"room"`

	LogLevel string `yaml:"log_level"`
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	var config Config

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Environment variables override file values so credentials stay out of
	// the config file.
	config.Accounts.BaseURL = getEnv("ACCOUNTS_BASE_URL", config.Accounts.BaseURL)
	config.Accounts.AuthToken = getEnv("ACCOUNTS_AUTH_TOKEN", config.Accounts.AuthToken)
	config.Table.Transport = getEnv("TABLE_TRANSPORT", config.Table.Transport)
	config.Table.Endpoint = getEnv("TABLE_ENDPOINT", config.Table.Endpoint)
	config.Table.NATSURL = getEnv("TABLE_NATS_URL", config.Table.NATSURL)
	config.Player.UserID = getEnv("PLAYER_USER_ID", config.Player.UserID)
	config.Player.Username = getEnv("PLAYER_USERNAME", config.Player.Username)
	config.Player.ProfileImageURL = getEnv("PLAYER_PROFILE_IMAGE_URL", config.Player.ProfileImageURL)
	config.Room.RoomID = getEnv("ROOM_ID", config.Room.RoomID)
	config.Room.Private = getEnvAsBool("ROOM_PRIVATE", config.Room.Private)
	config.LogLevel = getEnv("LOG_LEVEL", config.LogLevel)

	if config.Table.Transport == "" {
		config.Table.Transport = "ws"
	}

	return &config, nil
}

func (c *Config) validate() error {
	if c.Accounts.BaseURL == "" {
		return fmt.Errorf("accounts base URL is required")
	}
	if c.Player.UserID == "" || c.Player.Username == "" {
		return fmt.Errorf("player user_id and username are required")
	}
	switch c.Table.Transport {
	case "ws":
		if c.Table.Endpoint == "" {
			return fmt.Errorf("table endpoint is required for the ws transport")
		}
	case "nats":
		if c.Table.NATSURL == "" {
			return fmt.Errorf("nats url is required for the nats transport")
		}
	default:
		return fmt.Errorf("unknown table transport %q", c.Table.Transport)
	}
	return nil
}

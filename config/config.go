package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"homereport/models"
)

// Config holds all configuration for the application
type Config struct {
	ReposDir      string
	GmailUsername string
	AppPassword   string
	Recipients    []string
	SMTPHost      string
	SMTPPort      int
	HistoryPath   string
	Debug         bool
}

// NewConfig creates a new Config instance
func NewConfig() *Config {
	return &Config{}
}

// Load reads configuration from flags bound into viper, environment
// variables with the HOMEREPORT_ prefix, and an optional .env-style
// config file next to the binary.
func (c *Config) Load() error {
	viper.SetEnvPrefix("HOMEREPORT")
	viper.AutomaticEnv()

	viper.SetConfigName("homereport")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("$HOME/.config/homereport")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	viper.SetDefault("smtp_host", "smtp.gmail.com")
	viper.SetDefault("smtp_port", 465)
	viper.SetDefault("history_db", "homereport.db")

	c.ReposDir = viper.GetString("repos_dir")
	c.GmailUsername = viper.GetString("gmail_username")
	c.AppPassword = viper.GetString("app_password")
	c.SMTPHost = viper.GetString("smtp_host")
	c.SMTPPort = viper.GetInt("smtp_port")
	c.HistoryPath = viper.GetString("history_db")
	c.Debug = viper.GetBool("debug")

	if recipients := viper.GetString("recipients"); recipients != "" {
		for _, addr := range strings.Split(recipients, ",") {
			if addr = strings.TrimSpace(addr); addr != "" {
				c.Recipients = append(c.Recipients, addr)
			}
		}
	}

	return nil
}

// ValidateMail checks that the fields needed to send a report are set.
// Debug runs print to stdout instead of mailing, so they skip this.
func (c *Config) ValidateMail() error {
	if c.Debug {
		return nil
	}
	if c.GmailUsername == "" {
		return fmt.Errorf("gmail_username is required to send the report email")
	}
	if c.AppPassword == "" {
		return fmt.Errorf("app_password is required to send the report email")
	}
	return nil
}

// ValidateRepos checks the fields needed for the commit report.
func (c *Config) ValidateRepos() error {
	if c.ReposDir == "" {
		return fmt.Errorf("repos_dir is required for the commit report")
	}
	return nil
}

// Credential returns the mail credential assembled from configuration.
func (c *Config) Credential() models.EmailCredential {
	return models.EmailCredential{
		Username:    c.GmailUsername,
		AppPassword: c.AppPassword,
	}
}

// RecipientList returns the configured recipients, defaulting to the
// sender's own address when none are set.
func (c *Config) RecipientList() []string {
	if len(c.Recipients) > 0 {
		return c.Recipients
	}
	return []string{c.Credential().Address()}
}

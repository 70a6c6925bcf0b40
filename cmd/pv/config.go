package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matsen/paperview/internal/config"
)

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set configuration values",
	Long: `Get or set configuration values in the global config file.

Usage:
  pv config                                   # Show all config
  pv config backend_url                       # Get specific value
  pv config backend_url http://gpu-box:8000   # Set value
  pv config path                              # Show file locations

Keys:
  backend_url    Base URL of the paper-generation backend (env PV_BACKEND_URL)
  api_key        Bearer token sent to the backend (env PV_API_KEY)
  default_style  Citation style: apa, mla, chicago or ieee
  download_dir   Where citation and draft files are written
  timeout        Generation timeout, e.g. 90s or 5m
  rate_limit     Backend requests per second`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show config, database and log file locations",
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

// PathsResponse lists the files pv reads and writes.
type PathsResponse struct {
	Config   string `json:"config"`
	Database string `json:"database"`
	Log      string `json:"log"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := mustLoadConfig()

	// No args: show all config
	if len(args) == 0 {
		values := configValues(cfg)
		if humanOutput {
			for _, key := range config.Keys() {
				fmt.Printf("%s %s\n", padRight(key+":", 15), values[key])
			}
			return nil
		}
		return outputJSON(values)
	}

	key := args[0]

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if key == "api_key" {
			value = maskSecret(value)
		}
		if humanOutput {
			fmt.Println(value)
			return nil
		}
		return outputJSON(map[string]string{key: value})
	}

	// Two args: set value
	if err := cfg.Set(key, args[1]); err != nil {
		if errors.Is(err, config.ErrUnknownKey) {
			exitWithError(ExitError, "%v", err)
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	if err := config.SaveGlobalConfig(cfg); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	value, _ := cfg.Get(key)
	if key == "api_key" {
		value = maskSecret(value)
	}
	if humanOutput {
		fmt.Printf("Set %s = %s\n", key, value)
		return nil
	}
	return outputJSON(map[string]string{"status": "updated", "key": key, "value": value})
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	resp := PathsResponse{
		Config:   config.GlobalConfigPath(),
		Database: config.DBPath(),
		Log:      config.LogPath(),
	}
	if humanOutput {
		fmt.Printf("config:   %s\n", resp.Config)
		fmt.Printf("database: %s\n", resp.Database)
		fmt.Printf("log:      %s\n", resp.Log)
		return nil
	}
	return outputJSON(resp)
}

// configValues returns every key's stored value with the API key masked.
func configValues(cfg *config.GlobalConfig) map[string]string {
	values := make(map[string]string, len(config.Keys()))
	for _, key := range config.Keys() {
		v, _ := cfg.Get(key)
		if key == "api_key" {
			v = maskSecret(v)
		}
		values[key] = v
	}
	return values
}

// maskSecret hides all but the last four characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

package configs

import (
	"flag"
	"os"

	"github.com/roadpeak/foolu/internal/infrastructure/env"
)

// DetermineConfigPath resolves the config file location from the --config
// flag, the FOOLU_CONFIG env var, or a list of conventional locations. An
// empty return means "no file": Load falls back to defaults and env
// overrides.
func DetermineConfigPath() string {
	var configPath string

	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	if configPath == "" {
		configPath = env.GetString("FOOLU_CONFIG", "")
	}

	if configPath == "" {
		candidates := []string{
			"./config.yaml",
			"./config.yml",
			"/etc/foolu/config.yaml",
			"/app/config.yaml", // common in Docker
		}

		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				configPath = p
				break
			}
		}
	}

	return configPath
}

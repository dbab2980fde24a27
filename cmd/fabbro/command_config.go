package main

import (
	"errors"
	"io"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"fabbro/internal/config"
)

const (
	configFormatJSON = "json"
	configFormatTOML = "toml"
)

type configOutput struct {
	ConfigPath string                 `json:"config_path" toml:"config_path"`
	DataDir    string                 `json:"data_dir" toml:"data_dir"`
	Logging    effectiveLoggingConfig `json:"logging" toml:"logging"`
	Storage    effectiveStorageConfig `json:"storage" toml:"storage"`
	Render     effectiveRenderConfig  `json:"render" toml:"render"`
	Input      effectiveInputConfig   `json:"input" toml:"input"`
}

type effectiveLoggingConfig struct {
	Level string `json:"level" toml:"level"`
}

type effectiveStorageConfig struct {
	Backend     string `json:"backend" toml:"backend"`
	SessionsDir string `json:"sessions_dir" toml:"sessions_dir"`
	DBPath      string `json:"db_path" toml:"db_path"`
}

type effectiveRenderConfig struct {
	Style string `json:"style" toml:"style"`
	Width int    `json:"width" toml:"width"`
}

type effectiveInputConfig struct {
	MaxBytes int64 `json:"max_bytes" toml:"max_bytes"`
}

func (c *cli) newConfigCmd() *cobra.Command {
	var (
		defaults bool
		format   string
	)
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolvedFormat, err := resolveConfigFormat(format)
			if err != nil {
				return err
			}
			cfg := config.DefaultConfig()
			if !defaults {
				cfg, err = config.Load()
				if err != nil {
					return err
				}
			}
			return writeConfigOutput(cmd.OutOrStdout(), resolvedFormat, buildConfigOutput(cfg))
		},
	}
	cmd.Flags().BoolVar(&defaults, "default", false, "print default config values")
	cmd.Flags().StringVar(&format, "format", configFormatTOML, "output format: toml|json")
	return cmd
}

func buildConfigOutput(cfg config.Config) configOutput {
	return configOutput{
		ConfigPath: config.ConfigPath(),
		DataDir:    config.DataDir(),
		Logging:    effectiveLoggingConfig{Level: cfg.LogLevel()},
		Storage: effectiveStorageConfig{
			Backend:     cfg.StorageBackend(),
			SessionsDir: config.SessionsDir(),
			DBPath:      config.DBPath(),
		},
		Render: effectiveRenderConfig{
			Style: cfg.RenderStyle(),
			Width: cfg.RenderWidth(),
		},
		Input: effectiveInputConfig{MaxBytes: cfg.MaxInputBytes()},
	}
}

func writeConfigOutput(out io.Writer, format string, payload any) error {
	switch format {
	case configFormatJSON:
		return writeJSON(out, payload)
	case configFormatTOML:
		data, err := toml.Marshal(payload)
		if err != nil {
			return err
		}
		if len(data) == 0 || data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		_, err = out.Write(data)
		return err
	default:
		return errors.New("unsupported format")
	}
}

func resolveConfigFormat(raw string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", configFormatTOML:
		return configFormatTOML, nil
	case configFormatJSON:
		return configFormatJSON, nil
	default:
		return "", errors.New("invalid format: must be toml or json")
	}
}

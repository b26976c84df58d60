package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/tripload/pkg/tripload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

type ConnectionConfig struct {
	Dialect             string `yaml:"dialect,omitempty"`
	Host                string `yaml:"host"`
	Port                int    `yaml:"port"`
	Username            string `yaml:"username"`
	Database            string `yaml:"database"`
	MaintenanceDatabase string `yaml:"maintenance_database,omitempty"`
	SSLMode             string `yaml:"sslmode"`
}

type ColumnConfig struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Nullable bool   `yaml:"nullable"`
}

type DatasetConfig struct {
	Name    string         `yaml:"name"`
	URL     string         `yaml:"url"`
	Format  string         `yaml:"format,omitempty"`
	Table   string         `yaml:"table"`
	Columns []ColumnConfig `yaml:"columns,omitempty"`
}

type ProjectConfig struct {
	Connection     ConnectionConfig `yaml:"connection"`
	CreateDatabase bool             `yaml:"create_database"`
	Timeout        string           `yaml:"timeout"`
	Datasets       []DatasetConfig  `yaml:"datasets"`
}

const ConfigFileName = "tripload.yaml"

func Load(sourcePath string) (*ProjectConfig, error) {
	configPath := filepath.Join(sourcePath, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// TimeoutDuration parses Timeout. An empty value means no timeout.
func (c *ProjectConfig) TimeoutDuration() (time.Duration, error) {
	if strings.TrimSpace(c.Timeout) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q in %s: %w", c.Timeout, ConfigFileName, tripload.ErrInvalidConfig)
	}
	return d, nil
}

// DatasetSpecs converts the datasets list. A nil result means the file
// did not override the built-in datasets.
func (c *ProjectConfig) DatasetSpecs() ([]tripload.DatasetSpec, error) {
	if len(c.Datasets) == 0 {
		return nil, nil
	}
	specs := make([]tripload.DatasetSpec, 0, len(c.Datasets))
	for i, d := range c.Datasets {
		spec := tripload.DatasetSpec{
			Name:   d.Name,
			URL:    d.URL,
			Format: tripload.Format(strings.ToLower(d.Format)),
			Table:  d.Table,
		}
		if spec.Name == "" {
			spec.Name = d.Table
		}
		switch spec.Format {
		case tripload.FormatAuto, tripload.FormatCSV, tripload.FormatParquet:
		default:
			return nil, fmt.Errorf("datasets[%d]: unknown format %q: %w", i, d.Format, tripload.ErrInvalidConfig)
		}
		if len(d.Columns) > 0 {
			cols := make([]tripload.Column, 0, len(d.Columns))
			for _, col := range d.Columns {
				typ, err := tripload.ParseColumnType(col.Type)
				if err != nil {
					return nil, fmt.Errorf("datasets[%d] column %q: %v: %w", i, col.Name, err, tripload.ErrInvalidConfig)
				}
				cols = append(cols, tripload.Column{Name: col.Name, Type: typ, Nullable: col.Nullable})
			}
			schema := tripload.NewSchema(cols...)
			spec.Schema = &schema
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// BatchFileV1 is the optional declarative form of a run, YAML or JSON by
// extension. Pointer fields distinguish "unset" from zero values so the file
// only overrides what it mentions; flags still win over the file.
type BatchFileV1 struct {
	Version int `yaml:"version" json:"version"`

	WorkingDir string `yaml:"workingDir" json:"workingDir"`
	InputFile  string `yaml:"inputFile" json:"inputFile"`
	OutputFile string `yaml:"outputFile" json:"outputFile"`

	SimulationSteps *int   `yaml:"simulationSteps" json:"simulationSteps"`
	DataType        string `yaml:"dataType" json:"dataType"`

	ML            *bool `yaml:"ml" json:"ml"`
	BenchCore     *bool `yaml:"benchcore" json:"benchcore"`
	Header        *bool `yaml:"header" json:"header"`
	IncludePrefix *bool `yaml:"includePrefix" json:"includePrefix"`

	LinearDataRange string `yaml:"linearDataRange" json:"linearDataRange"`
	DelaysFile      string `yaml:"delaysFile" json:"delaysFile"`
}

func ParseBatchFile(path string) (BatchFileV1, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return BatchFileV1{}, err
	}

	var b BatchFileV1
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &b); err != nil {
			return BatchFileV1{}, fmt.Errorf("invalid batch yaml: %w", err)
		}
	default:
		if err := json.Unmarshal(raw, &b); err != nil {
			return BatchFileV1{}, fmt.Errorf("invalid batch json: %w", err)
		}
	}

	if b.Version == 0 {
		// Allow omission as v1.
		b.Version = 1
	}
	if b.Version != 1 {
		return BatchFileV1{}, fmt.Errorf("unsupported batch file version %d (expected 1)", b.Version)
	}
	return b, nil
}

// ApplyTo overlays the file's set fields onto cfg.
func (b BatchFileV1) ApplyTo(cfg RunConfig) RunConfig {
	if b.WorkingDir != "" {
		cfg.WorkingDir = b.WorkingDir
	}
	if b.InputFile != "" {
		cfg.InputFile = b.InputFile
	}
	if b.OutputFile != "" {
		cfg.OutputFile = b.OutputFile
	}
	if b.SimulationSteps != nil {
		cfg.SimulationSteps = *b.SimulationSteps
	}
	if b.DataType != "" {
		cfg.DataType = b.DataType
	}
	if b.ML != nil {
		cfg.ML = *b.ML
	}
	if b.BenchCore != nil {
		cfg.BenchCore = *b.BenchCore
	}
	if b.Header != nil {
		cfg.Header = *b.Header
	}
	if b.IncludePrefix != nil {
		cfg.OmitPrefix = !*b.IncludePrefix
	}
	if b.LinearDataRange != "" {
		cfg.LinearDataRange = b.LinearDataRange
	}
	if b.DelaysFile != "" {
		cfg.DelaysFile = b.DelaysFile
	}
	return cfg
}

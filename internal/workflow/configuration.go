package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configurationLoadErrorTemplateConstant   = "failed to load workflow configuration: %w"
	configurationParseErrorTemplateConstant  = "failed to parse workflow configuration: %w"
	configurationPathRequiredMessageConstant = "workflow configuration path must be provided"
	configurationEmptyStepsMessageConstant   = "workflow configuration must define at least one step"
	configurationCommandMissingTemplate      = "workflow step %d missing command"
)

// Configuration describes the ordered batch steps loaded from YAML or JSON.
type Configuration struct {
	Steps []StepConfiguration `yaml:"steps" json:"steps"`
}

// StepConfiguration names a command and its declarative options.
type StepConfiguration struct {
	Name    string         `yaml:"name" json:"name"`
	Command string         `yaml:"command" json:"command"`
	Options map[string]any `yaml:"with" json:"with"`
}

// LoadConfiguration reads the batch definition from disk and performs basic validation.
func LoadConfiguration(filePath string) (Configuration, error) {
	trimmedPath := strings.TrimSpace(filePath)
	if len(trimmedPath) == 0 {
		return Configuration{}, errors.New(configurationPathRequiredMessageConstant)
	}

	contentBytes, readError := os.ReadFile(trimmedPath)
	if readError != nil {
		return Configuration{}, fmt.Errorf(configurationLoadErrorTemplateConstant, readError)
	}

	return ParseConfiguration(contentBytes)
}

// ParseConfiguration decodes a batch definition. Steps may sit at the top level or under a workflow key.
func ParseConfiguration(contentBytes []byte) (Configuration, error) {
	var configuration Configuration
	if unmarshalError := yaml.Unmarshal(contentBytes, &configuration); unmarshalError != nil {
		return Configuration{}, fmt.Errorf(configurationParseErrorTemplateConstant, unmarshalError)
	}

	if len(configuration.Steps) == 0 {
		var wrapper struct {
			Workflow Configuration `yaml:"workflow" json:"workflow"`
		}
		if nestedError := yaml.Unmarshal(contentBytes, &wrapper); nestedError == nil {
			configuration = wrapper.Workflow
		}
	}

	if len(configuration.Steps) == 0 {
		return Configuration{}, errors.New(configurationEmptyStepsMessageConstant)
	}

	for stepIndex := range configuration.Steps {
		configuration.Steps[stepIndex].Name = strings.TrimSpace(configuration.Steps[stepIndex].Name)
		trimmedCommand := strings.TrimSpace(configuration.Steps[stepIndex].Command)
		if len(trimmedCommand) == 0 {
			return Configuration{}, fmt.Errorf(configurationCommandMissingTemplate, stepIndex+1)
		}
		configuration.Steps[stepIndex].Command = trimmedCommand
	}

	return configuration, nil
}

package workflow

import (
	"fmt"
	"strconv"

	"github.com/go-viper/mapstructure/v2"

	"github.com/temirov/gitconsole/internal/execshell"
)

const (
	stepOptionsDecodeErrorTemplateConstant = "workflow step %s has invalid options: %w"
	stepOrdinalNameTemplateConstant        = "step %d"
	mapstructureTagNameConstant            = "mapstructure"
)

// StepOptions are the per-step settings read from the with map.
type StepOptions struct {
	Arguments         []string          `mapstructure:"arguments"`
	WorkingDirectory  string            `mapstructure:"working_directory"`
	Environment       map[string]string `mapstructure:"environment"`
	Input             string            `mapstructure:"input"`
	Verbose           bool              `mapstructure:"verbose"`
	ContinueOnFailure bool              `mapstructure:"continue_on_failure"`
}

// Step is one executable batch entry.
type Step struct {
	Name              string
	Command           execshell.ShellCommand
	ContinueOnFailure bool
}

// BuildSteps converts the declarative configuration into executable steps.
func BuildSteps(configuration Configuration) ([]Step, error) {
	steps := make([]Step, 0, len(configuration.Steps))
	for stepIndex, stepConfiguration := range configuration.Steps {
		step, buildError := buildStep(stepIndex, stepConfiguration)
		if buildError != nil {
			return nil, buildError
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func buildStep(stepIndex int, stepConfiguration StepConfiguration) (Step, error) {
	stepName := stepConfiguration.Name
	if len(stepName) == 0 {
		stepName = fmt.Sprintf(stepOrdinalNameTemplateConstant, stepIndex+1)
	}

	options, decodeError := decodeStepOptions(stepConfiguration.Options)
	if decodeError != nil {
		return Step{}, fmt.Errorf(stepOptionsDecodeErrorTemplateConstant, strconv.Quote(stepName), decodeError)
	}

	return Step{
		Name: stepName,
		Command: execshell.ShellCommand{
			Name: execshell.CommandName(stepConfiguration.Command),
			Details: execshell.CommandDetails{
				Arguments:            options.Arguments,
				WorkingDirectory:     options.WorkingDirectory,
				EnvironmentVariables: options.Environment,
				StandardInput:        options.Input,
				Verbose:              options.Verbose,
			},
		},
		ContinueOnFailure: options.ContinueOnFailure,
	}, nil
}

func decodeStepOptions(rawOptions map[string]any) (StepOptions, error) {
	var options StepOptions
	if len(rawOptions) == 0 {
		return options, nil
	}

	decoder, decoderError := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          mapstructureTagNameConstant,
		Result:           &options,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if decoderError != nil {
		return StepOptions{}, decoderError
	}
	if decodeError := decoder.Decode(rawOptions); decodeError != nil {
		return StepOptions{}, decodeError
	}
	return options, nil
}

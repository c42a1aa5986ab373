package flags_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitconsole/internal/utils/flags"
)

func TestFormatChoiceUsage(testInstance *testing.T) {
	testCases := []struct {
		name           string
		defaultChoice  string
		choices        []string
		description    string
		expectedOutput string
	}{
		{
			name:           "DefaultFirstChoice",
			defaultChoice:  "local",
			choices:        []string{"local", "user"},
			description:    "Write configuration to LOCAL or user scope.",
			expectedOutput: "`<LOCAL|user>` Write configuration to LOCAL or user scope.",
		},
		{
			name:           "DefaultSecondChoice",
			defaultChoice:  "user",
			choices:        []string{"local", "user"},
			description:    "Persist configuration for the selected scope.",
			expectedOutput: "`<local|USER>` Persist configuration for the selected scope.",
		},
		{
			name:           "EmptyDescription",
			defaultChoice:  "alpha",
			choices:        []string{"alpha", "beta"},
			description:    "",
			expectedOutput: "`<ALPHA|beta>`",
		},
		{
			name:           "DuplicateChoicesIgnored",
			defaultChoice:  "beta",
			choices:        []string{"beta", "beta", "alpha", "alpha"},
			description:    "Select between options.",
			expectedOutput: "`<BETA|alpha>` Select between options.",
		},
		{
			name:           "WhitespaceTrimmed",
			defaultChoice:  "primary",
			choices:        []string{" primary ", " secondary "},
			description:    "Pick a palette.",
			expectedOutput: "`<PRIMARY|secondary>` Pick a palette.",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			actual := flags.FormatChoiceUsage(testCase.defaultChoice, testCase.choices, testCase.description)
			require.Equal(testInstance, testCase.expectedOutput, actual)
		})
	}
}

func TestParseChoice(testInstance *testing.T) {
	choices := []string{"structured", "console"}

	testCases := []struct {
		name           string
		value          string
		expectedChoice string
		expectError    bool
	}{
		{name: "ExactMatch", value: "console", expectedChoice: "console"},
		{name: "CaseInsensitiveMatch", value: " STRUCTURED ", expectedChoice: "structured"},
		{name: "EmptySelectsDefault", value: "", expectedChoice: "structured"},
		{name: "UnknownRejected", value: "xml", expectError: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			choice, parseError := flags.ParseChoice(testCase.value, "structured", choices)
			if testCase.expectError {
				require.EqualError(testInstance, parseError, `invalid value "xml"; expected one of: structured, console`)
				return
			}
			require.NoError(testInstance, parseError)
			require.Equal(testInstance, testCase.expectedChoice, choice)
		})
	}
}

package utils_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitconsole/internal/utils"
)

const (
	testContextConfigurationPathConstant = "/tmp/gitconsole/config.yaml"
	testContextWorkingDirectoryConstant  = "/tmp/gitconsole/repository"
)

func TestCommandContextAccessorRoundTrip(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	executionContext := accessor.WithConfigurationFilePath(context.Background(), testContextConfigurationPathConstant)
	executionContext = accessor.WithWorkingDirectory(executionContext, testContextWorkingDirectoryConstant)

	configurationPath, configurationPathAvailable := accessor.ConfigurationFilePath(executionContext)
	require.True(testInstance, configurationPathAvailable)
	require.Equal(testInstance, testContextConfigurationPathConstant, configurationPath)

	workingDirectory, workingDirectoryAvailable := accessor.WorkingDirectory(executionContext)
	require.True(testInstance, workingDirectoryAvailable)
	require.Equal(testInstance, testContextWorkingDirectoryConstant, workingDirectory)
}

func TestCommandContextAccessorMissingValues(testInstance *testing.T) {
	accessor := utils.NewCommandContextAccessor()

	_, configurationPathAvailable := accessor.ConfigurationFilePath(context.Background())
	require.False(testInstance, configurationPathAvailable)

	_, workingDirectoryAvailable := accessor.WorkingDirectory(nil)
	require.False(testInstance, workingDirectoryAvailable)

	derivedContext := accessor.WithWorkingDirectory(nil, testContextWorkingDirectoryConstant)
	workingDirectory, workingDirectoryAvailable := accessor.WorkingDirectory(derivedContext)
	require.True(testInstance, workingDirectoryAvailable)
	require.Equal(testInstance, testContextWorkingDirectoryConstant, workingDirectory)
}

package setup

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"go.uber.org/zap"

	"github.com/temirov/dotupdater/internal/logsink"
	"github.com/temirov/dotupdater/internal/repos/dependencies"
	"github.com/temirov/dotupdater/internal/repos/shared"
)

const (
	applicationDirectoryNameConstant           = "dotupdater"
	directoryPermissionsConstant               = fs.FileMode(0o755)
	configurationFilePermissionsConstant       = fs.FileMode(0o644)
	sinkNotConfiguredMessageConstant           = "log sink not configured"
	configurationDirectoryRequiredMessage      = "configuration directory must be provided"
	configurationDirectoryReadyMessageConstant = "configuration directory ready"
	configurationFileCreatedMessageConstant    = "blueprint configuration file created"
	configurationFileExistsMessageConstant     = "configuration file already exists, leaving it untouched"
	logDirectoryReadyMessageConstant           = "log directory ready"
	setupStepFailedMessageConstant             = "setup step failed"
	directoryErrorTemplateConstant             = "creating directory %s: %w"
	writeErrorTemplateConstant                 = "writing %s: %w"
	logFieldPathConstant                       = "path"
	logFieldFormatConstant                     = "format"
)

// ErrSinkNotConfigured indicates the service was built without a log sink.
var ErrSinkNotConfigured = errors.New(sinkNotConfiguredMessageConstant)

// ErrConfigurationDirectoryRequired indicates an empty configuration directory option.
var ErrConfigurationDirectoryRequired = errors.New(configurationDirectoryRequiredMessage)

// DefaultConfigurationDirectory returns $XDG_CONFIG_HOME/dotupdater.
func DefaultConfigurationDirectory() string {
	return filepath.Join(xdg.ConfigHome, applicationDirectoryNameConstant)
}

// Dependencies wires a Service. FileSystem and Clock are optional.
type Dependencies struct {
	FileSystem shared.FileSystem
	Clock      shared.Clock
	Sink       logsink.Sink
}

// Options describes what to bootstrap.
type Options struct {
	ConfigurationDirectory string
	Format                 BlueprintFormat
	LogFilePath            string
}

// Result reports the paths the service prepared.
type Result struct {
	ConfigurationDirectory   string
	ConfigurationFile        string
	ConfigurationFileCreated bool
	LogDirectory             string
}

// Service creates the configuration directory, the blueprint file and the log directory.
type Service struct {
	fileSystem shared.FileSystem
	clock      shared.Clock
	sink       logsink.Sink
}

// NewService validates dependencies and constructs a Service.
func NewService(dependencySet Dependencies) (*Service, error) {
	if dependencySet.Sink == nil {
		return nil, ErrSinkNotConfigured
	}
	return &Service{
		fileSystem: dependencies.ResolveFileSystem(dependencySet.FileSystem),
		clock:      dependencies.ResolveClock(dependencySet.Clock),
		sink:       dependencySet.Sink,
	}, nil
}

// Initialize runs every bootstrap step. An existing configuration file is left as is.
func (service *Service) Initialize(options Options) (Result, error) {
	configurationDirectory := strings.TrimSpace(options.ConfigurationDirectory)
	if len(configurationDirectory) == 0 {
		return Result{}, ErrConfigurationDirectoryRequired
	}
	format := options.Format
	if len(format) == 0 {
		format = BlueprintFormatYAML
	}

	result := Result{ConfigurationDirectory: configurationDirectory}
	if directoryError := service.ensureDirectory(configurationDirectory, configurationDirectoryReadyMessageConstant); directoryError != nil {
		return result, directoryError
	}

	blueprint, renderError := RenderBlueprint(format, strings.TrimSpace(options.LogFilePath))
	if renderError != nil {
		service.recordFailure(configurationDirectory, renderError)
		return result, renderError
	}

	result.ConfigurationFile = filepath.Join(configurationDirectory, format.FileName())
	writeError := service.fileSystem.WriteFile(result.ConfigurationFile, blueprint, configurationFilePermissionsConstant)
	switch {
	case writeError == nil:
		result.ConfigurationFileCreated = true
		service.sink.Record(service.clock.Now(), logsink.SeverityInfo, configurationFileCreatedMessageConstant,
			zap.String(logFieldPathConstant, result.ConfigurationFile),
			zap.String(logFieldFormatConstant, string(format)))
	case errors.Is(writeError, fs.ErrExist):
		service.sink.Record(service.clock.Now(), logsink.SeverityNotice, configurationFileExistsMessageConstant,
			zap.String(logFieldPathConstant, result.ConfigurationFile))
	default:
		wrappedError := fmt.Errorf(writeErrorTemplateConstant, result.ConfigurationFile, writeError)
		service.recordFailure(result.ConfigurationFile, wrappedError)
		return result, wrappedError
	}

	logFilePath := strings.TrimSpace(options.LogFilePath)
	if len(logFilePath) == 0 {
		return result, nil
	}
	result.LogDirectory = filepath.Dir(logFilePath)
	if directoryError := service.ensureDirectory(result.LogDirectory, logDirectoryReadyMessageConstant); directoryError != nil {
		return result, directoryError
	}
	return result, nil
}

func (service *Service) ensureDirectory(directory string, readyMessage string) error {
	if mkdirError := service.fileSystem.MkdirAll(directory, directoryPermissionsConstant); mkdirError != nil {
		wrappedError := fmt.Errorf(directoryErrorTemplateConstant, directory, mkdirError)
		service.recordFailure(directory, wrappedError)
		return wrappedError
	}
	service.sink.Record(service.clock.Now(), logsink.SeverityInfo, readyMessage, zap.String(logFieldPathConstant, directory))
	return nil
}

func (service *Service) recordFailure(path string, failure error) {
	service.sink.Record(service.clock.Now(), logsink.SeverityError, setupStepFailedMessageConstant,
		zap.String(logFieldPathConstant, path),
		zap.Error(failure))
}

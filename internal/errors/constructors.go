package errors

// Convenience constructors for the failure patterns the commands raise.

// Network errors

func NetworkError(message string, cause error) *ErrorRecord {
	return Wrap(cause, KindNetwork, SeverityMedium, message).
		WithSuggestions("Check network connectivity", "Verify proxy settings if behind a corporate proxy")
}

// Registry errors

func RegistryError(operation, registry string, cause error) *ErrorRecord {
	return Wrap(cause, KindRegistry, SeverityMedium, "registry operation failed").
		WithDetail(DetailOperation, operation).
		WithDetail(DetailRegistry, registry).
		WithSuggestions("Verify registry credentials", "Check registry availability")
}

func RegistryAuthError(registry string, statusCode int) *ErrorRecord {
	return New(KindRegistry, SeverityHigh, "registry authentication rejected").
		WithDetail(DetailRegistry, registry).
		WithDetail(DetailStatusCode, statusCode).
		WithSuggestions("Run 'imageforge init' and set registry credentials", "Check that the token has push scope")
}

// Docker errors

func DockerError(message string, cause error) *ErrorRecord {
	return Wrap(cause, KindDocker, SeverityMedium, message).
		WithSuggestions("Check that the Docker daemon is running", "Verify the current user can access the Docker socket")
}

// Configuration errors

func ConfigLoadError(path string, cause error) *ErrorRecord {
	return Wrap(cause, KindConfigLoad, SeverityHigh, "failed to load configuration").
		WithDetail(DetailPath, path).
		WithSuggestions("Run 'imageforge init' to create a starter configuration", "Check YAML syntax")
}

func ValidationError(field, reason string) *ErrorRecord {
	return New(KindValidation, SeverityMedium, "configuration validation failed").
		WithDetail("field", field).
		WithDetail("reason", reason)
}

// Build pipeline errors

func BuildError(stage string, cause error) *ErrorRecord {
	return Wrap(cause, KindBuild, SeverityHigh, "image build failed").
		WithDetail(DetailOperation, "build").
		WithDetail("stage", stage)
}

func TemplateError(path string, cause error) *ErrorRecord {
	return Wrap(cause, KindTemplate, SeverityMedium, "Dockerfile template generation failed").
		WithDetail(DetailPath, path)
}

func ManifestError(platform string, cause error) *ErrorRecord {
	return Wrap(cause, KindManifest, SeverityMedium, "manifest creation failed").
		WithDetail(DetailOperation, "manifest").
		WithDetail(DetailPlatform, platform)
}

// Filesystem errors

func FileWriteError(path string, cause error) *ErrorRecord {
	return Wrap(cause, KindFileWrite, SeverityMedium, "file write failed").
		WithDetail(DetailPath, path).
		WithSuggestions("Check directory permissions", "Check available disk space")
}

// Security errors

func SecurityError(message string) *ErrorRecord {
	return New(KindSecurity, SeverityHigh, message).
		WithSuggestions("Review the base image for known vulnerabilities", "Do not publish the image until resolved")
}

// CLI argument errors

func ArgumentError(argument, reason string) *ErrorRecord {
	return New(KindArgument, SeverityLow, "invalid argument").
		WithDetail("argument", argument).
		WithDetail("reason", reason)
}

// Local test errors

func TestError(message string, cause error) *ErrorRecord {
	return Wrap(cause, KindTest, SeverityMedium, message).
		WithDetail(DetailOperation, "test")
}

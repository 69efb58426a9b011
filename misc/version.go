// Package misc holds build time program information.
package misc

var (
	// set by linker
	version = "dev"
	gitHash = "unknown"
)

const appName = "h2d"

// GetAppName returns program name used for logs, reports and the CLI.
func GetAppName() string {
	return appName
}

// GetVersion returns program version.
func GetVersion() string {
	return version
}

// GetGitHash returns source revision program was built from.
func GetGitHash() string {
	return gitHash
}

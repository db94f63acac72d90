// Package deps checks that the external tools basesync shells out to are
// installed.
package deps

import "github.com/agentstation/basesync/pkg/constants"

// Dependency describes an external executable.
type Dependency struct {
	Name          string   `json:"name" yaml:"name"`
	DisplayName   string   `json:"display_name" yaml:"display_name"`
	Description   string   `json:"description" yaml:"description"`
	CheckCommands []string `json:"check_commands" yaml:"check_commands"`
	MinVersion    string   `json:"min_version,omitempty" yaml:"min_version,omitempty"`
	InstallURL    string   `json:"install_url" yaml:"install_url"`
	// Required dependencies abort a sync when missing; optional ones only warn.
	Required bool `json:"required" yaml:"required"`
}

// DependencyStatus is the result of checking one dependency.
type DependencyStatus struct {
	Available  bool   `json:"available" yaml:"available"`
	Path       string `json:"path,omitempty" yaml:"path,omitempty"`
	Version    string `json:"version,omitempty" yaml:"version,omitempty"`
	CheckError error  `json:"-" yaml:"-"`
}

// Git is the version control dependency. Commits cannot be made without it.
func Git(binary string) Dependency {
	if binary == "" {
		binary = constants.GitCommand
	}
	return Dependency{
		Name:          "git",
		DisplayName:   "Git",
		Description:   "Stages and commits each base update",
		CheckCommands: []string{binary},
		InstallURL:    "https://git-scm.com/downloads",
		Required:      true,
	}
}

// Formatter is the formatting tool run after every rewrite. Its failures
// are ignored during a sync, so it is optional.
func Formatter(command string) Dependency {
	if command == "" {
		command = constants.DefaultFormatter
	}
	return Dependency{
		Name:          "formatter",
		DisplayName:   command,
		Description:   "Formats the singularity file after each rewrite",
		CheckCommands: []string{command},
		InstallURL:    "https://pre-commit.com/#install",
		Required:      false,
	}
}

// Defaults returns the dependencies of a sync run.
func Defaults(gitBinary, formatterCommand string) []Dependency {
	return []Dependency{Git(gitBinary), Formatter(formatterCommand)}
}

package deps

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/agentstation/basesync/pkg/constants"
)

var versionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`version\s+v?(\d+\.\d+(?:\.\d+)?)`),
	regexp.MustCompile(`v?(\d+\.\d+\.\d+)`),
	regexp.MustCompile(`(\d+\.\d+)`),
}

// Check verifies if a dependency is available on the system.
// It tries all CheckCommands in order and returns the first one that succeeds.
func Check(ctx context.Context, dep Dependency) DependencyStatus {
	status := DependencyStatus{}

	for _, cmd := range dep.CheckCommands {
		path, err := exec.LookPath(cmd)
		if err != nil {
			continue
		}

		status.Available = true
		status.Path = path

		version, err := getVersion(ctx, path)
		if err != nil {
			if dep.MinVersion != "" {
				status.CheckError = fmt.Errorf("found %s but could not detect version: %w", cmd, err)
			}
			return status
		}
		status.Version = version
		if dep.MinVersion != "" && !meetsMinVersion(version, dep.MinVersion) {
			status.CheckError = fmt.Errorf("found %s version %s but requires %s or later", cmd, version, dep.MinVersion)
		}
		return status
	}

	if len(dep.CheckCommands) > 0 {
		status.CheckError = fmt.Errorf("%s not found in PATH (tried: %s)", dep.DisplayName, strings.Join(dep.CheckCommands, ", "))
	}
	return status
}

// CheckAll checks every dependency and returns statuses keyed by name.
func CheckAll(ctx context.Context, deps []Dependency) map[string]DependencyStatus {
	results := make(map[string]DependencyStatus, len(deps))
	for _, dep := range deps {
		results[dep.Name] = Check(ctx, dep)
	}
	return results
}

// HasMissingDeps returns true if any dependencies are missing.
func HasMissingDeps(statuses map[string]DependencyStatus) bool {
	for _, status := range statuses {
		if !status.Available {
			return true
		}
	}
	return false
}

// GetMissingDeps returns the dependencies that are missing, in input order.
func GetMissingDeps(deps []Dependency, statuses map[string]DependencyStatus) []Dependency {
	var missing []Dependency
	for _, dep := range deps {
		if status, ok := statuses[dep.Name]; ok && !status.Available {
			missing = append(missing, dep)
		}
	}
	return missing
}

// getVersion runs `<cmd> --version` and extracts a version number.
func getVersion(ctx context.Context, cmdPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.VersionProbeTimeout)
	defer cancel()

	//nolint:gosec // cmdPath comes from exec.LookPath on a configured dependency
	output, err := exec.CommandContext(ctx, cmdPath, "--version").CombinedOutput()
	if err != nil {
		return "", err
	}
	if version := extractVersion(string(output)); version != "" {
		return version, nil
	}
	return "", fmt.Errorf("could not determine version")
}

// extractVersion tries to extract a version number from command output,
// e.g. "git version 2.43.0" or "pre-commit 3.6.0".
func extractVersion(output string) string {
	for _, re := range versionPatterns {
		if matches := re.FindStringSubmatch(output); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}

// meetsMinVersion compares dotted numeric versions part by part.
func meetsMinVersion(detected, required string) bool {
	detectedParts := strings.Split(strings.TrimPrefix(detected, "v"), ".")
	requiredParts := strings.Split(strings.TrimPrefix(required, "v"), ".")

	for i := 0; i < len(requiredParts); i++ {
		want, _ := strconv.Atoi(requiredParts[i])
		have := 0
		if i < len(detectedParts) {
			have, _ = strconv.Atoi(detectedParts[i])
		}
		if have != want {
			return have > want
		}
	}
	return true
}

// Package application provides the interface between the basesync app and
// its commands.
//
// Commands accept an Application rather than the concrete App so they can
// be tested with Mock:
//
//	mock := &application.Mock{
//	    SettingsFunc: func() application.Settings {
//	        return application.Settings{Singularity: "testdata/pokedex.json"}
//	    },
//	}
//	cmd := diff.NewCommand(mock)
package application

import (
	"github.com/rs/zerolog"
)

// Settings are the sync defaults resolved from config file, environment
// and global flags. Command flags override them.
type Settings struct {
	Singularity string
	Formatter   string
	NoFormat    bool
	Repo        string
}

// Application provides what commands need from the app.
type Application interface {
	// Settings returns the resolved sync defaults.
	Settings() Settings

	// Logger returns the configured logger instance.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (table, json, yaml).
	OutputFormat() string

	// Version information.
	Version() string
	Commit() string
	Date() string
	BuiltBy() string
}

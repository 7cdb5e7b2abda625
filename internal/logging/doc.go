// Package logging provides opt-in file logging with rotation for envcheck.
// With --debug, JSON logs are written to ~/.envcheck/logs/. Otherwise only
// warnings and errors reach stderr, so stdout stays reserved for reports.
package logging

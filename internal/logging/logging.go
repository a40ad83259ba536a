// Package logging centralizes zerolog setup so every component gets a
// consistently-shaped structured logger (component name, console or JSON
// output depending on environment).
package logging

import (
	"os"

	"github.com/rs/zerolog"
)

// New returns a zerolog.Logger tagged with component, writing to stderr.
// Output is pretty-printed console format unless LOG_FORMAT=json is set,
// matching the dev-vs-prod split seen across the pack's zerolog users.
func New(component string) zerolog.Logger {
	var writer = os.Stderr
	if os.Getenv("LOG_FORMAT") == "json" {
		return zerolog.New(writer).With().Timestamp().Str("component", component).Logger()
	}
	console := zerolog.ConsoleWriter{Out: writer}
	return zerolog.New(console).With().Timestamp().Str("component", component).Logger()
}

package config

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var portPattern = regexp.MustCompile(`^[0-9]{1,5}$`)

// Validate checks the configuration for the selected database driver.
func (c *Config) Validate() error {
	postgres := c.DBDriver == DriverPostgres
	sqlite := c.DBDriver == DriverSQLite

	return validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Match(portPattern)),
		validation.Field(&c.DBDriver, validation.Required, validation.In(DriverPostgres, DriverSQLite)),
		validation.Field(&c.DBHost, validation.When(postgres, validation.Required)),
		validation.Field(&c.DBPort, validation.When(postgres, validation.Required, validation.Match(portPattern))),
		validation.Field(&c.DBUser, validation.When(postgres, validation.Required)),
		validation.Field(&c.DBName, validation.When(postgres, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(sqlite, validation.Required)),
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(16, 0)),
		validation.Field(&c.ImagesDir, validation.Required),
		validation.Field(&c.GeneratorID, validation.Min(int64(0)), validation.Max(int64(1023))),
		validation.Field(&c.RateLimitPerHour, validation.Min(0)),
		validation.Field(&c.SearchDistanceFilter, validation.In("at_least", "at_most")),
		validation.Field(&c.SearchBackend, validation.In("linear", "pgvector")),
		validation.Field(&c.LogFormat, validation.In("json", "console")),
	)
}

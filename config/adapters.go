package config

import (
	"os"
	"time"

	"pickem-app/database"
	"pickem-app/logging"
	"pickem-app/services"
)

// ToDatabaseConfig converts Config to database.Config
func (c *Config) ToDatabaseConfig() database.Config {
	return database.Config{
		URI:      c.Database.URI,
		Host:     c.Database.Host,
		Port:     c.Database.Port,
		Username: c.Database.Username,
		Password: c.Database.Password,
		Database: c.Database.Database,
		Timeout:  c.Database.Timeout,
	}
}

// ToLoggingConfig converts Config to logging.Config
func (c *Config) ToLoggingConfig() logging.Config {
	return logging.Config{
		Level:       c.Logging.Level,
		Output:      os.Stdout,
		Prefix:      c.Logging.Prefix,
		EnableColor: c.Logging.EnableColor,
	}
}

// ToOddsClientConfig converts Config to services.OddsClientConfig
func (c *Config) ToOddsClientConfig() services.OddsClientConfig {
	return services.OddsClientConfig{
		BaseURL:  c.Feed.BaseURL,
		APIKey:   c.Feed.OddsAPIKey,
		DaysFrom: c.Feed.DaysFrom,
		Regions:  c.Feed.Regions,
		Timeout:  c.Feed.Timeout,
	}
}

// ToUpdaterSchedule converts Config to services.UpdaterSchedule. The
// timetable is expressed in UTC.
func (c *Config) ToUpdaterSchedule() services.UpdaterSchedule {
	return services.UpdaterSchedule{
		ScoreSpecs: c.App.ScoreSchedules,
		OddsSpec:   c.App.OddsSchedule,
		Location:   time.UTC,
		JobTimeout: 2 * time.Minute,
	}
}

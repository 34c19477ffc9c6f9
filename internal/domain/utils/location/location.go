package location

import (
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once sync.Once
	loc  *time.Location
)

// Location returns the event time zone from settings.timezone, UTC if unset or unknown.
func Location() *time.Location {
	once.Do(func() {
		name := viper.GetString("settings.timezone")
		if name == "" {
			loc = time.UTC
			return
		}
		l, err := time.LoadLocation(name)
		if err != nil {
			loc = time.UTC
			return
		}
		loc = l
	})
	return loc
}

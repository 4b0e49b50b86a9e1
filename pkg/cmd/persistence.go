package cmd

import (
	"strings"

	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence/file"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence/memory"
	"github.com/litecrm-orivanta/lite-crm-sub001/pkg/persistence/redis"
)

// NewPersistence picks a backend from the database URL scheme: memory://,
// redis://host:port, or a file path (the default).
func NewPersistence(databaseURL string) persistence.Persistence {
	switch {
	case databaseURL == "memory://":
		return memory.NewPersistence()
	case strings.HasPrefix(databaseURL, "redis://"):
		return redis.NewPersistence(strings.TrimPrefix(databaseURL, "redis://"))
	default:
		return file.NewPersistence(databaseURL)
	}
}

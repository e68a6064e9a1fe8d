package entity

import "time"

// Migration archivo .sql de migración y su estado de ejecución.
type Migration struct {
	Name       string
	Executed   bool
	ExecutedAt time.Time
}

package config

const (
	// DefaultHistoryDBPath is the default path for the local run-history database.
	DefaultHistoryDBPath = "./wp2presta.db"

	// DefaultLogFile is where the migration log is written alongside the console.
	DefaultLogFile = "./migration.log"

	// DefaultWorkers processes pages sequentially, which keeps the run report
	// in source order.
	DefaultWorkers = 1
)

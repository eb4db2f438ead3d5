package planstore

// NewStoreFromConfig opens the session store at dbPath. If dbPath is empty it
// returns (nil, nil); callers then keep sessions only as snapshot files.
func NewStoreFromConfig(dbPath string) (Store, error) {
	if dbPath == "" {
		return nil, nil
	}
	return NewSQLiteStore(dbPath)
}

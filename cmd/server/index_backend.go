package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"genesis.ai/internal/persistence/indexdb"
	"genesis.ai/internal/persistence/snapshot"
	"genesis.ai/internal/sim/catalogs"
	"genesis.ai/internal/sim/tuning"
	"genesis.ai/internal/sim/world"
)

type runtimeIndex interface {
	world.TickLogger
	Close() error
	RecordRun(worldID, runID string, seed int64, configDir string, cats *catalogs.Catalogs, tune tuning.Tuning) error
	RecordSnapshot(path string, snap snapshot.WorldSnapshotV1)
	Stats() indexdb.Stats
}

func openRuntimeIndex(worldDir string, disableDB bool) (runtimeIndex, error) {
	if disableDB {
		return nil, nil
	}

	backend := strings.ToLower(strings.TrimSpace(os.Getenv("GENESIS_INDEX_BACKEND")))
	if backend == "" {
		backend = "sqlite"
	}

	switch backend {
	case "none", "off", "disabled":
		return nil, nil
	case "sqlite":
		idx, err := indexdb.OpenSQLite(filepath.Join(worldDir, "index", "world.sqlite"))
		if err != nil {
			return nil, err
		}
		return idx, nil
	default:
		return nil, fmt.Errorf("unsupported GENESIS_INDEX_BACKEND: %s", backend)
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

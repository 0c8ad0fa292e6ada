package migration

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// MigrationState is one migration file compared to the database version.
type MigrationState struct {
	Version uint
	Name    string
	Applied bool
}

// Status summarises which migrations are applied.
type Status struct {
	Current    uint
	Dirty      bool
	Migrations []MigrationState
}

// Pending returns the migrations newer than the current version.
func (s *Status) Pending() []MigrationState {
	out := make([]MigrationState, 0)
	for _, mig := range s.Migrations {
		if !mig.Applied {
			out = append(out, mig)
		}
	}
	return out
}

// NewStatus builds a Status from base names as returned by ListMigrations.
func NewStatus(current uint, dirty bool, baseNames []string) (*Status, error) {
	st := &Status{Current: current, Dirty: dirty, Migrations: make([]MigrationState, 0, len(baseNames))}
	for _, base := range baseNames {
		version, name, err := splitBaseName(base)
		if err != nil {
			return nil, err
		}
		st.Migrations = append(st.Migrations, MigrationState{
			Version: version,
			Name:    name,
			Applied: version <= current,
		})
	}
	sort.Slice(st.Migrations, func(i, j int) bool {
		return st.Migrations[i].Version < st.Migrations[j].Version
	})
	return st, nil
}

func splitBaseName(base string) (uint, string, error) {
	prefix, name, _ := strings.Cut(base, "_")
	v, err := strconv.ParseUint(prefix, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("migration %q has no numeric version: %w", base, err)
	}
	return uint(v), name, nil
}

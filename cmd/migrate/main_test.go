package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmigrations "github.com/wolfman30/telehealth-ussd/migrations"
)

type fakeMigrator struct {
	upErr  error
	steps  []int
	forced int
}

func (f *fakeMigrator) Up() error                    { return f.upErr }
func (f *fakeMigrator) Steps(n int) error            { f.steps = append(f.steps, n); return nil }
func (f *fakeMigrator) Force(v int) error            { f.forced = v; return nil }
func (f *fakeMigrator) Version() (uint, bool, error) { return 6, false, nil }

func TestRunCommands(t *testing.T) {
	m := &fakeMigrator{upErr: migrate.ErrNoChange}
	require.NoError(t, run(m, nil))

	require.NoError(t, run(m, []string{"down"}))
	require.NoError(t, run(m, []string{"down", "2"}))
	assert.Equal(t, []int{-1, -2}, m.steps)

	require.NoError(t, run(m, []string{"force", "4"}))
	assert.Equal(t, 4, m.forced)
	require.Error(t, run(m, []string{"force"}))

	require.NoError(t, run(m, []string{"version"}))
	require.Error(t, run(m, []string{"sideways"}))
}

func TestRunUpFailure(t *testing.T) {
	err := run(&fakeMigrator{upErr: errors.New("syntax error")}, []string{"up"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestMigrationsArePaired(t *testing.T) {
	entries, err := appmigrations.FS.ReadDir(".")
	require.NoError(t, err)
	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, 6, ups)
	assert.Equal(t, ups, downs)
}

package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMaintenanceTaskNextDueAfter(t *testing.T) {
	t.Parallel()

	base := time.Date(2025, time.January, 15, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		cadence string
		want    time.Time
	}{
		{MAINTENANCE_WEEKLY, base.AddDate(0, 0, 7)},
		{MAINTENANCE_MONTHLY, base.AddDate(0, 1, 0)},
		{MAINTENANCE_QUARTERLY, base.AddDate(0, 3, 0)},
		{MAINTENANCE_YEARLY, base.AddDate(1, 0, 0)},
		{"bogus", base.AddDate(0, 1, 0)},
		{"", base.AddDate(0, 1, 0)},
	}
	for _, c := range cases {
		task := &MaintenanceTask{Cadence: c.cadence}
		assert.Equal(t, c.want, task.NextDueAfter(base), "cadence %q", c.cadence)
	}
}

func TestMaintenanceTaskIsOverdue(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	assert.True(t, (&MaintenanceTask{NextDueAt: &past}).IsOverdue())
	assert.False(t, (&MaintenanceTask{NextDueAt: &future}).IsOverdue())
	assert.False(t, (&MaintenanceTask{}).IsOverdue())
}

func TestMaintenanceTaskValidate(t *testing.T) {
	t.Parallel()

	valid := &MaintenanceTask{Title: "rotate tokens", Cadence: MAINTENANCE_MONTHLY}
	assert.NoError(t, valid.Validate())

	badCadence := &MaintenanceTask{Title: "rotate tokens", Cadence: "fortnightly"}
	assert.Error(t, badCadence.Validate())

	missingTitle := &MaintenanceTask{Cadence: MAINTENANCE_WEEKLY}
	assert.Error(t, missingTitle.Validate())
}

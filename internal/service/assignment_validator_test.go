package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

func validatorRegistration() *models.Registration {
	return &models.Registration{
		ID:                   "reg-1",
		Seats:                3,
		SeatsRequested:       []string{"Security Council - France", "Security Council - Ghana", "DISEC - Chile"},
		BackupSeatsRequested: []string{"WHO - Kenya", "WHO - Peru"},
		RequiresBackup:       false,
	}
}

func TestValidateAssignmentCapacity(t *testing.T) {
	reg := validatorRegistration()

	result := ValidateAssignment(reg, []string{
		"Security Council - France", "Security Council - Ghana", "DISEC - Chile", "Security Council - France",
	})
	assert.False(t, result.IsValid())
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "4")
	assert.Contains(t, result.Errors[0], "3")
}

func TestValidateAssignmentDuplicates(t *testing.T) {
	reg := validatorRegistration()

	result := ValidateAssignment(reg, []string{"Security Council - France", "Security Council - France"})
	assert.False(t, result.IsValid())
	assert.Contains(t, result.Errors, "duplicate seats detected")
}

func TestValidateAssignmentMembership(t *testing.T) {
	reg := validatorRegistration()

	result := ValidateAssignment(reg, []string{"Security Council - France", "WHO - Kenya"})
	assert.False(t, result.IsValid())
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "WHO - Kenya")

	// Enabling the backup flag makes the same label eligible.
	reg.RequiresBackup = true
	result = ValidateAssignment(reg, []string{"Security Council - France", "WHO - Kenya"})
	assert.True(t, result.IsValid())
}

func TestValidateAssignmentMembershipListsAllOffenders(t *testing.T) {
	reg := validatorRegistration()

	result := ValidateAssignment(reg, []string{"UNHCR - Japan", "UNHCR - Italy"})
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "UNHCR - Japan")
	assert.Contains(t, result.Errors[0], "UNHCR - Italy")
}

func TestValidateAssignmentChecksAccumulate(t *testing.T) {
	reg := validatorRegistration()

	// Over capacity, duplicated and out of pool at once: all three errors.
	result := ValidateAssignment(reg, []string{
		"UNHCR - Japan", "UNHCR - Japan", "Security Council - France", "Security Council - Ghana",
	})
	assert.Len(t, result.Errors, 3)
}

func TestValidateAssignmentPartialWarning(t *testing.T) {
	reg := validatorRegistration()

	result := ValidateAssignment(reg, []string{"Security Council - France", "Security Council - Ghana"})
	assert.True(t, result.IsValid())
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "2 of 3")
}

func TestValidateAssignmentBackupOnlyWarning(t *testing.T) {
	reg := validatorRegistration()
	reg.Seats = 2
	reg.SeatsRequested = []string{"DISEC - Chile"}
	reg.BackupSeatsRequested = []string{"WHO - Kenya", "WHO - Peru"}
	reg.RequiresBackup = true

	result := ValidateAssignment(reg, []string{"WHO - Kenya", "WHO - Peru"})
	assert.True(t, result.IsValid())
	assert.Contains(t, result.Warnings, "all assigned seats come from the backup list")
}

func TestValidateAssignmentEmptyProposal(t *testing.T) {
	reg := validatorRegistration()

	result := ValidateAssignment(reg, nil)
	assert.True(t, result.IsValid())
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.Warnings)
}

func TestAssignmentProgress(t *testing.T) {
	pct, complete := AssignmentProgress(7, 10)
	assert.Equal(t, 70, pct)
	assert.False(t, complete)

	pct, complete = AssignmentProgress(5, 5)
	assert.Equal(t, 100, pct)
	assert.True(t, complete)

	pct, complete = AssignmentProgress(2, 3)
	assert.Equal(t, 67, pct)
	assert.False(t, complete)

	pct, complete = AssignmentProgress(0, 0)
	assert.Equal(t, 0, pct)
	assert.False(t, complete)
}

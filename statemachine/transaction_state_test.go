package statemachine

import (
	"testing"

	"foodpos-api/models"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	assert.NoError(t, CanTransition(models.TransactionCompleted, models.TransactionRefunded, models.RoleAdmin))

	err := CanTransition(models.TransactionCompleted, models.TransactionRefunded, models.RoleCashier)
	assert.Error(t, err)

	err = CanTransition(models.TransactionRefunded, models.TransactionCompleted, models.RoleAdmin)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "none (terminal state)")
	}
}

func TestValidTransitionsFrom(t *testing.T) {
	assert.Equal(t,
		[]models.TransactionStatus{models.TransactionRefunded},
		ValidTransitionsFrom(models.TransactionCompleted))
	assert.Empty(t, ValidTransitionsFrom(models.TransactionRefunded))
	assert.Len(t, GetAllTransitions(), 1)
}

func TestGetAllTransitionsCoversLifecycle(t *testing.T) {
	all := GetAllTransitions()
	assert.Equal(t, []Transition{
		{From: models.TransactionCompleted, To: models.TransactionRefunded, Actor: models.RoleAdmin},
	}, all)

	for _, tr := range all {
		assert.NoError(t, CanTransition(tr.From, tr.To, tr.Actor))
		assert.Contains(t, ValidTransitionsFrom(tr.From), tr.To)
	}
	for from := range lifecycle {
		assert.Contains(t, statuses, from)
	}

	err := CanTransition(models.TransactionCompleted, models.TransactionCompleted, models.RoleAdmin)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "Valid transitions from completed are: refunded")
	}
}

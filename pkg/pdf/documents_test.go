package pdf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roblesmun/roblesmun-api/internal/models"
)

func sampleRegistration() *models.Registration {
	return &models.Registration{
		ID:            "reg-1",
		Email:         "head@school.edu",
		FirstName:     "Ana",
		LastName:      "Robles",
		Institution:   "Colegio Los Robles",
		Seats:         3,
		PaymentMethod: "transfer",
		AmountDue:     1350,
		CreatedAt:     time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderAssignmentProducesPDF(t *testing.T) {
	r := NewRenderer("ROBLESMUN", "2026")

	data, err := r.RenderAssignment(sampleRegistration(), []string{"Security Council - France", "Security Council - Ghana"})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, "%PDF", string(data[:4]))
}

func TestRenderReceiptProducesPDF(t *testing.T) {
	r := NewRenderer("", "")

	data, err := r.RenderReceipt(sampleRegistration())
	require.NoError(t, err)
	require.NotEmpty(t, data)
	require.Equal(t, "%PDF", string(data[:4]))
}

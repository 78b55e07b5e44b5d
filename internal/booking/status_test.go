package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/iliyamo/court-reservation/internal/booking"
	"github.com/iliyamo/court-reservation/internal/model"
)

func TestCanTransition(t *testing.T) {
	all := []model.Status{
		model.StatusPending,
		model.StatusConfirmed,
		model.StatusCancelled,
		model.StatusFinished,
	}
	legal := map[[2]model.Status]bool{
		{model.StatusPending, model.StatusConfirmed}:   true,
		{model.StatusPending, model.StatusFinished}:    true,
		{model.StatusPending, model.StatusCancelled}:   true,
		{model.StatusConfirmed, model.StatusCancelled}: true,
		{model.StatusCancelled, model.StatusPending}:   true,
	}
	for _, from := range all {
		for _, to := range all {
			want := legal[[2]model.Status{from, to}]
			assert.Equal(t, want, booking.CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, err := model.ParseStatus("pending")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, s)

	s, err = model.ParseStatus(" CONFIRMED ")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusConfirmed, s)

	for _, bad := range []string{"", "RESERVED", "DONE", "pending_payment"} {
		_, err := model.ParseStatus(bad)
		assert.Error(t, err, "input %q", bad)
	}
}

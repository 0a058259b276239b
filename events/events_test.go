package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, evt Event) error {
	r.got = append(r.got, evt)
	return r.err
}

func TestMultiPublishesToAll(t *testing.T) {
	a := &recorder{}
	b := &recorder{err: errors.New("broker down")}
	c := &recorder{}

	err := Multi{a, nil, b, c}.Publish(context.Background(), New(OrderPlaced, 7))

	assert.ErrorContains(t, err, "broker down")
	assert.Len(t, a.got, 1)
	assert.Len(t, b.got, 1)
	assert.Len(t, c.got, 1)
	assert.Equal(t, OrderPlaced, c.got[0].Type)
	assert.Equal(t, 7, c.got[0].Data)
}

func TestMultiNoErrors(t *testing.T) {
	assert.NoError(t, Multi{Nop{}, &recorder{}}.Publish(context.Background(), New(TableUpdated, nil)))
}

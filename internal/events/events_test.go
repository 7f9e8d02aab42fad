package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	got []Event
	err error
}

func (r *recorder) Publish(_ context.Context, e Event) error {
	r.got = append(r.got, e)
	return r.err
}

func TestMulti_Publish(t *testing.T) {
	ok := &recorder{}
	failing := &recorder{err: errors.New("broker down")}

	e := New(TransactionCreated, uuid.New(), uuid.New(), nil)
	err := Multi{failing, ok}.Publish(context.Background(), e)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
	assert.Equal(t, []Event{e}, ok.got)
	assert.Equal(t, []Event{e}, failing.got)
}

func TestNoop_Publish(t *testing.T) {
	assert.NoError(t, Noop{}.Publish(context.Background(), Event{}))
}

func TestFunc_Publish(t *testing.T) {
	var got Type

	f := Func(func(_ context.Context, e Event) error {
		got = e.Type
		return nil
	})

	require.NoError(t, f.Publish(context.Background(), New(GoalChanged, uuid.New(), uuid.New(), nil)))
	assert.Equal(t, GoalChanged, got)
}

func TestEncode(t *testing.T) {
	owner, entity := uuid.New(), uuid.New()
	e := New(AccountTransfer, owner, entity, map[string]int64{"amount": 500})

	msg, err := encode(e)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp091.Persistent, msg.DeliveryMode)
	assert.Equal(t, "account.transfer", msg.Type)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(msg.Body, &decoded))
	assert.Equal(t, owner.String(), decoded["ownerId"])
	assert.Equal(t, entity.String(), decoded["entityId"])
	assert.Equal(t, map[string]any{"amount": float64(500)}, decoded["data"])
}

package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studiospace/internal/domain"
)

type recordingPublisher struct {
	got []Event
	err error
}

func (p *recordingPublisher) Publish(_ context.Context, e Event) error {
	p.got = append(p.got, e)
	return p.err
}

type fakeWriter struct {
	msgs []kafka.Message
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func sampleEvent() Event {
	start := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	r := domain.Reservation{ID: uuid.New(), OwnerID: 3, StartTime: start, EndTime: start.Add(time.Hour)}
	return NewReservationEvent(ReservationCreated, r, start)
}

func TestFanout_DeliversToAllAndJoinsErrors(t *testing.T) {
	boom := errors.New("boom")
	ok := &recordingPublisher{}
	failing := &recordingPublisher{err: boom}

	err := Fanout{failing, ok}.Publish(context.Background(), sampleEvent())

	assert.ErrorIs(t, err, boom)
	assert.Len(t, ok.got, 1)
	assert.Len(t, failing.got, 1)
}

func TestFanout_Empty(t *testing.T) {
	assert.NoError(t, Fanout{}.Publish(context.Background(), sampleEvent()))
}

func TestKafka_PublishKeysByReservation(t *testing.T) {
	w := &fakeWriter{}
	k := &Kafka{writer: w}
	e := sampleEvent()

	require.NoError(t, k.Publish(context.Background(), e))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, e.ReservationID.String(), string(msg.Key))

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, e.ID, decoded.ID)
	assert.Equal(t, ReservationCreated, decoded.Type)
	assert.Equal(t, int64(3), decoded.OwnerID)
}

func TestNewKafka_Validation(t *testing.T) {
	_, err := NewKafka(nil, "reservations")
	assert.Error(t, err)

	_, err = NewKafka([]string{"localhost:9092"}, "")
	assert.Error(t, err)
}

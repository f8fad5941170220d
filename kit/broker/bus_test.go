package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

type testEvent struct{ name string }

func (e testEvent) Name() string { return e.name }

func TestBus_PublishFanOut(t *testing.T) {
	t.Parallel()
	b := New()
	var calls []int
	b.Subscribe("evt", func(ctx context.Context, evt Event) error {
		calls = append(calls, 1)
		return nil
	})
	b.Subscribe("evt", func(ctx context.Context, evt Event) error {
		calls = append(calls, 2)
		return nil
	})
	b.Subscribe("other", func(ctx context.Context, evt Event) error {
		calls = append(calls, 3)
		return nil
	})

	errs := b.Publish(context.Background(), testEvent{name: "evt"})
	require.Empty(t, errs)
	require.Equal(t, []int{1, 2}, calls)
}

func TestBus_PublishCollectsErrors(t *testing.T) {
	t.Parallel()
	b := New()
	boom := errors.New("boom")
	b.Subscribe("evt", func(ctx context.Context, evt Event) error { return boom })
	b.Subscribe("evt", func(ctx context.Context, evt Event) error { return nil })

	errs := b.Publish(context.Background(), testEvent{name: "evt"})
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], boom)
}

func TestBus_PublishRecoversPanic(t *testing.T) {
	t.Parallel()
	b := New()
	b.Subscribe("evt", func(ctx context.Context, evt Event) error { panic("bad handler") })
	called := false
	b.Subscribe("evt", func(ctx context.Context, evt Event) error {
		called = true
		return nil
	})

	errs := b.Publish(context.Background(), testEvent{name: "evt"})
	require.Len(t, errs, 1)
	require.ErrorIs(t, errs[0], ErrHandlerPanic)
	require.True(t, called)
}

func TestBus_PublishNoSubscribers(t *testing.T) {
	t.Parallel()
	b := New()
	require.Empty(t, b.Publish(context.Background(), testEvent{name: "evt"}))
}

package msgq_test

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/echlebek/msgq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestPutGet(t *testing.T) {
	q := newQ(t)

	msg := msgq.NewDataMsg(1, "foobar")
	id := msg.ID()
	q.Put(msg)

	assert.False(t, msg.Valid(), "Put must take ownership")
	assert.Equal(t, 1, q.Len())

	got := q.Get(0)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID())
	assert.Equal(t, msgq.Kind(1), got.Kind())
	data, ok := got.(*msgq.DataMsg[string])
	require.True(t, ok)
	assert.Equal(t, "foobar", data.Payload())
	assert.Equal(t, 0, q.Len())
}

func TestPutMovedMsgPanics(t *testing.T) {
	q := newQ(t)
	msg := msgq.NewMsg(1)
	q.Put(msg)

	assert.PanicsWithValue(t, msgq.ErrMoved, func() { q.Put(msg) })
	assert.Equal(t, 1, q.Len())
}

func TestGetFIFO(t *testing.T) {
	q := newQ(t)
	var ids []msgq.UID
	for i := 0; i < 100; i++ {
		m := msgq.NewMsg(msgq.Kind(i))
		ids = append(ids, m.ID())
		q.Put(m)
	}
	for i, want := range ids {
		got := q.Get(time.Second)
		if got.ID() != want {
			t.Fatalf("message %d: got ID %d, want %d", i, got.ID(), want)
		}
	}
}

func TestGetTimeout(t *testing.T) {
	q := newQ(t)

	start := time.Now()
	msg := q.Get(100 * time.Millisecond)
	elapsed := time.Since(start)

	assert.Equal(t, msgq.KindTimeout, msg.Kind())
	assert.NotEqual(t, msgq.NoUID, msg.ID())
	assert.GreaterOrEqual(t, elapsed, 100*time.Millisecond)
	assert.Less(t, elapsed, time.Second)
	assert.Equal(t, int64(1), q.Metrics().Timeouts)
	assert.Equal(t, 0, q.Len())
}

func TestGetTimeoutSentinelsAreDistinct(t *testing.T) {
	q := newQ(t)

	a := q.Get(time.Millisecond)
	b := q.Get(time.Millisecond)

	assert.Equal(t, msgq.KindTimeout, a.Kind())
	assert.Equal(t, msgq.KindTimeout, b.Kind())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestGetReturnsMessagePutBeforeTimeout(t *testing.T) {
	q := newQ(t)
	msg := msgq.NewMsg(5)
	id := msg.ID()

	go func() {
		time.Sleep(50 * time.Millisecond)
		q.Put(msg)
	}()

	got := q.Get(time.Second)
	assert.Equal(t, msgq.Kind(5), got.Kind())
	assert.Equal(t, id, got.ID())
	assert.Equal(t, int64(0), q.Metrics().Timeouts)
}

func TestGetWithoutTimeoutBlocks(t *testing.T) {
	for _, timeout := range []time.Duration{0, -time.Second} {
		t.Run(fmt.Sprint(timeout), func(t *testing.T) {
			q := newQ(t)
			done := make(chan msgq.Message, 1)
			go func() {
				done <- q.Get(timeout)
			}()

			select {
			case m := <-done:
				t.Fatalf("Get returned %v on an empty queue", m)
			case <-time.After(300 * time.Millisecond):
			}

			q.Put(msgq.NewMsg(9))

			select {
			case m := <-done:
				assert.Equal(t, msgq.Kind(9), m.Kind())
			case <-time.After(5 * time.Second):
				t.Fatal("Get did not return after Put")
			}
		})
	}
}

func TestConcurrentProducersConsumers(t *testing.T) {
	const (
		producers = 8
		consumers = 8
		perProd   = 500
		total     = producers * perProd
	)
	q := newQ(t)

	var (
		mu   sync.Mutex
		seen = make(map[msgq.UID]int, total)
		sent = make(map[msgq.UID]struct{}, total)
	)

	var consume errgroup.Group
	for c := 0; c < consumers; c++ {
		consume.Go(func() error {
			for i := 0; i < total/consumers; i++ {
				m := q.Get(5 * time.Second)
				if m.Kind() == msgq.KindTimeout {
					return fmt.Errorf("consumer timed out after %d messages", i)
				}
				mu.Lock()
				seen[m.ID()]++
				mu.Unlock()
			}
			return nil
		})
	}

	var produce errgroup.Group
	for p := 0; p < producers; p++ {
		produce.Go(func() error {
			for i := 0; i < perProd; i++ {
				m := msgq.NewMsg(msgq.Kind(i))
				mu.Lock()
				sent[m.ID()] = struct{}{}
				mu.Unlock()
				q.Put(m)
			}
			return nil
		})
	}

	require.NoError(t, produce.Wait())
	require.NoError(t, consume.Wait())

	assert.Len(t, seen, total)
	for id, n := range seen {
		_, ok := sent[id]
		assert.True(t, ok, "received unknown message %d", id)
		assert.Equal(t, 1, n, "message %d delivered %d times", id, n)
	}
	assert.Equal(t, 0, q.Len())

	metrics := q.Metrics()
	assert.Equal(t, int64(total), metrics.Put)
	assert.Equal(t, int64(total), metrics.Delivered)
}

func TestProducerOrderPreservedPerProducer(t *testing.T) {
	const (
		producers = 4
		perProd   = 1000
	)
	q := newQ(t)

	var g errgroup.Group
	for p := 0; p < producers; p++ {
		p := p
		g.Go(func() error {
			for i := 0; i < perProd; i++ {
				q.Put(msgq.NewDataMsg(msgq.Kind(p), i))
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	next := make([]int, producers)
	for i := 0; i < producers*perProd; i++ {
		m := q.Get(time.Second).(*msgq.DataMsg[int])
		p := int(m.Kind())
		require.Equal(t, next[p], m.Payload(), "producer %d out of order", p)
		next[p]++
	}
}

func BenchmarkPutGet(b *testing.B) {
	q := newQ(b)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.Put(msgq.NewMsg(1))
		q.Get(0)
	}
}

func BenchmarkPutGetParallel(b *testing.B) {
	q := newQ(b)
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			q.Put(msgq.NewMsg(1))
			q.Get(0)
		}
	})
}

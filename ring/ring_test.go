package ring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsdr/streamcore/status"
)

func reserveAndCommit(t *testing.T, r *Ring, payload []byte, meta SpanMeta) {
	t.Helper()
	span, err := r.ReserveSpan(int64(len(payload)))
	require.NoError(t, err)
	copy(span.Data, payload)
	require.NoError(t, r.CommitSpan(span, meta))
}

func TestReserveCommitNextRoundTrip(t *testing.T) {
	r := New(64)
	reserveAndCommit(t, r, []byte("hello"), SpanMeta{TimeTag: 1})

	span, meta, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "hello", string(span.Data))
	assert.Equal(t, int64(1), meta.TimeTag)
}

func TestNextPreservesReservationOrder(t *testing.T) {
	r := New(64)
	reserveAndCommit(t, r, []byte("aaa"), SpanMeta{TimeTag: 1})
	reserveAndCommit(t, r, []byte("bbb"), SpanMeta{TimeTag: 2})
	reserveAndCommit(t, r, []byte("ccc"), SpanMeta{TimeTag: 3})

	for _, want := range []string{"aaa", "bbb", "ccc"} {
		span, _, err := r.Next()
		require.NoError(t, err)
		assert.Equal(t, want, string(span.Data))
	}
}

func TestReserveSpanRejectsOversizedOrNonPositive(t *testing.T) {
	r := New(16)
	_, err := r.ReserveSpan(0)
	assert.Error(t, err)
	_, err = r.ReserveSpan(-1)
	assert.Error(t, err)
	_, err = r.ReserveSpan(17)
	assert.Error(t, err)
}

func TestReserveSpanPadsRatherThanWrapsSplit(t *testing.T) {
	r := New(8)
	// First span takes 5 of 8 bytes, leaving a 3-byte remainder.
	reserveAndCommit(t, r, []byte("AAAAA"), SpanMeta{})
	span, _, err := r.Next()
	require.NoError(t, err)
	require.Len(t, span.Data, 5)

	// A 4-byte span cannot fit in the remaining 3-byte tail without
	// splitting across the wrap point, so it must pad past it instead of
	// writing a torn span.
	span2, err := r.ReserveSpan(4)
	require.NoError(t, err)
	assert.Len(t, span2.Data, 4)
	for i := range span2.Data {
		assert.NotPanics(t, func() { span2.Data[i] = 0xAB })
	}
}

func TestCommitSpanTwiceIsNoop(t *testing.T) {
	r := New(16)
	span, err := r.ReserveSpan(4)
	require.NoError(t, err)
	require.NoError(t, r.CommitSpan(span, SpanMeta{TimeTag: 9}))
	require.NoError(t, r.CommitSpan(span, SpanMeta{TimeTag: 100}))

	_, meta, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, int64(9), meta.TimeTag)
}

func TestReserveSpanBlocksUntilSpaceFreed(t *testing.T) {
	r := New(8)
	first, err := r.ReserveSpan(8)
	require.NoError(t, err)
	require.NoError(t, r.CommitSpan(first, SpanMeta{}))

	done := make(chan struct{})
	go func() {
		span, err := r.ReserveSpan(8)
		assert.NoError(t, err)
		assert.NotNil(t, span)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("ReserveSpan returned before space was freed")
	case <-time.After(50 * time.Millisecond):
	}

	_, _, err = r.Next() // frees the first span's 8 bytes
	require.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ReserveSpan never unblocked after space was freed")
	}
}

func TestShutdownInterruptsBlockedReserve(t *testing.T) {
	r := New(4)
	first, err := r.ReserveSpan(4)
	require.NoError(t, err)
	require.NoError(t, r.CommitSpan(first, SpanMeta{}))

	errCh := make(chan error, 1)
	go func() {
		_, err := r.ReserveSpan(4)
		errCh <- err
	}()

	time.Sleep(20 * time.Millisecond)
	r.Shutdown()

	select {
	case err := <-errCh:
		require.Error(t, err)
		assert.Equal(t, status.INTERRUPTED, status.From(err))
	case <-time.After(time.Second):
		t.Fatal("Shutdown did not wake blocked ReserveSpan")
	}
}

func TestNextDrainsCommittedBeforeEndOfDataOnShutdown(t *testing.T) {
	r := New(16)
	reserveAndCommit(t, r, []byte("intact"), SpanMeta{TimeTag: 42})
	r.Shutdown()

	span, meta, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "intact", string(span.Data))
	assert.Equal(t, int64(42), meta.TimeTag)

	_, _, err = r.Next()
	assert.Equal(t, status.END_OF_DATA, status.From(err))
}

func TestBeginSequenceReplacesOpenSequence(t *testing.T) {
	r := New(16)
	r.BeginSequence("a", []byte("hdr-a"), 4, 100)
	r.BeginSequence("b", []byte("hdr-b"), 2, 50)

	seq := r.CurrentSequence()
	require.NotNil(t, seq)
	assert.Equal(t, "b", seq.Key)
}

func TestEndSequenceClearsCurrent(t *testing.T) {
	r := New(16)
	r.BeginSequence("a", nil, 1, 1)
	r.EndSequence()
	assert.Nil(t, r.CurrentSequence())
}

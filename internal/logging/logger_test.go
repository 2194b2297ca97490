package logging

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BuildsLogger(t *testing.T) {
	l, err := New(Config{Verbosity: 1, Console: true})
	require.NoError(t, err)
	require.NotNil(t, l)
	assert.NoError(t, l.Sync())
}

func TestVLogger_EnqueuesRegardlessOfVerbosity(t *testing.T) {
	l := Nop()
	l.verbosity = 0

	l.V(2).Info("high verbosity message", "key", "value")

	var got []Record
	l.DrainInto(func(records []Record) { got = records })

	require.Len(t, got, 1)
	assert.Equal(t, "high verbosity message", got[0].Message)
	assert.Equal(t, "value", got[0].Fields["key"])
}

func TestDrainInto_EmptiesQueue(t *testing.T) {
	l := Nop()
	l.V(0).Info("first")
	l.V(0).Info("second")

	var first []Record
	l.DrainInto(func(records []Record) { first = records })
	assert.Len(t, first, 2)

	var second []Record
	l.DrainInto(func(records []Record) { second = records })
	assert.Nil(t, second)
}

func TestDrainInto_SingleFlightGuardSkipsConcurrentDrain(t *testing.T) {
	l := Nop()
	l.V(0).Info("queued before either drain")

	release := make(chan struct{})
	var firstDrainStarted sync.WaitGroup
	firstDrainStarted.Add(1)

	var firstSawRecords []Record
	go func() {
		l.DrainInto(func(records []Record) {
			firstSawRecords = records
			firstDrainStarted.Done()
			<-release
		})
	}()

	firstDrainStarted.Wait()

	secondRan := false
	l.DrainInto(func(records []Record) { secondRan = true })
	close(release)

	assert.Len(t, firstSawRecords, 1)
	assert.False(t, secondRan, "a concurrent drain must not run while one is in flight")
}

func TestEnqueue_DirectlyAppendsRecord(t *testing.T) {
	l := Nop()
	l.Enqueue(Record{Level: 0, Message: "direct", Timestamp: time.Now()})

	var got []Record
	l.DrainInto(func(records []Record) { got = records })
	require.Len(t, got, 1)
	assert.Equal(t, "direct", got[0].Message)
}

package msgq

import (
	"testing"
	"time"
)

func TestWake(t *testing.T) {
	w := newWaker()
	go func() {
		w.Wake()
	}()
	<-w.C
}

func TestWakeCoalesces(t *testing.T) {
	w := newWaker()
	for i := 0; i < 10; i++ {
		w.Wake()
	}
	<-w.C
	select {
	case <-w.C:
		t.Error("got a second wake, want one")
	case <-time.After(10 * time.Millisecond):
	}
}

package drafts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type stubTimer struct{ stopped bool }

func (t *stubTimer) Stop() bool { t.stopped = true; return true }

type stubScheduler struct {
	last *stubTimer
	fn   func()
}

func (s *stubScheduler) AfterFunc(_ time.Duration, fn func()) Timer {
	s.last = &stubTimer{}
	s.fn = fn
	return s.last
}

func TestDebouncer_CallbackObsoletoSeIgnora(t *testing.T) {
	s := &stubScheduler{}
	d := NewDebouncer(s, time.Second)

	var fired []uint64
	d.Schedule(func(gen uint64) {
		if d.Fire(gen) {
			fired = append(fired, gen)
		}
	})
	stale := s.fn
	first := s.last

	d.Schedule(func(gen uint64) {
		if d.Fire(gen) {
			fired = append(fired, gen)
		}
	})
	assert.True(t, first.stopped, "reprogramar detiene la tarea anterior")

	stale()
	assert.Empty(t, fired, "un callback ya en vuelo de la generación anterior no actúa")
	assert.True(t, d.Pending())

	s.fn()
	assert.Len(t, fired, 1)
	assert.False(t, d.Pending())

	s.fn()
	assert.Len(t, fired, 1, "una tarea no se consume dos veces")
}

func TestDebouncer_Cancel(t *testing.T) {
	s := &stubScheduler{}
	d := NewDebouncer(s, time.Second)
	ran := false
	d.Schedule(func(gen uint64) { ran = d.Fire(gen) })
	d.Cancel()
	s.fn()
	assert.False(t, ran)
	assert.False(t, d.Pending())
}

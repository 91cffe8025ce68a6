package drafts

import "time"

// Timer tarea diferida cancelable.
type Timer interface {
	Stop() bool
}

// Scheduler programa funciones diferidas. En producción es time.AfterFunc; en tests un reloj manual.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemScheduler struct{}

func (systemScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemScheduler scheduler sobre time.AfterFunc.
func SystemScheduler() Scheduler { return systemScheduler{} }

// Debouncer mantiene como máximo una tarea pendiente: cada Schedule cancela la anterior,
// así solo se ejecuta el último cambio tras una ventana completa sin cambios.
// No es seguro para uso concurrente; el Manager lo usa bajo su mutex.
type Debouncer struct {
	sched Scheduler
	delay time.Duration
	timer Timer
	gen   uint64
}

// NewDebouncer construye el debouncer con la ventana indicada.
func NewDebouncer(sched Scheduler, delay time.Duration) *Debouncer {
	return &Debouncer{sched: sched, delay: delay}
}

// Schedule cancela la tarea pendiente y programa fn. fn recibe la generación con la que
// se programó y debe confirmarla con Fire antes de actuar.
func (d *Debouncer) Schedule(fn func(gen uint64)) {
	d.Cancel()
	gen := d.gen
	d.timer = d.sched.AfterFunc(d.delay, func() { fn(gen) })
}

// Cancel descarta la tarea pendiente. Un callback que ya se esté ejecutando queda obsoleto.
func (d *Debouncer) Cancel() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

// Fire confirma que gen sigue vigente y marca la tarea como consumida.
func (d *Debouncer) Fire(gen uint64) bool {
	if d.timer == nil || gen != d.gen {
		return false
	}
	d.timer = nil
	return true
}

// Pending indica si hay una tarea programada.
func (d *Debouncer) Pending() bool {
	return d.timer != nil
}

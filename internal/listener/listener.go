package listener

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	hook "github.com/robotn/gohook"
)

// Listener watches for the F9/F10 global hotkeys that arm and stop the
// bot, plus SIGINT/SIGTERM.
type Listener struct {
	state    int32
	released int32
	hooked   int32
	Open     chan int
	onStop   func()
}

const (
	STATE_CREATE int32 = iota
	STATE_READY
	STATE_RUNNING
	STATE_STOPPING
)

// New builds a listener; onStop runs once when F10 or a signal arrives and
// should cancel the frame loop so main can report stats.
func New(onStop func()) *Listener {
	return &Listener{
		state:  STATE_CREATE,
		Open:   make(chan int, 1),
		onStop: onStop,
	}
}

func (l *Listener) Start(ctx context.Context) {
	val := atomic.CompareAndSwapInt32(&l.state, STATE_CREATE, STATE_READY)
	if val {
		l.run0()
	}
}

func (l *Listener) run0() {
	hook.Register(hook.KeyDown, []string{"f9"}, func(e hook.Event) {
		if ok := atomic.CompareAndSwapInt32(&l.state, STATE_READY, STATE_RUNNING); ok {
			l.Open <- 1
			log.Println("[listener] F9 pressed, starting")
		}
	})

	hook.Register(hook.KeyDown, []string{"f10"}, func(e hook.Event) {
		if ok := atomic.CompareAndSwapInt32(&l.state, STATE_RUNNING, STATE_STOPPING); ok {
			log.Println("[listener] F10 pressed, stopping")
			l.Release()
		}
	})

	fmt.Println("[listener] hotkeys armed, F9: start F10: stop")
	fmt.Printf("\n")

	atomic.StoreInt32(&l.hooked, 1)
	chain := hook.Start()
	defer func() {
		l.Release()
	}()

	go func() {
		<-hook.Process(chain) // blocks this goroutine for good, so the stop path runs in Release
		log.Println("[listener] hotkeys unloaded")
	}()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-signals
	l.Release()
}

// Release unhooks and notifies the stop callback. Runs its work once no
// matter how many paths reach it (F10, signal, run0 teardown), including
// a stop arriving before F9 ever armed the bot.
func (l *Listener) Release() {
	if !atomic.CompareAndSwapInt32(&l.released, 0, 1) {
		return
	}

	if atomic.LoadInt32(&l.hooked) == 1 {
		hook.End()
		time.Sleep(1 * time.Second) // hook teardown is not instant; an early re-Start fails otherwise
	}

	if l.onStop != nil {
		l.onStop()
	}
}

package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// elapsedAfter is how long a spinner runs before the elapsed time is shown
// next to the message. Confirmation waits can run for minutes.
const elapsedAfter = 5 * time.Second

// Spinner renders a single-line pending indicator for wallet prompts and
// transaction confirmation waits. The watch view has its own Bubble Tea
// frame cycle; this covers the one-shot commands.
type Spinner struct {
	out   io.Writer
	msg   string
	start time.Time
	stop  chan struct{}
	done  chan struct{}
}

// NewSpinner creates a spinner that writes to stdout.
func NewSpinner(msg string) *Spinner {
	return newSpinner(os.Stdout, msg)
}

func newSpinner(out io.Writer, msg string) *Spinner {
	return &Spinner{
		out:  out,
		msg:  msg,
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
}

// Start begins the animation. Stop must be called to release the line.
func (s *Spinner) Start() {
	s.start = time.Now()
	go s.run()
}

func (s *Spinner) run() {
	defer close(s.done)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		select {
		case <-s.stop:
			fmt.Fprintf(s.out, "\r%-70s\r", "")
			return
		case <-ticker.C:
			frame := StyleAccent.Render(spinnerFrames[i%len(spinnerFrames)])
			line := frame + "  " + s.msg
			if since := time.Since(s.start); since >= elapsedAfter {
				line += StyleMeta.Render(fmt.Sprintf(" (%ds)", int(since.Seconds())))
			}
			fmt.Fprintf(s.out, "\r%s", line)
		}
	}
}

// Stop halts the spinner and clears its line.
func (s *Spinner) Stop() {
	close(s.stop)
	<-s.done
}

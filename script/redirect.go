package script

import (
	"strings"

	scriptbridge "github.com/lunarc/script-bridge"
)

// Redirector buffers stream writes from the runtime and delivers them to a
// line callback, one complete line at a time. Trailing text without a newline
// stays buffered until the next write completes it or Flush forces it out.
type Redirector struct {
	emit scriptbridge.LineFunc
	buf  strings.Builder
}

// NewRedirector returns a Redirector that delivers lines to emit.
// A nil callback discards all output.
func NewRedirector(emit scriptbridge.LineFunc) *Redirector {
	if emit == nil {
		emit = func(string) {}
	}
	return &Redirector{emit: emit}
}

// Write appends text to the buffer and emits every complete line it now
// contains. Line content is delivered without the trailing newline.
func (r *Redirector) Write(text string) {
	for {
		i := strings.IndexByte(text, '\n')
		if i < 0 {
			r.buf.WriteString(text)
			return
		}
		r.buf.WriteString(text[:i])
		r.emit(r.buf.String())
		r.buf.Reset()
		text = text[i+1:]
	}
}

// Flush emits any buffered partial line. Flushing an empty buffer emits
// nothing.
func (r *Redirector) Flush() {
	if r.buf.Len() == 0 {
		return
	}
	r.emit(r.buf.String())
	r.buf.Reset()
}

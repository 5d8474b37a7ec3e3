// Package editor computes host file contents. Every operation is a pure
// string transform; reading and writing the real file happens elsewhere.
package editor

import (
	"strings"

	"github.com/albibenni/focus/internal/focus/domain"
)

const (
	// DefaultLoopback is the address blocked hosts resolve to.
	DefaultLoopback = "127.0.0.1"

	// Marker tags lines appended in marker mode.
	Marker = "# focus"

	// hostColumn is where the host name starts on an appended line.
	hostColumn = 16
)

// Editor merges block entries into host file content and restores snapshots.
type Editor struct {
	loopback string
	mark     bool
}

type Options struct {
	// Loopback overrides DefaultLoopback.
	Loopback string
	// MarkEntries tags appended lines with Marker and makes Apply replace
	// previously tagged lines instead of appending duplicates.
	MarkEntries bool
}

func New(opts Options) *Editor {
	lb := strings.TrimSpace(opts.Loopback)
	if lb == "" {
		lb = DefaultLoopback
	}
	return &Editor{loopback: lb, mark: opts.MarkEntries}
}

// Line renders the host file entry for host.
func (e *Editor) Line(host string) string {
	pad := hostColumn - len(e.loopback)
	if pad < 1 {
		pad = 1
	}
	line := e.loopback + strings.Repeat(" ", pad) + host
	if e.mark {
		line += " " + Marker
	}
	return line
}

// Apply returns content with one entry per host of set appended in set order.
// An empty set returns content unchanged. Without marker mode nothing is
// deduplicated against existing lines: applying twice appends twice.
func (e *Editor) Apply(content string, set domain.BlockSet) string {
	if set.IsEmpty() {
		return content
	}

	if e.mark {
		content = stripMarked(content)
	}

	var b strings.Builder
	b.Grow(len(content) + set.Len()*(hostColumn+32))
	b.WriteString(content)
	if content != "" && !strings.HasSuffix(content, "\n") {
		b.WriteByte('\n')
	}
	for _, host := range set.Hosts() {
		b.WriteString(e.Line(host))
		b.WriteByte('\n')
	}
	return b.String()
}

// Restore returns the snapshot content verbatim. It must be given the
// snapshot captured right before the matching Apply.
func (e *Editor) Restore(snapshot domain.Snapshot) string {
	return snapshot.Content
}

// stripMarked drops every address line tagged with Marker, keeping all
// other bytes, line endings included, untouched.
func stripMarked(content string) string {
	if !strings.Contains(content, Marker) {
		return content
	}
	var b strings.Builder
	b.Grow(len(content))
	for _, line := range strings.SplitAfter(content, "\n") {
		if isMarkedLine(line) {
			continue
		}
		b.WriteString(line)
	}
	return b.String()
}

func isMarkedLine(line string) bool {
	body := strings.TrimRight(line, "\r\n")
	if !strings.HasSuffix(body, " "+Marker) {
		return false
	}
	fields := strings.Fields(strings.TrimSuffix(body, " "+Marker))
	return len(fields) >= 2 && isBlockingAddress(fields[0])
}

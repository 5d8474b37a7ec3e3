package editor

import (
	"bufio"
	"io"
	"net"
	"strings"

	"github.com/albibenni/focus/internal/focus/common/log"
	"github.com/albibenni/focus/internal/focus/common/utils"
)

// HostIndex answers membership for host names known to the catalog.
type HostIndex interface {
	Contains(host string) bool
}

// Entry is a blocking line found by Scan.
type Entry struct {
	Line    int
	Address string
	Host    string
	Marked  bool
}

// Scan reads a host file and returns the entries that map a host known to
// index onto a loopback or unspecified address.
//
// Rules:
// - Skip blank lines and whole-line comments
// - Strip inline comments, remembering whether the comment is Marker
// - The first field must parse as a loopback or unspecified address
// - Every following field is canonicalized and checked against index
// - Each host is reported once, first-seen order
func Scan(r io.Reader, index HostIndex, logger log.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	seen := make(map[string]struct{})
	var out []Entry

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimPrefix(scanner.Text(), "\uFEFF")

		if isEmpty, isComment := classifyLine(line); isEmpty || isComment {
			continue
		}

		body, comment := splitComment(line)
		fields := strings.Fields(body)
		if len(fields) < 2 {
			logger.Debug(map[string]any{"line": lineNum}, "scan_no_hostnames")
			continue
		}
		if !isBlockingAddress(fields[0]) {
			continue
		}

		for _, raw := range fields[1:] {
			name, err := utils.CanonicalHostName(raw)
			if err != nil || name == "" {
				logger.Debug(map[string]any{"line": lineNum, "raw": raw}, "scan_skip_invalid")
				continue
			}
			if !index.Contains(name) {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, Entry{
				Line:    lineNum,
				Address: fields[0],
				Host:    name,
				Marked:  strings.TrimSpace(comment) == strings.TrimPrefix(Marker, "# "),
			})
			logger.Debug(map[string]any{"line": lineNum, "host": name}, "scan_found_block")
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// classifyLine reports whether line is blank or a whole-line comment.
func classifyLine(line string) (isEmpty, isComment bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return true, false
	}
	return false, strings.HasPrefix(trimmed, "#")
}

// splitComment separates a line at its first '#'. The comment excludes the '#'.
func splitComment(line string) (body, comment string) {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		return line[:idx], line[idx+1:]
	}
	return line, ""
}

// isBlockingAddress reports whether addr sends traffic nowhere useful.
func isBlockingAddress(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsUnspecified()
}

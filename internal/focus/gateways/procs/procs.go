// Package procs finds other running focus processes.
package procs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Info describes one running process.
type Info struct {
	PID       int32
	Name      string
	Cmdline   string
	StartedAt time.Time
}

// Lister returns the running processes.
type Lister func(ctx context.Context) ([]Info, error)

// Probe matches running processes by executable name.
type Probe struct {
	name string
	self int32
	list Lister
}

type Options struct {
	// Name is the executable base name to match. Defaults to the current
	// executable's base name.
	Name string
	// Self is excluded from results. Defaults to os.Getpid().
	Self int32
	// List defaults to a gopsutil process walk.
	List Lister
}

func New(opts Options) *Probe {
	p := &Probe{name: opts.Name, self: opts.Self, list: opts.List}
	if p.name == "" {
		p.name = currentName()
	}
	if p.self == 0 {
		p.self = int32(os.Getpid())
	}
	if p.list == nil {
		p.list = listProcesses
	}
	return p
}

// Others returns the processes named like this one, excluding itself.
func (p *Probe) Others(ctx context.Context) ([]Info, error) {
	all, err := p.list(ctx)
	if err != nil {
		return nil, err
	}
	var out []Info
	for _, info := range all {
		if info.PID == p.self {
			continue
		}
		if matches(info, p.name) {
			out = append(out, info)
		}
	}
	return out, nil
}

func matches(info Info, name string) bool {
	if strings.EqualFold(strings.TrimSuffix(info.Name, ".exe"), name) {
		return true
	}
	fields := strings.Fields(info.Cmdline)
	if len(fields) == 0 {
		return false
	}
	return strings.EqualFold(strings.TrimSuffix(filepath.Base(fields[0]), ".exe"), name)
}

func currentName() string {
	exe, err := os.Executable()
	if err != nil {
		return "focus"
	}
	return strings.TrimSuffix(filepath.Base(exe), ".exe")
}

// listProcesses walks the process table. Processes that exit mid-walk or
// cannot be inspected are reported with whatever fields could be read.
func listProcesses(ctx context.Context) ([]Info, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Info, 0, len(procs))
	for _, proc := range procs {
		info := Info{PID: proc.Pid}
		info.Name, _ = proc.NameWithContext(ctx)
		info.Cmdline, _ = proc.CmdlineWithContext(ctx)
		if ms, err := proc.CreateTimeWithContext(ctx); err == nil {
			info.StartedAt = time.UnixMilli(ms)
		}
		out = append(out, info)
	}
	return out, nil
}

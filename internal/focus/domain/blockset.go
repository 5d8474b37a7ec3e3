package domain

// BlockSet is an insertion-ordered set of host names.
// The zero value is an empty, usable set.
type BlockSet struct {
	hosts []string
	index map[string]struct{}
}

// NewBlockSet builds a set from hosts, keeping the first occurrence of each.
func NewBlockSet(hosts ...string) BlockSet {
	var s BlockSet
	for _, h := range hosts {
		s.Add(h)
	}
	return s
}

// Add appends host unless it is already present. It reports whether the set changed.
func (s *BlockSet) Add(host string) bool {
	if host == "" {
		return false
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[host]; ok {
		return false
	}
	s.index[host] = struct{}{}
	s.hosts = append(s.hosts, host)
	return true
}

// Contains reports whether host is in the set.
func (s BlockSet) Contains(host string) bool {
	_, ok := s.index[host]
	return ok
}

// Hosts returns a copy of the hosts in insertion order.
func (s BlockSet) Hosts() []string {
	return append([]string(nil), s.hosts...)
}

func (s BlockSet) Len() int { return len(s.hosts) }

func (s BlockSet) IsEmpty() bool { return len(s.hosts) == 0 }

// Equal reports whether both sets hold the same hosts in the same order.
func (s BlockSet) Equal(other BlockSet) bool {
	if len(s.hosts) != len(other.hosts) {
		return false
	}
	for i := range s.hosts {
		if s.hosts[i] != other.hosts[i] {
			return false
		}
	}
	return true
}

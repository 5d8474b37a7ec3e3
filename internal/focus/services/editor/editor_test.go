package editor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albibenni/focus/internal/focus/domain"
)

var sampleContents = []string{
	"",
	"127.0.0.1 localhost\n",
	"127.0.0.1 localhost\n::1 localhost ip6-localhost\n",
	"127.0.0.1 localhost",
	"# comment only",
	"127.0.0.1\tlocalhost\r\n10.0.0.5\tnas.lan # home nas\r\n",
	"\n\n\n",
	"192.168.1.10 printer.lan\n127.0.0.1       www.youtube.com\n",
	"ünïcödé 127.0.0.1 bücher.example\n",
}

var sampleSets = []domain.BlockSet{
	{},
	domain.NewBlockSet("www.youtube.com"),
	domain.NewBlockSet("www.youtube.com", "www.x.com", "www.netflix.com"),
}

func TestLine_Format(t *testing.T) {
	e := New(Options{})
	assert.Equal(t, "127.0.0.1       www.youtube.com", e.Line("www.youtube.com"))

	e = New(Options{Loopback: "0.0.0.0"})
	assert.Equal(t, "0.0.0.0         www.x.com", e.Line("www.x.com"))

	e = New(Options{Loopback: "::1"})
	assert.Equal(t, 16, strings.Index(e.Line("www.x.com"), "www.x.com"))

	e = New(Options{Loopback: "fe80:0000:0000:0000:0000:0000:0000:0001"})
	assert.Equal(t, "fe80:0000:0000:0000:0000:0000:0000:0001 www.x.com", e.Line("www.x.com"))

	e = New(Options{MarkEntries: true})
	assert.Equal(t, "127.0.0.1       www.x.com # focus", e.Line("www.x.com"))
}

func TestApply_EmptySetIsNoop(t *testing.T) {
	for _, mark := range []bool{false, true} {
		e := New(Options{MarkEntries: mark})
		for _, c := range sampleContents {
			assert.Equal(t, c, e.Apply(c, domain.BlockSet{}), "content %q mark=%v", c, mark)
		}
		marked := "127.0.0.1       www.x.com # focus\n"
		assert.Equal(t, marked, e.Apply(marked, domain.NewBlockSet()))
	}
}

func TestApply_AppendsInSetOrder(t *testing.T) {
	e := New(Options{})
	content := "127.0.0.1 localhost\n"
	set := domain.NewBlockSet("www.youtube.com", "www.x.com")

	got := e.Apply(content, set)

	want := content +
		"127.0.0.1       www.youtube.com\n" +
		"127.0.0.1       www.x.com\n"
	assert.Equal(t, want, got)
	assert.Equal(t, 2, strings.Count(got, "\n")-strings.Count(content, "\n"))
}

func TestApply_MissingTrailingNewline(t *testing.T) {
	e := New(Options{})

	got := e.Apply("127.0.0.1 localhost", domain.NewBlockSet("www.x.com"))
	assert.Equal(t, "127.0.0.1 localhost\n127.0.0.1       www.x.com\n", got)

	got = e.Apply("", domain.NewBlockSet("www.x.com"))
	assert.Equal(t, "127.0.0.1       www.x.com\n", got)
}

func TestApply_RepeatedWithoutRestoreDuplicates(t *testing.T) {
	e := New(Options{})
	set := domain.NewBlockSet("www.youtube.com")

	once := e.Apply("127.0.0.1 localhost\n", set)
	twice := e.Apply(once, set)

	assert.Equal(t, 2, strings.Count(twice, "www.youtube.com"))
}

func TestApply_MarkerModeReplacesPreviousEntries(t *testing.T) {
	e := New(Options{MarkEntries: true})
	base := "127.0.0.1 localhost\n# 127.0.0.1 www.x.com # focus\n10.0.0.1 nas.lan\n"

	first := e.Apply(base, domain.NewBlockSet("www.youtube.com", "www.x.com"))
	second := e.Apply(first, domain.NewBlockSet("www.x.com"))

	assert.Equal(t, base+"127.0.0.1       www.x.com # focus\n", second)
	assert.Equal(t, 0, strings.Count(second, "www.youtube.com"))
}

func TestApply_MarkerModeKeepsForeignLines(t *testing.T) {
	e := New(Options{MarkEntries: true})
	base := "127.0.0.1 www.reddit.com # blocked by hand\r\n10.0.0.1 nas.lan # focus\r\n"

	got := e.Apply(base, domain.NewBlockSet("www.x.com"))
	assert.True(t, strings.HasPrefix(got, base))
}

func TestRestore_RoundTrip(t *testing.T) {
	for _, mark := range []bool{false, true} {
		e := New(Options{MarkEntries: mark})
		for _, c := range sampleContents {
			for _, set := range sampleSets {
				snapshot := domain.Snapshot{Path: "/etc/hosts", Content: c}
				applied := e.Apply(c, set)
				if !set.IsEmpty() {
					assert.NotEqual(t, c, applied)
				}
				restored := e.Restore(snapshot)
				require.Equal(t, c, restored, "content %q hosts %v mark=%v", c, set.Hosts(), mark)
			}
		}
	}
}

func TestIsMarkedLine(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"127.0.0.1       www.x.com # focus\n", true},
		{"0.0.0.0 www.x.com # focus\r\n", true},
		{"::1 www.x.com # focus", true},
		{"127.0.0.1 www.x.com\n", false},
		{"# 127.0.0.1 www.x.com # focus\n", false},
		{"10.0.0.1 nas.lan # focus\n", false},
		{"127.0.0.1 # focus\n", false},
		{"127.0.0.1 www.x.com # focused\n", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, isMarkedLine(tt.line), "line %q", tt.line)
	}
}

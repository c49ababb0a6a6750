package linekeeper

import (
	"testing"
	"time"
)

// 1970-01-02T13:14:15.123456789Z
func fakeNow() time.Time {
	return time.Unix(0, 134055123456789).UTC()
}

func TestNameGeneratorCounter(t *testing.T) {
	tests := []struct {
		name     string
		template string
		counter  uint64
		want     []string
	}{
		{
			name:     "four leading zeros",
			template: "/tmp/test-%NUM:4%.txt",
			want:     []string{"/tmp/test-0000.txt", "/tmp/test-0001.txt"},
		},
		{
			name:     "four leading zeros starting at 9",
			template: "/tmp/test-%NUM:4%.txt",
			counter:  9,
			want:     []string{"/tmp/test-0009.txt", "/tmp/test-0010.txt"},
		},
		{
			name:     "no padding",
			template: "/tmp/test-%NUM%.txt",
			want:     []string{"/tmp/test-0.txt", "/tmp/test-1.txt"},
		},
		{
			name:     "no padding starting at 9",
			template: "/tmp/test-%NUM%.txt",
			counter:  9,
			want:     []string{"/tmp/test-9.txt", "/tmp/test-10.txt"},
		},
		{
			name:     "same counter twice in one render",
			template: "/tmp-%NUM:4%/test-%NUM:4%.txt",
			want:     []string{"/tmp-0000/test-0000.txt", "/tmp-0001/test-0001.txt"},
		},
		{
			name:     "COUNTER alias",
			template: "seg-%COUNTER:3%",
			counter:  7,
			want:     []string{"seg-007", "seg-008"},
		},
		{
			name:     "width is a minimum",
			template: "seg-%NUM:2%",
			counter:  99,
			want:     []string{"seg-99", "seg-100"},
		},
		{
			name:     "unparseable width falls back",
			template: "seg-%NUM:abc%",
			counter:  5,
			want:     []string{"seg-5", "seg-6"},
		},
		{
			name:     "escape and unknown macro",
			template: "100%%-%NOPE%-%NUM%",
			want:     []string{"100%--0", "100%--1"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewNameGenerator(tt.template, tt.counter, fakeNow)
			for i, want := range tt.want {
				if got := g.Generate(); got != want {
					t.Errorf("Generate() #%d = %q, want %q", i, got, want)
				}
			}
			if got, want := g.Counter(), tt.counter+uint64(len(tt.want)); got != want {
				t.Errorf("Counter() = %d, want %d", got, want)
			}
		})
	}
}

func TestNameGeneratorDate(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{template: "/tmp/test-%YEAR%.txt", want: "/tmp/test-1970.txt"},
		{template: "/tmp/test-%MONTH%.txt", want: "/tmp/test-01.txt"},
		{template: "/tmp/test-%DAY%.txt", want: "/tmp/test-02.txt"},
		{template: "/tmp/test-%HOUR%.txt", want: "/tmp/test-13.txt"},
		{template: "/tmp/test-%MINUTE%.txt", want: "/tmp/test-14.txt"},
		{template: "/tmp/test-%SECOND%.txt", want: "/tmp/test-15.txt"},
		{template: "%YEAR%%MONTH%%DAY%T%HOUR%%MINUTE%%SECOND%", want: "19700102T131415"},
	}
	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			g := NewNameGenerator(tt.template, 0, fakeNow)
			if got := g.Generate(); got != tt.want {
				t.Errorf("Generate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNameGeneratorSamplesClockOncePerRender(t *testing.T) {
	calls := 0
	clock := func() time.Time {
		calls++
		return time.Date(2024, 12, 31, 23, 59, 59, 0, time.UTC).Add(time.Duration(calls-1) * time.Second)
	}
	g := NewNameGenerator("%YEAR%-%MONTH%-%DAY% %HOUR%:%MINUTE%:%SECOND%", 0, clock)
	if got, want := g.Generate(), "2024-12-31 23:59:59"; got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
	if got, want := g.Generate(), "2025-01-01 00:00:00"; got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
	if calls != 2 {
		t.Errorf("clock sampled %d times, want 2", calls)
	}
}

func TestNameGeneratorUsesUTC(t *testing.T) {
	zone := time.FixedZone("UTC+7", 7*60*60)
	g := NewNameGenerator("%HOUR%", 0, func() time.Time {
		return time.Date(2024, 1, 1, 3, 0, 0, 0, zone)
	})
	if got := g.Generate(); got != "20" {
		t.Errorf("Generate() = %q, want %q", got, "20")
	}
}

func TestNameGeneratorGlob(t *testing.T) {
	g := NewNameGenerator("/var/lib/%NAME%-%YEAR%-%NUM:6%.lp", 0, fakeNow)
	g.Register("NAME", func(string) string { return "cpu" })
	if got, want := g.Glob("NAME"), "/var/lib/cpu-*-*.lp"; got != want {
		t.Errorf("Glob() = %q, want %q", got, want)
	}
	if g.Counter() != 0 {
		t.Errorf("Glob() must not advance the counter")
	}
}

func TestNameGeneratorGlobLeavesArgsAlone(t *testing.T) {
	g := NewNameGenerator("%NAME%-%EXT%-%NUM%", 0, fakeNow)
	g.Register("NAME", func(string) string { return "cpu" })

	static := make([]string, 1, 2)
	static[0] = "NAME"
	if got, want := g.Glob(static...), "cpu-*-*"; got != want {
		t.Errorf("Glob() = %q, want %q", got, want)
	}
	if spare := static[:2][1]; spare != "" {
		t.Errorf("Glob() wrote %q past the end of its arguments", spare)
	}
}

func TestNameGeneratorSeek(t *testing.T) {
	g := NewNameGenerator("%NUM%", 0, fakeNow)
	g.Generate()
	g.seek(7)
	if got := g.Generate(); got != "7" {
		t.Errorf("Generate() after seek = %q, want %q", got, "7")
	}
	if g.Counter() != 8 {
		t.Errorf("Counter() = %d, want 8", g.Counter())
	}
}

package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMerge(t *testing.T) {
	flags := map[string]bool{"format": true, "max-returns": true, "tail": true, "unset": false}

	assert.Equal(t, "json", Merge("text", "json", "format", flags))
	assert.Equal(t, "text", Merge("text", "json", "sort", flags))
	assert.Equal(t, 0, Merge(3, 0, "max-returns", flags))
	assert.False(t, Merge(true, false, "tail", flags))
	assert.True(t, Merge(true, false, "unset", flags))
	assert.Equal(t, "text", Merge("text", "json", "format", nil))
}

func TestMergeStringSlice(t *testing.T) {
	base := []string{"**/*.rs"}

	tests := []struct {
		name     string
		override []string
		flags    map[string]bool
		want     []string
	}{
		{name: "flag not set", override: []string{"src/**"}, flags: map[string]bool{}, want: base},
		{name: "flag set", override: []string{"src/**"}, flags: map[string]bool{"include": true}, want: []string{"src/**"}},
		{name: "flag set without values", override: nil, flags: map[string]bool{"include": true}, want: base},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeStringSlice(base, tt.override, "include", tt.flags))
		})
	}
}

func TestFlagTracker(t *testing.T) {
	initial := map[string]bool{"format": true, "sort": false}
	ft := NewFlagTrackerWithFlags(initial)

	// The tracker owns a copy
	initial["config"] = true
	assert.False(t, ft.WasSet("config"))

	assert.True(t, ft.WasSet("format"))
	assert.False(t, ft.WasSet("sort"))
	assert.Equal(t, 1, ft.Count())

	ft.Set("max-returns")
	assert.Equal(t, 2, ft.Count())

	assert.Equal(t, "json", ft.MergeString("text", "json", "format"))
	assert.Equal(t, "location", ft.MergeString("location", "name", "sort"))
	assert.Equal(t, 5, ft.MergeInt(0, 5, "max-returns"))
	assert.True(t, ft.MergeBool(true, false, "report-tail"))
	assert.Equal(t, []string{"a"}, ft.MergeStringSlice([]string{"a"}, []string{"b"}, "include"))

	all := ft.GetAll()
	all["include"] = true
	assert.False(t, ft.WasSet("include"))
}

func TestFlagTracker_Concurrent(t *testing.T) {
	ft := NewFlagTracker()
	names := []string{"format", "sort", "config", "verbose"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := names[i%len(names)]
			ft.Set(name)
			_ = ft.WasSet(name)
			_ = ft.GetAll()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, len(names), ft.Count())
}

package cmd

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/eykd/storytest-go/internal/zoo"
)

func TestStoryChanged(t *testing.T) {
	path := filepath.Join("stories", "dog.story")
	tests := []struct {
		name  string
		event fsnotify.Event
		want  bool
	}{
		{name: "write to story", event: fsnotify.Event{Name: path, Op: fsnotify.Write}, want: true},
		{name: "story recreated", event: fsnotify.Event{Name: path, Op: fsnotify.Create}, want: true},
		{name: "unclean name", event: fsnotify.Event{Name: "stories/./dog.story", Op: fsnotify.Write}, want: true},
		{name: "other file", event: fsnotify.Event{Name: filepath.Join("stories", "cat.story"), Op: fsnotify.Write}, want: false},
		{name: "chmod only", event: fsnotify.Event{Name: path, Op: fsnotify.Chmod}, want: false},
		{name: "removed", event: fsnotify.Event{Name: path, Op: fsnotify.Remove}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := storyChanged(tt.event, path); got != tt.want {
				t.Errorf("storyChanged() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWatchLoop_DebouncesBurst(t *testing.T) {
	path := filepath.Join("stories", "dog.story")
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	runs := make(chan struct{}, 10)

	done := make(chan struct{})
	go func() {
		defer close(done)
		watchLoop(context.Background(), zap.NewNop(), events, errs, path, 20*time.Millisecond, func() {
			runs <- struct{}{}
		})
	}()

	for range 3 {
		events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	}
	errs <- errors.New("transient")

	select {
	case <-runs:
	case <-time.After(2 * time.Second):
		t.Fatal("rerun not called after burst")
	}

	close(events)
	<-done
	if n := len(runs); n != 0 {
		t.Errorf("extra reruns = %d, want 0", n)
	}
}

func TestWatchLoop_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		watchLoop(ctx, zap.NewNop(), make(chan fsnotify.Event), make(chan error), "x.story", time.Millisecond, func() {
			t.Error("unexpected rerun")
		})
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watchLoop did not return after cancel")
	}
}

func TestNewWatchCmd_UnknownType(t *testing.T) {
	c := NewWatchCmd(&mockStoryReader{data: []byte(cleanStory)}, zoo.NewCatalog)
	c.SetArgs([]string{"--type", "Cat", "s.story"})
	if err := c.Execute(); err == nil {
		t.Error("expected error for unknown type")
	}
}

// Package follower tails a regular file and emits complete lines as they
// are appended.
package follower

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fsnotify/fsnotify"
	"github.com/tevino/abool"

	"linewise/pkg/linereader"
)

// Follower reads a file to its current end, then waits for write events
// and reads again. A line written across several appends is delivered in
// one piece: an unterminated tail is held back until its terminator
// arrives, and flushed when the Follower is closed.
type Follower struct {
	path    string
	file    *os.File
	reader  *linereader.Reader
	watcher *fsnotify.Watcher
	closed  *abool.AtomicBool
	quit    chan struct{}
	done    chan struct{}
	lines   chan []byte
	partial []byte
	err     error
}

// New opens path and starts following it. chunkSize is passed through to
// the line reader; non-positive means the default.
func New(path string, chunkSize int) (*Follower, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		file.Close()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}

	f := &Follower{
		path:    path,
		file:    file,
		reader:  linereader.NewSize(chunkSize),
		watcher: watcher,
		closed:  abool.New(),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
		lines:   make(chan []byte, 64),
	}
	go f.run()
	return f, nil
}

// Lines returns the channel of delivered lines. It is closed when the
// Follower stops, either through Close or because the file vanished or a
// read failed.
func (f *Follower) Lines() <-chan []byte {
	return f.lines
}

// Err blocks until the Follower has stopped and reports why the Lines
// channel was closed. It returns nil after a plain Close.
func (f *Follower) Err() error {
	<-f.done
	return f.err
}

// Close stops the Follower and releases the watcher and the file. It is
// safe to call more than once.
func (f *Follower) Close() error {
	if !f.closed.SetToIf(false, true) {
		return nil
	}
	close(f.quit)
	f.watcher.Close()
	<-f.done
	return f.file.Close()
}

func (f *Follower) run() {
	defer close(f.done)
	defer close(f.lines)

	for {
		if !f.drain() {
			return
		}
		select {
		case <-f.quit:
			f.flushPartial()
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				f.flushPartial()
				return
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				f.flushPartial()
				f.err = fmt.Errorf("follow %s: file was removed or renamed", f.path)
				return
			}
			// Write (and on some platforms Chmod) events mean the file may
			// have grown; loop and drain again.
		case err, ok := <-f.watcher.Errors:
			if !ok {
				f.flushPartial()
				return
			}
			f.err = fmt.Errorf("watch %s: %w", f.path, err)
			return
		}
	}
}

// drain reads lines until the current end of file. It reports false when
// the follower should stop.
func (f *Follower) drain() bool {
	for {
		line, err := f.reader.NextLine(f.file)
		if errors.Is(err, io.EOF) {
			return true
		}
		if err != nil {
			// A read error during shutdown is just the closed file.
			if !f.closed.IsSet() {
				f.err = err
			}
			return false
		}
		if line[len(line)-1] != '\n' {
			// Unterminated tail at end of file: hold it until the rest of
			// the line is appended.
			f.partial = append(f.partial, line...)
			return true
		}
		if len(f.partial) > 0 {
			line = append(f.partial, line...)
			f.partial = nil
		}
		select {
		case f.lines <- line:
		case <-f.quit:
			return false
		}
	}
}

// flushPartial delivers a held-back unterminated tail, if the consumer is
// still draining the channel.
func (f *Follower) flushPartial() {
	if len(f.partial) == 0 {
		return
	}
	select {
	case f.lines <- f.partial:
	default:
	}
	f.partial = nil
}

package driver

import (
	"path/filepath"
	"time"

	"emerge/internal/diag"
	"emerge/internal/source"
)

// Stage is a step of a check run.
type Stage string

const (
	StageLoad  Stage = "load"
	StageParse Stage = "parse"
	StageBind  Stage = "bind"
	StageLower Stage = "lower"
)

type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file, or for the whole run when File is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. OnEvent may be called from several
// goroutines during loading and parsing.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// emit reports ev with File in the slash form used by the file set.
func emit(sink ProgressSink, ev Event) {
	if sink == nil {
		return
	}
	if ev.File != "" {
		ev.File = filepath.ToSlash(ev.File)
	}
	sink.OnEvent(ev)
}

func emitQueued(sink ProgressSink, files []string) {
	for _, file := range files {
		emit(sink, Event{File: file, Stage: StageLoad, Status: StatusQueued})
	}
}

// emitStage reports stage for the run and then for every file.
func emitStage(sink ProgressSink, files []string, stage Stage, status Status, elapsed time.Duration) {
	if sink == nil {
		return
	}
	emit(sink, Event{Stage: stage, Status: status, Elapsed: elapsed})
	for _, file := range files {
		emit(sink, Event{File: file, Stage: stage, Status: status, Elapsed: elapsed})
	}
}

// emitOutcome closes every file: error when it carries an error diagnostic.
// files[i] is the path res.Files[i] was loaded from.
func emitOutcome(sink ProgressSink, res *Result, files []string, stage Stage) {
	if sink == nil {
		return
	}
	failed := make(map[source.FileID]bool)
	for _, d := range res.Bag.Items() {
		if d.Severity >= diag.SevError {
			failed[d.Primary.File] = true
		}
	}
	for i, id := range res.Files {
		status := StatusDone
		if failed[id] {
			status = StatusError
		}
		emit(sink, Event{File: files[i], Stage: stage, Status: status})
	}
}

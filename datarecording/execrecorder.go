package datarecording

import (
	"os"
	"strings"
	"time"
)

// ExecTableName is the table that holds the execution information.
const ExecTableName = "exec_info"

const execTimeFormat = "2006-01-02 15:04:05.000000000"

// ExecInfo is one property of the program execution.
type ExecInfo struct {
	Property string
	Value    string
}

// An ExecRecorder records how and when the program was run.
type ExecRecorder struct {
	recorder DataRecorder
	entries  []ExecInfo
	now      func() time.Time
}

// NewExecRecorder creates an ExecRecorder and the table it writes to.
func NewExecRecorder(recorder DataRecorder) *ExecRecorder {
	e := &ExecRecorder{
		recorder: recorder,
		now:      time.Now,
	}

	recorder.CreateTable(ExecTableName, ExecInfo{})

	return e
}

// Start logs the current execution. Extra properties, such as the run ID or
// the cache capacity, are recorded alongside the command line.
func (e *ExecRecorder) Start(extra ...ExecInfo) {
	e.entries = append(e.entries,
		ExecInfo{"Start Time", e.now().Format(execTimeFormat)},
		ExecInfo{"Command", strings.Join(os.Args, " ")},
	)

	cwd, err := os.Getwd()
	if err == nil {
		e.entries = append(e.entries, ExecInfo{"Working Directory", cwd})
	}

	e.entries = append(e.entries, extra...)
}

// End writes the collected properties along with the exit time.
func (e *ExecRecorder) End() {
	for _, entry := range e.entries {
		e.recorder.InsertData(ExecTableName, entry)
	}

	e.recorder.InsertData(ExecTableName,
		ExecInfo{"End Time", e.now().Format(execTimeFormat)})

	e.entries = nil

	e.recorder.Flush()
}

package models

import (
	"sync"

	"github.com/golang/glog"
)

// ProgressMonitor receives advisory progress from a refresh. Implementations
// must not block for long, they are called from the refreshing goroutine.
type ProgressMonitor interface {
	BeginTask(name string, totalWork int)
	SetTaskName(name string)
	Worked(work int)
	Done()
}

// NullProgressMonitor discards all progress
type NullProgressMonitor struct{}

// BeginTask implements ProgressMonitor
func (NullProgressMonitor) BeginTask(string, int) {}

// SetTaskName implements ProgressMonitor
func (NullProgressMonitor) SetTaskName(string) {}

// Worked implements ProgressMonitor
func (NullProgressMonitor) Worked(int) {}

// Done implements ProgressMonitor
func (NullProgressMonitor) Done() {}

// LogProgressMonitor writes progress to the info log at verbosity 2
type LogProgressMonitor struct {
	mu    sync.Mutex
	name  string
	total int
	done  int
}

// BeginTask implements ProgressMonitor
func (m *LogProgressMonitor) BeginTask(name string, totalWork int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.name = name
	m.total = totalWork
	m.done = 0
	if glog.V(2) {
		glog.Infof("%s: starting, %d to do", name, totalWork)
	}
}

// SetTaskName implements ProgressMonitor
func (m *LogProgressMonitor) SetTaskName(name string) {
	if glog.V(3) {
		glog.Info(name)
	}
}

// Worked implements ProgressMonitor
func (m *LogProgressMonitor) Worked(work int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.done += work
}

// Done implements ProgressMonitor
func (m *LogProgressMonitor) Done() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if glog.V(2) {
		glog.Infof("%s: finished %d of %d", m.name, m.done, m.total)
	}
}

// Progress returns the work done and the total announced by BeginTask
func (m *LogProgressMonitor) Progress() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done, m.total
}

package dqm

import (
	"sort"
	"sync"
)

// Task is a monitoring task driven once per event by the host.
type Task interface {
	Name() string
	BookMEs()
	Analyze(event *EventType) bool
	MonitorElements() []*MonitorElement
	Reset()
}

type TaskFactory func(params TaskParameters, geometry Geometry) (Task, error)

var (
	registryMu sync.Mutex
	registry   = make(map[string]TaskFactory)
)

// RegisterTask makes a task available by name. Registering a name twice panics.
func RegisterTask(name string, factory TaskFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[name]; dup {
		panic("dqm: RegisterTask called twice for " + name)
	}
	registry[name] = factory
}

func NewTask(name string, params TaskParameters, geometry Geometry) (Task, error) {
	registryMu.Lock()
	factory, ok := registry[name]
	registryMu.Unlock()
	if !ok {
		return nil, &ErrUnknownTask{Name: name}
	}
	return factory(params, geometry)
}

func TaskNames() []string {
	registryMu.Lock()
	defer registryMu.Unlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

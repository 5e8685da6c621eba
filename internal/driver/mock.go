package driver

import (
	"context"
	"sort"

	"github.com/ksyq12/vhostfrag/internal/errors"
	"github.com/ksyq12/vhostfrag/internal/fragment"
)

// MockDriver is a test double for Driver interface. Written targets are kept
// in Files so Read, List and Snapshot see them.
type MockDriver struct {
	name  string
	paths Paths

	Files   map[string]string
	Enabled map[string]bool

	// Function mocks - set these to customize behavior
	WriteFunc     func(out fragment.Output) error
	RemoveFunc    func(id string) error
	EnableFunc    func(id string) error
	DisableFunc   func(id string) error
	ListFunc      func() ([]string, error)
	IsEnabledFunc func(id string) (bool, error)
	TestFunc      func() error
	ReloadFunc    func() error

	// Call tracking - check these to verify interactions
	WriteCalls     []fragment.Output
	RestoreCalls   []string
	RemoveCalls    []string
	EnableCalls    []string
	DisableCalls   []string
	ListCalls      int
	IsEnabledCalls []string
	TestCalls      int
	ReloadCalls    int
}

// NewMockDriver creates a new MockDriver with default in-memory implementations
func NewMockDriver(name, availableDir, enabledDir string) *MockDriver {
	return &MockDriver{
		name: name,
		paths: Paths{
			Available: availableDir,
			Enabled:   enabledDir,
		},
		Files:          make(map[string]string),
		Enabled:        make(map[string]bool),
		WriteCalls:     make([]fragment.Output, 0),
		RestoreCalls:   make([]string, 0),
		RemoveCalls:    make([]string, 0),
		EnableCalls:    make([]string, 0),
		DisableCalls:   make([]string, 0),
		IsEnabledCalls: make([]string, 0),
	}
}

// Name returns the driver name
func (m *MockDriver) Name() string {
	return m.name
}

// Paths returns the configured paths
func (m *MockDriver) Paths() Paths {
	return m.paths
}

// Write records the call and stores the text
func (m *MockDriver) Write(out fragment.Output) error {
	m.WriteCalls = append(m.WriteCalls, out)
	if m.WriteFunc != nil {
		if err := m.WriteFunc(out); err != nil {
			return err
		}
	}
	m.Files[out.Target.ID()] = out.Text
	return nil
}

// Read returns the stored text
func (m *MockDriver) Read(id string) (string, error) {
	text, ok := m.Files[id]
	if !ok {
		return "", errors.NotFound(id)
	}
	return text, nil
}

// Snapshot captures the stored text
func (m *MockDriver) Snapshot(id string) (*Snapshot, error) {
	s := &Snapshot{ID: id}
	if text, ok := m.Files[id]; ok {
		s.File = []byte(text)
	}
	return s, nil
}

// Restore records the call and puts the captured text back
func (m *MockDriver) Restore(s *Snapshot) error {
	m.RestoreCalls = append(m.RestoreCalls, s.ID)
	if s.File == nil {
		delete(m.Files, s.ID)
		return nil
	}
	m.Files[s.ID] = string(s.File)
	return nil
}

// Remove records the call and invokes the mock function if set
func (m *MockDriver) Remove(id string) error {
	m.RemoveCalls = append(m.RemoveCalls, id)
	if m.RemoveFunc != nil {
		return m.RemoveFunc(id)
	}
	if _, ok := m.Files[id]; !ok {
		return errors.NotFound(id)
	}
	delete(m.Files, id)
	delete(m.Enabled, id)
	return nil
}

// Enable records the call and invokes the mock function if set
func (m *MockDriver) Enable(id string) error {
	m.EnableCalls = append(m.EnableCalls, id)
	if m.EnableFunc != nil {
		return m.EnableFunc(id)
	}
	m.Enabled[id] = true
	return nil
}

// Disable records the call and invokes the mock function if set
func (m *MockDriver) Disable(id string) error {
	m.DisableCalls = append(m.DisableCalls, id)
	if m.DisableFunc != nil {
		return m.DisableFunc(id)
	}
	delete(m.Enabled, id)
	return nil
}

// List records the call and invokes the mock function if set
func (m *MockDriver) List() ([]string, error) {
	m.ListCalls++
	if m.ListFunc != nil {
		return m.ListFunc()
	}
	ids := make([]string, 0, len(m.Files))
	for id := range m.Files {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// IsEnabled records the call and invokes the mock function if set
func (m *MockDriver) IsEnabled(id string) (bool, error) {
	m.IsEnabledCalls = append(m.IsEnabledCalls, id)
	if m.IsEnabledFunc != nil {
		return m.IsEnabledFunc(id)
	}
	return m.Enabled[id], nil
}

// Test records the call and invokes the mock function if set
func (m *MockDriver) Test(ctx context.Context) error {
	m.TestCalls++
	if m.TestFunc != nil {
		return m.TestFunc()
	}
	return nil
}

// Reload records the call and invokes the mock function if set
func (m *MockDriver) Reload(ctx context.Context) error {
	m.ReloadCalls++
	if m.ReloadFunc != nil {
		return m.ReloadFunc()
	}
	return nil
}

// Reset clears all call tracking
func (m *MockDriver) Reset() {
	m.WriteCalls = make([]fragment.Output, 0)
	m.RestoreCalls = make([]string, 0)
	m.RemoveCalls = make([]string, 0)
	m.EnableCalls = make([]string, 0)
	m.DisableCalls = make([]string, 0)
	m.IsEnabledCalls = make([]string, 0)
	m.ListCalls = 0
	m.TestCalls = 0
	m.ReloadCalls = 0
}

package doctor

import (
	"testing"

	"github.com/stretchr/testify/mock"
)

// MockCheck is a testify mock of Check with mockery-style expecters.
type MockCheck struct {
	mock.Mock
}

// NewMockCheck creates a MockCheck whose expectations are asserted on cleanup.
func NewMockCheck(t *testing.T) *MockCheck {
	m := &MockCheck{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockCheck_Expecter struct {
	mock *mock.Mock
}

func (m *MockCheck) EXPECT() *MockCheck_Expecter {
	return &MockCheck_Expecter{mock: &m.Mock}
}

func (m *MockCheck) Name() string {
	return m.Called().String(0)
}

func (m *MockCheck) Category() string {
	return m.Called().String(0)
}

func (m *MockCheck) Run() *CheckResult {
	ret := m.Called()
	r, _ := ret.Get(0).(*CheckResult)
	return r
}

func (e *MockCheck_Expecter) Name() *mock.Call {
	return e.mock.On("Name")
}

func (e *MockCheck_Expecter) Category() *mock.Call {
	return e.mock.On("Category")
}

func (e *MockCheck_Expecter) Run() *mock.Call {
	return e.mock.On("Run")
}

// fixableCheck is a Check that also implements Fixer.
type fixableCheck struct {
	*MockCheck
	canFix bool
	fixes  int
}

func (f *fixableCheck) CanFix() bool { return f.canFix }

func (f *fixableCheck) Fix() []FixResult {
	f.fixes++
	return []FixResult{{Path: "fixed", Fixed: true}}
}

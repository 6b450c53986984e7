package fuzzing

import (
	reflect "reflect"

	gomock "go.uber.org/mock/gomock"
)

// MockTestingT is a mock of TestingT interface.
type MockTestingT struct {
	ctrl     *gomock.Controller
	recorder *MockTestingTMockRecorder
}

// MockTestingTMockRecorder is the mock recorder for MockTestingT.
type MockTestingTMockRecorder struct {
	mock *MockTestingT
}

// NewMockTestingT creates a new mock instance.
func NewMockTestingT(ctrl *gomock.Controller) *MockTestingT {
	mock := &MockTestingT{ctrl: ctrl}
	mock.recorder = &MockTestingTMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTestingT) EXPECT() *MockTestingTMockRecorder {
	return m.recorder
}

// Errorf mocks base method.
func (m *MockTestingT) Errorf(format string, args ...any) {
	m.ctrl.T.Helper()
	varargs := []any{format}
	for _, a := range args {
		varargs = append(varargs, a)
	}
	m.ctrl.Call(m, "Errorf", varargs...)
}

// Errorf indicates an expected call of Errorf.
func (mr *MockTestingTMockRecorder) Errorf(format any, args ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	varargs := append([]any{format}, args...)
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Errorf", reflect.TypeOf((*MockTestingT)(nil).Errorf), varargs...)
}

// Fatalf mocks base method.
func (m *MockTestingT) Fatalf(format string, args ...any) {
	m.ctrl.T.Helper()
	varargs := []any{format}
	for _, a := range args {
		varargs = append(varargs, a)
	}
	m.ctrl.Call(m, "Fatalf", varargs...)
}

// Fatalf indicates an expected call of Fatalf.
func (mr *MockTestingTMockRecorder) Fatalf(format any, args ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	varargs := append([]any{format}, args...)
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Fatalf", reflect.TypeOf((*MockTestingT)(nil).Fatalf), varargs...)
}

// TempDir mocks base method.
func (m *MockTestingT) TempDir() string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "TempDir")
	ret0, _ := ret[0].(string)
	return ret0
}

// TempDir indicates an expected call of TempDir.
func (mr *MockTestingTMockRecorder) TempDir() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "TempDir", reflect.TypeOf((*MockTestingT)(nil).TempDir))
}

// MockTestingF is a mock of TestingF interface.
type MockTestingF struct {
	ctrl     *gomock.Controller
	recorder *MockTestingFMockRecorder
}

// MockTestingFMockRecorder is the mock recorder for MockTestingF.
type MockTestingFMockRecorder struct {
	mock *MockTestingF
}

// NewMockTestingF creates a new mock instance.
func NewMockTestingF(ctrl *gomock.Controller) *MockTestingF {
	mock := &MockTestingF{ctrl: ctrl}
	mock.recorder = &MockTestingFMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockTestingF) EXPECT() *MockTestingFMockRecorder {
	return m.recorder
}

// Add mocks base method.
func (m *MockTestingF) Add(args ...any) {
	m.ctrl.T.Helper()
	varargs := []any{}
	for _, a := range args {
		varargs = append(varargs, a)
	}
	m.ctrl.Call(m, "Add", varargs...)
}

// Add indicates an expected call of Add.
func (mr *MockTestingFMockRecorder) Add(args ...any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Add", reflect.TypeOf((*MockTestingF)(nil).Add), args...)
}

// Fuzz mocks base method.
func (m *MockTestingF) Fuzz(ff any) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Fuzz", ff)
}

// Fuzz indicates an expected call of Fuzz.
func (mr *MockTestingFMockRecorder) Fuzz(ff any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Fuzz", reflect.TypeOf((*MockTestingF)(nil).Fuzz), ff)
}

// MockOperation is a mock of Operation interface.
type MockOperation[C any] struct {
	ctrl     *gomock.Controller
	recorder *MockOperationMockRecorder[C]
}

// MockOperationMockRecorder is the mock recorder for MockOperation.
type MockOperationMockRecorder[C any] struct {
	mock *MockOperation[C]
}

// NewMockOperation creates a new mock instance.
func NewMockOperation[C any](ctrl *gomock.Controller) *MockOperation[C] {
	mock := &MockOperation[C]{ctrl: ctrl}
	mock.recorder = &MockOperationMockRecorder[C]{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockOperation[C]) EXPECT() *MockOperationMockRecorder[C] {
	return m.recorder
}

// Apply mocks base method.
func (m *MockOperation[C]) Apply(t TestingT, context *C) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Apply", t, context)
}

// Apply indicates an expected call of Apply.
func (mr *MockOperationMockRecorder[C]) Apply(t, context any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Apply", reflect.TypeOf((*MockOperation[C])(nil).Apply), t, context)
}

// Serialise mocks base method.
func (m *MockOperation[C]) Serialise() []byte {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Serialise")
	ret0, _ := ret[0].([]byte)
	return ret0
}

// Serialise indicates an expected call of Serialise.
func (mr *MockOperationMockRecorder[C]) Serialise() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Serialise", reflect.TypeOf((*MockOperation[C])(nil).Serialise))
}

// MockCampaign is a mock of Campaign interface.
type MockCampaign[C any] struct {
	ctrl     *gomock.Controller
	recorder *MockCampaignMockRecorder[C]
}

// MockCampaignMockRecorder is the mock recorder for MockCampaign.
type MockCampaignMockRecorder[C any] struct {
	mock *MockCampaign[C]
}

// NewMockCampaign creates a new mock instance.
func NewMockCampaign[C any](ctrl *gomock.Controller) *MockCampaign[C] {
	mock := &MockCampaign[C]{ctrl: ctrl}
	mock.recorder = &MockCampaignMockRecorder[C]{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockCampaign[C]) EXPECT() *MockCampaignMockRecorder[C] {
	return m.recorder
}

// Cleanup mocks base method.
func (m *MockCampaign[C]) Cleanup(t TestingT, context *C) {
	m.ctrl.T.Helper()
	m.ctrl.Call(m, "Cleanup", t, context)
}

// Cleanup indicates an expected call of Cleanup.
func (mr *MockCampaignMockRecorder[C]) Cleanup(t, context any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Cleanup", reflect.TypeOf((*MockCampaign[C])(nil).Cleanup), t, context)
}

// CreateContext mocks base method.
func (m *MockCampaign[C]) CreateContext(t TestingT) *C {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CreateContext", t)
	ret0, _ := ret[0].(*C)
	return ret0
}

// CreateContext indicates an expected call of CreateContext.
func (mr *MockCampaignMockRecorder[C]) CreateContext(t any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CreateContext", reflect.TypeOf((*MockCampaign[C])(nil).CreateContext), t)
}

// Deserialize mocks base method.
func (m *MockCampaign[C]) Deserialize(rawData []byte) []Operation[C] {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Deserialize", rawData)
	ret0, _ := ret[0].([]Operation[C])
	return ret0
}

// Deserialize indicates an expected call of Deserialize.
func (mr *MockCampaignMockRecorder[C]) Deserialize(rawData any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Deserialize", reflect.TypeOf((*MockCampaign[C])(nil).Deserialize), rawData)
}

// Init mocks base method.
func (m *MockCampaign[C]) Init() []OperationSequence[C] {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Init")
	ret0, _ := ret[0].([]OperationSequence[C])
	return ret0
}

// Init indicates an expected call of Init.
func (mr *MockCampaignMockRecorder[C]) Init() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Init", reflect.TypeOf((*MockCampaign[C])(nil).Init))
}

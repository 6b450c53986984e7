// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

import (
	reflect "reflect"

	common "github.com/tari-project/tari-sub006/common"
	gomock "go.uber.org/mock/gomock"
)

// Mockhasher is a mock of hasher interface.
type Mockhasher struct {
	ctrl     *gomock.Controller
	recorder *MockhasherMockRecorder
}

// MockhasherMockRecorder is the mock recorder for Mockhasher.
type MockhasherMockRecorder struct {
	mock *Mockhasher
}

// NewMockhasher creates a new mock instance.
func NewMockhasher(ctrl *gomock.Controller) *Mockhasher {
	mock := &Mockhasher{ctrl: ctrl}
	mock.recorder = &MockhasherMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *Mockhasher) EXPECT() *MockhasherMockRecorder {
	return m.recorder
}

// hashBranch mocks base method.
func (m *Mockhasher) hashBranch(height int, prefix Key, left, right common.Hash) common.Hash {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "hashBranch", height, prefix, left, right)
	ret0, _ := ret[0].(common.Hash)
	return ret0
}

// hashBranch indicates an expected call of hashBranch.
func (mr *MockhasherMockRecorder) hashBranch(height, prefix, left, right any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "hashBranch", reflect.TypeOf((*Mockhasher)(nil).hashBranch), height, prefix, left, right)
}

// hashLeaf mocks base method.
func (m *Mockhasher) hashLeaf(key Key, value ValueHash) common.Hash {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "hashLeaf", key, value)
	ret0, _ := ret[0].(common.Hash)
	return ret0
}

// hashLeaf indicates an expected call of hashLeaf.
func (mr *MockhasherMockRecorder) hashLeaf(key, value any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "hashLeaf", reflect.TypeOf((*Mockhasher)(nil).hashLeaf), key, value)
}

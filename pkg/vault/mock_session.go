package vault

import (
	"context"
	"reflect"

	"github.com/hashicorp/vault/api"
	"go.uber.org/mock/gomock"
)

type MockSession struct {
	ctrl     *gomock.Controller
	recorder *MockSessionMockRecorder
}

type MockSessionMockRecorder struct {
	mock *MockSession
}

func NewMockSession(ctrl *gomock.Controller) *MockSession {
	mock := &MockSession{ctrl: ctrl}
	mock.recorder = &MockSessionMockRecorder{mock}
	return mock
}

func (m *MockSession) EXPECT() *MockSessionMockRecorder {
	return m.recorder
}

func (m *MockSession) LookupSelf(ctx context.Context) (*api.Secret, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "LookupSelf", ctx)
	ret0, _ := ret[0].(*api.Secret)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockSessionMockRecorder) LookupSelf(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "LookupSelf", reflect.TypeOf((*MockSession)(nil).LookupSelf), ctx)
}

func (m *MockSession) RenewSelf(ctx context.Context) (*api.Secret, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RenewSelf", ctx)
	ret0, _ := ret[0].(*api.Secret)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

func (mr *MockSessionMockRecorder) RenewSelf(ctx interface{}) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RenewSelf", reflect.TypeOf((*MockSession)(nil).RenewSelf), ctx)
}

// CreateTestTokenLookup returns a lookup-self response with the given
// renewable flag.
func CreateTestTokenLookup(renewable bool) *api.Secret {
	return &api.Secret{
		Data: map[string]interface{}{
			"accessor":  "8609694a-cdbc-db9b-d345-e782dbb562ed",
			"policies":  []interface{}{"default"},
			"renewable": renewable,
			"ttl":       3600,
		},
	}
}

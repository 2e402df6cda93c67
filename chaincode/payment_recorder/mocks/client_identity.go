package mocks

import (
	"crypto/x509"

	"github.com/stretchr/testify/mock"
)

// ClientIdentity is a mock of cid.ClientIdentity
type ClientIdentity struct {
	mock.Mock
}

func (_m *ClientIdentity) GetID() (string, error) {
	ret := _m.Called()

	if rf, ok := ret.Get(0).(func() (string, error)); ok {
		return rf()
	}
	return ret.String(0), ret.Error(1)
}

func (_m *ClientIdentity) GetMSPID() (string, error) {
	ret := _m.Called()
	return ret.String(0), ret.Error(1)
}

func (_m *ClientIdentity) GetAttributeValue(attrName string) (string, bool, error) {
	ret := _m.Called(attrName)
	return ret.String(0), ret.Bool(1), ret.Error(2)
}

func (_m *ClientIdentity) AssertAttributeValue(attrName, attrValue string) error {
	ret := _m.Called(attrName, attrValue)
	return ret.Error(0)
}

func (_m *ClientIdentity) GetX509Certificate() (*x509.Certificate, error) {
	ret := _m.Called()

	var r0 *x509.Certificate
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*x509.Certificate)
	}
	return r0, ret.Error(1)
}

package mocks

import (
	"github.com/hyperledger/fabric-chaincode-go/pkg/cid"
	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/stretchr/testify/mock"
)

// TransactionContextInterface is a mock of contractapi.TransactionContextInterface
type TransactionContextInterface struct {
	mock.Mock
}

func (_m *TransactionContextInterface) GetStub() shim.ChaincodeStubInterface {
	ret := _m.Called()

	if rf, ok := ret.Get(0).(func() shim.ChaincodeStubInterface); ok {
		return rf()
	}
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).(shim.ChaincodeStubInterface)
}

func (_m *TransactionContextInterface) GetClientIdentity() cid.ClientIdentity {
	ret := _m.Called()

	if rf, ok := ret.Get(0).(func() cid.ClientIdentity); ok {
		return rf()
	}
	if ret.Get(0) == nil {
		return nil
	}
	return ret.Get(0).(cid.ClientIdentity)
}

// Package mocks provides testify mock implementations of the store, mail,
// storage and auth interfaces for use across test packages.
//
// Usage:
//
//	users := new(mocks.UserStore)
//	users.On("GetByID", mock.Anything, int64(7)).Return(&domain.User{ID: 7}, nil)
//
//	// ... exercise the code under test ...
//
//	users.AssertExpectations(t)
//
// Mocks returning a store from WithTx return themselves unless another store
// is configured for the call.
package mocks

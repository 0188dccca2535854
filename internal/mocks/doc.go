// Package mocks provides shared test doubles for the interfaces used across
// packages.
//
// Most mocks follow the function-field style: set the XxxFn field to
// control a method, or leave it nil for the default behavior documented on
// the type. TestifyMockContextBuilder uses testify/mock for tests that
// assert on call expectations.
//
//	jwtService := &mocks.MockJWTService{
//	    ValidateTokenFn: func(ctx context.Context, token string) (*auth.Claims, error) {
//	        return &auth.Claims{UserID: userID}, nil
//	    },
//	}
package mocks

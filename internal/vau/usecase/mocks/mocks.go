// Package mocks provides mock implementations of the VAU use case collaborators.
package mocks

import (
	"context"
	"net/http"

	"github.com/stretchr/testify/mock"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

// MockPseudonymRepository is a mock implementation of PseudonymRepository.
type MockPseudonymRepository struct {
	mock.Mock
}

// Get mocks the Get method of PseudonymRepository.
func (m *MockPseudonymRepository) Get(ctx context.Context, key string) (*vauDomain.UserPseudonym, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vauDomain.UserPseudonym), args.Error(1)
}

// Upsert mocks the Upsert method of PseudonymRepository.
func (m *MockPseudonymRepository) Upsert(ctx context.Context, pseudonym *vauDomain.UserPseudonym) error {
	args := m.Called(ctx, pseudonym)
	return args.Error(0)
}

// Delete mocks the Delete method of PseudonymRepository.
func (m *MockPseudonymRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockDoer is a mock implementation of Doer.
type MockDoer struct {
	mock.Mock
}

// Do mocks the Do method of Doer.
func (m *MockDoer) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// MockCertificateProvider is a mock implementation of CertificateProvider.
type MockCertificateProvider struct {
	mock.Mock
}

// Certificate mocks the Certificate method of CertificateProvider.
func (m *MockCertificateProvider) Certificate(ctx context.Context) (*vauDomain.Certificate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*vauDomain.Certificate), args.Error(1)
}

// MockCachingCertificateProvider is a mock CertificateProvider that also implements
// CertificateInvalidator.
type MockCachingCertificateProvider struct {
	MockCertificateProvider
}

// Invalidate mocks the Invalidate method of CertificateInvalidator.
func (m *MockCachingCertificateProvider) Invalidate() {
	m.Called()
}

// MockTokenSource is a mock implementation of TokenSource.
type MockTokenSource struct {
	mock.Mock
}

// Token mocks the Token method of TokenSource.
func (m *MockTokenSource) Token(ctx context.Context, req *http.Request) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

// MockTransportUseCase is a mock implementation of TransportUseCase.
type MockTransportUseCase struct {
	mock.Mock
}

// Do mocks the Do method of TransportUseCase.
func (m *MockTransportUseCase) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*http.Response), args.Error(1)
}

// Pseudonym mocks the Pseudonym method of TransportUseCase.
func (m *MockTransportUseCase) Pseudonym(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// ResetPseudonym mocks the ResetPseudonym method of TransportUseCase.
func (m *MockTransportUseCase) ResetPseudonym(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

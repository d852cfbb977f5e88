package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"net/url"

	"github.com/allisson/vau/internal/config"
	vauHTTP "github.com/allisson/vau/internal/vau/http"
	vauRepository "github.com/allisson/vau/internal/vau/repository"
	vauService "github.com/allisson/vau/internal/vau/service"
	vauUseCase "github.com/allisson/vau/internal/vau/usecase"
)

// PseudonymRepository returns the configured user pseudonym store.
// Stored values are encrypted when a KMS key URI is configured.
func (c *Container) PseudonymRepository() (vauUseCase.PseudonymRepository, error) {
	var err error
	c.pseudonymRepositoryInit.Do(func() {
		c.pseudonymRepository, err = c.initPseudonymRepository()
		if err != nil {
			c.initErrors["pseudonymRepository"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["pseudonymRepository"]; exists {
		return nil, storedErr
	}
	return c.pseudonymRepository, nil
}

// CertificateProvider returns the source of the VAU encryption certificate.
func (c *Container) CertificateProvider() (vauUseCase.CertificateProvider, error) {
	var err error
	c.certificateProviderInit.Do(func() {
		c.certificateProvider, err = c.initCertificateProvider()
		if err != nil {
			c.initErrors["certificateProvider"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["certificateProvider"]; exists {
		return nil, storedErr
	}
	return c.certificateProvider, nil
}

// HTTPClient returns the client used for outer requests to the VAU server.
func (c *Container) HTTPClient() vauUseCase.Doer {
	c.httpClientInit.Do(func() {
		c.httpClient = &stdhttp.Client{Timeout: c.config.VAURequestTimeout}
	})
	return c.httpClient
}

// TransportUseCase returns the VAU transport, wrapped with metrics when enabled.
func (c *Container) TransportUseCase() (vauUseCase.TransportUseCase, error) {
	var err error
	c.transportUseCaseInit.Do(func() {
		c.transportUseCase, err = c.initTransportUseCase()
		if err != nil {
			c.initErrors["transportUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["transportUseCase"]; exists {
		return nil, storedErr
	}
	return c.transportUseCase, nil
}

// ProxyHandler returns the gin handler that forwards local requests through the VAU.
func (c *Container) ProxyHandler() (*vauHTTP.ProxyHandler, error) {
	var err error
	c.proxyHandlerInit.Do(func() {
		c.proxyHandler, err = c.initProxyHandler()
		if err != nil {
			c.initErrors["proxyHandler"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["proxyHandler"]; exists {
		return nil, storedErr
	}
	return c.proxyHandler, nil
}

func (c *Container) initPseudonymRepository() (vauUseCase.PseudonymRepository, error) {
	var repository vauUseCase.PseudonymRepository

	switch c.config.PseudonymStore {
	case config.PseudonymStoreMemory:
		repository = vauRepository.NewMemoryPseudonymRepository()
	case config.PseudonymStorePostgres, config.PseudonymStoreMySQL, config.PseudonymStoreSQLite:
		db, err := c.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get database for pseudonym repository: %w", err)
		}
		switch c.config.PseudonymStore {
		case config.PseudonymStorePostgres:
			repository = vauRepository.NewPostgreSQLPseudonymRepository(db)
		case config.PseudonymStoreMySQL:
			repository = vauRepository.NewMySQLPseudonymRepository(db)
		default:
			repository = vauRepository.NewSQLitePseudonymRepository(db)
		}
	default:
		return nil, fmt.Errorf("unsupported pseudonym store: %s", c.config.PseudonymStore)
	}

	if c.config.KMSKeyURI == "" {
		return repository, nil
	}

	keeper, err := vauService.NewKMSService().OpenKeeper(context.Background(), c.config.KMSKeyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open keeper for pseudonym repository: %w", err)
	}
	c.kmsKeeper = keeper

	return vauRepository.NewEncryptedPseudonymRepository(repository, keeper), nil
}

// initCertificateProvider reads the certificate from disk when a path is configured and
// fetches it from the VAU server otherwise.
func (c *Container) initCertificateProvider() (vauUseCase.CertificateProvider, error) {
	decoder := vauService.NewCertificateDecoder()

	if c.config.VAUCertificatePath != "" {
		provider, err := vauService.NewFileCertificateProvider(c.config.VAUCertificatePath, decoder)
		if err != nil {
			return nil, fmt.Errorf("failed to load vau certificate: %w", err)
		}
		return provider, nil
	}

	serverURL, err := url.Parse(c.config.VAUServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid vau server url: %w", err)
	}

	return vauHTTP.NewCertificateClient(
		serverURL,
		c.HTTPClient(),
		decoder,
		c.config.VAUCertificateCacheTTL,
	), nil
}

func (c *Container) initTransportUseCase() (vauUseCase.TransportUseCase, error) {
	serverURL, err := url.Parse(c.config.VAUServerURL)
	if err != nil {
		return nil, fmt.Errorf("invalid vau server url: %w", err)
	}

	certificateProvider, err := c.CertificateProvider()
	if err != nil {
		return nil, fmt.Errorf("failed to get certificate provider for transport use case: %w", err)
	}

	pseudonymRepository, err := c.PseudonymRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get pseudonym repository for transport use case: %w", err)
	}

	baseUseCase := vauUseCase.NewTransportUseCase(
		vauUseCase.Config{
			ServerURL:    serverURL,
			PseudonymKey: c.config.PseudonymKey,
		},
		c.HTTPClient(),
		certificateProvider,
		vauService.NewBearerTokenSource(c.config.VAUBearerToken),
		pseudonymRepository,
		vauService.NewHTTPCodec(),
		vauService.NewKeyMaterialGenerator(vauService.NewRandomSource()),
		vauService.NewDefaultEciesEnvelope(),
		c.Logger(),
	)

	// Wrap with metrics if enabled
	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for transport use case: %w", err)
		}
		return vauUseCase.NewTransportUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

func (c *Container) initProxyHandler() (*vauHTTP.ProxyHandler, error) {
	upstream, err := url.Parse(c.config.VAUUpstreamURL)
	if err != nil {
		return nil, fmt.Errorf("invalid vau upstream url: %w", err)
	}

	transportUseCase, err := c.TransportUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get transport use case for proxy handler: %w", err)
	}

	return vauHTTP.NewProxyHandler(transportUseCase, upstream, c.Logger()), nil
}

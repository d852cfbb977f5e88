package service

import (
	"crypto/ecdsa"
	encoding_asn1 "encoding/asn1"
	"encoding/pem"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"

	vauDomain "github.com/allisson/vau/internal/vau/domain"
)

var (
	oidPublicKeyECDSA  = encoding_asn1.ObjectIdentifier{1, 2, 840, 10045, 2, 1}
	oidBrainpoolP256r1 = encoding_asn1.ObjectIdentifier{1, 3, 36, 3, 3, 2, 8, 1, 1, 7}
)

const (
	pemTypeCertificate  = "CERTIFICATE"
	pemTypePublicKey    = "PUBLIC KEY"
	uncompressedPointID = byte(0x04)
)

type certificateDecoder struct{}

// NewCertificateDecoder returns a decoder for X.509 certificates and SubjectPublicKeyInfo
// structures carrying a brainpoolP256r1 key.
//
// crypto/x509 rejects brainpool curves, so the DER is walked directly down to the
// SubjectPublicKeyInfo. The certificate chain is not validated here; that belongs to the
// trust store that handed the certificate over.
func NewCertificateDecoder() CertificateDecoder {
	return &certificateDecoder{}
}

// Decode accepts PEM ("CERTIFICATE" or "PUBLIC KEY") or raw DER of either structure.
func (d *certificateDecoder) Decode(data []byte) (*vauDomain.Certificate, error) {
	if block, _ := pem.Decode(data); block != nil {
		switch block.Type {
		case pemTypeCertificate:
			return decodeCertificateDER(block.Bytes)
		case pemTypePublicKey:
			return decodeSPKI(block.Bytes)
		default:
			return nil, fmt.Errorf("%w: unexpected PEM block %q", vauDomain.ErrCertificateDecoding, block.Type)
		}
	}

	if cert, err := decodeCertificateDER(data); err == nil {
		return cert, nil
	}
	return decodeSPKI(data)
}

func decodeCertificateDER(der []byte) (*vauDomain.Certificate, error) {
	input := cryptobyte.String(der)

	var certificate, tbs cryptobyte.String
	if !input.ReadASN1(&certificate, asn1.SEQUENCE) || !certificate.ReadASN1(&tbs, asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed certificate", vauDomain.ErrCertificateDecoding)
	}

	// version, serialNumber, signature, issuer, validity, subject
	if !tbs.SkipOptionalASN1(asn1.Tag(0).Constructed().ContextSpecific()) ||
		!tbs.SkipASN1(asn1.INTEGER) ||
		!tbs.SkipASN1(asn1.SEQUENCE) ||
		!tbs.SkipASN1(asn1.SEQUENCE) ||
		!tbs.SkipASN1(asn1.SEQUENCE) ||
		!tbs.SkipASN1(asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed tbsCertificate", vauDomain.ErrCertificateDecoding)
	}

	var spki cryptobyte.String
	if !tbs.ReadASN1Element(&spki, asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: missing subjectPublicKeyInfo", vauDomain.ErrCertificateDecoding)
	}
	return decodeSPKI(spki)
}

func decodeSPKI(der []byte) (*vauDomain.Certificate, error) {
	input := cryptobyte.String(der)

	var spki, algorithm cryptobyte.String
	if !input.ReadASN1(&spki, asn1.SEQUENCE) || !input.Empty() || !spki.ReadASN1(&algorithm, asn1.SEQUENCE) {
		return nil, fmt.Errorf("%w: malformed subjectPublicKeyInfo", vauDomain.ErrCertificateDecoding)
	}

	var algorithmOID, curveOID encoding_asn1.ObjectIdentifier
	if !algorithm.ReadASN1ObjectIdentifier(&algorithmOID) || !algorithm.ReadASN1ObjectIdentifier(&curveOID) {
		return nil, fmt.Errorf("%w: malformed key algorithm", vauDomain.ErrCertificateDecoding)
	}
	if !algorithmOID.Equal(oidPublicKeyECDSA) {
		return nil, fmt.Errorf("%w: key is not an EC public key", vauDomain.ErrCertificateDecoding)
	}
	if !curveOID.Equal(oidBrainpoolP256r1) {
		return nil, fmt.Errorf("%w: key is not on brainpoolP256r1", vauDomain.ErrCertificateDecoding)
	}

	var bits encoding_asn1.BitString
	if !spki.ReadASN1BitString(&bits) || bits.BitLength%8 != 0 {
		return nil, fmt.Errorf("%w: malformed public key bits", vauDomain.ErrCertificateDecoding)
	}
	if len(bits.Bytes) != vauDomain.PublicKeySize+1 || bits.Bytes[0] != uncompressedPointID {
		return nil, fmt.Errorf("%w: public key must be an uncompressed point", vauDomain.ErrCertificateDecoding)
	}

	publicKey, err := vauDomain.UnmarshalPublicKey(bits.Bytes)
	if err != nil {
		return nil, err
	}
	return vauDomain.NewCertificate(publicKey)
}

// MarshalSPKI encodes a brainpoolP256r1 public key as a DER SubjectPublicKeyInfo.
func MarshalSPKI(publicKey *ecdsa.PublicKey) ([]byte, error) {
	point := append([]byte{uncompressedPointID}, vauDomain.MarshalPublicKey(publicKey)...)

	var b cryptobyte.Builder
	b.AddASN1(asn1.SEQUENCE, func(spki *cryptobyte.Builder) {
		spki.AddASN1(asn1.SEQUENCE, func(algorithm *cryptobyte.Builder) {
			algorithm.AddASN1ObjectIdentifier(oidPublicKeyECDSA)
			algorithm.AddASN1ObjectIdentifier(oidBrainpoolP256r1)
		})
		spki.AddASN1BitString(point)
	})

	der, err := b.Bytes()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", vauDomain.ErrCertificateDecoding, err)
	}
	return der, nil
}

// EncodePublicKeyPEM encodes a brainpoolP256r1 public key as a "PUBLIC KEY" PEM block.
func EncodePublicKeyPEM(publicKey *ecdsa.PublicKey) ([]byte, error) {
	der, err := MarshalSPKI(publicKey)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemTypePublicKey, Bytes: der}), nil
}

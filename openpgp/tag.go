package openpgp

// Tag classifies the content of a decoded OpenPGP packet, plus the
// synthetic events the parser emits alongside real packets (armour
// markers, cleartext framing, trace/error events).
type Tag int

const (
	TagPublicKeyEncryptedSessionKey Tag = iota + 1 // 1
	TagSignature                                   // 2
	_                                               // 3: symmetric-key encrypted session key (unused)
	TagOnePassSignature                             // 4
	TagSecretKey                                    // 5
	TagPublicKey                                    // 6
	TagSecretSubkey                                 // 7
	TagCompressedData                               // 8
	TagSymEncryptedData                             // 9
	TagMarker                                       // 10
	TagLiteralData                                  // 11
	TagTrust                                        // 12
	TagUserID                                       // 13
	TagPublicSubkey                                 // 14
	TagUserAttribute   Tag = 17                     // 17
	TagSymEncryptedMDC Tag = 18                     // 18

	// Synthetic tags not present on the wire, numbered above the 6-bit
	// range of on-wire tags so they never collide with one.
	TagParserPtag Tag = 64 + iota
	TagParserError
	TagArmourHeader
	TagArmourTrailer
	TagCleartextHeader
	TagCleartextBody
	TagCleartextTrailer
	TagUnarmouredText
)

func (t Tag) String() string {
	switch t {
	case TagPublicKeyEncryptedSessionKey:
		return "PUBLIC_KEY_ENCRYPTED_SESSION_KEY"
	case TagSignature:
		return "SIGNATURE"
	case TagOnePassSignature:
		return "ONE_PASS_SIGNATURE"
	case TagSecretKey:
		return "SECRET_KEY"
	case TagPublicKey:
		return "PUBLIC_KEY"
	case TagSecretSubkey:
		return "SECRET_SUBKEY"
	case TagCompressedData:
		return "COMPRESSED_DATA"
	case TagSymEncryptedData:
		return "SYM_ENCRYPTED_DATA"
	case TagMarker:
		return "MARKER"
	case TagLiteralData:
		return "LITERAL_DATA"
	case TagTrust:
		return "TRUST"
	case TagUserID:
		return "USER_ID"
	case TagPublicSubkey:
		return "PUBLIC_SUBKEY"
	case TagUserAttribute:
		return "USER_ATTRIBUTE"
	case TagSymEncryptedMDC:
		return "SYM_ENCRYPTED_MDC"
	case TagParserPtag:
		return "PARSER_PTAG"
	case TagParserError:
		return "PARSER_ERROR"
	case TagArmourHeader:
		return "ARMOUR_HEADER"
	case TagArmourTrailer:
		return "ARMOUR_TRAILER"
	case TagCleartextHeader:
		return "SIGNED_CLEARTEXT_HEADER"
	case TagCleartextBody:
		return "SIGNED_CLEARTEXT_BODY"
	case TagCleartextTrailer:
		return "SIGNED_CLEARTEXT_TRAILER"
	case TagUnarmouredText:
		return "UNARMOURED_TEXT"
	default:
		return "UNKNOWN_TAG"
	}
}

// PublicKeyAlgorithm identifies the public-key algorithm of a key or
// signature, per RFC 4880 §9.1.
type PublicKeyAlgorithm byte

const (
	PKAlgRSAEncryptSign PublicKeyAlgorithm = 1
	PKAlgRSAEncryptOnly PublicKeyAlgorithm = 2
	PKAlgRSASignOnly    PublicKeyAlgorithm = 3
	PKAlgElgamal        PublicKeyAlgorithm = 16
	PKAlgDSA            PublicKeyAlgorithm = 17
	PKAlgECDH           PublicKeyAlgorithm = 18
	PKAlgEdDSA          PublicKeyAlgorithm = 22
)

func (a PublicKeyAlgorithm) String() string {
	switch a {
	case PKAlgRSAEncryptSign:
		return "RSA"
	case PKAlgRSAEncryptOnly:
		return "RSA(encrypt-only)"
	case PKAlgRSASignOnly:
		return "RSA(sign-only)"
	case PKAlgElgamal:
		return "Elgamal"
	case PKAlgDSA:
		return "DSA"
	case PKAlgECDH:
		return "ECDH"
	case PKAlgEdDSA:
		return "EdDSA"
	default:
		return "unknown-pk-algorithm"
	}
}

// HashAlgorithm identifies a digest algorithm, per RFC 4880 §9.4.
type HashAlgorithm byte

const (
	HashMD5       HashAlgorithm = 1
	HashSHA1      HashAlgorithm = 2
	HashRIPEMD160 HashAlgorithm = 3
	HashSHA256    HashAlgorithm = 8
	HashSHA384    HashAlgorithm = 9
	HashSHA512    HashAlgorithm = 10
	HashSHA224    HashAlgorithm = 11
)

func (h HashAlgorithm) String() string {
	switch h {
	case HashMD5:
		return "MD5"
	case HashSHA1:
		return "SHA1"
	case HashRIPEMD160:
		return "RIPEMD160"
	case HashSHA256:
		return "SHA256"
	case HashSHA384:
		return "SHA384"
	case HashSHA512:
		return "SHA512"
	case HashSHA224:
		return "SHA224"
	default:
		return "unknown-hash-algorithm"
	}
}

// SignatureType identifies what kind of entity a signature covers, per
// RFC 4880 §5.2.1.
type SignatureType byte

const (
	SigBinaryDocument      SignatureType = 0x00
	SigTextDocument        SignatureType = 0x01
	SigStandalone          SignatureType = 0x02
	SigCertGeneric         SignatureType = 0x10
	SigCertPersona         SignatureType = 0x11
	SigCertCasual          SignatureType = 0x12
	SigCertPositive        SignatureType = 0x13
	SigSubkeyBinding       SignatureType = 0x18
	SigPrimaryKeyBinding   SignatureType = 0x19
	SigDirectKey           SignatureType = 0x1f
	SigKeyRevocation       SignatureType = 0x20
	SigSubkeyRevocation    SignatureType = 0x28
	SigCertRevocation      SignatureType = 0x30
	SigTimestamp           SignatureType = 0x40
	SigThirdPartyConfirm   SignatureType = 0x50
)

func (t SignatureType) IsCertification() bool {
	switch t {
	case SigCertGeneric, SigCertPersona, SigCertCasual, SigCertPositive, SigCertRevocation:
		return true
	}
	return false
}

// SubpacketType identifies a v4 signature subpacket, per RFC 4880 §5.2.3.1.
type SubpacketType byte

const (
	SSCreationTime        SubpacketType = 2
	SSSignatureExpiration SubpacketType = 3
	SSExportable          SubpacketType = 4
	SSTrustSignature      SubpacketType = 5
	SSRegex               SubpacketType = 6
	SSRevocable           SubpacketType = 7
	SSKeyExpiration       SubpacketType = 9
	SSPreferredSymmetric  SubpacketType = 11
	SSRevocationKey       SubpacketType = 12
	SSIssuer              SubpacketType = 16
	SSNotation            SubpacketType = 20
	SSPreferredHash       SubpacketType = 21
	SSPreferredCompress   SubpacketType = 22
	SSKeyServerPrefs      SubpacketType = 23
	SSPreferredKeyServer  SubpacketType = 24
	SSPrimaryUserID       SubpacketType = 25
	SSPolicyURI           SubpacketType = 26
	SSKeyFlags            SubpacketType = 27
	SSSignerUserID        SubpacketType = 28
	SSRevocationReason    SubpacketType = 29
	SSFeatures            SubpacketType = 30
	SSSignatureTarget     SubpacketType = 31
	SSEmbeddedSignature   SubpacketType = 32
	SSIssuerFingerprint   SubpacketType = 33
)

const criticalBit = 0x80

// TypeValue returns the RFC 4880 subpacket type without the critical bit.
func (t SubpacketType) TypeValue() byte { return byte(t) &^ criticalBit }

package openpgp

import (
	"bufio"
	"bytes"
	"strings"
)

const (
	cleartextBegin = "-----BEGIN PGP SIGNED MESSAGE-----"
	signatureBegin = "-----BEGIN PGP SIGNATURE-----"
)

// CleartextMessage is the result of splitting a dash-escaped cleartext
// signature framing (RFC 4880 §7) into its three logical regions.
type CleartextMessage struct {
	HashAlgorithms []HashAlgorithm // from "Hash:" header(s); defaults to SHA256 if absent
	Body           []byte          // dash-unescaped text, LF line endings, for display
	HashInput      []byte          // the exact bytes fed to the signature hash
}

// DecodeCleartext splits data into a CleartextMessage and the remaining
// bytes (the armoured "-----BEGIN PGP SIGNATURE-----" block and
// whatever follows it). It implements spec §4.1's Signed-cleartext
// layer: trailing whitespace is stripped from each line before hashing
// and lines are joined with CR-LF, matching the teacher's
// SignKey.Clearsign encode-direction loop run in reverse.
func DecodeCleartext(data []byte) (*CleartextMessage, []byte, error) {
	r := bufio.NewReader(bytes.NewReader(data))

	first, err := r.ReadString('\n')
	if strings.TrimRight(first, "\r\n") != cleartextBegin {
		return nil, nil, newErr(RBadFormat, "DecodeCleartext", "missing cleartext BEGIN marker", nil)
	}
	if err != nil {
		return nil, nil, newErr(RBadFormat, "DecodeCleartext", "truncated after BEGIN marker", nil)
	}

	msg := &CleartextMessage{}
	for {
		line, err := r.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break
		}
		if strings.HasPrefix(trimmed, "Hash:") {
			for _, name := range strings.Split(strings.TrimSpace(trimmed[len("Hash:"):]), ",") {
				if alg, ok := hashByName(strings.TrimSpace(name)); ok {
					msg.HashAlgorithms = append(msg.HashAlgorithms, alg)
				}
			}
		}
		if err != nil {
			return nil, nil, newErr(RBadFormat, "DecodeCleartext", "truncated cleartext headers", nil)
		}
	}
	if len(msg.HashAlgorithms) == 0 {
		msg.HashAlgorithms = []HashAlgorithm{HashSHA256}
	}

	var body bytes.Buffer
	var hashInput bytes.Buffer
	first = true
	for {
		line, err := r.ReadString('\n')
		hadNewline := strings.HasSuffix(line, "\n")
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == signatureBegin {
			break
		}
		if err != nil && !hadNewline {
			return nil, nil, newErr(RBadFormat, "DecodeCleartext", "cleartext body missing signature marker", nil)
		}

		unescaped := trimmed
		if strings.HasPrefix(trimmed, "- ") {
			unescaped = trimmed[2:]
		}
		body.WriteString(unescaped)
		body.WriteByte('\n')

		hashLine := rtrimWhitespace(unescaped)
		if !first {
			hashInput.WriteString("\r\n")
		}
		hashInput.WriteString(hashLine)
		first = false

		if err != nil {
			return nil, nil, newErr(RBadFormat, "DecodeCleartext", "cleartext body missing signature marker", nil)
		}
	}

	msg.Body = body.Bytes()
	msg.HashInput = hashInput.Bytes()

	idx := bytes.Index(data, []byte(signatureBegin))
	if idx < 0 {
		return nil, nil, newErr(RBadFormat, "DecodeCleartext", "signature block not found", nil)
	}
	return msg, data[idx:], nil
}

func rtrimWhitespace(s string) string {
	return strings.TrimRight(s, " \t")
}

func hashByName(name string) (HashAlgorithm, bool) {
	switch strings.ToUpper(name) {
	case "MD5":
		return HashMD5, true
	case "SHA1":
		return HashSHA1, true
	case "RIPEMD160":
		return HashRIPEMD160, true
	case "SHA256":
		return HashSHA256, true
	case "SHA384":
		return HashSHA384, true
	case "SHA512":
		return HashSHA512, true
	case "SHA224":
		return HashSHA224, true
	default:
		return 0, false
	}
}

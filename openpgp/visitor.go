package openpgp

import (
	"bufio"
	"bytes"
	"io"
)

// Directive is what a Visitor tells Parse to do with the memory backing
// the Content it was just handed, and whether to keep going at all —
// the KEEP_MEMORY/RELEASE_MEMORY/STOP verbs from spec §5, ported from
// the original's callback-ownership model to Go's garbage collector:
// "release" is a no-op hint here (there is no manual free), but STOP
// still needs to unwind the parse cleanly, which is the part worth
// keeping explicit.
type Directive int

const (
	KeepMemory Directive = iota
	ReleaseMemory
	Stop
)

// Visitor is called once per parsed event. Returning Stop ends Parse
// immediately without error.
type Visitor func(*Content) Directive

// Content is the tagged union of everything Parse can hand a Visitor:
// a real decoded packet, plus the synthetic events (armour markers,
// cleartext framing, and parse errors) spec §5 requires be visitable
// alongside packets rather than surfaced only as a returned error.
type Content struct {
	Tag Tag
	Raw *RawPacket // nil for synthetic events

	PublicKey        *PublicKey
	SecretKey        *SecretKey
	Signature        *Signature
	OnePassSignature *OnePassSignature
	UserID           *UserID
	UserAttribute    *UserAttribute
	LiteralData      *LiteralData
	CompressedData   *CompressedData
	SymEncryptedData *SymEncryptedData
	PKESK            *PKESK
	Trust            *Trust

	Armour    *ArmourBlock
	Cleartext *CleartextMessage
	Err       *Error
}

// Parse drives a stream through the framing spec §4.2/§4.4 describe:
// it first recognizes an enclosing dash-escaped cleartext-signature
// block or ASCII-armoured block, if present, surfacing its framing as
// synthetic events, then decodes whatever raw packet stream results by
// tag and invokes visit for every event. It stops at the first
// Visitor-requested Stop, or after surfacing an unrecoverable error.
//
// Each call to Parse owns one ErrorStack (spec §7 "Propagation"):
// every error raised during the parse is pushed onto it before being
// surfaced as a TagParserError event carrying the stack's top.
func Parse(src Source, visit Visitor) error {
	errs := &ErrorStack{}
	return parseSource(bufio.NewReaderSize(src, 4096), visit, errs)
}

// parseSource sniffs the next bytes of br for an enclosing cleartext or
// armour marker and dispatches accordingly, falling back to a raw
// packet stream when neither is present.
func parseSource(br *bufio.Reader, visit Visitor, errs *ErrorStack) error {
	if peek, _ := br.Peek(len(cleartextBegin)); bytes.HasPrefix(peek, []byte(cleartextBegin)) {
		return parseCleartext(br, visit, errs)
	}
	if peek, _ := br.Peek(len(armourBeginPrefix)); bytes.HasPrefix(peek, []byte(armourBeginPrefix)) {
		return parseArmoured(br, visit, errs)
	}
	return parseRaw(br, visit, errs)
}

// parseCleartext implements spec §4.4's signed-cleartext framing: it
// decodes the dash-escaped block via DecodeCleartext, emits HEADER,
// BODY, and TRAILER events carrying the result, then resumes parsing
// whatever follows (normally an armoured detached SIGNATURE packet)
// through parseSource.
func parseCleartext(br *bufio.Reader, visit Visitor, errs *ErrorStack) error {
	all, err := io.ReadAll(br)
	if err != nil {
		return surfaceErr(visit, errs, newErr(RReadFailed, "Parse", "reading cleartext source", err), nil)
	}

	msg, remainder, err := DecodeCleartext(all)
	if err != nil {
		perr, _ := err.(*Error)
		if perr == nil {
			perr = newErr(RBadFormat, "Parse", "decoding cleartext framing", err)
		}
		return surfaceErr(visit, errs, perr, nil)
	}

	if visit(&Content{Tag: TagCleartextHeader, Cleartext: msg}) == Stop {
		return nil
	}
	if visit(&Content{Tag: TagCleartextBody, Cleartext: msg}) == Stop {
		return nil
	}
	if visit(&Content{Tag: TagCleartextTrailer, Cleartext: msg}) == Stop {
		return nil
	}

	if len(remainder) == 0 {
		return nil
	}
	return parseSource(bufio.NewReaderSize(NewMemorySource(remainder), 4096), visit, errs)
}

// parseArmoured implements spec §4.2's armour layer: it dearmours the
// enclosing "-----BEGIN PGP ...-----" block via NewDearmour, emits a
// HEADER event carrying the decoded block before the enclosed packets
// and a TRAILER event after them, then resumes parsing whatever
// followed the END marker through parseSource.
func parseArmoured(br *bufio.Reader, visit Visitor, errs *ErrorStack) error {
	d, err := NewDearmour(br)
	if err != nil {
		perr, _ := err.(*Error)
		if perr == nil {
			perr = newErr(RBadFormat, "Parse", "dearmouring source", err)
		}
		return surfaceErr(visit, errs, perr, nil)
	}

	if visit(&Content{Tag: TagArmourHeader, Armour: &d.Block}) == Stop {
		return nil
	}
	stopped := false
	inner := func(c *Content) Directive {
		dir := visit(c)
		if dir == Stop {
			stopped = true
		}
		return dir
	}
	if err := parseRaw(bufio.NewReaderSize(d, 4096), inner, errs); err != nil {
		return err
	}
	if stopped {
		return nil
	}
	if visit(&Content{Tag: TagArmourTrailer, Armour: &d.Block}) == Stop {
		return nil
	}

	if len(d.remainder) == 0 {
		return nil
	}
	return parseSource(bufio.NewReaderSize(d.Remainder(), 4096), visit, errs)
}

// parseRaw is the inner per-packet loop: it reads successive raw
// packets from src, decodes each by tag, and invokes visit for every
// packet and parser-error event.
func parseRaw(src Source, visit Visitor, errs *ErrorStack) error {
	for {
		raw, err := ReadRawPacket(src)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			perr, _ := err.(*Error)
			if perr == nil {
				perr = newErr(RReadFailed, "Parse", "reading packet", err)
			}
			if visitErr := surfaceErr(visit, errs, perr, nil); visitErr == nil {
				return nil
			}
			return perr
		}

		if visit(&Content{Tag: TagParserPtag, Raw: raw}) == Stop {
			return nil
		}

		content, decErr := decodeContent(raw)
		if decErr != nil {
			perr, _ := decErr.(*Error)
			if perr == nil {
				perr = newErr(RBadFormat, "Parse", "decoding packet body", decErr)
			}
			if visitErr := surfaceErr(visit, errs, perr, raw); visitErr == nil {
				return nil
			}
			continue
		}

		if visit(content) == Stop {
			return nil
		}
	}
}

// surfaceErr pushes perr onto errs and visits a TagParserError event
// carrying the stack's top, returning perr unless the Visitor requests
// Stop (in which case the parse ends without error, per spec §5's
// run-to-completion model for recoverable-by-visitor failures).
func surfaceErr(visit Visitor, errs *ErrorStack, perr *Error, raw *RawPacket) error {
	errs.Push(perr)
	if visit(&Content{Tag: TagParserError, Raw: raw, Err: errs.Top()}) == Stop {
		return nil
	}
	return perr
}

// decodeContent dispatches a raw packet's body to the decoder for its
// tag, wrapping the result in a Content event.
func decodeContent(raw *RawPacket) (*Content, error) {
	c := &Content{Tag: raw.Tag, Raw: raw}
	switch raw.Tag {
	case TagPublicKey, TagPublicSubkey:
		pk, err := decodePublicKeyBody(raw.Body)
		if err != nil {
			return nil, err
		}
		c.PublicKey = pk
	case TagSecretKey, TagSecretSubkey:
		sk, err := decodeSecretKeyBody(raw.Body)
		if err != nil {
			return nil, err
		}
		c.SecretKey = sk
	case TagSignature:
		sig, err := decodeSignatureBody(raw.Body)
		if err != nil {
			return nil, err
		}
		c.Signature = sig
	case TagOnePassSignature:
		ops, err := decodeOnePassSignature(raw.Body)
		if err != nil {
			return nil, err
		}
		c.OnePassSignature = ops
	case TagUserID:
		c.UserID = &UserID{ID: append([]byte{}, raw.Body...)}
	case TagUserAttribute:
		c.UserAttribute = &UserAttribute{Data: append([]byte{}, raw.Body...)}
	case TagLiteralData:
		ld, err := decodeLiteralData(raw.Body)
		if err != nil {
			return nil, err
		}
		c.LiteralData = ld
	case TagCompressedData:
		cd, err := decodeCompressedData(raw.Body)
		if err != nil {
			return nil, err
		}
		c.CompressedData = cd
	case TagSymEncryptedData:
		sd, err := decodeSymEncryptedData(raw.Body, false)
		if err != nil {
			return nil, err
		}
		c.SymEncryptedData = sd
	case TagSymEncryptedMDC:
		sd, err := decodeSymEncryptedData(raw.Body, true)
		if err != nil {
			return nil, err
		}
		c.SymEncryptedData = sd
	case TagPublicKeyEncryptedSessionKey:
		p, err := decodePKESK(raw.Body)
		if err != nil {
			return nil, err
		}
		c.PKESK = p
	case TagTrust:
		c.Trust = &Trust{Data: append([]byte{}, raw.Body...)}
	case TagMarker:
		// No content: a Marker packet's body is ignored per RFC 4880 §5.8.
	default:
		return nil, newErr(PUnknownTag, "decodeContent", raw.Tag.String(), nil)
	}
	return c, nil
}

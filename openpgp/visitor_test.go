package openpgp

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisitsEachPacketOnce(t *testing.T) {
	k := newTestSignKey(t, 1700000000)
	uid := &UserID{ID: []byte("test <t@example.com>")}

	var stream []byte
	stream = append(stream, k.PubPacket()...)
	stream = append(stream, uid.Packet()...)

	var tags []Tag
	err := Parse(NewMemorySource(stream), func(c *Content) Directive {
		tags = append(tags, c.Tag)
		return KeepMemory
	})
	require.NoError(t, err)
	// Each packet fires a TagParserPtag framing event followed by its
	// decoded-content event.
	assert.Equal(t, []Tag{TagParserPtag, TagPublicKey, TagParserPtag, TagUserID}, tags)
}

func TestParseStopsOnVisitorRequest(t *testing.T) {
	k := newTestSignKey(t, 1700000000)
	uid := &UserID{ID: []byte("test <t@example.com>")}

	var stream []byte
	stream = append(stream, k.PubPacket()...)
	stream = append(stream, uid.Packet()...)

	seen := 0
	err := Parse(NewMemorySource(stream), func(c *Content) Directive {
		seen++
		return Stop
	})
	require.NoError(t, err)
	assert.Equal(t, 1, seen)
}

func TestParseSurfacesUnknownTagAsParserError(t *testing.T) {
	// Old-format packet, tag 15 (reserved, unknown to decodeContent), zero-length body.
	bogus := []byte{0x80 | 15<<2, 0x00}

	var gotErr bool
	err := Parse(NewMemorySource(bogus), func(c *Content) Directive {
		if c.Tag == TagParserError {
			gotErr = true
			assert.True(t, IsCode(c.Err, PUnknownTag))
		}
		return KeepMemory
	})
	require.NoError(t, err)
	assert.True(t, gotErr)
}

// TestParseUnifiesCleartextArmourAndSignature exercises the framing
// spec's testable scenario: a single Parse over a cleartext-signed,
// armoured-signature message must surface HEADER, BODY, TRAILER, then
// SIGNATURE, without any caller-side preprocessing.
func TestParseUnifiesCleartextArmourAndSignature(t *testing.T) {
	k := newTestSignKey(t, 1700000000)
	out, err := io.ReadAll(k.Clearsign(bytes.NewReader([]byte("Hello, world."))))
	require.NoError(t, err)

	var tags []Tag
	var body []byte
	var sig *Signature
	err = Parse(NewMemorySource(out), func(c *Content) Directive {
		tags = append(tags, c.Tag)
		switch c.Tag {
		case TagCleartextBody:
			body = c.Cleartext.Body
		case TagSignature:
			sig = c.Signature
		}
		return KeepMemory
	})
	require.NoError(t, err)

	require.True(t, len(tags) >= 4)
	assert.Equal(t, TagCleartextHeader, tags[0])
	assert.Equal(t, TagCleartextBody, tags[1])
	assert.Equal(t, TagCleartextTrailer, tags[2])
	assert.Contains(t, tags, TagArmourHeader)
	assert.Contains(t, tags, TagSignature)
	assert.Equal(t, "Hello, world.\n", string(body))
	require.NotNil(t, sig)
	assert.Equal(t, SigTextDocument, sig.Type)
}

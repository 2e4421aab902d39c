package openpgp

// UserID is the decoded content of a User ID packet: a UTF-8 string,
// conventionally "Name (Comment) <email>", certified by signatures
// from the key's own primary key or from third parties.
//
// Grounded on the WhiteBlackGoose fork's UserID type, generalized from
// its EdDSA-only signing helpers into the plain decoded-content struct
// the content decoder and keyring need. Packet and SignData stay here;
// the hashed subpackets the fork built are now built by create.go's
// SignatureBuilder for whatever algorithm the signing key actually
// uses rather than hardcoding the fork's pair.
type UserID struct {
	ID []byte
}

// String returns the user ID's text.
func (u *UserID) String() string { return string(u.ID) }

// Packet serializes the User ID as an old-format packet (tag 13),
// matching the teacher's fixed-length encode style used elsewhere for
// short, always-materialized bodies.
func (u *UserID) Packet() []byte {
	header := oldFormatHeader(TagUserID, len(u.ID))
	return append(header, u.ID...)
}

// SignData returns the bytes a UserID certification hashes after the
// primary key body: the 0xB4 tag, a 4-byte big-endian length, and the
// raw ID bytes, per RFC 4880 §5.2.4.
func (u *UserID) SignData() []byte {
	out := append([]byte{0xb4}, marshal32be(uint32(len(u.ID)))...)
	return append(out, u.ID...)
}

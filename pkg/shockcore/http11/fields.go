package http11

// knownField identifies a header name the connection engine assigns special
// meaning to. Everything else is opaque and only goes into Header's generic
// storage.
type knownField int

const (
	fieldUnknown knownField = iota
	fieldContentLength
	fieldTransferEncoding
	fieldConnection
	fieldHost
	fieldCookie
	fieldContentType
)

// fieldHash is djbHash (conf.djbHash's h = h*33+c, seed 5381) applied
// case-insensitively, mirroring nxt_h1p_fields[]'s lookup: a header name is
// hashed once and matched against a small table of known fields instead of
// running a comparison per candidate name.
func fieldHash(name []byte) uint32 {
	h := uint32(5381)
	for _, c := range name {
		h = h*33 + uint32(toLower(c))
	}
	return h
}

var knownFieldHashes = map[uint32]struct {
	name  []byte
	field knownField
}{
	fieldHash(headerContentLength):    {headerContentLength, fieldContentLength},
	fieldHash(headerTransferEncoding): {headerTransferEncoding, fieldTransferEncoding},
	fieldHash(headerConnection):       {headerConnection, fieldConnection},
	fieldHash(headerHost):             {headerHost, fieldHost},
	fieldHash(headerCookie):           {headerCookie, fieldCookie},
	fieldHash(headerContentType):      {headerContentType, fieldContentType},
}

// classifyField returns the knownField for name, or fieldUnknown if name
// isn't one of the header fields the parser treats specially. The hash
// lookup is a single map access; the byte comparison afterward only runs on
// a hash hit, guarding against collisions.
func classifyField(name []byte) knownField {
	entry, ok := knownFieldHashes[fieldHash(name)]
	if !ok || !bytesEqualCaseInsensitive(entry.name, name) {
		return fieldUnknown
	}
	return entry.field
}

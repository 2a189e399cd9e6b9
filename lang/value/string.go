package value

import "strconv"

// ObjString is an immutable interned byte string. Because every live string
// is interned (see Table.FindString), two strings with equal content are
// always the same *ObjString, so object identity doubles as value equality.
type ObjString struct {
	Hdr   Header
	Chars string
	Hash  uint32
}

func (s *ObjString) ObjKind() ObjKind { return ObjKindString }
func (s *ObjString) Header() *Header  { return &s.Hdr }
func (s *ObjString) String() string   { return s.Chars }
func (s *ObjString) GoString() string { return strconv.Quote(s.Chars) }
func (s *ObjString) Len() int         { return len(s.Chars) }

// HashString computes the FNV-1a hash of s, as used by the interning table
// and cached in every ObjString's Hash field.
func HashString(s string) uint32 {
	var h uint32 = 2166136261
	for i := 0; i < len(s); i++ {
		h ^= uint32(s[i])
		h *= 16777619
	}
	return h
}

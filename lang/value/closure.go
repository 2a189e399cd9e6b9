package value

// ObjUpvalue is a stable indirection letting a closure refer to a variable
// declared in an enclosing function. While open, Location points into the
// VM's value stack; once closed, Location points at the upvalue's own
// Closed field and the stack slot is no longer involved.
type ObjUpvalue struct {
	Hdr    Header
	Location *Value
	Closed   Value
	// NextOpen links this upvalue into the VM's open-upvalues list, ordered
	// by descending stack address. It is unrelated to Hdr.Next, which links
	// the object into the GC's object list.
	NextOpen *ObjUpvalue
}

func (u *ObjUpvalue) ObjKind() ObjKind { return ObjKindUpvalue }
func (u *ObjUpvalue) Header() *Header  { return &u.Hdr }
func (u *ObjUpvalue) String() string   { return "upvalue" }

// IsOpen reports whether the upvalue still refers to a live stack slot.
func (u *ObjUpvalue) IsOpen() bool { return u.Location != &u.Closed }

// Close hoists the current value out of the stack slot into the upvalue
// itself and redirects Location to point at it.
func (u *ObjUpvalue) Close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// ObjClosure pairs a compiled Function with the upvalues it captured at the
// point the CLOSURE instruction ran.
type ObjClosure struct {
	Hdr      Header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func (c *ObjClosure) ObjKind() ObjKind { return ObjKindClosure }
func (c *ObjClosure) Header() *Header  { return &c.Hdr }
func (c *ObjClosure) String() string   { return c.Function.String() }

// NewClosure allocates the Upvalues slice sized to the function's declared
// upvalue count. Slots are filled in by the CLOSURE instruction one at a
// time; until that finishes the closure must not be considered reachable
// from anywhere but the value stack that is protecting it.
func NewClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

package value

import "fmt"

// ObjClass is a class value: a name and a table of methods, each a
// *ObjClosure. Lox classes have no fields of their own; fields belong to
// instances.
type ObjClass struct {
	Hdr     Header
	Name    *ObjString
	Methods *Table
}

func (c *ObjClass) ObjKind() ObjKind { return ObjKindClass }
func (c *ObjClass) Header() *Header  { return &c.Hdr }
func (c *ObjClass) String() string   { return c.Name.Chars }

// NewClass allocates a class with an empty method table.
func NewClass(name *ObjString) *ObjClass {
	return &ObjClass{Name: name, Methods: NewTable()}
}

// ObjInstance is an instance of a class: a reference to its class plus its
// own field table.
type ObjInstance struct {
	Hdr    Header
	Class  *ObjClass
	Fields *Table
}

func (i *ObjInstance) ObjKind() ObjKind { return ObjKindInstance }
func (i *ObjInstance) Header() *Header  { return &i.Hdr }
func (i *ObjInstance) String() string   { return fmt.Sprintf("%s instance", i.Class.Name.Chars) }

// NewInstance allocates an instance of class with an empty field table.
func NewInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{Class: class, Fields: NewTable()}
}

// ObjBoundMethod pairs a receiver value with one of its class's methods, the
// result of evaluating `instance.method` without calling it.
type ObjBoundMethod struct {
	Hdr      Header
	Receiver Value
	Method   *ObjClosure
}

func (b *ObjBoundMethod) ObjKind() ObjKind { return ObjKindBoundMethod }
func (b *ObjBoundMethod) Header() *Header  { return &b.Hdr }
func (b *ObjBoundMethod) String() string   { return b.Method.String() }

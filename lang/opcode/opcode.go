// Package opcode defines the bytecode instruction set shared by the
// compiler (which emits it) and the machine (which dispatches it). The
// comments below give the "stack picture" for each instruction: operands
// to the left of the opcode name, results to the right.
package opcode

// Code identifies a single bytecode instruction.
type Code uint8

//nolint:revive
const (
	CONSTANT Code = iota //            - CONSTANT<idx>       value
	NIL                  //            - NIL                 nil
	TRUE                 //            - TRUE                true
	FALSE                //            - FALSE               false
	POP                  //            x POP                 -

	GET_LOCAL  //                - GET_LOCAL<slot>     value
	SET_LOCAL  //            value SET_LOCAL<slot>     value
	GET_GLOBAL //                - GET_GLOBAL<name>    value
	SET_GLOBAL //            value SET_GLOBAL<name>    value

	DEFINE_GLOBAL //         value DEFINE_GLOBAL<name>  -

	GET_UPVALUE   //              - GET_UPVALUE<idx>     value
	SET_UPVALUE   //          value SET_UPVALUE<idx>     value
	CLOSE_UPVALUE //          value CLOSE_UPVALUE        -

	EQUAL   //           a b EQUAL                bool
	GREATER //           a b GREATER              bool
	LESS    //           a b LESS                 bool

	ADD      //          a b ADD                  a+b
	SUBTRACT //          a b SUBTRACT             a-b
	MULTIPLY //          a b MULTIPLY             a*b
	DIVIDE   //          a b DIVIDE               a/b

	NOT    //              x NOT                  !x
	NEGATE //              x NEGATE               -x

	PRINT //               x PRINT                 -

	JUMP          //             - JUMP<offset>          -
	JUMP_IF_FALSE //         cond JUMP_IF_FALSE<offset>  cond
	LOOP          //             - LOOP<offset>           -

	CALL   // fn arg1..argN CALL<argc>            result
	INVOKE // recv arg1..argN INVOKE<name,argc>    result

	CLOSURE //             - CLOSURE<idx,upvals...>  closure
	CLASS   //             - CLASS<name>             class
	METHOD  //    class closure METHOD<name>          class

	GET_PROPERTY // instance GET_PROPERTY<name>   value
	SET_PROPERTY // instance value SET_PROPERTY<name> value

	RETURN //              x RETURN                 -

	maxCode
)

var names = [...]string{
	CONSTANT:      "OP_CONSTANT",
	NIL:           "OP_NIL",
	TRUE:          "OP_TRUE",
	FALSE:         "OP_FALSE",
	POP:           "OP_POP",
	GET_LOCAL:     "OP_GET_LOCAL",
	SET_LOCAL:     "OP_SET_LOCAL",
	GET_GLOBAL:    "OP_GET_GLOBAL",
	SET_GLOBAL:    "OP_SET_GLOBAL",
	DEFINE_GLOBAL: "OP_DEFINE_GLOBAL",
	GET_UPVALUE:   "OP_GET_UPVALUE",
	SET_UPVALUE:   "OP_SET_UPVALUE",
	CLOSE_UPVALUE: "OP_CLOSE_UPVALUE",
	EQUAL:         "OP_EQUAL",
	GREATER:       "OP_GREATER",
	LESS:          "OP_LESS",
	ADD:           "OP_ADD",
	SUBTRACT:      "OP_SUBTRACT",
	MULTIPLY:      "OP_MULTIPLY",
	DIVIDE:        "OP_DIVIDE",
	NOT:           "OP_NOT",
	NEGATE:        "OP_NEGATE",
	PRINT:         "OP_PRINT",
	JUMP:          "OP_JUMP",
	JUMP_IF_FALSE: "OP_JUMP_IF_FALSE",
	LOOP:          "OP_LOOP",
	CALL:          "OP_CALL",
	INVOKE:        "OP_INVOKE",
	CLOSURE:       "OP_CLOSURE",
	CLASS:         "OP_CLASS",
	METHOD:        "OP_METHOD",
	GET_PROPERTY:  "OP_GET_PROPERTY",
	SET_PROPERTY:  "OP_SET_PROPERTY",
	RETURN:        "OP_RETURN",
}

func (c Code) String() string {
	if c < maxCode {
		if s := names[c]; s != "" {
			return s
		}
	}
	return "OP_ILLEGAL"
}

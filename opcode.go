// Copyright (c) 2026 pyrev-sub000 contributors.
// Use of this source code is governed by a MIT License
// that can be found in the LICENSE file.

package pyrev

// Opcode is a closed enumeration of the CPython 3.11/3.12 opcodes the
// reconstructor actually gives meaning to. Any opname not covered here
// decodes to OpNone, which the reconstructor treats as a no-op.
type Opcode byte

// String returns the canonical opname for o, "NOOP" for OpNone, or ""
// if o is outside the table.
func (o Opcode) String() string {
	if int(o) < len(OpcodeNames) {
		return OpcodeNames[o]
	}
	return ""
}

// List of recognised opcodes (spec.md §6). Order has no semantic
// meaning; only the enum identity and the OpcodeNames/opcodeAliases
// tables matter.
const (
	OpNone Opcode = iota

	OpLoadConst
	OpLoadName
	OpLoadGlobal
	OpLoadFast
	OpLoadAttr
	OpLoadMethod
	OpLoadBuildClass
	OpLoadAssertionError

	OpStoreName
	OpStoreGlobal
	OpStoreFast
	OpStoreAttr

	OpBuildTuple
	OpBuildList
	OpBuildSet
	OpBuildMap
	OpBuildConstKeyMap
	OpBuildSlice
	OpBuildString
	OpListExtend
	OpFormatValue

	OpBinaryOp
	OpCompareOp
	OpIsOp
	OpContainsOp
	OpUnaryNot
	OpUnaryNegative
	OpUnaryInvert

	OpCall
	OpMakeFunction
	OpReturnValue
	OpYieldValue
	OpRaiseVarargs

	OpJumpForward
	OpPopJumpIfTrue
	OpPopJumpIfFalse
	OpForIter
	OpUnpackSequence
	OpCheckExcMatch
	OpBeforeWith
	OpBeforeAsyncWith
	OpGetAiter
	OpGetAwaitable
	OpSend
	OpEndAsyncFor
	OpReturnGenerator

	OpImportName
	OpImportFrom
)

// OpcodeNames are the string representations of the opcodes above, in
// the exact spelling CPython's disassembler prints them with; OpNone's
// "NOOP" is a placeholder, not a CPython opname.
var OpcodeNames = [...]string{
	OpNone: "NOOP",

	OpLoadConst:          "LOAD_CONST",
	OpLoadName:           "LOAD_NAME",
	OpLoadGlobal:         "LOAD_GLOBAL",
	OpLoadFast:           "LOAD_FAST",
	OpLoadAttr:           "LOAD_ATTR",
	OpLoadMethod:         "LOAD_METHOD",
	OpLoadBuildClass:     "LOAD_BUILD_CLASS",
	OpLoadAssertionError: "LOAD_ASSERTION_ERROR",

	OpStoreName:   "STORE_NAME",
	OpStoreGlobal: "STORE_GLOBAL",
	OpStoreFast:   "STORE_FAST",
	OpStoreAttr:   "STORE_ATTR",

	OpBuildTuple:       "BUILD_TUPLE",
	OpBuildList:        "BUILD_LIST",
	OpBuildSet:         "BUILD_SET",
	OpBuildMap:         "BUILD_MAP",
	OpBuildConstKeyMap: "BUILD_CONST_KEY_MAP",
	OpBuildSlice:       "BUILD_SLICE",
	OpBuildString:      "BUILD_STRING",
	OpListExtend:       "LIST_EXTEND",
	OpFormatValue:      "FORMAT_VALUE",

	OpBinaryOp:      "BINARY_OP",
	OpCompareOp:     "COMPARE_OP",
	OpIsOp:          "IS_OP",
	OpContainsOp:    "CONTAINS_OP",
	OpUnaryNot:      "UNARY_NOT",
	OpUnaryNegative: "UNARY_NEGATIVE",
	OpUnaryInvert:   "UNARY_INVERT",

	OpCall:         "CALL",
	OpMakeFunction: "MAKE_FUNCTION",
	OpReturnValue:  "RETURN_VALUE",
	OpYieldValue:   "YIELD_VALUE",
	OpRaiseVarargs: "RAISE_VARARGS",

	OpJumpForward:     "JUMP_FORWARD",
	OpPopJumpIfTrue:   "POP_JUMP_IF_TRUE",
	OpPopJumpIfFalse:  "POP_JUMP_IF_FALSE",
	OpForIter:         "FOR_ITER",
	OpUnpackSequence:  "UNPACK_SEQUENCE",
	OpCheckExcMatch:   "CHECK_EXC_MATCH",
	OpBeforeWith:      "BEFORE_WITH",
	OpBeforeAsyncWith: "BEFORE_ASYNC_WITH",
	OpGetAiter:        "GET_AITER",
	OpGetAwaitable:    "GET_AWAITABLE",
	OpSend:            "SEND",
	OpEndAsyncFor:     "END_ASYNC_FOR",
	OpReturnGenerator: "RETURN_GENERATOR",

	OpImportName: "IMPORT_NAME",
	OpImportFrom: "IMPORT_FROM",
}

// opcodeAliases maps opnames that have no entry of their own in
// OpcodeNames (the 3.11 directional jump spellings, backward and
// absolute jumps, older CALL_FUNCTION names, and PRECALL as a no-op)
// onto the opcode used internally, so the reconstructor only ever
// switches on one spelling per opcode (spec.md §4.2).
var opcodeAliases = map[string]Opcode{
	"POP_JUMP_FORWARD_IF_TRUE":  OpPopJumpIfTrue,
	"POP_JUMP_BACKWARD_IF_TRUE": OpPopJumpIfTrue,

	"POP_JUMP_FORWARD_IF_FALSE":  OpPopJumpIfFalse,
	"POP_JUMP_BACKWARD_IF_FALSE": OpPopJumpIfFalse,

	"JUMP_BACKWARD":       OpJumpForward,
	"JUMP_FORWARD":        OpJumpForward,
	"JUMP_ABSOLUTE":       OpJumpForward,
	"JUMP_BACKWARD_NO_INTERRUPT": OpJumpForward,

	"CALL_FUNCTION":    OpCall,
	"CALL_FUNCTION_KW": OpCall,
	"PRECALL":          OpNone,
}

// opcodeByName resolves an opname from disassembly text to its Opcode,
// applying the 3.11/3.12 alias table. Unrecognised names resolve to
// OpNone and ok=false, which the caller is free to ignore — spec.md §4.2
// requires unrecognised opnames to decode to a no-op, not an error.
func opcodeByName(name string) (op Opcode, ok bool) {
	for i, n := range OpcodeNames {
		if n == name {
			return Opcode(i), true
		}
	}
	if op, ok = opcodeAliases[name]; ok {
		return op, true
	}
	return OpNone, false
}

// ResolveOpcode is the exported form of opcodeByName used by package
// disasm while tokenizing instruction records: unrecognised opnames
// silently decode to OpNone (spec.md §4.2).
func ResolveOpcode(name string) Opcode {
	op, _ := opcodeByName(name)
	return op
}

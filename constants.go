package hdict

// DefaultIndent is the number of spaces per nesting level used by Dumps and
// Write when no WithIndent option is given.
const DefaultIndent = 4

// MaxDepth bounds the nesting of objects and arrays accepted by Loads and
// the nesting of *HDict values rendered by Dumps.
const MaxDepth = 512

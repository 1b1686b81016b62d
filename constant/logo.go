package constant

import _ "embed"

// Logo is printed above the root help.
//
//go:embed logo.txt
var Logo string

//go:build tools

package shelfmaze

import (
	_ "golang.org/x/tools/cmd/stringer"
)

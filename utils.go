package linekeeper

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Get default name for the [Keeper].
func defaultKeeperName() string {
	if len(os.Args) > 0 && len(os.Args[0]) > 0 {
		exe := filepath.Base(os.Args[0])
		return fmt.Sprintf("linekeeper-%s", strings.TrimSuffix(exe, filepath.Ext(exe)))
	}
	return "linekeeper"
}

package shared

import (
	"fmt"
	"strings"
)

// RecalcLockKey builds the redis key guarding a balance recalculation scope.
func RecalcLockKey(scope string) string {
	if scope == "" {
		scope = "all"
	}
	return fmt.Sprintf("ledger:recalc:%s:lock", strings.ToLower(scope))
}

package gordinal

import (
	"fmt"
	"sync/atomic"
)

var uniqueCounter uint64

// Unique returns name suffixed so that it does not collide with any
// other name returned by Unique in this process. Gorgonia refuses
// two nodes with the same name in one graph.
func Unique(name string) string {
	return fmt.Sprintf("%v_%v", name, atomic.AddUint64(&uniqueCounter, 1))
}

package input

import (
	"github.com/aymanbagabas/go-osc52/v2"
)

// EncodeClipboardCopy returns the OSC 52 sequence that asks the outer
// terminal to set the system clipboard to data.
func EncodeClipboardCopy(data []byte) []byte {
	return []byte(osc52.New(string(data)).String())
}

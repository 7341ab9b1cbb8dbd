//go:build !linux

package environ

import "tinygo.org/x/bluetooth"

// Only BlueZ lets us pick an adapter by name.
func newAdapter(string) *bluetooth.Adapter {
	return bluetooth.DefaultAdapter
}

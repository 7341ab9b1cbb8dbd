package environ

import "tinygo.org/x/bluetooth"

func newAdapter(name string) *bluetooth.Adapter {
	return bluetooth.NewAdapter(name)
}

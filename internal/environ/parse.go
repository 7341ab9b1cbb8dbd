package environ

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Sensor advertisement layout (little-endian, 18 bytes): magic 0x01 0xD0,
// reading id uint32, then temperature, pressure and humidity as float32.
const (
	payloadMagic0 = 0x01
	payloadMagic1 = 0xD0
	payloadLen    = 18
)

var payloadPrefix = []byte{payloadMagic0, payloadMagic1}

type advertisement struct {
	ReadingID   uint32
	Temperature float64
	Pressure    float64
	Humidity    float64
}

func parseAdvertisement(data []byte) (advertisement, error) {
	if len(data) < payloadLen {
		return advertisement{}, fmt.Errorf("payload too short: %d", len(data))
	}
	if data[0] != payloadMagic0 || data[1] != payloadMagic1 {
		return advertisement{}, fmt.Errorf("invalid magic: %02X %02X", data[0], data[1])
	}
	f32 := func(b []byte) float64 {
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
	}
	return advertisement{
		ReadingID:   binary.LittleEndian.Uint32(data[2:6]),
		Temperature: f32(data[6:10]),
		Pressure:    f32(data[10:14]),
		Humidity:    f32(data[14:18]),
	}, nil
}

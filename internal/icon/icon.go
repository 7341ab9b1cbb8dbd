// Package icon maps OpenWeatherMap condition codes to the bundled animated
// weather sprite sheets.
package icon

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

var ErrUnknownCode = errors.New("unknown condition code")

type Condition int

const (
	ClearDay Condition = iota
	ClearNight
	PartlyCloudyDay
	PartlyCloudyNight
	Cloudy
	Rain
	Snow
	Fog
	Error
)

// All lists every condition in declaration order.
var All = []Condition{ClearDay, ClearNight, PartlyCloudyDay, PartlyCloudyNight, Cloudy, Rain, Snow, Fog, Error}

// Codes are the documented OpenWeatherMap icon codes plus "error".
var Codes = []string{
	"01d", "01n", "02d", "02n", "03d", "03n", "04d", "04n",
	"09d", "09n", "10d", "10n", "11d", "11n", "13d", "13n",
	"50d", "50n", "error",
}

// Parse maps a condition code to its Condition.
func Parse(code string) (Condition, error) {
	switch code {
	case "01d":
		return ClearDay, nil
	case "01n":
		return ClearNight, nil
	case "02d":
		return PartlyCloudyDay, nil
	case "02n":
		return PartlyCloudyNight, nil
	case "03d", "03n", "04d", "04n":
		return Cloudy, nil
	case "09d", "09n", "10d", "10n", "11d", "11n":
		return Rain, nil
	case "13d", "13n":
		return Snow, nil
	case "50d", "50n":
		return Fog, nil
	case "error":
		return Error, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCode, code)
	}
}

// Asset is the sprite sheet file name for c.
func (c Condition) Asset() string {
	switch c {
	case ClearDay:
		return "clear-day.png"
	case ClearNight:
		return "clear-night.png"
	case PartlyCloudyDay:
		return "partly-cloudy-day.png"
	case PartlyCloudyNight:
		return "partly-cloudy-night.png"
	case Cloudy:
		return "cloudy.png"
	case Rain:
		return "rain.png"
	case Snow:
		return "snow.png"
	case Fog:
		return "fog.png"
	case Error:
		return "error.png"
	default:
		panic(fmt.Sprintf("icon: invalid condition %d", int(c)))
	}
}

func (c Condition) String() string {
	switch c {
	case ClearDay:
		return "clear-day"
	case ClearNight:
		return "clear-night"
	case PartlyCloudyDay:
		return "partly-cloudy-day"
	case PartlyCloudyNight:
		return "partly-cloudy-night"
	case Cloudy:
		return "cloudy"
	case Rain:
		return "rain"
	case Snow:
		return "snow"
	case Fog:
		return "fog"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Condition(%d)", int(c))
	}
}

// Load decodes the sprite sheet for c from dir.
func Load(dir string, c Condition) (image.Image, error) {
	path := filepath.Join(dir, c.Asset())
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open icon: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode icon %s: %w", path, err)
	}
	return img, nil
}

package softgpu

import (
	"math"
	"sync"
)

const encodeLUTSize = 1 << 16

var (
	lutOnce   sync.Once
	decodeLUT [256]float32
	encodeLUT [encodeLUTSize]uint8
)

func initLUTs() {
	lutOnce.Do(func() {
		for i := range decodeLUT {
			decodeLUT[i] = float32(srgbToLinear(float64(i) / 255))
		}
		for i := range encodeLUT {
			v := linearToSRGB(float64(i) / (encodeLUTSize - 1))
			encodeLUT[i] = uint8(math.Round(v * 255))
		}
	})
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func linearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return c * 12.92
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}

// encode converts a linear channel value to 8-bit sRGB.
func encode(l float32) uint8 {
	if !(l > 0) {
		return 0
	}
	if l >= 1 {
		return 255
	}
	return encodeLUT[int(l*(encodeLUTSize-1)+0.5)]
}

package main

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"runtime"
)

const iconSize = 64

var (
	iconIdle      = trayIcon(color.RGBA{A: 0xff})
	iconRecording = trayIcon(color.RGBA{G: 0x80, A: 0xff})
)

// trayIcon draws a filled circle. Windows needs the PNG wrapped in an ICO
// container.
func trayIcon(fill color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, iconSize, iconSize))
	r := float64(iconSize) / 2
	for y := 0; y < iconSize; y++ {
		for x := 0; x < iconSize; x++ {
			dx, dy := float64(x)+0.5-r, float64(y)+0.5-r
			if dx*dx+dy*dy <= r*r {
				img.SetRGBA(x, y, fill)
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err) // in-memory encode of a valid image
	}
	if runtime.GOOS == "windows" {
		return wrapICO(buf.Bytes(), iconSize)
	}
	return buf.Bytes()
}

// wrapICO returns a single-image ICO file embedding a PNG.
func wrapICO(pngData []byte, size int) []byte {
	const headerLen = 6 + 16
	var buf bytes.Buffer
	le := binary.LittleEndian
	_ = binary.Write(&buf, le, [3]uint16{0, 1, 1}) // reserved, type icon, count
	buf.WriteByte(byte(size))                      // width
	buf.WriteByte(byte(size))                      // height
	buf.WriteByte(0)                               // palette
	buf.WriteByte(0)                               // reserved
	_ = binary.Write(&buf, le, uint16(1))          // planes
	_ = binary.Write(&buf, le, uint16(32))         // bits per pixel
	_ = binary.Write(&buf, le, uint32(len(pngData)))
	_ = binary.Write(&buf, le, uint32(headerLen))
	buf.Write(pngData)
	return buf.Bytes()
}

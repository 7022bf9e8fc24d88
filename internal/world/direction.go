package world

import (
	"strconv"
)

// Direction is a facing code as stored on actors.
type Direction int

const (
	Down Direction = iota
	Right
	Up
	Left
)

func (d Direction) String() string {
	switch d {
	case Down:
		return "down"
	case Right:
		return "right"
	case Up:
		return "up"
	case Left:
		return "left"
	}
	return "unknown"
}

// ParseDirection accepts a direction name or its numeric code.
func ParseDirection(s string) (Direction, bool) {
	for d := Down; d <= Left; d++ {
		if s == d.String() || s == d.Code() {
			return d, true
		}
	}
	return Down, false
}

// Code is the numeric form written into actor metadata.
func (d Direction) Code() string { return strconv.Itoa(int(d)) }

func (d Direction) Valid() bool { return d >= Down && d <= Left }

// ReflectedDirection maps a facing through a mirror.
// A vertical mirror swaps down and up; a horizontal one swaps right and left.
func ReflectedDirection(d Direction, vertical bool) Direction {
	if vertical {
		switch d {
		case Down:
			return Up
		case Up:
			return Down
		}
		return d
	}
	switch d {
	case Right:
		return Left
	case Left:
		return Right
	}
	return d
}

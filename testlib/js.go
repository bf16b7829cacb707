package testlib

import (
	_ "embed"
)

var (
	// imgLoadedJS is a javascript snippet that returns true once the specified
	// node's rendered width is non-zero.
	//go:embed js/imgloaded.js
	imgLoadedJS string

	// imgSizeJS is a javascript snippet that returns the specified node's
	// rendered width and height as a two-element array.
	//go:embed js/imgsize.js
	imgSizeJS string
)

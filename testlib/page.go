package testlib

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net"
	"net/http"
)

const fixtureHTML = `<!DOCTYPE html>
<html>
<head><title>imgload fixture</title></head>
<body>
<img src="/img.png">
</body>
</html>
`

// FixtureServer serves the builtin test page with a single image of a known
// natural size on a loopback listener.
type FixtureServer struct {
	baseURL string
	srv     *http.Server
}

func NewFixtureServer(width, height int) (*FixtureServer, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, fixtureImage(width, height)); err != nil {
		return nil, err
	}
	imgData := buf.Bytes()

	mux := http.NewServeMux()
	mux.HandleFunc("/img.html", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, fixtureHTML)
	})
	mux.HandleFunc("/img.png", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(imgData)
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	srv := &http.Server{Handler: mux}
	go srv.Serve(ln)

	return &FixtureServer{
		baseURL: fmt.Sprintf("http://%s", ln.Addr().String()),
		srv:     srv,
	}, nil
}

func (s *FixtureServer) PageURL() string {
	return s.baseURL + "/img.html"
}

func (s *FixtureServer) ImageURL() string {
	return s.baseURL + "/img.png"
}

func (s *FixtureServer) Close() error {
	return s.srv.Close()
}

func fixtureImage(width, height int) image.Image {
	m := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			m.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x),
				G: uint8(y),
				B: uint8((x + y) / 2),
				A: 255,
			})
		}
	}
	return m
}
